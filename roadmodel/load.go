package roadmodel

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
)

const earthRadius = 6378137.0

// LoadFile reads an .osm XML extract from disk.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map: %w", err)
	}
	defer f.Close()

	m, err := Load(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Load parses OSM XML and builds a Model from its nodes and highway ways.
//
// Ways without a recognised highway tag are ignored, as are way references to nodes
// missing from the extract. Coordinates are projected to web-mercator metres, shifted to
// the south-west corner of the node extent and divided by the longer side of that
// extent, so the whole map fits in the unit square.
func Load(ctx context.Context, r io.Reader, opts ...Option) (*Model, error) {
	o := applyOptions(opts)

	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	var (
		nodes     []Node
		ways      []Way
		roads     []Road
		nodeIndex = make(map[osm.NodeID]int)
		skipped   int
	)
	type pendingWay struct {
		id   osm.WayID
		refs osm.WayNodes
		kind RoadType
	}
	var pending []pendingWay

	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			nodeIndex[obj.ID] = len(nodes)
			nodes = append(nodes, Node{OSMID: int64(obj.ID), Lat: obj.Lat, Lon: obj.Lon})
		case *osm.Way:
			kind := ParseRoadType(obj.Tags.Find("highway"))
			if !o.allows(kind) {
				continue
			}
			pending = append(pending, pendingWay{id: obj.ID, refs: obj.Nodes, kind: kind})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm: %w", err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("scan osm: %w", ErrNoRoadNodes)
	}

	for _, w := range pending {
		way := Way{OSMID: int64(w.id)}
		for _, ref := range w.refs {
			idx, ok := nodeIndex[ref.ID]
			if !ok {
				skipped++
				continue
			}
			way.Nodes = append(way.Nodes, idx)
		}
		if len(way.Nodes) < 2 {
			continue
		}
		ways = append(ways, way)
		roads = append(roads, Road{Way: len(ways) - 1, Type: w.kind})
	}

	scale := project(nodes)
	o.logger.Info("map loaded",
		"nodes", len(nodes),
		"roads", len(roads),
		"missing_refs", skipped,
		"metric_scale", scale,
	)
	return New(nodes, ways, roads, scale, opts...)
}

func lonToMeters(lon float64) float64 {
	return lon * math.Pi / 180 * earthRadius
}

func latToMeters(lat float64) float64 {
	return math.Log(math.Tan(lat*math.Pi/360+math.Pi/4)) * earthRadius
}

// project fills X and Y for every node and returns the metric scale. Mercator stretches
// distances by 1/cos(lat), so the scale is corrected at the extent's mid latitude.
func project(nodes []Node) float64 {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, n := range nodes {
		minLat, maxLat = math.Min(minLat, n.Lat), math.Max(maxLat, n.Lat)
		minLon, maxLon = math.Min(minLon, n.Lon), math.Max(maxLon, n.Lon)
	}

	minX, minY := lonToMeters(minLon), latToMeters(minLat)
	dx := lonToMeters(maxLon) - minX
	dy := latToMeters(maxLat) - minY
	extent := math.Max(dx, dy)
	if !(extent > 0) {
		extent = 1
	}

	for i := range nodes {
		nodes[i].X = (lonToMeters(nodes[i].Lon) - minX) / extent
		nodes[i].Y = (latToMeters(nodes[i].Lat) - minY) / extent
	}
	return extent * math.Cos((minLat+maxLat)/2*math.Pi/180)
}
