// Package roadmodel is a road network built from OpenStreetMap data.
//
// A Model satisfies routeplanner.GraphModel[int] and routeplanner.PathSink[int]: node
// identities are indexes into Nodes(). Two nodes are adjacent when they follow each other
// on a road way, and the cost of that hop is their straight-line distance, which keeps
// the planner's Euclidean heuristic admissible.
//
// # Thread Safety
//
// A Model is immutable after construction apart from its lazily filled neighbor cache
// and the path slot, both of which are synchronized. It can be shared by concurrent
// searches.
package roadmodel

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/dhconnelly/rtreego"
)

// ErrNoRoadNodes is returned by FindClosestNode when the model has no routable node.
var ErrNoRoadNodes = errors.New("model has no road nodes")

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	pointTolerance   = 1e-9
)

// indexedNode adapts a node to rtreego.Spatial.
type indexedNode struct {
	id    int
	where rtreego.Point
}

func (n *indexedNode) Bounds() rtreego.Rect { return n.where.ToRect(pointTolerance) }

// Model is an immutable road graph with a nearest-node index.
type Model struct {
	nodes       []Node
	ways        []Way
	roads       []Road
	nodeRoads   [][]int
	metricScale float64
	index       *rtreego.Rtree
	logger      *slog.Logger

	neighbors     [][]int
	neighborsOnce []sync.Once

	mu   sync.RWMutex
	path []int
}

// Option configures a Model.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	roadTypes map[RoadType]bool
}

// WithLogger sets the logger used while loading.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRoadTypes restricts loading to the given road types. By default every valid type
// is kept.
func WithRoadTypes(types ...RoadType) Option {
	return func(o *options) {
		o.roadTypes = make(map[RoadType]bool, len(types))
		for _, t := range types {
			o.roadTypes[t] = true
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func (o options) allows(t RoadType) bool {
	if t == Invalid {
		return false
	}
	return o.roadTypes == nil || o.roadTypes[t]
}

// New builds a model from projected nodes, ways and the roads that reference them.
// metricScale converts model units to metres and must be positive.
func New(nodes []Node, ways []Way, roads []Road, metricScale float64, opts ...Option) (*Model, error) {
	o := applyOptions(opts)
	if !(metricScale > 0) || math.IsInf(metricScale, 0) {
		return nil, fmt.Errorf("metric scale must be positive, got %v", metricScale)
	}
	for i, way := range ways {
		for _, n := range way.Nodes {
			if n < 0 || n >= len(nodes) {
				return nil, fmt.Errorf("way %d references node %d of %d", i, n, len(nodes))
			}
		}
	}

	m := &Model{
		nodes:         nodes,
		ways:          ways,
		metricScale:   metricScale,
		logger:        o.logger,
		nodeRoads:     make([][]int, len(nodes)),
		neighbors:     make([][]int, len(nodes)),
		neighborsOnce: make([]sync.Once, len(nodes)),
	}
	for _, road := range roads {
		if road.Way < 0 || road.Way >= len(ways) {
			return nil, fmt.Errorf("road references way %d of %d", road.Way, len(ways))
		}
		if !o.allows(road.Type) {
			continue
		}
		m.roads = append(m.roads, road)
		id := len(m.roads) - 1
		for _, n := range ways[road.Way].Nodes {
			if !slices.Contains(m.nodeRoads[n], id) {
				m.nodeRoads[n] = append(m.nodeRoads[n], id)
			}
		}
	}
	m.buildIndex()
	return m, nil
}

// buildIndex bulk-loads every node that lies on at least one non-footway road.
func (m *Model) buildIndex() {
	var objects []rtreego.Spatial
	for id, roads := range m.nodeRoads {
		for _, r := range roads {
			if m.roads[r].Type != Footway {
				objects = append(objects, &indexedNode{id: id, where: rtreego.Point{m.nodes[id].X, m.nodes[id].Y}})
				break
			}
		}
	}
	if len(objects) == 0 {
		return
	}
	m.index = rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, objects...)
	m.logger.Debug("road index built", "indexed_nodes", len(objects), "nodes", len(m.nodes))
}

// FindClosestNode returns the road node nearest to (x, y). Footway-only nodes are never
// returned so a route always starts and ends on a drivable road.
func (m *Model) FindClosestNode(x, y float64) (int, error) {
	if m.index == nil {
		return -1, ErrNoRoadNodes
	}
	nearest := m.index.NearestNeighbor(rtreego.Point{x, y})
	if nearest == nil {
		return -1, ErrNoRoadNodes
	}
	return nearest.(*indexedNode).id, nil
}

// NeighborsOf returns the nodes directly before and after id on every road through it.
// The list is computed on first use and cached; callers must not modify it.
func (m *Model) NeighborsOf(id int) []int {
	if id < 0 || id >= len(m.nodes) {
		return nil
	}
	m.neighborsOnce[id].Do(func() {
		m.neighbors[id] = m.findNeighbors(id)
	})
	return m.neighbors[id]
}

func (m *Model) findNeighbors(id int) []int {
	var found []int
	add := func(n int) {
		if n != id && !slices.Contains(found, n) {
			found = append(found, n)
		}
	}
	for _, r := range m.nodeRoads[id] {
		wayNodes := m.ways[m.roads[r].Way].Nodes
		for i, n := range wayNodes {
			if n != id {
				continue
			}
			if i > 0 {
				add(wayNodes[i-1])
			}
			if i+1 < len(wayNodes) {
				add(wayNodes[i+1])
			}
		}
	}
	return found
}

// Distance is the straight-line distance between two nodes in model units.
func (m *Model) Distance(a, b int) float64 {
	na, nb := m.nodes[a], m.nodes[b]
	return math.Hypot(na.X-nb.X, na.Y-nb.Y)
}

// MetricScale converts model units to metres.
func (m *Model) MetricScale() float64 { return m.metricScale }

// SetPath stores the most recently planned path.
func (m *Model) SetPath(path []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = slices.Clone(path)
}

// Path returns a copy of the stored path.
func (m *Model) Path() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.path)
}

// Node returns the node with the given index.
func (m *Model) Node(id int) (Node, bool) {
	if id < 0 || id >= len(m.nodes) {
		return Node{}, false
	}
	return m.nodes[id], true
}

// Len is the number of nodes.
func (m *Model) Len() int { return len(m.nodes) }

// Roads returns the roads kept by the model.
func (m *Model) Roads() []Road { return slices.Clone(m.roads) }

// Way returns the way with the given index.
func (m *Model) Way(id int) (Way, bool) {
	if id < 0 || id >= len(m.ways) {
		return Way{}, false
	}
	return m.ways[id], true
}
