package routeplanner

import (
	"errors"
	"math"
	"sort"
	"sync/atomic"
)

type point struct{ X, Y float64 }

// testGraph is a small undirected graph with Euclidean edge costs.
type testGraph struct {
	points        map[string]point
	edges         map[string][]string
	scale         float64
	path          []string
	neighborCalls atomic.Int64
}

func newTestGraph(scale float64) *testGraph {
	return &testGraph{
		points: make(map[string]point),
		edges:  make(map[string][]string),
		scale:  scale,
	}
}

func (g *testGraph) addNode(id string, x, y float64) *testGraph {
	g.points[id] = point{X: x, Y: y}
	return g
}

func (g *testGraph) connect(a, b string) *testGraph {
	g.edges[a] = append(g.edges[a], b)
	g.edges[b] = append(g.edges[b], a)
	return g
}

func (g *testGraph) FindClosestNode(x, y float64) (string, error) {
	if len(g.points) == 0 {
		return "", errors.New("empty graph")
	}
	ids := make([]string, 0, len(g.points))
	for id := range g.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	best, bestDistance := "", math.Inf(1)
	for _, id := range ids {
		p := g.points[id]
		if d := math.Hypot(p.X-x, p.Y-y); d < bestDistance {
			best, bestDistance = id, d
		}
	}
	return best, nil
}

func (g *testGraph) NeighborsOf(node string) []string {
	g.neighborCalls.Add(1)
	return g.edges[node]
}

func (g *testGraph) Distance(a, b string) float64 {
	pa, pb := g.points[a], g.points[b]
	return math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
}

func (g *testGraph) MetricScale() float64 { return g.scale }

func (g *testGraph) SetPath(path []string) {
	g.path = append([]string(nil), path...)
}

// gridGraph builds a w*h lattice with unit spacing and 4-connectivity.
func gridGraph(w, h int) *testGraph {
	g := newTestGraph(1)
	name := func(x, y int) string { return string(rune('a'+x)) + string(rune('a'+y)) }
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			g.addNode(name(x, y), float64(x), float64(y))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if x+1 < w {
				g.connect(name(x, y), name(x+1, y))
			}
			if y+1 < h {
				g.connect(name(x, y), name(x, y+1))
			}
		}
	}
	return g
}

// detourGraph is reached first through A although the route through B is shorter.
//
//	S(0,0) - A(3,1)  - N(2,-4) - G(10,0)
//	S(0,0) - B(2,-3) - N(2,-4)
func detourGraph() *testGraph {
	return newTestGraph(1).
		addNode("S", 0, 0).
		addNode("A", 3, 1).
		addNode("B", 2, -3).
		addNode("N", 2, -4).
		addNode("G", 10, 0).
		connect("S", "A").
		connect("S", "B").
		connect("A", "N").
		connect("B", "N").
		connect("N", "G")
}
