package roadmodel_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/routeplanner"
	"github.com/pdrpinto/routeplanner/roadmodel"
)

// Node indexes follow document order: OSM node n has index n-1.
const testMap = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="roadmodel test">
 <node id="1" lat="51.5000" lon="-0.1300"/>
 <node id="2" lat="51.5000" lon="-0.1200"/>
 <node id="3" lat="51.5000" lon="-0.1100"/>
 <node id="4" lat="51.5100" lon="-0.1200"/>
 <node id="5" lat="51.5100" lon="-0.1100"/>
 <node id="6" lat="51.5050" lon="-0.1300"/>
 <way id="10">
  <nd ref="1"/><nd ref="2"/><nd ref="3"/>
  <tag k="highway" v="residential"/>
 </way>
 <way id="11">
  <nd ref="2"/><nd ref="4"/>
  <tag k="highway" v="primary"/>
 </way>
 <way id="12">
  <nd ref="4"/><nd ref="5"/><nd ref="99"/>
  <tag k="highway" v="footway"/>
 </way>
 <way id="13">
  <nd ref="1"/><nd ref="6"/>
  <tag k="building" v="yes"/>
 </way>
</osm>`

func loadTestMap(t *testing.T, opts ...roadmodel.Option) *roadmodel.Model {
	t.Helper()
	m, err := roadmodel.Load(context.Background(), strings.NewReader(testMap), opts...)
	require.NoError(t, err)
	return m
}

func TestLoad(t *testing.T) {
	m := loadTestMap(t)

	assert.Equal(t, 6, m.Len())
	roads := m.Roads()
	require.Len(t, roads, 3)
	assert.Equal(t, roadmodel.Residential, roads[0].Type)
	assert.Equal(t, roadmodel.Primary, roads[1].Type)
	assert.Equal(t, roadmodel.Footway, roads[2].Type)

	footway, ok := m.Way(roads[2].Way)
	require.True(t, ok)
	assert.Equal(t, []int{3, 4}, footway.Nodes, "missing node refs are dropped")

	origin, ok := m.Node(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), origin.OSMID)
	assert.InDelta(t, 0, origin.X, 1e-9)
	assert.InDelta(t, 0, origin.Y, 1e-9)

	east, _ := m.Node(2)
	assert.InDelta(t, 1.0, east.X, 1e-9, "longer axis spans [0, 1]")
	north, _ := m.Node(3)
	assert.Less(t, north.Y, 1.0)
}

func TestLoad_MetricScale(t *testing.T) {
	m := loadTestMap(t)

	// 0.02 degrees of longitude at 51.5N is roughly 1386 m.
	metres := m.Distance(0, 2) * m.MetricScale()
	assert.InEpsilon(t, 1386.0, metres, 0.01)
}

func TestLoad_RoadTypeFilter(t *testing.T) {
	m := loadTestMap(t, roadmodel.WithRoadTypes(roadmodel.Primary))

	roads := m.Roads()
	require.Len(t, roads, 1)
	assert.Equal(t, roadmodel.Primary, roads[0].Type)
	assert.Equal(t, []int{3}, m.NeighborsOf(1))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("empty extract", func(t *testing.T) {
		_, err := roadmodel.Load(context.Background(), strings.NewReader(`<osm version="0.6"></osm>`))
		assert.ErrorIs(t, err, roadmodel.ErrNoRoadNodes)
	})

	t.Run("no roads", func(t *testing.T) {
		m, err := roadmodel.Load(context.Background(), strings.NewReader(
			`<osm version="0.6"><node id="1" lat="1" lon="1"/><node id="2" lat="2" lon="2"/></osm>`))
		require.NoError(t, err)
		_, err = m.FindClosestNode(0.5, 0.5)
		assert.ErrorIs(t, err, roadmodel.ErrNoRoadNodes)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := roadmodel.LoadFile(context.Background(), t.TempDir()+"/missing.osm")
		assert.Error(t, err)
	})
}

func TestFindClosestNode(t *testing.T) {
	m := loadTestMap(t)

	footOnly, _ := m.Node(4)
	id, err := m.FindClosestNode(footOnly.X, footOnly.Y)
	require.NoError(t, err)
	assert.Equal(t, 3, id, "footway-only nodes are not start candidates")

	offRoad, _ := m.Node(5)
	id, err = m.FindClosestNode(offRoad.X, offRoad.Y)
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestNeighborsOf(t *testing.T) {
	m := loadTestMap(t)

	assert.Equal(t, []int{0, 2, 3}, m.NeighborsOf(1))
	assert.Equal(t, []int{1, 4}, m.NeighborsOf(3))
	assert.Empty(t, m.NeighborsOf(5))
	assert.Nil(t, m.NeighborsOf(-1))
	assert.Nil(t, m.NeighborsOf(42))

	first := m.NeighborsOf(1)
	assert.Equal(t, &first[0], &m.NeighborsOf(1)[0], "adjacency is cached")
}

func TestNew(t *testing.T) {
	nodes := []roadmodel.Node{{X: 0, Y: 0}, {X: 3, Y: 4}}
	ways := []roadmodel.Way{{Nodes: []int{0, 1}}}

	t.Run("valid", func(t *testing.T) {
		m, err := roadmodel.New(nodes, ways, []roadmodel.Road{{Way: 0, Type: roadmodel.Service}}, 10)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, m.Distance(0, 1), 1e-9)
		assert.InDelta(t, 10.0, m.MetricScale(), 1e-9)
	})

	t.Run("bad scale", func(t *testing.T) {
		_, err := roadmodel.New(nodes, ways, nil, 0)
		assert.Error(t, err)
		_, err = roadmodel.New(nodes, ways, nil, math.NaN())
		assert.Error(t, err)
	})

	t.Run("bad node reference", func(t *testing.T) {
		_, err := roadmodel.New(nodes, []roadmodel.Way{{Nodes: []int{0, 7}}}, nil, 1)
		assert.Error(t, err)
	})

	t.Run("bad way reference", func(t *testing.T) {
		_, err := roadmodel.New(nodes, ways, []roadmodel.Road{{Way: 3, Type: roadmodel.Service}}, 1)
		assert.Error(t, err)
	})
}

func TestPath(t *testing.T) {
	m := loadTestMap(t)
	assert.Empty(t, m.Path())

	path := []int{0, 1, 3}
	m.SetPath(path)
	path[0] = 9
	assert.Equal(t, []int{0, 1, 3}, m.Path())
}

func TestParseRoadType(t *testing.T) {
	tests := []struct {
		highway string
		want    roadmodel.RoadType
	}{
		{"motorway_link", roadmodel.Motorway},
		{"trunk", roadmodel.Trunk},
		{"primary", roadmodel.Primary},
		{"secondary_link", roadmodel.Secondary},
		{"tertiary", roadmodel.Tertiary},
		{"living_street", roadmodel.Residential},
		{"service", roadmodel.Service},
		{"unclassified", roadmodel.Unclassified},
		{"steps", roadmodel.Footway},
		{"construction", roadmodel.Invalid},
		{"", roadmodel.Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.highway, func(t *testing.T) {
			got := roadmodel.ParseRoadType(tt.highway)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
		})
	}
}

func TestPlanOverRoadModel(t *testing.T) {
	m := loadTestMap(t)
	start, _ := m.Node(0)
	end, _ := m.Node(3)

	result, err := routeplanner.Plan(context.Background(), m,
		start.X*100, start.Y*100, end.X*100, end.Y*100)
	require.NoError(t, err)
	require.True(t, result.Found())
	assert.Equal(t, []int{0, 1, 3}, result.Path)
	assert.Equal(t, result.Path, m.Path())

	want := (m.Distance(0, 1) + m.Distance(1, 3)) * m.MetricScale()
	assert.InDelta(t, want, result.Distance, 1e-6)
}

func TestPlanBatchOverRoadModel(t *testing.T) {
	m := loadTestMap(t)
	queries := make([]routeplanner.Query, 16)
	for i := range queries {
		queries[i] = routeplanner.Query{StartX: 0, StartY: 0, EndX: 60, EndY: 100}
	}

	results, err := routeplanner.PlanBatch(context.Background(), m, queries, routeplanner.WithWorkers(4))
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, []int{0, 1, 3}, r.Path)
	}
	assert.Empty(t, m.Path())
}
