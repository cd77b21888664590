package routeplanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBatch(t *testing.T) {
	g := gridGraph(6, 6)
	for id, p := range g.points {
		g.points[id] = point{X: p.X / 5, Y: p.Y / 5}
	}

	queries := []Query{
		{StartX: 0, StartY: 0, EndX: 100, EndY: 100},
		{StartX: 100, StartY: 0, EndX: 0, EndY: 100},
		{StartX: 40, StartY: 40, EndX: 40, EndY: 40},
	}

	results, err := PlanBatch(context.Background(), g, queries, WithWorkers(2))
	require.NoError(t, err)
	require.Len(t, results, len(queries))

	assert.Equal(t, "aa", results[0].Path[0])
	assert.Equal(t, "ff", results[0].Path[len(results[0].Path)-1])
	assert.InDelta(t, 2.0, results[0].Distance, 1e-9)

	assert.Equal(t, "fa", results[1].Path[0])
	assert.Equal(t, "af", results[1].Path[len(results[1].Path)-1])

	assert.Equal(t, []string{"cc"}, results[2].Path)
	assert.Nil(t, g.path, "batch planning does not write back")
}

func TestPlanBatch_FailingQuery(t *testing.T) {
	g := gridGraph(3, 3)
	queries := []Query{
		{StartX: 0, StartY: 0, EndX: 1, EndY: 1},
		{StartX: -5, StartY: 0, EndX: 1, EndY: 1},
	}

	_, err := PlanBatch(context.Background(), g, queries)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Contains(t, err.Error(), "query 1")
}
