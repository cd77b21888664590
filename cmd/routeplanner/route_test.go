package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/routeplanner"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRouteCommand(t *testing.T) {
	mapPath := writeTestMap(t)

	out, err := runRoot(t, "--map", mapPath, "route", "--start", "0,0", "--end", "100,80")
	require.NoError(t, err)
	assert.Contains(t, out, "Distance: ")
	assert.Contains(t, out, "Nodes: 4\n")
}

func TestRouteCommand_JSON(t *testing.T) {
	mapPath := writeTestMap(t)

	out, err := runRoot(t, "--map", mapPath, "route", "--start", "0,0", "--end", "100,80", "--json")
	require.NoError(t, err)

	var resp routeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Found)
	require.Len(t, resp.Path, 4)
	assert.Equal(t, int64(1), resp.Path[0].OSMID)
	assert.Equal(t, int64(5), resp.Path[3].OSMID)
}

func TestRouteCommand_NoPath(t *testing.T) {
	mapPath := writeTestMap(t)

	out, err := runRoot(t, "--map", mapPath, "route", "--start", "0,0", "--end", "75,40")
	assert.ErrorIs(t, err, routeplanner.ErrNoPath)
	assert.Contains(t, out, "No path found")
}

func TestRouteCommand_Errors(t *testing.T) {
	mapPath := writeTestMap(t)

	t.Run("missing map", func(t *testing.T) {
		_, err := runRoot(t, "route", "--start", "0,0", "--end", "1,1")
		assert.ErrorContains(t, err, "no map given")
	})

	t.Run("bad coordinate", func(t *testing.T) {
		_, err := runRoot(t, "--map", mapPath, "route", "--start", "0", "--end", "1,1")
		assert.ErrorContains(t, err, "--start")
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := runRoot(t, "--map", mapPath, "route", "--start", "0,0", "--end", "101,1")
		assert.ErrorIs(t, err, routeplanner.ErrInvalidCoordinate)
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := runRoot(t, "--config", t.TempDir()+"/absent.yaml", "--map", mapPath,
			"route", "--start", "0,0", "--end", "1,1")
		assert.Error(t, err)
	})
}

func TestParseCoordinate(t *testing.T) {
	x, y, err := parseCoordinate(" 12.5, 40 ")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, x, 1e-12)
	assert.InDelta(t, 40.0, y, 1e-12)

	for _, bad := range []string{"", "1", "1,2,3", "a,2", "1,b"} {
		_, _, err := parseCoordinate(bad)
		assert.Error(t, err, bad)
	}
}
