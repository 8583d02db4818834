package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"spatial-engine/quadtree"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	tree := c.TreeConfig()
	require.Equal(t, quadtree.DefaultConfig().QuadrantCapacity, tree.QuadrantCapacity)
	require.False(t, c.Bounds().IsEmpty())
	require.InDelta(t, 1.0472, c.FOVRadians(), 1e-3)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
[window]
width = 800

[quadtree]
capacity = 4
min_side = 1.5
frozen = true
disable_merge = true
max_expansions = 5
bounds_min = [-10, -2, -10]
bounds_max = [10, 2, 10]

[culling]
draw_quadtree = true
`))
	require.NoError(t, err)

	require.Equal(t, 800, c.Window.Width)
	require.Equal(t, 720, c.Window.Height)
	require.True(t, c.Culling.DrawQuadtree)
	require.True(t, c.Culling.ShowSelection)

	tree := c.TreeConfig()
	require.Equal(t, 4, tree.QuadrantCapacity)
	require.Equal(t, float32(1.5), tree.MinQuadrantSideSize)
	require.True(t, tree.Frozen)
	require.True(t, tree.DisableMerge)
	require.Equal(t, 5, tree.MaxExpansions)
	require.Equal(t, float32(-10), c.Bounds().Min.X)
	require.Equal(t, float32(2), c.Bounds().Max.Y)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "syntax", data: `[window`},
		{name: "unknown key", data: "[quadtree]\nbucket = 3"},
		{name: "zero capacity", data: "[quadtree]\ncapacity = 0"},
		{name: "negative min side", data: "[quadtree]\nmin_side = -1"},
		{name: "inverted bounds", data: "[quadtree]\nbounds_min = [1, 0, 0]\nbounds_max = [0, 0, 0]"},
		{name: "clip planes", data: "[camera]\nnear = 10\nfar = 5"},
		{name: "fov", data: "[camera]\nfov = 190"},
		{name: "window", data: "[window]\nheight = 0"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.data))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")

	c := Default()
	c.Window.Title = "city"
	c.Quadtree.Capacity = 3
	data, err := c.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, c, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
