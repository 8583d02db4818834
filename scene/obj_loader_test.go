package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
)

const testOBJ = `# two groups
mtllib city.mtl
v 0 0 0
v 2 0 0
v 2 0 2
v 0 0 2
v 0 1 0
vn 0 1 0
o floor
usemtl asphalt
f 1//1 2//1 3//1 4//1
o roof
usemtl glass
f 1 2 5
f -5 -3 -1
`

const testMTL = `newmtl asphalt
Kd 0.2 0.2 0.25
newmtl glass
Kd 0.5 0.7 0.9
d 0.4
`

func TestReadOBJ(t *testing.T) {
	res, err := ReadOBJ(strings.NewReader(testOBJ), func(name string) (map[string]core.Color, error) {
		require.Equal(t, "city.mtl", name)
		return ReadMTL(strings.NewReader(testMTL))
	})
	require.NoError(t, err)
	require.Len(t, res.Roots, 2)

	floor := res.Roots[0]
	require.Equal(t, "floor", floor.Name)
	require.True(t, floor.Static)
	require.Equal(t, 2, floor.Mesh.TriangleCount())
	require.Len(t, floor.Mesh.Vertices, 4)
	require.Equal(t, core.Color{R: 0.2, G: 0.2, B: 0.25, A: 1}, floor.Renderer.Color)
	require.False(t, floor.Renderer.Transparent)
	require.Equal(t, math.Vec3Up, floor.Mesh.Vertices[0].Normal)

	roof := res.Roots[1]
	require.Equal(t, 2, roof.Mesh.TriangleCount())
	require.True(t, roof.Renderer.Transparent)
	require.InDelta(t, 0.4, roof.Renderer.Color.A, 1e-6)
	for _, v := range roof.Mesh.Vertices {
		require.InDelta(t, 1, v.Normal.Length(), 1e-5)
	}
}

func TestReadOBJErrors(t *testing.T) {
	_, err := ReadOBJ(strings.NewReader("v 0 0 0\n"), nil)
	require.Error(t, err)

	res, err := ReadOBJ(strings.NewReader("mtllib missing.mtl\nv 0 0 0\nv 1 0 0\nv 0 0 1\nf 1 2 3\n"),
		func(string) (map[string]core.Color, error) { return nil, os.ErrNotExist })
	require.NoError(t, err)
	require.Equal(t, objDefaultColor, res.Roots[0].Renderer.Color)

	faces := []struct {
		name string
		data string
	}{
		{name: "position past end", data: "v 0 0 0\nv 1 0 0\nf 1 2 3\n"},
		{name: "negative past start", data: "v 0 0 0\nv 1 0 0\nv 0 0 1\nf -4 1 2\n"},
		{name: "normal past end", data: "v 0 0 0\nv 1 0 0\nv 0 0 1\nvn 0 1 0\nf 1//1 2//2 3//1\n"},
		{name: "zero index", data: "v 0 0 0\nv 1 0 0\nv 0 0 1\nf 0 1 2\n"},
		{name: "not a number", data: "v 0 0 0\nv 1 0 0\nv 0 0 1\nf a 1 2\n"},
		{name: "missing position", data: "v 0 0 0\nvt 0 0\nf /1 1 1\n"},
	}
	for _, test := range faces {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(test.data), nil)
			require.Error(t, err)
		})
	}
}

func TestLoadOBJIndexesEntities(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "city.obj"), []byte(testOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "city.mtl"), []byte(testMTL), 0o644))

	res, err := LoadOBJ(filepath.Join(dir, "city.obj"))
	require.NoError(t, err)

	s := NewScene(DefaultBounds(), quadtree.Config{QuadrantCapacity: 4, MinQuadrantSideSize: 1})
	res.AddTo(s)
	for _, e := range res.Roots {
		require.True(t, s.Tree().Contains(e), e.Name)
	}

	_, err = LoadOBJ(filepath.Join(dir, "missing.obj"))
	require.Error(t, err)
}
