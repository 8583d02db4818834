package scene

import (
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/require"

	"spatial-engine/math"
)

func TestLoadGLTFDocumentHierarchyAndExtras(t *testing.T) {
	doc := &gltf.Document{
		Nodes: []*gltf.Node{
			{
				Name:        "building",
				Children:    []int{1},
				Translation: [3]float64{10, 0, 0},
				Extras:      map[string]any{"tag": "Wall", "static": false},
			},
			{
				Name:        "lamp",
				Translation: [3]float64{0, 3, 0},
				Extras: map[string]any{"light": map[string]any{
					"type":   "area_tube",
					"range":  2.0,
					"length": 4.0,
					"color":  []any{1.0, 0.5, 0.0},
				}},
			},
			{},
		},
	}

	result := loadGLTFDocument(doc)
	require.Len(t, result.Roots, 2)

	building := result.Roots[0]
	require.Equal(t, "building", building.Name)
	require.Equal(t, "Wall", building.Tag)
	require.False(t, building.Static)
	require.Len(t, building.Children, 1)

	lamp := building.Children[0]
	require.True(t, lamp.Static)
	require.NotNil(t, lamp.Light)
	require.Equal(t, LightAreaTube, lamp.Light.Type)
	require.Equal(t, float32(0.5), lamp.Light.Color.G)
	requireVec3(t, math.NewVec3(10, 3, 0), lamp.WorldPosition())
	requireVec3(t, math.NewVec3(14, 7, 4), lamp.Bounds().Max)

	require.Equal(t, "node_2", result.Roots[1].Name)

	s := newTestScene()
	result.AddTo(s)
	require.Equal(t, 3, s.EntityCount())
	require.True(t, s.Tree().Contains(lamp))
}

func TestLoadGLTFMissingFile(t *testing.T) {
	_, err := LoadGLTF("does-not-exist.glb")
	require.Error(t, err)
}
