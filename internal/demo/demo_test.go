package demo

import (
	"context"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"

	enginecfg "spatial-engine/config"
	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
	"spatial-engine/scene"
)

func newCity(t *testing.T, blocks int) (*scene.Scene, *City) {
	t.Helper()

	s := scene.NewScene(scene.DefaultBounds(), quadtree.Config{
		QuadrantCapacity:    8,
		MinQuadrantSideSize: 4,
	})
	return s, BuildCity(s, rand.New(rand.NewSource(7)), blocks)
}

func TestBuildCity(t *testing.T) {
	s, c := newCity(t, 2)

	require.Equal(t, float32(16), c.Extent)
	require.Len(t, c.Buildings, 2*2*lotsPerSide*lotsPerSide)
	require.Len(t, c.Lamps, 3*3)
	require.Len(t, c.Cars, 2*4)

	lot := float32(blockPitch-streetWidth) / lotsPerSide
	tree := s.Tree()
	for _, b := range c.Buildings {
		require.True(t, tree.Contains(b), b.Name)

		scale, pos := b.Transform.Scale, b.Transform.Position
		require.Greater(t, scale.X, lot/2, b.Name)
		require.LessOrEqual(t, scale.X, lot, b.Name)
		require.LessOrEqual(t, scale.Z, lot, b.Name)
		require.LessOrEqual(t, math32.Abs(pos.X)+scale.X/2, c.Extent, b.Name)
		require.LessOrEqual(t, math32.Abs(pos.Z)+scale.Z/2, c.Extent, b.Name)
		require.InDelta(t, scale.Y/2, pos.Y, 1e-5, b.Name)
	}
	for _, l := range c.Lamps {
		require.True(t, tree.Contains(l), l.Name)
		require.Len(t, l.Children, 1)
		require.True(t, tree.Contains(l.Children[0]), l.Children[0].Name)
	}
	for _, car := range c.Cars {
		require.False(t, tree.Contains(car.Entity))
		require.True(t, s.InDynamicList(car.Entity))
	}

	require.False(t, tree.Contains(c.Sun))
	require.Equal(t, []*scene.Entity{c.Sun}, s.DirectionalLights())
	require.Greater(t, tree.NodeCount(), 1)
}

func TestBuildCityExpandsTree(t *testing.T) {
	s, c := newCity(t, 10)

	root := s.Tree().Root().Box()
	for _, b := range c.Buildings {
		require.True(t, root.ContainsXZ(b.Bounds()), b.Name)
	}
	require.Greater(t, root.SideXZ(), scene.DefaultBounds().SideXZ())
}

func TestCityUpdateWrapsCars(t *testing.T) {
	s, c := newCity(t, 2)

	for i := 0; i < 500; i++ {
		c.Update(0.1)
		s.Update(0.1)
	}

	for _, car := range c.Cars {
		along := car.Entity.Transform.Position.Dot(car.Axis)
		require.LessOrEqual(t, math32.Abs(along), c.Extent, car.Entity.Name)
		require.True(t, s.InDynamicList(car.Entity))
	}
	require.Zero(t, s.PendingUpdates())
}

func TestRunHeadless(t *testing.T) {
	s, c := newCity(t, 4)

	stats := RunHeadless(context.Background(), s, c, NewDayNight(), enginecfg.Default(), HeadlessOptions{
		Frames: 30,
		Rays:   10,
		Rand:   rand.New(rand.NewSource(3)),
	})

	require.Equal(t, 30, stats.Frames)
	require.Equal(t, 300, stats.Rays)
	require.Greater(t, stats.Hits, 0)
	require.LessOrEqual(t, stats.HitRate(), float32(1))
	require.Greater(t, stats.Visible, 0)
	require.Greater(t, stats.Lights, 0)
	require.Greater(t, stats.Triangles, 0)
	require.Zero(t, stats.DebugLines)
	require.Equal(t, s.Tree().NodeCount(), stats.Nodes)
	require.Equal(t, s.Tree().Len(), stats.Indexed)
	require.Equal(t, len(c.Cars), stats.Dynamic)
	require.NotNil(t, s.Camera)
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	s, c := newCity(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := RunHeadless(ctx, s, c, NewDayNight(), enginecfg.Default(), HeadlessOptions{
		Frames: 100,
		Rays:   1,
	})
	require.Zero(t, stats.Frames)
	require.Zero(t, stats.Rays)
}

func TestRunHeadlessWithoutCity(t *testing.T) {
	s := scene.NewScene(scene.DefaultBounds(), quadtree.Config{QuadrantCapacity: 4, MinQuadrantSideSize: 1})
	crate := scene.NewMeshEntity("crate", scene.CreateCube(2), core.ColorWhite)
	crate.Static = true
	s.AddEntity(crate, nil)

	stats := RunHeadless(context.Background(), s, nil, NewDayNight(), enginecfg.Default(), HeadlessOptions{Frames: 5})
	require.Equal(t, 5, stats.Frames)
	require.Equal(t, 5, stats.Visible)
	require.Equal(t, 1, stats.Indexed)
	require.Nil(t, SunOf(s, nil))
}

func TestDayNight(t *testing.T) {
	s := scene.NewScene(scene.DefaultBounds(), quadtree.Config{})
	sun := scene.NewEntity("sun")
	sun.SetLight(scene.NewDirectionalLight(math.Vec3Down, core.ColorWhite, 1))

	dn := NewDayNight()
	dn.Apply(s, sun)
	require.Equal(t, palettes[0].sky, s.SkyColor)
	require.Equal(t, palettes[0].ambient, s.Ambient)
	require.Equal(t, palettes[0].sunIntensity, sun.Light.Intensity)
	require.Less(t, sun.Light.Direction.Y, float32(0))
	require.Equal(t, "12:00 PM", dn.TimeOfDayStr())

	dn.Time = 0.5
	dn.Apply(s, sun)
	require.Greater(t, sun.Light.Direction.Y, float32(0))
	require.Equal(t, "12:00 AM", dn.TimeOfDayStr())

	dn.Time = 0.25
	require.Equal(t, "06:00 PM", dn.TimeOfDayStr())

	dn.Time = 0.9
	dn.Update(dn.Speed * 0.2)
	require.InDelta(t, 0.1, dn.Time, 1e-4)

	dn.Active = false
	dn.Update(10)
	require.InDelta(t, 0.1, dn.Time, 1e-4)

	dn.Apply(s, nil)
}

func TestSamplePaletteWraps(t *testing.T) {
	late := samplePalette(0.9999)
	require.InDelta(t, palettes[0].sky.R, late.sky.R, 1e-3)
	require.InDelta(t, palettes[0].sunIntensity, late.sunIntensity, 1e-3)

	mid := samplePalette(0.11)
	require.InDelta(t, (palettes[0].sunIntensity+palettes[1].sunIntensity)/2, mid.sunIntensity, 1e-4)
}

func TestDebugOverlay(t *testing.T) {
	var hud DebugOverlay
	hud.Log("empty overlay is not logged")

	hud.Set("a", 1)
	hud.Set("b", "two")
	hud.Set("a", 3)
	require.Equal(t, "Demo | a: 3 | b: two", hud.Title("Demo"))
	hud.Log("overlay")

	hud.Clear()
	require.Equal(t, "Demo", hud.Title("Demo"))
}
