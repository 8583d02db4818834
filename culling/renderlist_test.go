package culling

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
	"spatial-engine/scene"
)

func newScene() *scene.Scene {
	cfg := quadtree.DefaultConfig()
	cfg.QuadrantCapacity = 2
	cfg.MinQuadrantSideSize = 2
	return scene.NewScene(scene.DefaultBounds(), cfg)
}

func cube(s *scene.Scene, name string, pos math.Vec3) *scene.Entity {
	e := scene.NewMeshEntity(name, scene.CreateCube(1), core.ColorWhite)
	e.Static = true
	e.SetPosition(pos)
	s.AddEntity(e, nil)
	return e
}

func light(s *scene.Scene, t scene.LightType, pos math.Vec3) *scene.Entity {
	e := scene.NewEntity(t.String())
	e.Light = &scene.Light{Type: t, Color: core.ColorWhite, Intensity: 1, Range: 2, Length: 1}
	e.Static = true
	e.SetPosition(pos)
	s.AddEntity(e, nil)
	return e
}

// viewFrom returns the view of a camera at eye looking at target.
func viewFrom(eye, target math.Vec3) *scene.View {
	cam := scene.NewCamera(1.0472, 1, 0.1, 200)
	cam.SetPosition(eye)
	cam.LookAt(target, math.Vec3Up)
	v := cam.View()
	return &v
}

func TestCullCameraLookingAway(t *testing.T) {
	s := newScene()
	e := cube(s, "crate", math.NewVec3(0, 0, 20))

	r := NewRenderList()
	r.Cull(s, viewFrom(math.Vec3Zero, math.NewVec3(0, 0, -1)))
	require.False(t, r.Contains(e))
	require.Zero(t, r.Len())

	r.Cull(s, viewFrom(math.Vec3Zero, math.NewVec3(0, 0, 1)))
	require.True(t, r.Contains(e))
	d, ok := r.Distance(e)
	require.True(t, ok)
	require.InDelta(t, 20, d, 1e-4)
}

func TestCullMatchesBruteForce(t *testing.T) {
	s := newScene()
	rng := rand.New(rand.NewSource(3))
	var all []*scene.Entity
	for i := 0; i < 300; i++ {
		pos := math.NewVec3(rng.Float32()*120-60, rng.Float32()*6-3, rng.Float32()*120-60)
		all = append(all, cube(s, "crate", pos))
	}
	for i := 0; i < 20; i++ {
		mover := scene.NewMeshEntity("mover", scene.CreateCube(1), core.ColorWhite)
		mover.SetPosition(math.NewVec3(rng.Float32()*120-60, 0, rng.Float32()*120-60))
		s.AddEntity(mover, nil)
		all = append(all, mover)
	}
	require.Greater(t, s.Tree().Depth(), 2)

	r := NewRenderList()
	for i := 0; i < 20; i++ {
		eye := math.NewVec3(rng.Float32()*100-50, 5, rng.Float32()*100-50)
		angle := rng.Float32() * 6.28
		target := eye.Add(math.NewVec3(math32.Cos(angle)*10, -2, math32.Sin(angle)*10))
		view := viewFrom(eye, target)
		r.Cull(s, view)

		for _, e := range all {
			expected := view.Frustum.IntersectsAABB(e.Bounds())
			require.Equal(t, expected, r.Contains(e), "view %d entity %d", i, e.ID)
		}
	}
}

func TestCullSkipsSubtrees(t *testing.T) {
	s := newScene()
	for x := -60; x <= 60; x += 8 {
		for z := -60; z <= 60; z += 8 {
			cube(s, "crate", math.NewVec3(float32(x), 0, float32(z)))
		}
	}

	r := NewRenderList()
	r.Cull(s, viewFrom(math.NewVec3(60, 2, 60), math.NewVec3(70, 2, 70)))
	stats := r.Stats()
	require.Positive(t, stats.NodesSkipped)
	require.Equal(t, r.Len(), stats.Visible)
}

func TestCullIsIdempotent(t *testing.T) {
	s := newScene()
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		cube(s, "crate", math.NewVec3(rng.Float32()*100-50, 0, rng.Float32()*100-50))
	}
	view := viewFrom(math.NewVec3(0, 10, 40), math.Vec3Zero)

	r := NewRenderList()
	r.Cull(s, view)
	first := append([]*scene.Entity(nil), r.Visible()...)
	require.NotEmpty(t, first)

	r.Cull(s, view)
	require.Equal(t, first, r.Visible())
}

func TestCullLightLists(t *testing.T) {
	s := newScene()
	point := light(s, scene.LightPoint, math.NewVec3(0, 0, -10))
	spot := light(s, scene.LightSpot, math.NewVec3(2, 0, -10))
	sphere := light(s, scene.LightAreaSphere, math.NewVec3(-2, 0, -10))
	tube := light(s, scene.LightAreaTube, math.NewVec3(0, 2, -10))
	light(s, scene.LightPoint, math.NewVec3(0, 0, 30))

	sun := scene.NewEntity("sun")
	sun.Light = scene.NewDirectionalLight(math.Vec3Down, core.ColorWhite, 1)
	s.AddEntity(sun, nil)

	r := NewRenderList()
	r.Cull(s, viewFrom(math.Vec3Zero, math.NewVec3(0, 0, -1)))
	require.Equal(t, []*scene.Entity{point}, r.PointLights())
	require.Equal(t, []*scene.Entity{spot}, r.SpotLights())
	require.Equal(t, []*scene.Entity{sphere}, r.AreaSphereLights())
	require.Equal(t, []*scene.Entity{tube}, r.AreaTubeLights())
	require.Equal(t, []*scene.Entity{sun}, r.DirectionalLights())
	require.Equal(t, 5, r.Stats().Lights)
	require.Empty(t, r.Opaque())
}

func TestCullForcedEntities(t *testing.T) {
	s := newScene()
	selected := cube(s, "selected", math.NewVec3(0, 0, -10))
	child := scene.NewMeshEntity("child", scene.CreateCube(1), core.ColorWhite)
	child.SetPosition(math.NewVec3(1, 0, 0))
	s.AddEntity(child, selected)
	hidden := scene.NewMeshEntity("hidden", scene.CreateCube(1), core.ColorWhite)
	hidden.SetPosition(math.NewVec3(0, 0, 30))
	s.AddEntity(hidden, selected)

	r := NewRenderList()
	view := viewFrom(math.Vec3Zero, math.NewVec3(0, 0, -1))
	r.Cull(s, view, selected, nil)

	require.True(t, r.Contains(selected))
	require.True(t, r.Contains(child))
	require.False(t, r.Contains(hidden))

	count := 0
	for _, e := range r.Visible() {
		if e == selected {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestCullSkipsInactive(t *testing.T) {
	s := newScene()
	parent := cube(s, "parent", math.NewVec3(0, 0, -10))
	child := scene.NewMeshEntity("child", scene.CreateCube(1), core.ColorWhite)
	child.Static = true
	s.AddEntity(child, parent)
	disabled := cube(s, "disabled", math.NewVec3(2, 0, -10))
	disabled.Enabled = false

	parent.SetActive(false)
	r := NewRenderList()
	view := viewFrom(math.Vec3Zero, math.NewVec3(0, 0, -1))
	r.Cull(s, view, parent)
	require.Zero(t, r.Len())

	parent.SetActive(true)
	r.Cull(s, view)
	require.True(t, r.Contains(parent))
	require.True(t, r.Contains(child))
	require.False(t, r.Contains(disabled))
}

func TestCullFrozenOverflow(t *testing.T) {
	s := newScene()
	s.SetFrozen(true)
	outside := cube(s, "outside", math.NewVec3(0, 0, -100))
	require.True(t, s.InDynamicList(outside))

	r := NewRenderList()
	r.Cull(s, viewFrom(math.Vec3Zero, math.NewVec3(0, 0, -1)))
	require.True(t, r.Contains(outside))
}

func TestOpaqueAndTransparentOrder(t *testing.T) {
	s := newScene()
	near := cube(s, "near", math.NewVec3(0, 0, -5))
	far := cube(s, "far", math.NewVec3(0, 0, -20))
	mid := cube(s, "mid", math.NewVec3(0, 0, -10))
	glassNear := cube(s, "glass near", math.NewVec3(1, 0, -6))
	glassFar := cube(s, "glass far", math.NewVec3(1, 0, -15))
	glassNear.Renderer.Transparent = true
	glassFar.Renderer.Transparent = true

	r := NewRenderList()
	r.Cull(s, viewFrom(math.Vec3Zero, math.NewVec3(0, 0, -1)))
	require.Equal(t, []*scene.Entity{near, mid, far}, r.Opaque())
	require.Equal(t, []*scene.Entity{glassFar, glassNear}, r.Transparent())
}

func BenchmarkCull(b *testing.B) {
	s := newScene()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		cube(s, "crate", math.NewVec3(rng.Float32()*120-60, 0, rng.Float32()*120-60))
	}
	view := viewFrom(math.NewVec3(0, 10, 60), math.Vec3Zero)
	r := NewRenderList()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Cull(s, view)
	}
}
