package physics

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

const tolerance = 1e-4

func newScene() *scene.Scene {
	return scene.NewScene(scene.DefaultBounds(), quadtree.DefaultConfig())
}

func cube(s *scene.Scene, name string, pos math.Vec3) *scene.Entity {
	e := scene.NewMeshEntity(name, scene.CreateCube(1), core.ColorWhite)
	e.Static = true
	e.SetPosition(pos)
	s.AddEntity(e, nil)
	return e
}

// alongX is a 100 unit segment toward +X, offset from the cube face
// diagonals so hits never land on a shared triangle edge.
func alongX() math.LineSegment {
	return math.LineSegment{A: math.NewVec3(0, 0.1, -0.2), B: math.NewVec3(100, 0.1, -0.2)}
}

func TestRaycastSingleTriangle(t *testing.T) {
	s := newScene()
	verts := []core.Vertex{
		{Position: math.NewVec3(0, -1, -1)},
		{Position: math.NewVec3(0, 1, -1)},
		{Position: math.NewVec3(0, 0, 1)},
	}
	tri := scene.NewMeshEntity("triangle", scene.CreateMeshFromData("tri", verts, []uint32{0, 1, 2}), core.ColorWhite)
	tri.Static = true
	tri.SetPosition(math.NewVec3(10, 0, 0))
	s.AddEntity(tri, nil)

	w := NewWorld(s)
	hit := w.Raycast(alongX())
	require.Same(t, tri, hit.Entity)
	require.InDelta(t, 10, hit.Distance, tolerance)
	require.InDelta(t, 10, hit.Point.X, tolerance)
	require.Equal(t, 0, hit.Triangle)

	miss := w.RaycastExcept(alongX(), tri)
	require.False(t, miss.Hit())
	require.Nil(t, miss.Entity)
	require.True(t, math32.IsInf(miss.Distance, 1))
}

func TestRaycastNearest(t *testing.T) {
	s := newScene()
	far := cube(s, "far", math.NewVec3(10, 0, 0))
	near := cube(s, "near", math.NewVec3(5, 0, 0))
	cube(s, "aside", math.NewVec3(5, 0, 5))

	w := NewWorld(s)
	hit := w.Raycast(alongX())
	require.Same(t, near, hit.Entity)
	require.InDelta(t, 4.5, hit.Distance, tolerance)
	require.InDelta(t, -1, hit.Normal.X, tolerance)

	short := math.LineSegment{A: math.NewVec3(0, 0.1, -0.2), B: math.NewVec3(4, 0.1, -0.2)}
	require.False(t, w.Raycast(short).Hit())

	near.SetActive(false)
	require.Same(t, far, w.Raycast(alongX()).Entity)

	near.SetActive(true)
	near.Renderer.Enabled = false
	require.Same(t, far, w.Raycast(alongX()).Entity)
}

func TestRaycastExceptSkipsDescendants(t *testing.T) {
	s := newScene()
	player := cube(s, "player", math.NewVec3(5, 0, 0))
	hitbox := scene.NewMeshEntity("hitbox", scene.CreateCube(1), core.ColorWhite)
	hitbox.SetPosition(math.NewVec3(2, 0, 0))
	s.AddEntity(hitbox, player)
	wall := cube(s, "wall", math.NewVec3(10, 0, 0))

	w := NewWorld(s)
	require.Same(t, player, w.Raycast(alongX()).Entity)

	hit := w.RaycastExcept(alongX(), player)
	require.Same(t, wall, hit.Entity)
	require.InDelta(t, 9.5, hit.Distance, tolerance)

	require.Same(t, player, w.RaycastExcept(alongX(), nil).Entity)
}

func TestRaycastToTag(t *testing.T) {
	s := newScene()
	wall := cube(s, "wall", math.NewVec3(5, 0, 0))
	wall.Tag = "Wall"
	door := cube(s, "door", math.NewVec3(10, 0, 0))
	door.Tag = "Door"

	w := NewWorld(s)
	require.Same(t, door, w.RaycastToTag(alongX(), nil, "Door").Entity)
	require.Same(t, wall, w.RaycastToTag(alongX(), nil, "Wall").Entity)
	require.False(t, w.RaycastToTag(alongX(), door, "Door").Hit())
	require.False(t, w.RaycastToTag(alongX(), nil, "Window").Hit())
}

func TestRaycastTieGoesToLowerID(t *testing.T) {
	s := newScene()
	a := cube(s, "a", math.NewVec3(5, 0, 0))
	b := cube(s, "b", math.NewVec3(5, 0, 0))
	require.Less(t, a.ID, b.ID)

	w := NewWorld(s)
	for i := 0; i < 5; i++ {
		require.Same(t, a, w.Raycast(alongX()).Entity)
	}
}

func TestRaycastDynamicEntities(t *testing.T) {
	s := newScene()
	cube(s, "static", math.NewVec3(10, 0, 0))
	mover := scene.NewMeshEntity("mover", scene.CreateCube(1), core.ColorWhite)
	mover.SetPosition(math.NewVec3(3, 0, 0))
	s.AddEntity(mover, nil)
	require.True(t, s.InDynamicList(mover))

	w := NewWorld(s)
	require.Same(t, mover, w.Raycast(alongX()).Entity)
}

func TestRaycastFiltered(t *testing.T) {
	s := newScene()
	cube(s, "a", math.NewVec3(5, 0, 0))
	b := cube(s, "b", math.NewVec3(10, 0, 0))

	w := NewWorld(s)
	hit := w.RaycastFiltered(alongX(), func(e *scene.Entity) bool {
		return e.Name == "b"
	})
	require.Same(t, b, hit.Entity)
}

func TestRaycastFirst(t *testing.T) {
	s := newScene()
	front := cube(s, "front", math.NewVec3(5, 0, 0))
	cube(s, "back", math.NewVec3(7, 0, 0))

	w := NewWorld(s)
	require.True(t, w.RaycastFirst(alongX()))
	require.True(t, w.RaycastFirstExcept(alongX(), front))

	up := math.LineSegment{A: math.Vec3Zero, B: math.NewVec3(0, 100, 0)}
	require.False(t, w.RaycastFirst(up))
}

func TestRaycastFirstBlockedByMeshlessEntity(t *testing.T) {
	s := newScene()
	lamp := scene.NewEntity("lamp")
	lamp.Light = scene.NewPointLight(core.ColorWhite, 1, 1)
	lamp.Static = true
	lamp.SetPosition(math.NewVec3(5, 0, 0))
	s.AddEntity(lamp, nil)

	w := NewWorld(s)
	require.True(t, w.RaycastFirst(alongX()))
	require.False(t, w.RaycastFirstExcept(alongX(), lamp))
	require.False(t, w.Raycast(alongX()).Hit())
}

func TestRaycastMatchesBruteForce(t *testing.T) {
	cfg := quadtree.DefaultConfig()
	cfg.QuadrantCapacity = 2
	cfg.MinQuadrantSideSize = 1
	s := scene.NewScene(scene.DefaultBounds(), cfg)

	rng := rand.New(rand.NewSource(7))
	var all []*scene.Entity
	for i := 0; i < 150; i++ {
		pos := math.NewVec3(rng.Float32()*100-50, rng.Float32()*4-2, rng.Float32()*100-50)
		e := cube(s, "crate", pos)
		e.SetScale(math.NewVec3(1+rng.Float32()*3, 1, 1+rng.Float32()*3))
		all = append(all, e)
	}
	s.Update(0)
	require.Greater(t, s.Tree().Depth(), 2)

	w := NewWorld(s)
	for i := 0; i < 100; i++ {
		a := math.NewVec3(rng.Float32()*120-60, rng.Float32()*2-1, rng.Float32()*120-60)
		b := math.NewVec3(rng.Float32()*120-60, rng.Float32()*2-1, rng.Float32()*120-60)
		seg := math.LineSegment{A: a, B: b}

		expected := noHit()
		for _, e := range all {
			intersectMesh(seg, seg.Length(), e, &expected)
		}

		hit := w.Raycast(seg)
		require.Equal(t, expected.Entity, hit.Entity, "ray %d", i)
		if expected.Hit() {
			require.InDelta(t, expected.Distance, hit.Distance, tolerance)
		}
	}
}

func BenchmarkRaycast(b *testing.B) {
	s := newScene()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		cube(s, "crate", math.NewVec3(rng.Float32()*120-60, 0, rng.Float32()*120-60))
	}
	w := NewWorld(s)
	seg := math.LineSegment{A: math.NewVec3(-60, 0, -60), B: math.NewVec3(60, 0, 60)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Raycast(seg)
	}
}
