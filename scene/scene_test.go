package scene

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
)

const tolerance = 1e-4

func requireVec3(t *testing.T, expected, actual math.Vec3) {
	t.Helper()
	require.InDelta(t, expected.X, actual.X, tolerance, "x")
	require.InDelta(t, expected.Y, actual.Y, tolerance, "y")
	require.InDelta(t, expected.Z, actual.Z, tolerance, "z")
}

func newTestScene() *Scene {
	return NewScene(DefaultBounds(), quadtree.DefaultConfig())
}

// box returns a static entity with a unit cube mesh at pos.
func box(name string, pos math.Vec3) *Entity {
	e := NewMeshEntity(name, CreateCube(1), core.ColorWhite)
	e.Static = true
	e.SetPosition(pos)
	return e
}

func TestEntityBounds(t *testing.T) {
	e := NewMeshEntity("cube", CreateCube(2), core.ColorWhite)
	e.SetPosition(math.NewVec3(5, 0, 0))

	b := e.Bounds()
	requireVec3(t, math.NewVec3(4, -1, -1), b.Min)
	requireVec3(t, math.NewVec3(6, 1, 1), b.Max)

	e.SetScale(math.NewVec3(2, 1, 1))
	b = e.Bounds()
	requireVec3(t, math.NewVec3(3, -1, -1), b.Min)
	requireVec3(t, math.NewVec3(7, 1, 1), b.Max)
}

func TestEntityLightBounds(t *testing.T) {
	e := NewEntity("lamp")
	e.Light = NewPointLight(core.ColorWhite, 1, 3)
	b := e.Bounds()
	requireVec3(t, math.NewVec3(-3, -3, -3), b.Min)
	requireVec3(t, math.NewVec3(3, 3, 3), b.Max)

	tube := NewEntity("tube")
	tube.Light = &Light{Type: LightAreaTube, Range: 1, Length: 4}
	requireVec3(t, math.NewVec3(3, 3, 3), tube.Bounds().Max)

	empty := NewEntity("empty")
	empty.SetPosition(math.NewVec3(1, 2, 3))
	require.False(t, empty.IsSpatial())
	require.Equal(t, math.AABB{Min: math.NewVec3(1, 2, 3), Max: math.NewVec3(1, 2, 3)}, empty.Bounds())
}

func TestEntityWorldMatrix(t *testing.T) {
	parent := NewEntity("parent")
	parent.SetPosition(math.NewVec3(10, 0, 0))
	child := NewEntity("child")
	child.SetPosition(math.NewVec3(1, 0, 0))
	parent.AddChild(child)

	requireVec3(t, math.NewVec3(11, 0, 0), child.WorldPosition())

	parent.SetScale(math.NewVec3(2, 2, 2))
	requireVec3(t, math.NewVec3(12, 0, 0), child.WorldPosition())
}

func TestActiveInHierarchy(t *testing.T) {
	parent := NewEntity("parent")
	child := NewEntity("child")
	parent.AddChild(child)

	require.True(t, child.IsVisible())
	parent.SetActive(false)
	require.False(t, child.ActiveInHierarchy())
	require.False(t, child.IsVisible())

	parent.SetActive(true)
	child.Enabled = false
	require.True(t, child.ActiveInHierarchy())
	require.False(t, child.IsVisible())
}

func TestEntityClone(t *testing.T) {
	parent := box("parent", math.NewVec3(1, 0, 0))
	parent.Tag = "Crate"
	parent.AddChild(box("child", math.Vec3Zero))

	c := parent.Clone()
	require.NotEqual(t, parent.ID, c.ID)
	require.NotEqual(t, parent.UID, c.UID)
	require.Equal(t, "Crate", c.Tag)
	require.Same(t, parent.Mesh, c.Mesh)
	require.NotSame(t, parent.Renderer, c.Renderer)
	require.Len(t, c.Children, 1)
	require.Same(t, c, c.Children[0].Parent)
	require.True(t, c.Children[0].IsDescendantOf(c))
	require.False(t, c.Children[0].IsDescendantOf(parent))
}

func TestMeshTriangles(t *testing.T) {
	cube := CreateCube(1)
	require.Equal(t, 12, cube.TriangleCount())

	verts := []core.Vertex{
		{Position: math.NewVec3(0, 0, 0)},
		{Position: math.NewVec3(1, 0, 0)},
		{Position: math.NewVec3(0, 1, 0)},
	}
	soup := CreateMeshFromData("soup", verts, nil)
	require.Equal(t, 1, soup.TriangleCount())
	a, b, c := soup.Triangle(0)
	require.Equal(t, verts[0].Position, a)
	require.Equal(t, verts[1].Position, b)
	require.Equal(t, verts[2].Position, c)

	grid := CreateGrid(10, 4)
	require.Equal(t, DrawLines, grid.DrawMode)
	require.Zero(t, grid.TriangleCount())
}

func TestPrimitivesHaveBounds(t *testing.T) {
	for _, m := range []*Mesh{
		CreateSphere(1, 8, 6),
		CreateCylinder(1, 2, 8),
		CreateCone(1, 2, 8),
		CreatePlane(2, 2, 2),
	} {
		require.True(t, m.HasLocalAABB, m.Name)
		require.Positive(t, m.TriangleCount(), m.Name)
		require.InDelta(t, 1, m.LocalAABB.Max.X, tolerance, m.Name)
	}
}

func TestSceneAddEntityPlacement(t *testing.T) {
	s := newTestScene()

	static := box("static", math.NewVec3(3, 0, 3))
	dynamic := box("dynamic", math.NewVec3(-3, 0, -3))
	dynamic.Static = false
	sun := NewEntity("sun")
	sun.Light = NewDirectionalLight(math.Vec3Down, core.ColorWhite, 1)

	s.AddEntity(static, nil)
	s.AddEntity(dynamic, nil)
	s.AddEntity(sun, nil)

	require.Equal(t, 3, s.EntityCount())
	require.True(t, s.Tree().Contains(static))
	require.False(t, s.InDynamicList(static))
	require.True(t, s.InDynamicList(dynamic))
	require.False(t, s.Tree().Contains(sun))
	require.False(t, s.InDynamicList(sun))
	require.Equal(t, []*Entity{sun}, s.DirectionalLights())
	require.Zero(t, s.PendingUpdates())
}

func TestSceneUpdateMigratesMovedEntities(t *testing.T) {
	s := newTestScene()
	e := box("crate", math.Vec3Zero)
	s.AddEntity(e, nil)

	e.SetPosition(math.NewVec3(30, 0, 30))
	require.Equal(t, 1, s.PendingUpdates())

	s.Update(0.016)
	require.Zero(t, s.PendingUpdates())

	n, ok := s.Tree().NodeOf(e)
	require.True(t, ok)
	require.True(t, n.Box().Contains(e.Bounds()))
}

func TestSceneUpdateExpandsTree(t *testing.T) {
	s := newTestScene()
	e := box("far", math.Vec3Zero)
	s.AddEntity(e, nil)

	e.SetPosition(math.NewVec3(500, 0, 0))
	s.Update(0)

	require.True(t, s.Tree().Contains(e))
	require.True(t, s.Tree().Root().Box().Contains(e.Bounds()))
}

func TestSceneFrozenOverflow(t *testing.T) {
	s := newTestScene()
	inside := box("inside", math.Vec3Zero)
	s.AddEntity(inside, nil)

	s.SetFrozen(true)
	require.True(t, s.Frozen())
	nodes := s.Tree().NodeCount()

	outside := box("outside", math.NewVec3(200, 0, 0))
	s.AddEntity(outside, nil)
	require.False(t, s.Tree().Contains(outside))
	require.True(t, s.InDynamicList(outside))
	require.Equal(t, nodes, s.Tree().NodeCount())

	inside.SetPosition(math.NewVec3(0, 0, 300))
	s.Update(0)
	require.False(t, s.Tree().Contains(inside))
	require.True(t, s.InDynamicList(inside))

	s.SetFrozen(false)
	require.True(t, s.Tree().Contains(outside))
	require.True(t, s.Tree().Contains(inside))
	require.Empty(t, s.Dynamic())
}

func TestSceneSetStaticMovesEntity(t *testing.T) {
	s := newTestScene()
	e := box("crate", math.Vec3Zero)
	s.AddEntity(e, nil)

	e.SetStatic(false)
	s.Update(0)
	require.False(t, s.Tree().Contains(e))
	require.True(t, s.InDynamicList(e))

	e.SetStatic(true)
	s.Update(0)
	require.True(t, s.Tree().Contains(e))
	require.False(t, s.InDynamicList(e))
}

func TestSceneDestroy(t *testing.T) {
	s := newTestScene()
	parent := box("parent", math.Vec3Zero)
	child := box("child", math.NewVec3(2, 0, 0))
	mover := box("mover", math.NewVec3(4, 0, 0))
	mover.Static = false
	parent.AddChild(child)
	child.AddChild(mover)
	s.AddEntity(parent, nil)
	other := box("other", math.NewVec3(-5, 0, 0))
	s.AddEntity(other, nil)

	child.Translate(math.NewVec3(0, 0, 1))
	require.Equal(t, 2, s.PendingUpdates())

	s.Destroy(parent)
	require.Equal(t, 1, s.EntityCount())
	require.Equal(t, 1, s.Tree().Len())
	require.Empty(t, s.Dynamic())
	require.Zero(t, s.PendingUpdates())
	require.Nil(t, parent.Scene())
	require.Nil(t, mover.Scene())
	require.Nil(t, s.Find("parent"))
	require.Same(t, other, s.Find("other"))

	s.Destroy(s.Root)
	require.NotNil(t, s.Root.Scene())
}

func TestSceneReparentKeepsIndex(t *testing.T) {
	s := newTestScene()
	a := box("a", math.NewVec3(10, 0, 0))
	b := box("b", math.NewVec3(1, 0, 0))
	s.AddEntity(a, nil)
	s.AddEntity(b, nil)

	a.AddChild(b)
	s.Update(0)
	requireVec3(t, math.NewVec3(11, 0, 0), b.WorldPosition())
	n, ok := s.Tree().NodeOf(b)
	require.True(t, ok)
	require.True(t, n.Box().Contains(b.Bounds()))

	a.RemoveChild(b)
	require.Same(t, s.Root, b.Parent)
	require.Same(t, s, b.Scene())
}

func TestSceneRebuild(t *testing.T) {
	s := newTestScene()
	for i := 0; i < 40; i++ {
		s.AddEntity(box("crate", math.NewVec3(float32(i%8)*6-24, 0, float32(i/8)*6-12)), nil)
	}
	require.Equal(t, 40, s.Tree().Len())

	cfg := quadtree.DefaultConfig()
	cfg.QuadrantCapacity = 2
	cfg.MinQuadrantSideSize = 1
	s.Rebuild(cfg)

	require.Equal(t, 40, s.Tree().Len())
	require.Equal(t, 2, s.Tree().Config().QuadrantCapacity)
	require.Greater(t, s.Tree().Depth(), 2)
}

func TestFrustum(t *testing.T) {
	cam := NewCamera(1.0472, 1, 0.1, 100)
	f := cam.Frustum()

	require.True(t, f.ContainsPoint(math.NewVec3(0, 0, -10)))
	require.False(t, f.ContainsPoint(math.NewVec3(0, 0, 10)))
	require.False(t, f.ContainsPoint(math.NewVec3(0, 0, -200)))
	require.False(t, f.ContainsPoint(math.NewVec3(0, 0, -0.01)))
	require.False(t, f.ContainsPoint(math.NewVec3(50, 0, -10)))

	tests := []struct {
		name    string
		box     math.AABB
		visible bool
	}{
		{name: "ahead", box: math.AABBFromCenter(math.NewVec3(0, 0, -10), math.Vec3One), visible: true},
		{name: "behind", box: math.AABBFromCenter(math.NewVec3(0, 0, 10), math.Vec3One)},
		{name: "beyond far plane", box: math.AABBFromCenter(math.NewVec3(0, 0, -150), math.Vec3One)},
		{name: "far left", box: math.AABBFromCenter(math.NewVec3(-40, 0, -10), math.Vec3One)},
		{name: "straddling left plane", box: math.AABBFromCenter(math.NewVec3(-6, 0, -10), math.Vec3One), visible: true},
		{name: "enclosing camera", box: math.AABBFromCenter(math.Vec3Zero, math.NewVec3(5, 5, 5)), visible: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.visible, f.IntersectsAABB(test.box))
		})
	}
}

func TestFrustumFollowsCamera(t *testing.T) {
	cam := NewCamera(1.0472, 16.0/9.0, 0.1, 100)
	cam.SetPosition(math.NewVec3(20, 5, 20))
	cam.LookAt(math.NewVec3(20, 5, 40), math.Vec3Up)

	v := cam.View()
	require.Equal(t, cam.Position, v.Eye)
	requireVec3(t, math.Vec3Front, v.Forward)
	require.True(t, v.Frustum.ContainsPoint(math.NewVec3(20, 5, 30)))
	require.False(t, v.Frustum.ContainsPoint(math.NewVec3(20, 5, 10)))
}

func TestScreenToRay(t *testing.T) {
	cam := NewCamera(1.0472, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 5))

	ray := cam.ScreenToRay(400, 300, 800, 600)
	requireVec3(t, math.Vec3Back, ray.Direction)
	require.InDelta(t, 4.9, ray.Origin.Z, 1e-2)

	left := cam.ScreenToRay(0, 300, 800, 600)
	require.Less(t, left.Direction.X, float32(0))
}

func TestOrbitCamera(t *testing.T) {
	cam := NewOrbitCamera(math.Vec3Zero, 10, 1.0472, 1)
	require.InDelta(t, 10, cam.Position.Length(), tolerance)
	requireVec3(t, cam.Position.Negate().Normalize(), cam.GetForward())

	cam.Orbit(0, 10)
	require.InDelta(t, 1.5, cam.Pitch, tolerance)

	cam.Zoom(-100)
	require.InDelta(t, 0.1, cam.Distance, tolerance)
}

func TestSceneSerializationRoundTrip(t *testing.T) {
	s := newTestScene()
	s.Name = "city"
	s.SetCamera(NewCamera(1, 1.5, 0.1, 500))
	s.Camera.SetPosition(math.NewVec3(1, 2, 3))

	wall := box("wall", math.NewVec3(5, 0, 5))
	wall.Tag = "Wall"
	lamp := NewEntity("lamp")
	lamp.Light = &Light{Type: LightAreaSphere, Color: core.ColorYellow, Intensity: 2, Range: 4}
	lamp.SetPosition(math.NewVec3(0, 2, 0))
	wall.AddChild(lamp)
	s.AddEntity(wall, nil)
	s.SetFrozen(true)

	data, err := MarshalScene(s)
	require.NoError(t, err)

	loaded, err := UnmarshalScene(data)
	require.NoError(t, err)
	require.Equal(t, "city", loaded.Name)
	require.True(t, loaded.Frozen())
	require.Equal(t, 2, loaded.EntityCount())
	requireVec3(t, math.NewVec3(1, 2, 3), loaded.Camera.Position)

	w := loaded.FindByUID(wall.UID)
	require.NotNil(t, w)
	require.Equal(t, "Wall", w.Tag)
	require.True(t, w.Static)
	require.Equal(t, 12, w.Mesh.TriangleCount())
	require.True(t, loaded.Tree().Contains(w))
	requireVec3(t, wall.Bounds().Min, w.Bounds().Min)

	l := loaded.FindByUID(lamp.UID)
	require.NotNil(t, l)
	require.Same(t, w, l.Parent)
	require.Equal(t, LightAreaSphere, l.Light.Type)
	require.Equal(t, float32(4), l.Light.Range)
}

func TestUnmarshalSceneErrors(t *testing.T) {
	_, err := UnmarshalScene([]byte("{"))
	require.Error(t, err)

	_, err = UnmarshalScene([]byte(`{"version": 1}`))
	require.Error(t, err)

	_, err = UnmarshalScene([]byte(`{"version": 2, "entities": [{"name": "x", "mesh": 3}]}`))
	require.Error(t, err)
}
