package editor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
	"spatial-engine/scene"
)

type fakeInput struct {
	keys    map[int]bool
	buttons map[int]bool
	x, y    float64
	scroll  core.ScrollCallback
}

func newFakeInput() *fakeInput {
	return &fakeInput{
		keys:    make(map[int]bool),
		buttons: make(map[int]bool),
	}
}

func (f *fakeInput) IsKeyPressed(key int) bool                { return f.keys[key] }
func (f *fakeInput) IsMouseButtonPressed(button int) bool     { return f.buttons[button] }
func (f *fakeInput) GetCursorPos() (float64, float64)         { return f.x, f.y }
func (f *fakeInput) SetScrollCallback(cb core.ScrollCallback) { f.scroll = cb }

// tap presses keys for one frame and releases them on the next.
func tap(ed *Editor, in *fakeInput, keys ...int) {
	for _, k := range keys {
		in.keys[k] = true
	}
	ed.Update(0.016)
	for _, k := range keys {
		in.keys[k] = false
	}
	ed.Update(0.016)
}

func click(ed *Editor, in *fakeInput, x, y float64) {
	in.x, in.y = x, y
	in.buttons[core.MouseButtonLeft] = true
	ed.Update(0.016)
	in.buttons[core.MouseButtonLeft] = false
	ed.Update(0.016)
}

func newTestEditor(t *testing.T) (*Editor, *fakeInput, *scene.Entity) {
	t.Helper()
	s := scene.NewScene(scene.DefaultBounds(), quadtree.DefaultConfig())
	crate := scene.NewMeshEntity("crate", scene.CreateCube(1), core.ColorWhite)
	crate.Static = true
	s.AddEntity(crate, nil)

	in := newFakeInput()
	ed := NewEditor(in, s, 800, 600)
	return ed, in, crate
}

func TestPickSelectsEntity(t *testing.T) {
	ed, in, crate := newTestEditor(t)

	hit := ed.Pick(400, 300)
	require.True(t, hit.Hit())
	require.Equal(t, crate, hit.Entity)

	click(ed, in, 400, 300)
	require.Equal(t, []*scene.Entity{crate}, ed.Selection.Objects)
	require.Equal(t, crate, ed.Selection.ActiveObject)
	require.Equal(t, []*scene.Entity{crate}, ed.ForcedEntities())

	click(ed, in, 5, 5)
	require.False(t, ed.Selection.HasSelection())
}

func TestMoveCommandMigratesEntity(t *testing.T) {
	ed, _, crate := newTestEditor(t)
	s := ed.Scene

	ed.History.Do(NewMoveCommand(crate, math.NewVec3(40, 0, 40)))
	s.Update(0)
	require.True(t, s.Tree().Contains(crate))
	node, ok := s.Tree().NodeOf(crate)
	require.True(t, ok)
	require.True(t, node.Box().Contains(crate.Bounds()))

	seg := math.LineSegment{A: math.NewVec3(40, 10, 40.1), B: math.NewVec3(40, -10, 40.1)}
	require.Equal(t, crate, ed.Physics.Raycast(seg).Entity)

	cmd, ok := ed.History.Undo()
	require.True(t, ok)
	require.Equal(t, "Move crate", cmd.Description())
	s.Update(0)
	require.False(t, ed.Physics.Raycast(seg).Hit())

	_, ok = ed.History.Redo()
	require.True(t, ok)
	s.Update(0)
	require.Equal(t, crate, ed.Physics.Raycast(seg).Entity)
}

func TestPickSeesSelectionMovedInSameFrame(t *testing.T) {
	s := scene.NewScene(scene.DefaultBounds(), quadtree.Config{QuadrantCapacity: 1, MinQuadrantSideSize: 1})
	crate := scene.NewMeshEntity("crate", scene.CreateCube(1), core.ColorWhite)
	crate.Static = true
	crate.SetPosition(math.NewVec3(10, 0, 10))
	s.AddEntity(crate, nil)
	barrel := scene.NewMeshEntity("barrel", scene.CreateCube(1), core.ColorWhite)
	barrel.Static = true
	barrel.SetPosition(math.NewVec3(13, 0, 10))
	s.AddEntity(barrel, nil)

	node, ok := s.Tree().NodeOf(crate)
	require.True(t, ok)
	require.LessOrEqual(t, node.Box().Max.X, float32(12))

	in := newFakeInput()
	ed := NewEditor(in, s, 800, 600)
	ed.MoveStep = 5
	ed.Selection.SelectSingle(crate)

	// Look down on the spot the crate moves to.
	cam := ed.OrbitCamera
	cam.Target = math.NewVec3(15, 0, 10)
	cam.Yaw = 0
	cam.Pitch = 1.5
	cam.UpdatePosition()

	in.x, in.y = 400, 300
	in.keys[core.KeyRight] = true
	in.buttons[core.MouseButtonLeft] = true
	ed.Update(0.016)

	require.Equal(t, float32(15), crate.Transform.Position.X)
	require.Equal(t, []*scene.Entity{crate}, ed.Selection.Objects)
	require.Contains(t, ed.StatusText, "Selected: crate")
	require.Zero(t, s.PendingUpdates())
}

func TestDeleteAndUndoRestoresHierarchy(t *testing.T) {
	ed, in, crate := newTestEditor(t)
	s := ed.Scene
	lid := scene.NewMeshEntity("lid", scene.CreateCube(1), core.ColorWhite)
	lid.Static = true
	lid.SetPosition(math.NewVec3(0, 1, 0))
	s.AddEntity(lid, crate)
	require.Equal(t, 2, s.EntityCount())

	ed.Selection.SelectSingle(crate)
	ed.Selection.ToggleObject(lid)
	tap(ed, in, core.KeyDelete)

	require.Zero(t, s.EntityCount())
	require.False(t, s.Tree().Contains(crate))
	require.False(t, s.Tree().Contains(lid))
	require.False(t, ed.Selection.HasSelection())

	in.keys[core.KeyLeftControl] = true
	tap(ed, in, core.KeyZ)
	in.keys[core.KeyLeftControl] = false

	require.Equal(t, 2, s.EntityCount())
	require.Equal(t, crate, lid.Parent)
	require.Equal(t, s.Root, crate.Parent)
	require.True(t, s.Tree().Contains(crate))
	require.True(t, s.Tree().Contains(lid))
	require.Equal(t, "Undo: Delete crate", ed.StatusText)
}

func TestDuplicateCommand(t *testing.T) {
	ed, in, crate := newTestEditor(t)
	s := ed.Scene

	ed.Selection.SelectSingle(crate)
	in.keys[core.KeyLeftShift] = true
	tap(ed, in, core.KeyD)
	in.keys[core.KeyLeftShift] = false

	require.Equal(t, 2, s.EntityCount())
	dup := ed.Selection.ActiveObject
	require.NotNil(t, dup)
	require.NotEqual(t, crate, dup)
	require.Equal(t, "crate.copy", dup.Name)
	require.NotEqual(t, crate.UID, dup.UID)
	require.Equal(t, crate.Mesh, dup.Mesh)
	require.InDelta(t, 0.5, dup.WorldPosition().X, 1e-5)
	require.True(t, s.Tree().Contains(dup))

	_, ok := ed.History.Undo()
	require.True(t, ok)
	ed.Selection.Prune()
	require.Equal(t, 1, s.EntityCount())
	require.Nil(t, dup.Scene())
	require.False(t, ed.Selection.HasSelection())
}

func TestArrowKeysApplyActiveTool(t *testing.T) {
	ed, in, crate := newTestEditor(t)
	ed.Selection.SelectSingle(crate)

	tap(ed, in, core.KeyRight)
	require.InDelta(t, ed.MoveStep, crate.Transform.Position.X, 1e-6)

	tap(ed, in, core.KeyS)
	require.Equal(t, ToolScale, ed.ActiveTool)
	tap(ed, in, core.KeyUp)
	require.InDelta(t, 1+ed.ScaleStep, crate.Transform.Scale.X, 1e-6)

	tap(ed, in, core.KeyR)
	require.Equal(t, ToolRotate, ed.ActiveTool)
	tap(ed, in, core.KeyLeft)
	require.NotEqual(t, math.QuaternionIdentity(), crate.Transform.Rotation)

	for ed.History.CanUndo() {
		ed.History.Undo()
	}
	require.Equal(t, float32(0), crate.Transform.Position.X)
	require.Equal(t, float32(1), crate.Transform.Scale.X)
}

func TestToggleFreezeAndRebuild(t *testing.T) {
	ed, in, _ := newTestEditor(t)

	tap(ed, in, core.KeyF)
	require.True(t, ed.Scene.Frozen())
	tap(ed, in, core.KeyF)
	require.False(t, ed.Scene.Frozen())

	tap(ed, in, core.KeyQ)
	require.True(t, ed.ShowQuadtree)

	in.keys[core.KeyLeftControl] = true
	tap(ed, in, core.KeyB)
	in.keys[core.KeyLeftControl] = false
	require.False(t, ed.ShowBounds)
	require.Contains(t, ed.StatusText, "Quadtree rebuilt")
}

func TestSelectionRoots(t *testing.T) {
	parent := scene.NewEntity("parent")
	child := scene.NewEntity("child")
	other := scene.NewEntity("other")
	parent.AddChild(child)

	sel := NewSelection()
	sel.SelectSingle(child)
	sel.ToggleObject(parent)
	sel.ToggleObject(other)
	require.Equal(t, []*scene.Entity{parent, other}, sel.Roots())

	sel.ToggleObject(other)
	require.Equal(t, parent, sel.ActiveObject)
	require.True(t, sel.IsSelected(child))
	require.False(t, sel.IsSelected(other))
}

func TestHistoryDepth(t *testing.T) {
	e := scene.NewEntity("e")
	h := NewHistory(2)
	for i := 1; i <= 3; i++ {
		h.Do(NewMoveCommand(e, math.NewVec3(float32(i), 0, 0)))
	}

	require.True(t, h.CanUndo())
	h.Undo()
	h.Undo()
	_, ok := h.Undo()
	require.False(t, ok)
	require.Equal(t, float32(1), e.Transform.Position.X)
	require.True(t, h.CanRedo())
}

func TestScrollZooms(t *testing.T) {
	ed, in, _ := newTestEditor(t)
	before := ed.OrbitCamera.Distance
	in.scroll(0, 2)
	ed.Update(0.016)
	require.Less(t, ed.OrbitCamera.Distance, before)
	require.Zero(t, ed.Input.ScrollDelta)
}
