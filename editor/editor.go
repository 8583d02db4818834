package editor

import (
	"fmt"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chewxy/math32"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/physics"
	"spatial-engine/scene"
)

// Editor is the top-level editor state machine
type Editor struct {
	ActiveTool TransformTool
	Selection  *Selection
	History    *History
	Input      *InputManager
	Scene      *scene.Scene
	Physics    *physics.World

	OrbitCamera   *scene.OrbitCamera
	Width, Height int

	// Debug overlays drawn by the renderer
	ShowQuadtree bool
	ShowBounds   bool

	// Arrow-key step of each transform tool
	MoveStep   float32
	RotateStep float32
	ScaleStep  float32

	StatusText string
}

// NewEditor initializes a new editor over s, polling input from source.
func NewEditor(source core.Input, s *scene.Scene, width, height int) *Editor {
	camera := scene.NewOrbitCamera(math.Vec3Zero, 20.0, 1.0472, float32(width)/float32(height))
	s.SetCamera(&camera.Camera)

	return &Editor{
		ActiveTool:  ToolTranslate,
		Selection:   NewSelection(),
		History:     NewHistory(100),
		Input:       NewInputManager(source),
		Scene:       s,
		Physics:     physics.NewWorld(s),
		OrbitCamera: camera,
		Width:       width,
		Height:      height,
		MoveStep:    0.5,
		RotateStep:  math32.Pi / 12,
		ScaleStep:   0.1,
		StatusText:  "Ready",
	}
}

// SetViewport records the framebuffer size used for picking.
func (e *Editor) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.Width = width
	e.Height = height
	e.OrbitCamera.UpdateAspectRatio(float32(width), float32(height))
}

// Update processes one frame of editor logic. Entities moved by shortcuts
// or tool keys are re-indexed before picking.
func (e *Editor) Update(deltaTime float32) {
	e.Input.Update()

	e.handleShortcuts()
	e.handleToolKeys()
	e.handleCameraControls()

	e.Scene.Update(deltaTime)
	e.handleMouseSelection()

	e.Input.EndFrame()
}

// ForcedEntities returns the entities the render list must consider even
// when they are outside the quadtree: the selection and its descendants.
func (e *Editor) ForcedEntities() []*scene.Entity {
	return e.Selection.Objects
}

// Pick casts a ray from the cursor position through the scene.
func (e *Editor) Pick(x, y float64) physics.RaycastHit {
	cam := &e.OrbitCamera.Camera
	ray := cam.ScreenToRay(float32(x), float32(y), float32(e.Width), float32(e.Height))
	return e.Physics.Raycast(ray.Segment(cam.FarPlane))
}

func (e *Editor) handleShortcuts() {
	in := e.Input

	// The right mouse button hands the keyboard to camera navigation.
	if in.IsMouseDown(core.MouseButtonRight) {
		return
	}

	// Undo: Ctrl+Z, Redo: Ctrl+Shift+Z
	if in.IsShortcut(core.KeyZ) && !in.ShiftDown {
		if cmd, ok := e.History.Undo(); ok {
			e.Selection.Prune()
			e.StatusText = "Undo: " + cmd.Description()
		}
	}
	if in.IsShiftShortcut(core.KeyZ) {
		if cmd, ok := e.History.Redo(); ok {
			e.Selection.Prune()
			e.StatusText = "Redo: " + cmd.Description()
		}
	}

	if (in.IsKeyPressed(core.KeyX) || in.IsKeyPressed(core.KeyDelete)) && !in.CtrlDown {
		e.deleteSelected()
	}
	if in.ShiftDown && in.IsKeyPressed(core.KeyD) {
		e.duplicateSelected()
	}
	if in.IsKeyPressed(core.KeyEscape) {
		e.Selection.Clear()
		e.StatusText = "Selection cleared"
	}

	if in.IsKeyPressed(core.KeyG) {
		e.setTool(ToolTranslate)
	}
	if in.IsKeyPressed(core.KeyR) && !in.CtrlDown {
		e.setTool(ToolRotate)
	}
	if in.IsKeyPressed(core.KeyS) && !in.CtrlDown {
		e.setTool(ToolScale)
	}

	if in.IsKeyPressed(core.KeyF) {
		e.ToggleFreeze()
	}
	if in.IsKeyPressed(core.KeyQ) {
		e.ShowQuadtree = !e.ShowQuadtree
	}
	if in.IsKeyPressed(core.KeyB) && !in.CtrlDown {
		e.ShowBounds = !e.ShowBounds
	}
	if in.IsShortcut(core.KeyB) {
		e.RebuildTree()
	}
}

func (e *Editor) setTool(tool TransformTool) {
	e.ActiveTool = tool
	e.StatusText = "Tool: " + tool.String()
}

// ToggleFreeze freezes or unfreezes the scene's quadtree.
func (e *Editor) ToggleFreeze() {
	frozen := !e.Scene.Frozen()
	e.Scene.SetFrozen(frozen)
	logs.WithTag("frozen", frozen).Info("quadtree freeze toggled")
	if frozen {
		e.StatusText = "Quadtree frozen"
	} else {
		e.StatusText = "Quadtree unfrozen"
	}
}

// RebuildTree rebuilds the quadtree from scratch with its current settings.
func (e *Editor) RebuildTree() {
	e.Scene.Rebuild(e.Scene.Tree().Config())
	e.StatusText = fmt.Sprintf("Quadtree rebuilt: %d nodes", e.Scene.Tree().NodeCount())
}

// handleToolKeys applies the active tool to the selection with the arrow
// keys.
func (e *Editor) handleToolKeys() {
	if !e.Selection.HasSelection() {
		return
	}
	in := e.Input

	var dx, dy float32
	switch {
	case in.IsKeyPressed(core.KeyLeft):
		dx = -1
	case in.IsKeyPressed(core.KeyRight):
		dx = 1
	case in.IsKeyPressed(core.KeyUp):
		dy = 1
	case in.IsKeyPressed(core.KeyDown):
		dy = -1
	case in.IsKeyPressed(core.KeyPageUp) && e.ActiveTool == ToolTranslate:
		e.moveSelection(math.Vec3{Y: e.MoveStep})
		return
	case in.IsKeyPressed(core.KeyPageDown) && e.ActiveTool == ToolTranslate:
		e.moveSelection(math.Vec3{Y: -e.MoveStep})
		return
	default:
		return
	}

	switch e.ActiveTool {
	case ToolTranslate:
		e.moveSelection(math.Vec3{X: dx * e.MoveStep, Z: -dy * e.MoveStep})
	case ToolRotate:
		angle := (dx + dy) * e.RotateStep
		for _, obj := range e.Selection.Roots() {
			rot := obj.Transform.Rotation.Mul(math.QuaternionFromAxisAngle(math.Vec3Up, angle)).Normalize()
			e.History.Do(NewRotateCommand(obj, rot))
		}
	case ToolScale:
		factor := 1 + (dx+dy)*e.ScaleStep
		for _, obj := range e.Selection.Roots() {
			e.History.Do(NewScaleCommand(obj, obj.Transform.Scale.Mul(factor)))
		}
	}
}

func (e *Editor) moveSelection(delta math.Vec3) {
	for _, obj := range e.Selection.Roots() {
		e.History.Do(NewMoveCommand(obj, obj.Transform.Position.Add(delta)))
	}
}

func (e *Editor) handleCameraControls() {
	in := e.Input

	if in.ScrollDelta != 0 {
		e.OrbitCamera.Zoom(-float32(in.ScrollDelta) * 0.5)
	}

	// MMB orbit / Shift+MMB pan
	if in.IsMouseDown(core.MouseButtonMiddle) {
		dx := float32(in.MouseDeltaX) * 0.01
		dy := float32(in.MouseDeltaY) * 0.01

		if in.ShiftDown {
			panSpeed := e.OrbitCamera.Distance * 0.2
			e.OrbitCamera.Pan(-dx*panSpeed, dy*panSpeed)
		} else {
			e.OrbitCamera.Orbit(-dx, -dy)
		}
	}
}

func (e *Editor) handleMouseSelection() {
	if !e.Input.IsMousePressed(core.MouseButtonLeft) {
		return
	}

	hit := e.Pick(e.Input.MouseX, e.Input.MouseY)
	if hit.Hit() {
		if e.Input.ShiftDown {
			e.Selection.ToggleObject(hit.Entity)
		} else {
			e.Selection.SelectSingle(hit.Entity)
		}
		e.StatusText = fmt.Sprintf("Selected: %s (%.2f)", hit.Entity.Name, hit.Distance)
		logs.WithTag("entity", hit.Entity.Name).
			WithTag("distance", hit.Distance).
			Debug("picked entity")
	} else if !e.Input.ShiftDown {
		e.Selection.Clear()
		e.StatusText = "Selection cleared"
	}
}

func (e *Editor) deleteSelected() {
	roots := e.Selection.Roots()
	if len(roots) == 0 {
		return
	}
	for _, obj := range roots {
		e.History.Do(NewDeleteEntityCommand(e.Scene, obj))
	}
	e.Selection.Clear()
	e.StatusText = fmt.Sprintf("Deleted %d", len(roots))
}

func (e *Editor) duplicateSelected() {
	roots := e.Selection.Roots()
	if len(roots) == 0 {
		return
	}
	e.Selection.Clear()
	for _, obj := range roots {
		cmd := NewDuplicateEntityCommand(e.Scene, obj)
		e.History.Do(cmd)
		e.Selection.ToggleObject(cmd.Duplicate)
	}
	e.StatusText = fmt.Sprintf("Duplicated %d", len(roots))
}

// GetStats returns scene statistics for the status bar
func (e *Editor) GetStats() (objectCount, vertexCount, triangleCount int) {
	e.Scene.Traverse(func(n *scene.Entity) {
		if n.Mesh != nil {
			objectCount++
			vertexCount += len(n.Mesh.Vertices)
			triangleCount += n.Mesh.TriangleCount()
		}
	})
	return
}
