package editor

import (
	"spatial-engine/core"
)

// InputManager turns the polled state of a core.Input into per-frame edges
// (pressed/released) for the editor.
type InputManager struct {
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	ScrollDelta              float64

	mouseButtons     [8]bool
	mouseButtonsPrev [8]bool

	keys     [512]bool
	keysPrev [512]bool

	ShiftDown bool
	CtrlDown  bool
	AltDown   bool

	source     core.Input
	firstFrame bool
}

// polledKeys are the keys the editor reacts to.
var polledKeys = []int{
	core.KeyEscape, core.KeyTab, core.KeyDelete, core.KeyBackspace, core.KeyEnter,
	core.KeyLeft, core.KeyRight, core.KeyUp, core.KeyDown, core.KeyPageUp, core.KeyPageDown,
	core.KeyA, core.KeyB, core.KeyC, core.KeyD, core.KeyE, core.KeyF, core.KeyG,
	core.KeyH, core.KeyI, core.KeyJ, core.KeyK, core.KeyL, core.KeyM, core.KeyN,
	core.KeyO, core.KeyP, core.KeyQ, core.KeyR, core.KeyS, core.KeyT, core.KeyU,
	core.KeyV, core.KeyW, core.KeyX, core.KeyY, core.KeyZ,
	core.Key0, core.Key1, core.Key2, core.Key3, core.Key4,
	core.Key5, core.Key6, core.Key7, core.Key8, core.Key9,
}

// NewInputManager creates an input manager and hooks the scroll callback.
func NewInputManager(source core.Input) *InputManager {
	im := &InputManager{
		source:     source,
		firstFrame: true,
	}

	source.SetScrollCallback(func(xoff, yoff float64) {
		im.ScrollDelta += yoff
	})

	return im
}

// Update should be called once per frame to compute deltas and poll state
func (im *InputManager) Update() {
	x, y := im.source.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX = x
	im.lastMouseY = y
	im.MouseX = x
	im.MouseY = y

	copy(im.mouseButtonsPrev[:], im.mouseButtons[:])
	copy(im.keysPrev[:], im.keys[:])

	for _, b := range []int{core.MouseButtonLeft, core.MouseButtonRight, core.MouseButtonMiddle} {
		im.mouseButtons[b] = im.source.IsMouseButtonPressed(b)
	}

	im.ShiftDown = im.source.IsKeyPressed(core.KeyLeftShift) || im.source.IsKeyPressed(core.KeyRightShift)
	im.CtrlDown = im.source.IsKeyPressed(core.KeyLeftControl) || im.source.IsKeyPressed(core.KeyRightControl)
	im.AltDown = im.source.IsKeyPressed(core.KeyLeftAlt) || im.source.IsKeyPressed(core.KeyRightAlt)

	for _, k := range polledKeys {
		if k >= 0 && k < len(im.keys) {
			im.keys[k] = im.source.IsKeyPressed(k)
		}
	}
}

// EndFrame clears per-frame state
func (im *InputManager) EndFrame() {
	im.ScrollDelta = 0
}

// --- Mouse Queries ---

func (im *InputManager) IsMouseDown(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button]
}

func (im *InputManager) IsMousePressed(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button] && !im.mouseButtonsPrev[button]
}

func (im *InputManager) IsMouseReleased(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return !im.mouseButtons[button] && im.mouseButtonsPrev[button]
}

// --- Key Queries ---

func (im *InputManager) IsKeyDown(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key]
}

func (im *InputManager) IsKeyPressed(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key] && !im.keysPrev[key]
}

// IsShortcut checks for a Ctrl+key press
func (im *InputManager) IsShortcut(key int) bool {
	return im.CtrlDown && im.IsKeyPressed(key)
}

// IsShiftShortcut checks for Ctrl+Shift+key press
func (im *InputManager) IsShiftShortcut(key int) bool {
	return im.CtrlDown && im.ShiftDown && im.IsKeyPressed(key)
}
