package core

// ScrollCallback is the type for scroll event handlers
type ScrollCallback func(xoff, yoff float64)

// Input is the polling surface a window exposes to the editor and the
// camera controllers.
type Input interface {
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
	GetCursorPos() (float64, float64)
	SetScrollCallback(cb ScrollCallback)
}

const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
