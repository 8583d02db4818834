package core

import (
	"spatial-engine/math"
)

// Color is a linear RGBA colour. Renderers with A below 1 are drawn in the
// transparent pass.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite  = Color{1, 1, 1, 1}
	ColorRed    = Color{1, 0, 0, 1}
	ColorGreen  = Color{0, 1, 0, 1}
	ColorBlue   = Color{0, 0, 1, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

// Vertex is the interleaved layout uploaded to the GPU.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}

// Transform is a local placement relative to the parent entity.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// GetMatrix returns the local matrix: scale, then rotate, then translate.
func (t Transform) GetMatrix() math.Mat4 {
	m := math.Mat4Scale(t.Scale).Mul(t.Rotation.ToMat4())
	return m.Mul(math.Mat4Translation(t.Position))
}
