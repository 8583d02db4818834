package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"

	"spatial-engine/math"
)

func TestTransformMatrixOrder(t *testing.T) {
	tr := NewTransform()
	tr.Position = math.NewVec3(10, 0, 0)
	tr.Rotation = math.QuaternionFromAxisAngle(math.Vec3Up, math32.Pi/2)
	tr.Scale = math.NewVec3(2, 2, 2)

	// Scaled to (2,0,0), rotated to (0,0,-2), translated to (10,0,-2).
	p := tr.GetMatrix().MulVec3(math.NewVec3(1, 0, 0))
	require.InDelta(t, 10, p.X, 1e-4)
	require.InDelta(t, 0, p.Y, 1e-4)
	require.InDelta(t, -2, p.Z, 1e-4)
}

func TestNewTransformIsIdentity(t *testing.T) {
	require.Equal(t, math.Mat4Identity(), NewTransform().GetMatrix())
}
