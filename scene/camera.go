package scene

import (
	"github.com/chewxy/math32"

	"spatial-engine/math"
)

// Camera is a perspective camera described by a position and a view
// direction.
type Camera struct {
	Position    math.Vec3
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	forward math.Vec3
	up      math.Vec3

	// Cached matrices
	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
	viewProjMatrix   math.Mat4
	dirty            bool
}

// View is the per-frame camera state consumed by culling.
type View struct {
	Frustum Frustum
	Eye     math.Vec3
	Forward math.Vec3
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    math.Vec3Zero,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		forward:     math.Vec3Back,
		up:          math.Vec3Up,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos math.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) Translate(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
	c.dirty = true
}

// SetForward points the camera along dir. A zero vector is ignored.
func (c *Camera) SetForward(dir math.Vec3) {
	if dir.LengthSqr() == 0 {
		return
	}
	c.forward = dir.Normalize()
	c.dirty = true
}

func (c *Camera) LookAt(target, up math.Vec3) {
	c.up = up.Normalize()
	c.SetForward(target.Sub(c.Position))
}

// Rotate turns the view direction around axis.
func (c *Camera) Rotate(axis math.Vec3, angle float32) {
	q := math.QuaternionFromAxisAngle(axis, angle)
	c.SetForward(q.RotateVector(c.forward))
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	c.updateMatrices()
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	c.updateMatrices()
	return c.projectionMatrix
}

// GetViewProjectionMatrix returns view * projection (row-vector order).
func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	c.updateMatrices()
	return c.viewProjMatrix
}

func (c *Camera) GetForward() math.Vec3 {
	return c.forward
}

func (c *Camera) GetRight() math.Vec3 {
	return c.forward.Cross(c.up).Normalize()
}

func (c *Camera) GetUp() math.Vec3 {
	return c.GetRight().Cross(c.forward)
}

func (c *Camera) updateMatrices() {
	if !c.dirty {
		return
	}
	c.viewMatrix = math.Mat4LookAt(c.Position, c.Position.Add(c.forward), c.up)
	c.projectionMatrix = math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}

func (c *Camera) Frustum() Frustum {
	return FrustumFromVP(c.GetViewProjectionMatrix())
}

// View snapshots the camera for one frame of culling.
func (c *Camera) View() View {
	return View{
		Frustum: c.Frustum(),
		Eye:     c.Position,
		Forward: c.forward,
	}
}

// ScreenToRay converts a cursor position in window pixels into a world-space
// ray leaving the near plane.
func (c *Camera) ScreenToRay(x, y, width, height float32) math.Ray {
	ndcX := 2*x/width - 1
	ndcY := 1 - 2*y/height

	inv := c.GetViewProjectionMatrix().Inverse()
	near := math.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1}.MulMat(inv).ToVec3DivW()
	far := math.Vec4{X: ndcX, Y: ndcY, Z: 1, W: 1}.MulMat(inv).ToVec3DivW()
	return math.NewRay(near, far.Sub(near))
}

// OrbitCamera is a specialized camera for orbiting around a target
type OrbitCamera struct {
	Camera
	Target   math.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

const maxOrbitPitch = 1.5

func NewOrbitCamera(target math.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Camera:   *NewCamera(fov, aspectRatio, 0.1, 1000.0),
		Target:   target,
		Distance: distance,
		Pitch:    0.3,
	}
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = math32.Max(-maxOrbitPitch, math32.Min(maxOrbitPitch, c.Pitch))

	cosPitch, sinPitch := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cosYaw, sinYaw := math32.Cos(c.Yaw), math32.Sin(c.Yaw)

	offset := math.Vec3{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}

	c.SetPosition(c.Target.Add(offset))
	c.LookAt(c.Target, math.Vec3Up)
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = math32.Max(0.1, c.Distance+delta)
	c.UpdatePosition()
}

// Pan moves the target in the camera's right/up plane.
func (c *OrbitCamera) Pan(dx, dy float32) {
	c.Target = c.Target.Add(c.GetRight().Mul(dx)).Add(c.GetUp().Mul(dy))
	c.UpdatePosition()
}
