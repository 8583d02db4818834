package main

import (
	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/scene"
)

// CameraController walks the editor's orbit target across the ground plane
// with WASD while the right mouse button is held. Without the button the
// keys stay free for the editor shortcuts.
type CameraController struct {
	MoveSpeed float32
	BoostMul  float32

	camera *scene.OrbitCamera
}

func NewCameraController(camera *scene.OrbitCamera, moveSpeed float32) *CameraController {
	return &CameraController{
		MoveSpeed: moveSpeed,
		BoostMul:  3,
		camera:    camera,
	}
}

// Update moves the target. deltaTime is capped so a hitch does not fling the
// camera across the city.
func (cc *CameraController) Update(in core.Input, deltaTime float32) {
	if !in.IsMouseButtonPressed(core.MouseButtonRight) {
		return
	}
	if deltaTime > 0.05 {
		deltaTime = 0.05
	}

	forward := cc.camera.GetForward()
	forward = math.Vec3{X: forward.X, Z: forward.Z}.Normalize()
	right := math.Vec3{X: -forward.Z, Z: forward.X}

	var move math.Vec3
	if in.IsKeyPressed(core.KeyW) {
		move = move.Add(forward)
	}
	if in.IsKeyPressed(core.KeyS) {
		move = move.Sub(forward)
	}
	if in.IsKeyPressed(core.KeyD) {
		move = move.Add(right)
	}
	if in.IsKeyPressed(core.KeyA) {
		move = move.Sub(right)
	}
	if move.LengthSqr() == 0 {
		return
	}

	speed := cc.MoveSpeed
	if in.IsKeyPressed(core.KeyLeftShift) {
		speed *= cc.BoostMul
	}

	cc.camera.Target = cc.camera.Target.Add(move.Normalize().Mul(speed * deltaTime))
	cc.camera.UpdatePosition()
}

// keyLatch reports a key once per press.
type keyLatch struct {
	down map[int]bool
}

func (l *keyLatch) Pressed(in core.Input, key int) bool {
	if l.down == nil {
		l.down = make(map[int]bool)
	}
	down := in.IsKeyPressed(key)
	pressed := down && !l.down[key]
	l.down[key] = down
	return pressed
}
