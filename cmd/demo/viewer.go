package main

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chewxy/math32"

	enginecfg "spatial-engine/config"
	"spatial-engine/core"
	"spatial-engine/culling"
	"spatial-engine/editor"
	"spatial-engine/internal/demo"
	"spatial-engine/internal/opengl"
	"spatial-engine/renderer"
	"spatial-engine/scene"
	"spatial-engine/window"
)

const titleRefresh = 500 * time.Millisecond

// RunWindow opens a window and runs the editor loop until the window closes
// or ctx is cancelled.
func RunWindow(ctx context.Context, s *scene.Scene, city *demo.City, dn *demo.DayNight, ec enginecfg.Config) error {
	win, err := window.New(window.Config{
		Width:     ec.Window.Width,
		Height:    ec.Window.Height,
		Title:     ec.Window.Title,
		Resizable: true,
		VSync:     ec.Window.VSync,
	})
	if err != nil {
		return errors.New("creating window failed").Wrap(err)
	}
	defer win.Destroy()

	gpu, err := opengl.NewRenderer()
	if err != nil {
		return errors.New("creating renderer failed").Wrap(err)
	}
	defer gpu.Destroy()

	width, height := win.GetFramebufferSize()
	gpu.SetViewport(width, height)

	ed := editor.NewEditor(win, s, width, height)
	ed.ShowQuadtree = ec.Culling.DrawQuadtree
	ed.ShowBounds = ec.Culling.DrawBounds
	configureOrbit(ed.OrbitCamera, ec)

	controller := NewCameraController(ed.OrbitCamera, ec.Camera.MoveSpeed)
	sun := demo.SunOf(s, city)
	list := culling.NewRenderList()
	builder := renderer.NewBuilder(renderer.Options{ShowSelection: ec.Culling.ShowSelection})
	hud := &demo.DebugOverlay{}
	var latch keyLatch

	logs.WithTag("entities", s.EntityCount()).
		WithTag("nodes", s.Tree().NodeCount()).
		WithTag("dynamic", len(s.Dynamic())).
		Info("window mode started")

	lastTime := time.Now()
	lastTitle := lastTime
	frames := 0

	for !win.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		win.PollEvents()

		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if w, h := win.GetFramebufferSize(); w != ed.Width || h != ed.Height {
			gpu.SetViewport(w, h)
			ed.SetViewport(w, h)
		}

		if latch.Pressed(win, core.KeyN) {
			dn.Active = !dn.Active
		}
		if latch.Pressed(win, core.KeyF1) {
			gpu.SetWireframe(!gpu.IsWireframe())
		}

		ed.Update(dt)
		controller.Update(win, dt)
		if city != nil {
			city.Update(dt)
		}
		dn.Update(dt)
		dn.Apply(s, sun)
		s.Update(dt)

		view := s.Camera.View()
		list.Cull(s, &view, ed.ForcedEntities()...)

		builder.Options.DrawQuadtree = ed.ShowQuadtree
		builder.Options.DrawBounds = ed.ShowBounds
		frame := builder.Build(s, list, ed.Selection.Objects)
		gpu.Draw(frame)
		win.SwapBuffers()

		frames++
		if elapsed := now.Sub(lastTitle); elapsed >= titleRefresh {
			cs := frame.Stats.Culling
			hud.Set("FPS", int(float64(frames)/elapsed.Seconds()))
			hud.Set("visible", cs.Visible)
			hud.Set("skipped", cs.NodesSkipped)
			hud.Set("lights", frame.Stats.Lights)
			hud.Set("nodes", s.Tree().NodeCount())
			hud.Set("frozen", s.Frozen())
			hud.Set("tool", ed.ActiveTool.String())
			hud.Set("time", dn.TimeOfDayStr())
			hud.Set("status", ed.StatusText)
			win.SetTitle(hud.Title(ec.Window.Title))

			frames = 0
			lastTitle = now
		}
	}
	return nil
}

// configureOrbit points the editor camera from the configured position at
// the configured target.
func configureOrbit(cam *scene.OrbitCamera, ec enginecfg.Config) {
	cam.FOV = ec.FOVRadians()
	cam.NearPlane = ec.Camera.Near
	cam.FarPlane = ec.Camera.Far
	cam.Target = ec.CameraTarget()

	offset := ec.CameraPosition().Sub(cam.Target)
	cam.Distance = offset.Length()
	if cam.Distance > 0 {
		cam.Yaw = math32.Atan2(offset.X, offset.Z)
		cam.Pitch = math32.Asin(offset.Y / cam.Distance)
	}
	cam.UpdatePosition()
}
