package demo

import (
	"context"
	"math/rand"

	"github.com/chewxy/math32"

	enginecfg "spatial-engine/config"
	"spatial-engine/culling"
	"spatial-engine/math"
	"spatial-engine/physics"
	"spatial-engine/renderer"
	"spatial-engine/scene"
)

const (
	headlessDeltaTime = float32(1.0 / 60)
	headlessOrbitRate = float32(0.2) // radians per second
)

// HeadlessOptions configures a run without a window.
type HeadlessOptions struct {
	Frames   int
	Rays     int // random raycasts per frame
	LogEvery int // frames between stat logs, 0 disables them
	Rand     *rand.Rand
}

// HeadlessStats summarises a headless run. Per-frame counts are summed over
// all frames; tree figures describe the final frame.
type HeadlessStats struct {
	Frames       int
	Visible      int
	NodesSkipped int
	Lights       int
	Triangles    int
	DebugLines   int
	Rays         int
	Hits         int

	Nodes   int
	Depth   int
	Indexed int
	Dynamic int
}

// HitRate is the fraction of raycasts that hit an entity.
func (s HeadlessStats) HitRate() float32 {
	if s.Rays == 0 {
		return 0
	}
	return float32(s.Hits) / float32(s.Rays)
}

// RunHeadless steps the frame pipeline without a GL context: city and sun
// update, scene re-indexing, culling from an orbiting camera, frame planning
// and random raycasts. It stops early when ctx is cancelled.
func RunHeadless(ctx context.Context, s *scene.Scene, city *City, dn *DayNight, ec enginecfg.Config, opts HeadlessOptions) HeadlessStats {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	cam := scene.NewCamera(ec.FOVRadians(), float32(ec.Window.Width)/float32(ec.Window.Height), ec.Camera.Near, ec.Camera.Far)
	s.SetCamera(cam)

	target := ec.CameraTarget()
	offset := ec.CameraPosition().Sub(target)
	if offset.X*offset.X+offset.Z*offset.Z < 1e-6 {
		offset.Z = 1
	}

	sun := SunOf(s, city)
	world := physics.NewWorld(s)
	list := culling.NewRenderList()
	builder := renderer.NewBuilder(renderer.Options{
		DrawQuadtree: ec.Culling.DrawQuadtree,
		DrawBounds:   ec.Culling.DrawBounds,
	})
	hud := &DebugOverlay{}

	var stats HeadlessStats
	for f := 0; f < opts.Frames; f++ {
		select {
		case <-ctx.Done():
			return stats
		default:
		}

		if city != nil {
			city.Update(headlessDeltaTime)
		}
		dn.Update(headlessDeltaTime)
		dn.Apply(s, sun)
		s.Update(headlessDeltaTime)

		angle := float32(f) * headlessDeltaTime * headlessOrbitRate
		cam.SetPosition(target.Add(rotateY(offset, angle)))
		cam.LookAt(target, math.Vec3Up)

		view := cam.View()
		list.Cull(s, &view)
		frame := builder.Build(s, list, nil)

		cs := list.Stats()
		stats.Frames++
		stats.Visible += cs.Visible
		stats.NodesSkipped += cs.NodesSkipped
		stats.Lights += cs.Lights
		stats.Triangles += frame.Stats.Triangles
		stats.DebugLines += frame.Stats.DebugLines

		box := s.Tree().Root().Box()
		for r := 0; r < opts.Rays; r++ {
			stats.Rays++
			if world.Raycast(randomSegment(rng, box)).Hit() {
				stats.Hits++
			}
		}

		if opts.LogEvery > 0 && stats.Frames%opts.LogEvery == 0 {
			hud.Set("frame", stats.Frames)
			hud.Set("visible", cs.Visible)
			hud.Set("nodes_skipped", cs.NodesSkipped)
			hud.Set("lights", cs.Lights)
			hud.Set("nodes", s.Tree().NodeCount())
			hud.Set("dynamic", len(s.Dynamic()))
			hud.Set("time_of_day", dn.TimeOfDayStr())
			hud.Log("headless frame")
		}
	}

	tree := s.Tree()
	stats.Nodes = tree.NodeCount()
	stats.Depth = tree.Depth()
	stats.Indexed = tree.Len()
	stats.Dynamic = len(s.Dynamic())
	return stats
}

// SunOf returns the city's sun, or the first directional light of a loaded
// scene.
func SunOf(s *scene.Scene, city *City) *scene.Entity {
	if city != nil {
		return city.Sun
	}
	if lights := s.DirectionalLights(); len(lights) > 0 {
		return lights[0]
	}
	return nil
}

func rotateY(v math.Vec3, angle float32) math.Vec3 {
	sin, cos := math32.Sincos(angle)
	return math.Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// randomSegment alternates between drops from above the region and
// horizontal rays at street level.
func randomSegment(rng *rand.Rand, box math.AABB) math.LineSegment {
	size := box.Size()
	x := box.Min.X + rng.Float32()*size.X
	z := box.Min.Z + rng.Float32()*size.Z

	if rng.Intn(2) == 0 {
		return math.LineSegment{
			A: math.Vec3{X: x, Y: box.Max.Y + 10, Z: z},
			B: math.Vec3{X: x, Y: box.Min.Y - 1, Z: z},
		}
	}

	angle := rng.Float32() * 2 * math32.Pi
	sin, cos := math32.Sincos(angle)
	a := math.Vec3{X: x, Y: 0.2 + rng.Float32()*10, Z: z}
	reach := math32.Max(size.X, size.Z)
	return math.LineSegment{A: a, B: a.Add(math.Vec3{X: cos * reach, Z: sin * reach})}
}
