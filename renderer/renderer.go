// Package renderer turns a culled render list into a frame: the ordered draw
// calls, the light set and the debug overlays a graphics backend executes.
// It has no GPU dependency; internal/opengl draws the frames it builds.
package renderer

import (
	"spatial-engine/core"
	"spatial-engine/culling"
	"spatial-engine/math"
	"spatial-engine/quadtree"
	"spatial-engine/scene"
)

// Options selects the debug overlays.
type Options struct {
	DrawQuadtree  bool // wireframe of every quadtree region
	DrawBounds    bool // wireframe of every visible entity's bounds
	ShowSelection bool // highlight the bounds of the selected entities
}

type DrawItem struct {
	Entity *scene.Entity
	Mesh   *scene.Mesh
	Model  math.Mat4
	MVP    math.Mat4
	Color  core.Color
}

// LightItem is a light resolved to world space.
type LightItem struct {
	Type      scene.LightType
	Position  math.Vec3
	Direction math.Vec3
	Color     core.Color
	Intensity float32
	Range     float32
	SpotAngle float32
	Length    float32
}

// LineItem draws a line mesh tinted by Color.
type LineItem struct {
	Mesh  *scene.Mesh
	MVP   math.Mat4
	Color core.Color
}

type Stats struct {
	Objects    int
	Triangles  int
	Lights     int
	DebugLines int
	Culling    culling.Stats
}

// Frame is everything needed to draw one image. Opaque items are sorted front
// to back and transparent items back to front.
type Frame struct {
	Sky     core.Color
	Ambient core.Color

	Eye      math.Vec3
	View     math.Mat4
	Proj     math.Mat4
	ViewProj math.Mat4

	Opaque      []DrawItem
	Transparent []DrawItem
	Lights      []LightItem
	Lines       []LineItem

	Stats Stats
}

var (
	boundsColor    = core.Color{R: 0.2, G: 0.9, B: 0.3, A: 1}
	selectionColor = core.ColorYellow

	// Quadtree regions are tinted by depth.
	depthColors = []core.Color{
		{R: 1, G: 0.3, B: 0.3, A: 1},
		{R: 1, G: 0.6, B: 0.2, A: 1},
		{R: 0.9, G: 0.9, B: 0.2, A: 1},
		{R: 0.3, G: 0.9, B: 0.9, A: 1},
		{R: 0.4, G: 0.5, B: 1, A: 1},
		{R: 0.8, G: 0.4, B: 1, A: 1},
	}
)

// Builder builds frames, reusing its buffers from one frame to the next.
type Builder struct {
	Options Options

	box   *scene.Mesh
	frame Frame
}

func NewBuilder(opts Options) *Builder {
	return &Builder{
		Options: opts,
		box:     scene.CreateUnitBoxWireframe(core.ColorWhite),
	}
}

// BoxMesh returns the shared unit wireframe box used by the overlays.
func (b *Builder) BoxMesh() *scene.Mesh {
	return b.box
}

// Build fills the frame for the scene camera from a render list culled with
// the same camera. The returned frame is valid until the next Build.
func (b *Builder) Build(s *scene.Scene, list *culling.RenderList, selection []*scene.Entity) *Frame {
	f := &b.frame
	cam := s.Camera

	f.Sky = s.SkyColor
	f.Ambient = s.Ambient
	f.Eye = cam.Position
	f.View = cam.GetViewMatrix()
	f.Proj = cam.GetProjectionMatrix()
	f.ViewProj = cam.GetViewProjectionMatrix()

	f.Opaque = b.appendItems(f.Opaque[:0], list.Opaque(), f.ViewProj)
	f.Transparent = b.appendItems(f.Transparent[:0], list.Transparent(), f.ViewProj)

	f.Lights = f.Lights[:0]
	for _, group := range [][]*scene.Entity{
		list.DirectionalLights(),
		list.PointLights(),
		list.SpotLights(),
		list.AreaSphereLights(),
		list.AreaTubeLights(),
	} {
		for _, e := range group {
			f.Lights = append(f.Lights, lightItem(e))
		}
	}

	f.Lines = f.Lines[:0]
	if b.Options.DrawQuadtree {
		b.appendTree(s.Tree(), f.ViewProj)
	}
	if b.Options.DrawBounds {
		for _, e := range list.Visible() {
			b.appendBox(e.Bounds(), boundsColor, f.ViewProj)
		}
	}
	if b.Options.ShowSelection {
		for _, e := range selection {
			if e.Scene() == s {
				b.appendBox(e.Bounds(), selectionColor, f.ViewProj)
			}
		}
	}

	f.Stats = Stats{
		Objects:    len(f.Opaque) + len(f.Transparent),
		Lights:     len(f.Lights),
		DebugLines: len(f.Lines),
		Culling:    list.Stats(),
	}
	for _, items := range [][]DrawItem{f.Opaque, f.Transparent} {
		for _, it := range items {
			f.Stats.Triangles += it.Mesh.TriangleCount()
		}
	}
	return f
}

func (b *Builder) appendItems(items []DrawItem, entities []*scene.Entity, viewProj math.Mat4) []DrawItem {
	for _, e := range entities {
		model := e.WorldMatrix()
		items = append(items, DrawItem{
			Entity: e,
			Mesh:   e.Mesh,
			Model:  model,
			MVP:    model.Mul(viewProj),
			Color:  e.Renderer.Color,
		})
	}
	return items
}

func (b *Builder) appendTree(t *quadtree.Tree, viewProj math.Mat4) {
	depths := map[*quadtree.Node]int{}
	t.Walk(func(n *quadtree.Node) bool {
		d := 0
		if p := n.Parent(); p != nil {
			d = depths[p] + 1
		}
		depths[n] = d
		b.appendBox(n.Box(), depthColors[d%len(depthColors)], viewProj)
		return true
	})
}

func (b *Builder) appendBox(box math.AABB, c core.Color, viewProj math.Mat4) {
	if box.IsEmpty() || !box.IsFinite() {
		return
	}
	b.frame.Lines = append(b.frame.Lines, LineItem{
		Mesh:  b.box,
		MVP:   scene.BoxModelMatrix(box).Mul(viewProj),
		Color: c,
	})
}

func lightItem(e *scene.Entity) LightItem {
	l := e.Light
	world := e.WorldMatrix()
	dir := l.Direction
	if l.Type != scene.LightDirectional && dir.LengthSqr() > 0 {
		dir = world.MulDir(dir).Normalize()
	}
	return LightItem{
		Type:      l.Type,
		Position:  e.WorldPosition(),
		Direction: dir,
		Color:     l.Color,
		Intensity: l.Intensity,
		Range:     l.Range,
		SpotAngle: l.SpotAngle,
		Length:    l.Length,
	}
}
