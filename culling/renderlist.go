// Package culling builds the per-frame render list: the entities and lights
// inside the camera frustum, found by walking the quadtree and testing the
// dynamic list.
package culling

import (
	"sort"

	"spatial-engine/quadtree"
	"spatial-engine/scene"
)

// Stats describes the last culling pass.
type Stats struct {
	Visible      int
	NodesVisited int
	NodesSkipped int
	Lights       int
}

// RenderList is the visible set of one frame. It is reused across frames:
// call Reset (or Cull, which resets) before filling it again.
type RenderList struct {
	visible   []*scene.Entity
	seen      map[uint32]struct{}
	distances map[uint32]float32

	pointLights      []*scene.Entity
	spotLights       []*scene.Entity
	areaSphereLights []*scene.Entity
	areaTubeLights   []*scene.Entity
	directional      []*scene.Entity

	stats Stats
}

func NewRenderList() *RenderList {
	return &RenderList{
		seen:      make(map[uint32]struct{}),
		distances: make(map[uint32]float32),
	}
}

// Reset empties the list and keeps its allocations.
func (r *RenderList) Reset() {
	r.visible = r.visible[:0]
	clear(r.seen)
	clear(r.distances)
	r.pointLights = r.pointLights[:0]
	r.spotLights = r.spotLights[:0]
	r.areaSphereLights = r.areaSphereLights[:0]
	r.areaTubeLights = r.areaTubeLights[:0]
	r.directional = r.directional[:0]
	r.stats = Stats{}
}

// Cull runs a whole frame: reset, the quadtree walk, the dynamic list, then
// the forced entities and their descendants (such as the editor selection).
func (r *RenderList) Cull(s *scene.Scene, view *scene.View, forced ...*scene.Entity) {
	r.Reset()
	r.FillRenderList(s.Tree().Root(), view)
	for _, e := range s.Dynamic() {
		r.AddToRenderList(e, view, false)
	}
	for _, e := range forced {
		if e != nil {
			r.AddToRenderList(e, view, true)
		}
	}
	r.directional = append(r.directional, s.DirectionalLights()...)

	r.stats.Visible = len(r.visible)
	r.stats.Lights = len(r.pointLights) + len(r.spotLights) + len(r.areaSphereLights) +
		len(r.areaTubeLights) + len(r.directional)
	instrumentCull(r.stats)
}

// FillRenderList walks the subtree at node. A node whose region is outside
// the frustum is skipped with its whole subtree; otherwise every entity it
// holds, straddlers included, is tested against its own bounds before the
// children are visited.
func (r *RenderList) FillRenderList(node *quadtree.Node, view *scene.View) {
	if node == nil {
		return
	}
	if !view.Frustum.IntersectsAABB(node.Box()) {
		r.stats.NodesSkipped++
		return
	}
	r.stats.NodesVisited++

	for _, qe := range node.Entities() {
		if e, ok := qe.(*scene.Entity); ok {
			r.insert(e, view)
		}
	}
	for _, c := range node.Children() {
		r.FillRenderList(c, view)
	}
}

// AddToRenderList tests a single entity, and its descendants when recursive
// is set, regardless of where it is indexed.
func (r *RenderList) AddToRenderList(e *scene.Entity, view *scene.View, recursive bool) {
	r.insert(e, view)
	if !recursive {
		return
	}
	for _, c := range e.Children {
		r.AddToRenderList(c, view, true)
	}
}

func (r *RenderList) insert(e *scene.Entity, view *scene.View) {
	if _, ok := r.seen[e.ID]; ok {
		return
	}
	if !e.IsVisible() {
		return
	}
	b := e.Bounds()
	if !view.Frustum.IntersectsAABB(b) {
		return
	}

	r.seen[e.ID] = struct{}{}
	r.visible = append(r.visible, e)
	r.distances[e.ID] = view.Eye.Distance(b.Center())

	if e.Light == nil {
		return
	}
	switch e.Light.Type {
	case scene.LightPoint:
		r.pointLights = append(r.pointLights, e)
	case scene.LightSpot:
		r.spotLights = append(r.spotLights, e)
	case scene.LightAreaSphere:
		r.areaSphereLights = append(r.areaSphereLights, e)
	case scene.LightAreaTube:
		r.areaTubeLights = append(r.areaTubeLights, e)
	}
}

// Visible returns the visible entities in insertion order. The slice is
// owned by the list and valid until the next Reset.
func (r *RenderList) Visible() []*scene.Entity {
	return r.visible
}

func (r *RenderList) Len() int {
	return len(r.visible)
}

func (r *RenderList) Contains(e *scene.Entity) bool {
	_, ok := r.seen[e.ID]
	return ok
}

// Distance returns the camera distance recorded for a visible entity.
func (r *RenderList) Distance(e *scene.Entity) (float32, bool) {
	d, ok := r.distances[e.ID]
	return d, ok
}

func (r *RenderList) PointLights() []*scene.Entity      { return r.pointLights }
func (r *RenderList) SpotLights() []*scene.Entity       { return r.spotLights }
func (r *RenderList) AreaSphereLights() []*scene.Entity { return r.areaSphereLights }
func (r *RenderList) AreaTubeLights() []*scene.Entity   { return r.areaTubeLights }
func (r *RenderList) DirectionalLights() []*scene.Entity {
	return r.directional
}

func (r *RenderList) Stats() Stats {
	return r.stats
}

// Opaque returns the visible renderable opaque entities front to back.
func (r *RenderList) Opaque() []*scene.Entity {
	return r.sorted(false)
}

// Transparent returns the visible renderable transparent entities back to
// front.
func (r *RenderList) Transparent() []*scene.Entity {
	return r.sorted(true)
}

func (r *RenderList) sorted(transparent bool) []*scene.Entity {
	var out []*scene.Entity
	for _, e := range r.visible {
		if e.IsRenderable() && e.Renderer.Transparent == transparent {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := r.distances[out[i].ID], r.distances[out[j].ID]
		if di != dj {
			if transparent {
				return di > dj
			}
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
