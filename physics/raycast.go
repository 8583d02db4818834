// Package physics answers ray queries against a scene: coarse candidates
// come from the quadtree and the dynamic list, then the nearest mesh
// triangle along the segment wins.
package physics

import (
	"sort"

	"github.com/chewxy/math32"

	"spatial-engine/math"
	"spatial-engine/quadtree"
	"spatial-engine/scene"
)

// Space is what a World queries. *scene.Scene implements it.
type Space interface {
	Tree() *quadtree.Tree
	Dynamic() []*scene.Entity
}

// Filter reports whether an entity may be hit.
type Filter func(e *scene.Entity) bool

// RaycastHit describes the nearest triangle hit. A miss has a nil Entity and
// an infinite Distance.
type RaycastHit struct {
	Entity   *scene.Entity
	Distance float32
	Point    math.Vec3
	// Normal is the world-space face normal for counter-clockwise winding.
	Normal   math.Vec3
	Triangle int
}

func noHit() RaycastHit {
	return RaycastHit{Distance: math32.Inf(1), Triangle: -1}
}

func (h RaycastHit) Hit() bool {
	return h.Entity != nil
}

type World struct {
	space Space
}

func NewWorld(space Space) *World {
	return &World{space: space}
}

type candidate struct {
	entity *scene.Entity
	near   float32
}

// Raycast returns the nearest triangle hit along seg.
func (w *World) Raycast(seg math.LineSegment) RaycastHit {
	return w.raycast(seg, nil, kindNearest)
}

// RaycastExcept ignores exception and all of its descendants.
func (w *World) RaycastExcept(seg math.LineSegment, exception *scene.Entity) RaycastHit {
	return w.raycast(seg, except(exception), kindExcept)
}

// RaycastToTag only hits entities tagged tag, ignoring exception and its
// descendants. exception may be nil.
func (w *World) RaycastToTag(seg math.LineSegment, exception *scene.Entity, tag string) RaycastHit {
	skip := except(exception)
	return w.raycast(seg, func(e *scene.Entity) bool {
		return e.Tag == tag && skip(e)
	}, kindTag)
}

// RaycastFiltered only hits entities accepted by filter.
func (w *World) RaycastFiltered(seg math.LineSegment, filter Filter) RaycastHit {
	return w.raycast(seg, filter, kindFiltered)
}

// RaycastFirst reports whether anything blocks seg. It stops at the first
// bounding box the segment touches and does not test triangles, so entities
// without a mesh block too.
func (w *World) RaycastFirst(seg math.LineSegment) bool {
	return w.raycastFirst(seg, nil)
}

// RaycastFirstExcept is RaycastFirst ignoring exception and its descendants.
func (w *World) RaycastFirstExcept(seg math.LineSegment, exception *scene.Entity) bool {
	return w.raycastFirst(seg, except(exception))
}

func except(exception *scene.Entity) Filter {
	return func(e *scene.Entity) bool {
		return exception == nil || !e.IsDescendantOf(exception)
	}
}

func accepts(e *scene.Entity, filter Filter) bool {
	return e.IsVisible() && (filter == nil || filter(e))
}

func (w *World) raycast(seg math.LineSegment, filter Filter, kind string) RaycastHit {
	candidates := w.collect(seg, filter)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].near != candidates[j].near {
			return candidates[i].near < candidates[j].near
		}
		return candidates[i].entity.ID < candidates[j].entity.ID
	})

	best := noHit()
	length := seg.Length()
	for _, c := range candidates {
		if c.near > best.Distance {
			break
		}
		if !c.entity.IsRenderable() {
			continue
		}
		intersectMesh(seg, length, c.entity, &best)
	}

	instrumentRaycast(kind, best.Hit())
	return best
}

// collect gathers the entities whose bounds the segment touches, with their
// entry distance. Tree candidates include straddlers at every visited node.
func (w *World) collect(seg math.LineSegment, filter Filter) []candidate {
	var candidates []candidate
	consider := func(e *scene.Entity) {
		if !accepts(e, filter) {
			return
		}
		if near, _, ok := seg.IntersectAABB(e.Bounds()); ok {
			candidates = append(candidates, candidate{entity: e, near: near})
		}
	}

	w.space.Tree().VisitRaycast(seg, func(qe quadtree.Entity) bool {
		if e, ok := qe.(*scene.Entity); ok {
			consider(e)
		}
		return true
	})
	for _, e := range w.space.Dynamic() {
		consider(e)
	}
	return candidates
}

// intersectMesh tests every world-space triangle of e and records a hit
// nearer than best. Equal distances go to the lower entity ID.
func intersectMesh(seg math.LineSegment, length float32, e *scene.Entity, best *RaycastHit) {
	mesh := e.Mesh
	world := e.WorldMatrix()
	dir := seg.Direction()
	count := mesh.TriangleCount()

	for i := 0; i < count; i++ {
		a, b, c := mesh.Triangle(i)
		v0, v1, v2 := world.MulVec3(a), world.MulVec3(b), world.MulVec3(c)

		t, ok := math.IntersectTriangle(seg.A, dir, v0, v1, v2)
		if !ok || t > length {
			continue
		}
		if t < best.Distance || (t == best.Distance && best.Entity != nil && e.ID < best.Entity.ID) {
			*best = RaycastHit{
				Entity:   e,
				Distance: t,
				Point:    seg.PointAt(t),
				Normal:   math.TriangleNormal(v0, v1, v2),
				Triangle: i,
			}
		}
	}
	instrumentTriangleTests(count)
}

func (w *World) raycastFirst(seg math.LineSegment, filter Filter) bool {
	blocked := false
	check := func(e *scene.Entity) bool {
		if accepts(e, filter) && seg.HasIntersection(e.Bounds()) {
			blocked = true
		}
		return !blocked
	}

	w.space.Tree().VisitRaycast(seg, func(qe quadtree.Entity) bool {
		if e, ok := qe.(*scene.Entity); ok {
			return check(e)
		}
		return true
	})
	for _, e := range w.space.Dynamic() {
		if blocked {
			break
		}
		check(e)
	}

	instrumentRaycast(kindFirst, blocked)
	return blocked
}
