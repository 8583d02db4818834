package math

import "github.com/chewxy/math32"

// parallelEpsilon is the direction component below which a segment is
// treated as parallel to a slab.
const parallelEpsilon = 1e-8

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay normalizes dir.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// Segment cuts the ray at the given length.
func (r Ray) Segment(length float32) LineSegment {
	return LineSegment{A: r.Origin, B: r.Origin.Add(r.Direction.Mul(length))}
}

// LineSegment is the finite piece of line from A to B. Distances along a
// segment are measured in world units from A.
type LineSegment struct {
	A, B Vec3
}

func (s LineSegment) Length() float32 {
	return s.B.Sub(s.A).Length()
}

// Direction is the normalized A→B vector, or zero for a degenerate segment.
func (s LineSegment) Direction() Vec3 {
	return s.B.Sub(s.A).Normalize()
}

// PointAt returns the point at distance d from A.
func (s LineSegment) PointAt(d float32) Vec3 {
	return s.A.Add(s.Direction().Mul(d))
}

// IntersectAABB clips the segment against box with the slab method and
// returns the entry and exit distances from A. A segment starting inside the
// box has near == 0.
func (s LineSegment) IntersectAABB(box AABB) (near, far float32, ok bool) {
	length := s.Length()
	if length == 0 {
		if box.ContainsPoint(s.A) {
			return 0, 0, true
		}
		return 0, 0, false
	}
	dir := s.B.Sub(s.A).Div(length)

	near, far = 0, length
	origin := [3]float32{s.A.X, s.A.Y, s.A.Z}
	d := [3]float32{dir.X, dir.Y, dir.Z}
	mn := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	mx := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math32.Abs(d[axis]) < parallelEpsilon {
			if origin[axis] < mn[axis] || origin[axis] > mx[axis] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d[axis]
		t1 := (mn[axis] - origin[axis]) * inv
		t2 := (mx[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		near = math32.Max(near, t1)
		far = math32.Min(far, t2)
		if near > far {
			return 0, 0, false
		}
	}
	return near, far, true
}

// HasIntersection reports whether the segment touches box.
func (s LineSegment) HasIntersection(box AABB) bool {
	_, _, ok := s.IntersectAABB(box)
	return ok
}
