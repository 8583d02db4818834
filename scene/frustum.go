package scene

import "spatial-engine/math"

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix.
// The planes are normalized so DistanceTo returns a true distance in world units.
//
// Matrices follow the row-vector convention (clip = p * vp), so clip
// coordinate k is the dot product of the homogeneous point with column k.
// Gribb/Hartmann extraction therefore combines columns, not rows.
func FrustumFromVP(vp math.Mat4) Frustum {
	c0, c1, c2, c3 := vp.Column(0), vp.Column(1), vp.Column(2), vp.Column(3)

	var f Frustum
	f.Planes[0] = planeFrom(c3.Add(c0))
	f.Planes[1] = planeFrom(c3.Sub(c0))
	f.Planes[2] = planeFrom(c3.Add(c1))
	f.Planes[3] = planeFrom(c3.Sub(c1))
	f.Planes[4] = planeFrom(c3.Add(c2))
	f.Planes[5] = planeFrom(c3.Sub(c2))
	return f
}

func planeFrom(v math.Vec4) Plane {
	return normalizePlane(v.X, v.Y, v.Z, v.W)
}

func normalizePlane(a, b, c, d float32) Plane {
	l := math.Vec3{X: a, Y: b, Z: c}.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: math.Vec3{X: a / l, Y: b / l, Z: c / l}, D: d / l}
}

// IntersectsAABB returns false if the box is completely outside the frustum.
// For each plane it tests the "positive vertex", the corner most aligned with
// the plane normal. Boxes near a frustum corner may pass conservatively.
func (f *Frustum) IntersectsAABB(box math.AABB) bool {
	for i := range f.Planes {
		p := f.Planes[i]
		px := box.Max.X
		if p.Normal.X < 0 {
			px = box.Min.X
		}
		py := box.Max.Y
		if p.Normal.Y < 0 {
			py = box.Min.Y
		}
		pz := box.Max.Z
		if p.Normal.Z < 0 {
			pz = box.Min.Z
		}
		if p.DistanceTo(math.Vec3{X: px, Y: py, Z: pz}) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether pt is inside all six planes.
func (f *Frustum) ContainsPoint(pt math.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(pt) < 0 {
			return false
		}
	}
	return true
}
