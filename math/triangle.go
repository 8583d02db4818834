package math

const triangleEpsilon = 0.0000001

// IntersectTriangle is the Möller–Trumbore ray/triangle test. dir must be
// normalized for t to be a world-space distance. Both windings are hit.
func IntersectTriangle(origin, dir, v0, v1, v2 Vec3) (float32, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)

	if a > -triangleEpsilon && a < triangleEpsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > triangleEpsilon
}

// TriangleNormal returns the unit normal of a counter-clockwise triangle.
func TriangleNormal(v0, v1, v2 Vec3) Vec3 {
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}
