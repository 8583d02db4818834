package math

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box. A box with Min == Max is a valid
// degenerate box (a point).
type AABB struct {
	Min, Max Vec3
}

// NewAABB builds a box from two opposite corners in any order.
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// AABBFromCenter builds a box from its center and half extents.
func AABBFromCenter(center, half Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// EmptyAABB returns an inverted box that acts as the identity for Enclose.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: Vec3{X: inf, Y: inf, Z: inf},
		Max: Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

func (b AABB) HalfSize() Vec3 {
	return b.Size().Mul(0.5)
}

// IsEmpty reports whether the box is inverted on any axis.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// IsFinite reports whether both corners are free of NaN and infinities.
func (b AABB) IsFinite() bool {
	return b.Min.IsFinite() && b.Max.IsFinite()
}

// SideXZ is the smaller of the box's X and Z extents.
func (b AABB) SideXZ() float32 {
	s := b.Size()
	return math32.Min(s.X, s.Z)
}

func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Contains reports whether other lies entirely inside b (boundaries inclusive).
func (b AABB) Contains(other AABB) bool {
	return b.ContainsXZ(other) &&
		other.Min.Y >= b.Min.Y && other.Max.Y <= b.Max.Y
}

// ContainsXZ is Contains restricted to the horizontal plane.
func (b AABB) ContainsXZ(other AABB) bool {
	return other.Min.X >= b.Min.X && other.Max.X <= b.Max.X &&
		other.Min.Z >= b.Min.Z && other.Max.Z <= b.Max.Z
}

func (b AABB) Intersects(other AABB) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Enclose returns the smallest box containing both b and other.
func (b AABB) Enclose(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// EncloseY grows b vertically to cover other's Y range.
func (b AABB) EncloseY(other AABB) AABB {
	b.Min.Y = math32.Min(b.Min.Y, other.Min.Y)
	b.Max.Y = math32.Max(b.Max.Y, other.Max.Y)
	return b
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]Vec3 {
	mn, mx := b.Min, b.Max
	return [8]Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
}

// Transform returns the world-space AABB enclosing the box transformed by m.
func (b AABB) Transform(m Mat4) AABB {
	corners := b.Corners()
	first := m.MulVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		wp := m.MulVec3(corners[i])
		out.Min = out.Min.Min(wp)
		out.Max = out.Max.Max(wp)
	}
	return out
}
