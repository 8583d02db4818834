package scene

import (
	"spatial-engine/core"
	"spatial-engine/math"
)

// lineBuilder accumulates GL_LINES vertex pairs.
type lineBuilder struct {
	vertices []core.Vertex
	indices  []uint32
}

func (b *lineBuilder) line(from, to math.Vec3, c core.Color) {
	base := uint32(len(b.vertices))
	b.vertices = append(b.vertices,
		core.Vertex{Position: from, Normal: math.Vec3Up, Color: c},
		core.Vertex{Position: to, Normal: math.Vec3Up, Color: c},
	)
	b.indices = append(b.indices, base, base+1)
}

func (b *lineBuilder) mesh(name string) *Mesh {
	m := CreateMeshFromData(name, b.vertices, b.indices)
	m.DrawMode = DrawLines
	return m
}

// CreateGrid builds a flat grid mesh rendered as GL_LINES.
//
//	size      total world-space extent (grid goes from -size/2 to +size/2)
//	divisions number of cells along each axis
//
// The X-axis centre line is red, the Z-axis centre line is blue,
// and all other lines are dark gray.
func CreateGrid(size float32, divisions int) *Mesh {
	if divisions < 1 {
		divisions = 1
	}

	half := size / 2
	step := size / float32(divisions)

	gray := core.Color{R: 0.35, G: 0.35, B: 0.35, A: 1}
	red := core.Color{R: 0.8, G: 0.15, B: 0.15, A: 1}
	blue := core.Color{R: 0.15, G: 0.35, B: 0.9, A: 1}

	var b lineBuilder
	for i := 0; i <= divisions; i++ {
		offset := -half + float32(i)*step

		c := gray
		if i == divisions/2 {
			c = blue
		}
		b.line(math.Vec3{X: offset, Z: -half}, math.Vec3{X: offset, Z: half}, c)

		c = gray
		if i == divisions/2 {
			c = red
		}
		b.line(math.Vec3{X: -half, Z: offset}, math.Vec3{X: half, Z: offset}, c)
	}
	return b.mesh("Grid")
}

// CreateUnitBoxWireframe creates a cube wireframe with corners at ±1.
// Used as a reusable AABB visualizer: supply a model matrix that scales by the
// half extents and translates to the box center.
func CreateUnitBoxWireframe(c core.Color) *Mesh {
	var b lineBuilder
	corners := math.AABB{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3One}.Corners()
	for _, edge := range boxEdges {
		b.line(corners[edge[0]], corners[edge[1]], c)
	}
	return b.mesh("UnitBoxWireframe")
}

// boxEdges indexes math.AABB.Corners: bit 0 is X, bit 1 is Y, bit 2 is Z.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// BoxModelMatrix maps the unit wireframe box onto box.
func BoxModelMatrix(box math.AABB) math.Mat4 {
	half := box.HalfSize()
	const minHalf = 0.001
	half = half.Max(math.Vec3{X: minHalf, Y: minHalf, Z: minHalf})
	return math.Mat4Scale(half).Mul(math.Mat4Translation(box.Center()))
}
