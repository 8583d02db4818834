package scene

import (
	"github.com/chewxy/math32"

	"spatial-engine/core"
	"spatial-engine/math"
)

var primitiveColor = core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1.0}

// circlePoint returns the unit-circle point for step i of segments in XZ.
func circlePoint(i, segments int) (cos, sin float32) {
	theta := float32(i) * 2 * math32.Pi / float32(segments)
	return math32.Cos(theta), math32.Sin(theta)
}

// CreateSphere generates a UV-sphere mesh
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)

		for seg := 0; seg <= segments; seg++ {
			cosTheta, sinTheta := circlePoint(seg, segments)
			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)},
				Color:    primitiveColor,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return CreateMeshFromData("Sphere", vertices, indices)
}

// appendCap adds a flat disc at height y facing normal.
func appendCap(vertices []core.Vertex, indices []uint32, radius, y float32, segments int, normal math.Vec3) ([]core.Vertex, []uint32) {
	center := uint32(len(vertices))
	vertices = append(vertices, core.Vertex{
		Position: math.Vec3{Y: y},
		Normal:   normal,
		UV:       math.Vec2{X: 0.5, Y: 0.5},
		Color:    primitiveColor,
	})
	for i := 0; i <= segments; i++ {
		c, s := circlePoint(i, segments)
		vertices = append(vertices, core.Vertex{
			Position: math.Vec3{X: c * radius, Y: y, Z: s * radius},
			Normal:   normal,
			UV:       math.Vec2{X: c*0.5 + 0.5, Y: s*0.5 + 0.5},
			Color:    primitiveColor,
		})
	}
	for i := uint32(0); i < uint32(segments); i++ {
		a, b := center+1+i, center+2+i
		if normal.Y > 0 {
			indices = append(indices, center, b, a)
		} else {
			indices = append(indices, center, a, b)
		}
	}
	return vertices, indices
}

// CreateCylinder generates a capped cylinder centered on the origin.
func CreateCylinder(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	var vertices []core.Vertex
	var indices []uint32
	halfHeight := height / 2

	for i := 0; i <= segments; i++ {
		c, s := circlePoint(i, segments)
		normal := math.Vec3{X: c, Z: s}
		u := float32(i) / float32(segments)
		vertices = append(vertices,
			core.Vertex{Position: math.Vec3{X: c * radius, Y: -halfHeight, Z: s * radius}, Normal: normal, UV: math.Vec2{X: u}, Color: primitiveColor},
			core.Vertex{Position: math.Vec3{X: c * radius, Y: halfHeight, Z: s * radius}, Normal: normal, UV: math.Vec2{X: u, Y: 1}, Color: primitiveColor},
		)
	}
	for i := 0; i < segments; i++ {
		base := uint32(i * 2)
		indices = append(indices, base, base+1, base+2)
		indices = append(indices, base+2, base+1, base+3)
	}

	vertices, indices = appendCap(vertices, indices, radius, halfHeight, segments, math.Vec3Up)
	vertices, indices = appendCap(vertices, indices, radius, -halfHeight, segments, math.Vec3Down)
	return CreateMeshFromData("Cylinder", vertices, indices)
}

// CreateCone generates a cone with its tip at +height/2.
func CreateCone(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	var vertices []core.Vertex
	var indices []uint32
	halfHeight := height / 2

	vertices = append(vertices, core.Vertex{
		Position: math.Vec3{Y: halfHeight},
		Normal:   math.Vec3Up,
		UV:       math.Vec2{X: 0.5},
		Color:    primitiveColor,
	})

	slope := math32.Atan2(radius, height)
	ny, nr := math32.Cos(slope), math32.Sin(slope)
	for i := 0; i <= segments; i++ {
		c, s := circlePoint(i, segments)
		vertices = append(vertices, core.Vertex{
			Position: math.Vec3{X: c * radius, Y: -halfHeight, Z: s * radius},
			Normal:   math.Vec3{X: c * nr, Y: ny, Z: s * nr}.Normalize(),
			UV:       math.Vec2{X: float32(i) / float32(segments), Y: 1},
			Color:    primitiveColor,
		})
	}
	for i := 0; i < segments; i++ {
		indices = append(indices, 0, uint32(i+2), uint32(i+1))
	}

	vertices, indices = appendCap(vertices, indices, radius, -halfHeight, segments, math.Vec3Down)
	return CreateMeshFromData("Cone", vertices, indices)
}

// CreatePlane generates a flat XZ plane facing +Y.
func CreatePlane(width, depth float32, subdivisions int) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	halfW := width / 2
	halfD := depth / 2

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: -halfW + u*width, Z: -halfD + v*depth},
				Normal:   math.Vec3Up,
				UV:       math.Vec2{X: u, Y: v},
				Color:    primitiveColor,
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1

			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}

	return CreateMeshFromData("Plane", vertices, indices)
}
