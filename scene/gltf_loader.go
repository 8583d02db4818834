package scene

import (
	"fmt"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"spatial-engine/core"
	"spatial-engine/math"
)

// ImportResult holds the entity hierarchies loaded from an asset file.
type ImportResult struct {
	Roots []*Entity // top-level entities; add each with Scene.AddEntity
}

// AddTo attaches every root to s.
func (r *ImportResult) AddTo(s *Scene) {
	for _, root := range r.Roots {
		s.AddEntity(root, nil)
	}
}

// LoadGLTF opens a .glb or .gltf file and converts its node hierarchy into
// entities. Mesh geometry and base colours are loaded; textures are not.
//
// Node extras drive the spatial setup:
//
//	{"tag": "Wall", "static": false, "light": {"type": "point", "range": 6}}
//
// Entities are static unless extras say otherwise.
func LoadGLTF(path string) (*ImportResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.New("opening gltf file failed").
			WithTag("path", path).
			Wrap(err)
	}
	return loadGLTFDocument(doc), nil
}

func loadGLTFDocument(doc *gltf.Document) *ImportResult {
	result := &ImportResult{}

	colors := make([]core.Color, len(doc.Materials))
	for i, gm := range doc.Materials {
		colors[i] = core.ColorWhite
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			colors[i] = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
		}
		if gm.AlphaMode == gltf.AlphaBlend && colors[i].A >= 1 {
			colors[i].A = 0.99
		}
	}

	type primitive struct {
		mesh  *Mesh
		color core.Color
	}
	meshPrims := make([][]primitive, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				logs.Warn(errors.New("loading gltf primitive failed").
					WithTag("mesh", mi).
					WithTag("primitive", pi).
					Wrap(err))
				continue
			}
			c := core.ColorWhite
			if prim.Material != nil && *prim.Material < len(colors) {
				c = colors[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], primitive{mesh: m, color: c})
		}
	}

	entities := make([]*Entity, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		e := NewEntity(name)
		e.Static = true

		t := gn.TranslationOrDefault()
		sc := gn.ScaleOrDefault()
		r := gn.RotationOrDefault() // [x, y, z, w]
		e.SetTransform(core.Transform{
			Position: math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
			Scale:    math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])},
			Rotation: math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		})
		applyExtras(e, gn.Extras)

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				e.Mesh = prims[0].mesh
				e.Renderer = NewMeshRenderer(prims[0].color)
			default:
				// Multiple primitives → one child entity per primitive
				for pi, p := range prims {
					child := NewMeshEntity(fmt.Sprintf("%s_prim%d", name, pi), p.mesh, p.color)
					child.Tag = e.Tag
					child.Static = e.Static
					e.AddChild(child)
				}
			}
		}
		entities[i] = e
	}

	hasParent := make([]bool, len(entities))
	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(entities) && childIdx != i && !hasParent[childIdx] {
				entities[i].AddChild(entities[childIdx])
				hasParent[childIdx] = true
			}
		}
	}

	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(entities) && !hasParent[rootIdx] {
				result.Roots = append(result.Roots, entities[rootIdx])
			}
		}
		return result
	}

	for i, e := range entities {
		if !hasParent[i] {
			result.Roots = append(result.Roots, e)
		}
	}
	return result
}

// applyExtras reads the tag, static flag and light from glTF node extras.
func applyExtras(e *Entity, extras any) {
	m, ok := extras.(map[string]any)
	if !ok {
		return
	}
	if tag, ok := m["tag"].(string); ok {
		e.Tag = tag
	}
	if static, ok := m["static"].(bool); ok {
		e.Static = static
	}
	if lm, ok := m["light"].(map[string]any); ok {
		e.Light = lightFromExtras(lm)
	}
}

func lightFromExtras(m map[string]any) *Light {
	num := func(key string, def float32) float32 {
		if v, ok := m[key].(float64); ok {
			return float32(v)
		}
		return def
	}

	l := &Light{
		Color:     core.ColorWhite,
		Intensity: num("intensity", 1),
		Range:     num("range", 10),
		SpotAngle: num("spot_angle", 0.5),
		Length:    num("length", 0),
		Direction: math.Vec3Down,
	}
	if t, ok := m["type"].(string); ok {
		l.Type = ParseLightType(t)
	} else {
		l.Type = LightPoint
	}
	if c, ok := m["color"].([]any); ok && len(c) >= 3 {
		rgb := [3]float32{1, 1, 1}
		for i := range rgb {
			if v, ok := c[i].(float64); ok {
				rgb[i] = float32(v)
			}
		}
		l.Color = core.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1}
	}
	return l
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	var mode DrawMode
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		mode = DrawTriangles
	case gltf.PrimitiveLines:
		mode = DrawLines
	case gltf.PrimitivePoints:
		mode = DrawPoints
	default:
		return nil, errors.New("unsupported primitive mode").WithTag("mode", prim.Mode)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, errors.New("reading positions failed").Wrap(err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, errors.New("reading indices failed").Wrap(err)
		}
		for _, idx := range indices {
			if int(idx) >= len(verts) {
				return nil, errors.New("index out of range").
					WithTag("index", idx).
					WithTag("vertices", len(verts))
			}
		}
	}

	m := CreateMeshFromData(name, verts, indices)
	m.DrawMode = mode
	return m, nil
}
