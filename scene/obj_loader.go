package scene

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"spatial-engine/core"
	"spatial-engine/math"
)

var objDefaultColor = core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1.0}

// LoadOBJ reads a Wavefront .obj file. Every object or group becomes a
// static mesh entity coloured by the diffuse colour and dissolve of its
// .mtl material. Faces are fan-triangulated; missing normals are computed
// per face.
func LoadOBJ(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("opening obj file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	res, err := ReadOBJ(f, func(name string) (map[string]core.Color, error) {
		mf, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defer mf.Close()
		return ReadMTL(mf)
	})
	if err != nil {
		return nil, errors.New("loading obj file failed").
			WithTag("path", path).
			Wrap(err)
	}
	return res, nil
}

// MTLLoader resolves an mtllib reference to material colours. A nil loader
// ignores material libraries.
type MTLLoader func(name string) (map[string]core.Color, error)

type objGroup struct {
	name     string
	material string
	vertices []core.Vertex
	indices  []uint32
	lookup   map[string]uint32 // "v/vt/vn" -> vertex index
}

func newOBJGroup(name, material string) *objGroup {
	return &objGroup{name: name, material: material, lookup: make(map[string]uint32)}
}

// ReadOBJ parses OBJ data from r.
func ReadOBJ(r io.Reader, mtl MTLLoader) (*ImportResult, error) {
	var (
		positions []math.Vec3
		normals   []math.Vec3
		uvs       []math.Vec2
		groups    []*objGroup
	)
	colors := make(map[string]core.Color)
	current := newOBJGroup("default", "")

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}

		switch parts[0] {
		case "v":
			if len(parts) >= 4 {
				positions = append(positions, parseVec3(parts[1:4]))
			}

		case "vn":
			if len(parts) >= 4 {
				normals = append(normals, parseVec3(parts[1:4]))
			}

		case "vt":
			if len(parts) >= 3 {
				uvs = append(uvs, math.Vec2{X: parseFloat(parts[1]), Y: parseFloat(parts[2])})
			}

		case "f":
			face := make([]uint32, 0, len(parts)-1)
			for _, elem := range parts[1:] {
				idx, ok := current.lookup[elem]
				if !ok {
					v, err := parseFaceVertex(elem, positions, normals, uvs)
					if err != nil {
						return nil, errors.New("reading obj face failed").
							WithTag("line", line).
							WithTag("vertex", elem).
							Wrap(err)
					}
					idx = uint32(len(current.vertices))
					current.vertices = append(current.vertices, v)
					current.lookup[elem] = idx
				}
				face = append(face, idx)
			}
			for i := 2; i < len(face); i++ {
				current.indices = append(current.indices, face[0], face[i-1], face[i])
			}

		case "o", "g":
			if len(current.indices) > 0 {
				groups = append(groups, current)
			}
			name := "unnamed"
			if len(parts) > 1 {
				name = parts[1]
			}
			current = newOBJGroup(name, current.material)

		case "usemtl":
			if len(parts) > 1 {
				current.material = parts[1]
			}

		case "mtllib":
			if len(parts) < 2 || mtl == nil {
				continue
			}
			lib, err := mtl(parts[1])
			if err != nil {
				logs.Warn(errors.New("loading mtl file failed").
					WithTag("name", parts[1]).
					Wrap(err))
				continue
			}
			for k, v := range lib {
				colors[k] = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New("reading obj data failed").Wrap(err)
	}
	if len(current.indices) > 0 {
		groups = append(groups, current)
	}
	if len(groups) == 0 {
		return nil, errors.New("no faces in obj data")
	}

	result := &ImportResult{}
	for _, g := range groups {
		fillMissingNormals(g.vertices, g.indices)

		color, ok := colors[g.material]
		if !ok {
			color = objDefaultColor
		}
		e := NewMeshEntity(g.name, CreateMeshFromData(g.name, g.vertices, g.indices), color)
		e.Static = true
		result.Roots = append(result.Roots, e)
	}
	return result, nil
}

// ReadMTL parses the diffuse colour (Kd) and dissolve (d, or Tr inverted) of
// every material in r.
func ReadMTL(r io.Reader) (map[string]core.Color, error) {
	result := make(map[string]core.Color)
	current := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}

		switch parts[0] {
		case "newmtl":
			if len(parts) > 1 {
				current = parts[1]
				result[current] = objDefaultColor
			}

		case "Kd":
			if c, ok := result[current]; ok && len(parts) >= 4 {
				kd := parseVec3(parts[1:4])
				c.R, c.G, c.B = kd.X, kd.Y, kd.Z
				result[current] = c
			}

		case "d", "Tr":
			if c, ok := result[current]; ok && len(parts) >= 2 {
				d := parseFloat(parts[1])
				if parts[0] == "Tr" {
					d = 1 - d
				}
				c.A = d
				result[current] = c
			}
		}
	}
	return result, scanner.Err()
}

// parseFaceVertex resolves a "v/vt/vn" face element. Negative indices count
// from the end of the lists read so far. The position is required; empty
// texture and normal fields are left zero.
func parseFaceVertex(elem string, positions, normals []math.Vec3, uvs []math.Vec2) (core.Vertex, error) {
	v := core.Vertex{Color: core.ColorWhite}

	parts := strings.Split(elem, "/")
	i, ok, err := objIndex(parts, 0, len(positions))
	if err != nil {
		return v, err
	}
	if !ok {
		return v, errors.New("missing position index")
	}
	v.Position = positions[i]

	if i, ok, err = objIndex(parts, 1, len(uvs)); err != nil {
		return v, err
	}
	if ok {
		v.UV = uvs[i]
	}

	if i, ok, err = objIndex(parts, 2, len(normals)); err != nil {
		return v, err
	}
	if ok {
		v.Normal = normals[i]
	}
	return v, nil
}

// objIndex returns the zero-based index held by parts[field]. ok is false
// when the field is absent or empty.
func objIndex(parts []string, field, count int) (int, bool, error) {
	if field >= len(parts) || parts[field] == "" {
		return 0, false, nil
	}
	idx, err := strconv.Atoi(parts[field])
	if err != nil {
		return 0, false, errors.New("invalid index").
			WithTag("index", parts[field]).
			Wrap(err)
	}
	if idx < 0 {
		idx = count + idx + 1
	}
	if idx < 1 || idx > count {
		return 0, false, errors.New("index out of range").
			WithTag("index", parts[field]).
			WithTag("count", count)
	}
	return idx - 1, true, nil
}

// fillMissingNormals accumulates face normals into vertices without one.
func fillMissingNormals(vertices []core.Vertex, indices []uint32) {
	missing := make([]bool, len(vertices))
	found := false
	for i, v := range vertices {
		if v.Normal.LengthSqr() == 0 {
			missing[i] = true
			found = true
		}
	}
	if !found {
		return
	}

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := vertices[b].Position.Sub(vertices[a].Position).
			Cross(vertices[c].Position.Sub(vertices[a].Position))
		for _, idx := range [3]uint32{a, b, c} {
			if missing[idx] {
				vertices[idx].Normal = vertices[idx].Normal.Add(n)
			}
		}
	}

	for i := range vertices {
		if missing[i] {
			vertices[i].Normal = vertices[i].Normal.Normalize()
		}
	}
}

func parseFloat(s string) float32 {
	f, _ := strconv.ParseFloat(s, 32)
	return float32(f)
}

func parseVec3(parts []string) math.Vec3 {
	return math.Vec3{X: parseFloat(parts[0]), Y: parseFloat(parts[1]), Z: parseFloat(parts[2])}
}
