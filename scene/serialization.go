package scene

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
)

const sceneFormatVersion = 2

type vec3JSON [3]float32

type colorJSON [4]float32

type transformJSON struct {
	Position vec3JSON   `json:"position"`
	Rotation [4]float32 `json:"rotation"` // x, y, z, w
	Scale    vec3JSON   `json:"scale"`
}

type rendererJSON struct {
	Enabled     bool      `json:"enabled"`
	Transparent bool      `json:"transparent"`
	Color       colorJSON `json:"color"`
}

type lightJSON struct {
	Type      string    `json:"type"`
	Direction vec3JSON  `json:"direction"`
	Color     colorJSON `json:"color"`
	Intensity float32   `json:"intensity"`
	Range     float32   `json:"range"`
	SpotAngle float32   `json:"spot_angle,omitempty"`
	Length    float32   `json:"length,omitempty"`
}

type meshJSON struct {
	Name      string      `json:"name"`
	DrawMode  DrawMode    `json:"draw_mode"`
	Positions []vec3JSON  `json:"positions"`
	Normals   []vec3JSON  `json:"normals,omitempty"`
	Colors    []colorJSON `json:"colors,omitempty"`
	Indices   []uint32    `json:"indices,omitempty"`
}

type entityJSON struct {
	UID       uuid.UUID     `json:"uid"`
	Name      string        `json:"name"`
	Tag       string        `json:"tag,omitempty"`
	Active    bool          `json:"active"`
	Enabled   bool          `json:"enabled"`
	Static    bool          `json:"static"`
	Transform transformJSON `json:"transform"`
	Mesh      *int          `json:"mesh,omitempty"`
	Renderer  *rendererJSON `json:"renderer,omitempty"`
	Light     *lightJSON    `json:"light,omitempty"`
	Children  []entityJSON  `json:"children,omitempty"`
}

type cameraJSON struct {
	Position    vec3JSON `json:"position"`
	Forward     vec3JSON `json:"forward"`
	FOV         float32  `json:"fov"`
	AspectRatio float32  `json:"aspect_ratio"`
	NearPlane   float32  `json:"near"`
	FarPlane    float32  `json:"far"`
}

type quadtreeJSON struct {
	Min          vec3JSON `json:"min"`
	Max          vec3JSON `json:"max"`
	Capacity     int      `json:"capacity"`
	MinSide      float32  `json:"min_side"`
	Frozen       bool     `json:"frozen"`
	DisableMerge bool     `json:"disable_merge,omitempty"`
}

type sceneJSON struct {
	Version  int          `json:"version"`
	Name     string       `json:"name"`
	SkyColor colorJSON    `json:"sky_color"`
	Ambient  colorJSON    `json:"ambient"`
	Camera   *cameraJSON  `json:"camera,omitempty"`
	Quadtree quadtreeJSON `json:"quadtree"`
	Meshes   []meshJSON   `json:"meshes,omitempty"`
	Entities []entityJSON `json:"entities"`
}

// SaveScene writes the scene, including mesh geometry and quadtree settings,
// to a JSON file at path.
func SaveScene(s *Scene, path string) error {
	data, err := MarshalScene(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("writing scene file failed").
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}

func MarshalScene(s *Scene) ([]byte, error) {
	cfg := s.tree.Config()
	box := s.tree.Root().Box()
	js := sceneJSON{
		Version:  sceneFormatVersion,
		Name:     s.Name,
		SkyColor: colorToJSON(s.SkyColor),
		Ambient:  colorToJSON(s.Ambient),
		Quadtree: quadtreeJSON{
			Min:          vec3ToJSON(box.Min),
			Max:          vec3ToJSON(box.Max),
			Capacity:     cfg.QuadrantCapacity,
			MinSide:      cfg.MinQuadrantSideSize,
			Frozen:       cfg.Frozen,
			DisableMerge: cfg.DisableMerge,
		},
	}

	if c := s.Camera; c != nil {
		js.Camera = &cameraJSON{
			Position:    vec3ToJSON(c.Position),
			Forward:     vec3ToJSON(c.GetForward()),
			FOV:         c.FOV,
			AspectRatio: c.AspectRatio,
			NearPlane:   c.NearPlane,
			FarPlane:    c.FarPlane,
		}
	}

	meshIDs := make(map[*Mesh]int)
	for _, child := range s.Root.Children {
		js.Entities = append(js.Entities, entityToJSON(child, meshIDs, &js.Meshes))
	}

	data, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return nil, errors.New("marshaling scene failed").Wrap(err)
	}
	return data, nil
}

// LoadScene reads a file written by SaveScene. The quadtree is created
// unfrozen, filled, then frozen if it was saved frozen, so the saved static
// content is always indexed.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("reading scene file failed").
			WithTag("path", path).
			Wrap(err)
	}
	s, err := UnmarshalScene(data)
	if err != nil {
		return nil, errors.New("loading scene failed").
			WithTag("path", path).
			Wrap(err)
	}
	return s, nil
}

func UnmarshalScene(data []byte) (*Scene, error) {
	var js sceneJSON
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, errors.New("unmarshaling scene failed").Wrap(err)
	}
	if js.Version != sceneFormatVersion {
		return nil, errors.New("unsupported scene version").
			WithTag("version", js.Version).
			WithTag("expected", sceneFormatVersion)
	}

	cfg := quadtree.DefaultConfig()
	cfg.QuadrantCapacity = js.Quadtree.Capacity
	cfg.MinQuadrantSideSize = js.Quadtree.MinSide
	cfg.DisableMerge = js.Quadtree.DisableMerge

	s := NewScene(math.NewAABB(jsonToVec3(js.Quadtree.Min), jsonToVec3(js.Quadtree.Max)), cfg)
	s.Name = js.Name
	s.SkyColor = jsonToColor(js.SkyColor)
	s.Ambient = jsonToColor(js.Ambient)

	if cj := js.Camera; cj != nil {
		cam := NewCamera(cj.FOV, cj.AspectRatio, cj.NearPlane, cj.FarPlane)
		cam.SetPosition(jsonToVec3(cj.Position))
		cam.SetForward(jsonToVec3(cj.Forward))
		s.SetCamera(cam)
	}

	meshes := make([]*Mesh, len(js.Meshes))
	for i, mj := range js.Meshes {
		m, err := jsonToMesh(mj)
		if err != nil {
			return nil, errors.New("decoding mesh failed").
				WithTag("mesh", i).
				Wrap(err)
		}
		meshes[i] = m
	}

	for _, ej := range js.Entities {
		e, err := jsonToEntity(ej, meshes)
		if err != nil {
			return nil, err
		}
		s.AddEntity(e, nil)
	}

	if js.Quadtree.Frozen {
		s.SetFrozen(true)
	}
	return s, nil
}

func vec3ToJSON(v math.Vec3) vec3JSON    { return vec3JSON{v.X, v.Y, v.Z} }
func jsonToVec3(v vec3JSON) math.Vec3    { return math.Vec3{X: v[0], Y: v[1], Z: v[2]} }
func colorToJSON(c core.Color) colorJSON { return colorJSON{c.R, c.G, c.B, c.A} }
func jsonToColor(c colorJSON) core.Color { return core.Color{R: c[0], G: c[1], B: c[2], A: c[3]} }

func transformToJSON(t core.Transform) transformJSON {
	return transformJSON{
		Position: vec3ToJSON(t.Position),
		Rotation: [4]float32{t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W},
		Scale:    vec3ToJSON(t.Scale),
	}
}

func jsonToTransform(tj transformJSON) core.Transform {
	return core.Transform{
		Position: jsonToVec3(tj.Position),
		Rotation: math.Quaternion{X: tj.Rotation[0], Y: tj.Rotation[1], Z: tj.Rotation[2], W: tj.Rotation[3]},
		Scale:    jsonToVec3(tj.Scale),
	}
}

func lightToJSON(l *Light) *lightJSON {
	return &lightJSON{
		Type:      l.Type.String(),
		Direction: vec3ToJSON(l.Direction),
		Color:     colorToJSON(l.Color),
		Intensity: l.Intensity,
		Range:     l.Range,
		SpotAngle: l.SpotAngle,
		Length:    l.Length,
	}
}

func jsonToLight(lj *lightJSON) *Light {
	return &Light{
		Type:      ParseLightType(lj.Type),
		Direction: jsonToVec3(lj.Direction),
		Color:     jsonToColor(lj.Color),
		Intensity: lj.Intensity,
		Range:     lj.Range,
		SpotAngle: lj.SpotAngle,
		Length:    lj.Length,
	}
}

func meshToJSON(m *Mesh) meshJSON {
	mj := meshJSON{
		Name:      m.Name,
		DrawMode:  m.DrawMode,
		Positions: make([]vec3JSON, len(m.Vertices)),
		Normals:   make([]vec3JSON, len(m.Vertices)),
		Colors:    make([]colorJSON, len(m.Vertices)),
		Indices:   m.Indices,
	}
	for i, v := range m.Vertices {
		mj.Positions[i] = vec3ToJSON(v.Position)
		mj.Normals[i] = vec3ToJSON(v.Normal)
		mj.Colors[i] = colorToJSON(v.Color)
	}
	return mj
}

func jsonToMesh(mj meshJSON) (*Mesh, error) {
	verts := make([]core.Vertex, len(mj.Positions))
	for i, p := range mj.Positions {
		verts[i] = core.Vertex{Position: jsonToVec3(p), Normal: math.Vec3Up, Color: core.ColorWhite}
		if i < len(mj.Normals) {
			verts[i].Normal = jsonToVec3(mj.Normals[i])
		}
		if i < len(mj.Colors) {
			verts[i].Color = jsonToColor(mj.Colors[i])
		}
	}
	for _, idx := range mj.Indices {
		if int(idx) >= len(verts) {
			return nil, errors.New("index out of range").
				WithTag("index", idx).
				WithTag("vertices", len(verts))
		}
	}
	m := CreateMeshFromData(mj.Name, verts, mj.Indices)
	m.DrawMode = mj.DrawMode
	return m, nil
}

func entityToJSON(e *Entity, meshIDs map[*Mesh]int, meshes *[]meshJSON) entityJSON {
	ej := entityJSON{
		UID:       e.UID,
		Name:      e.Name,
		Tag:       e.Tag,
		Active:    e.Active,
		Enabled:   e.Enabled,
		Static:    e.Static,
		Transform: transformToJSON(e.Transform),
	}
	if e.Mesh != nil {
		id, ok := meshIDs[e.Mesh]
		if !ok {
			id = len(*meshes)
			meshIDs[e.Mesh] = id
			*meshes = append(*meshes, meshToJSON(e.Mesh))
		}
		ej.Mesh = &id
	}
	if r := e.Renderer; r != nil {
		ej.Renderer = &rendererJSON{Enabled: r.Enabled, Transparent: r.Transparent, Color: colorToJSON(r.Color)}
	}
	if e.Light != nil {
		ej.Light = lightToJSON(e.Light)
	}
	for _, child := range e.Children {
		ej.Children = append(ej.Children, entityToJSON(child, meshIDs, meshes))
	}
	return ej
}

func jsonToEntity(ej entityJSON, meshes []*Mesh) (*Entity, error) {
	e := NewEntity(ej.Name)
	if ej.UID != uuid.Nil {
		e.UID = ej.UID
	}
	e.Tag = ej.Tag
	e.Active = ej.Active
	e.Enabled = ej.Enabled
	e.Static = ej.Static
	e.SetTransform(jsonToTransform(ej.Transform))

	if ej.Mesh != nil {
		if *ej.Mesh < 0 || *ej.Mesh >= len(meshes) {
			return nil, errors.New("entity references unknown mesh").
				WithTag("entity", ej.Name).
				WithTag("mesh", *ej.Mesh)
		}
		e.Mesh = meshes[*ej.Mesh]
	}
	if rj := ej.Renderer; rj != nil {
		e.Renderer = &MeshRenderer{Enabled: rj.Enabled, Transparent: rj.Transparent, Color: jsonToColor(rj.Color)}
	}
	if ej.Light != nil {
		e.Light = jsonToLight(ej.Light)
	}

	for _, cj := range ej.Children {
		child, err := jsonToEntity(cj, meshes)
		if err != nil {
			return nil, err
		}
		e.AddChild(child)
	}
	return e, nil
}

// FindByUID returns the entity with the given persistent identity.
func (s *Scene) FindByUID(uid uuid.UUID) *Entity {
	var found *Entity
	s.Traverse(func(e *Entity) {
		if found == nil && e.UID == uid {
			found = e
		}
	})
	return found
}
