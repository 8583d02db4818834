package scene

import (
	"github.com/google/uuid"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
)

// MeshRenderer makes an entity's mesh drawable and pickable.
type MeshRenderer struct {
	Enabled     bool
	Transparent bool
	Color       core.Color
}

func NewMeshRenderer(c core.Color) *MeshRenderer {
	return &MeshRenderer{Enabled: true, Color: c, Transparent: c.A < 1}
}

// Entity is an object in the scene hierarchy. Entities with a mesh or a
// light volume are indexed spatially by the scene that owns them.
type Entity struct {
	ID   uint32
	UID  uuid.UUID
	Name string
	Tag  string

	// Active disables the entity and its descendants.
	Active bool
	// Enabled disables only this entity's rendering and picking.
	Enabled bool
	// Static entities live in the quadtree; others in the dynamic list.
	Static bool

	Transform core.Transform
	Mesh      *Mesh
	Renderer  *MeshRenderer
	Light     *Light

	Parent   *Entity
	Children []*Entity

	scene            *Scene
	worldMatrix      math.Mat4
	worldMatrixDirty bool
	bounds           math.AABB
	boundsDirty      bool
}

var entityIDCounter uint32

func NewEntity(name string) *Entity {
	entityIDCounter++
	return &Entity{
		ID:               entityIDCounter,
		UID:              uuid.New(),
		Name:             name,
		Active:           true,
		Enabled:          true,
		Transform:        core.NewTransform(),
		Children:         make([]*Entity, 0),
		worldMatrixDirty: true,
		boundsDirty:      true,
	}
}

// NewMeshEntity creates an entity drawing mesh with an opaque renderer.
func NewMeshEntity(name string, mesh *Mesh, c core.Color) *Entity {
	e := NewEntity(name)
	e.Mesh = mesh
	e.Renderer = NewMeshRenderer(c)
	return e
}

func (e *Entity) SpatialID() uint32 {
	return e.ID
}

// Bounds is the world AABB enclosing the mesh and the light volume. An
// entity with neither has a point box at its world position.
func (e *Entity) Bounds() math.AABB {
	if !e.boundsDirty {
		return e.bounds
	}

	world := e.WorldMatrix()
	box := math.EmptyAABB()
	if e.Mesh != nil {
		box = box.Enclose(e.Mesh.WorldAABB(world))
	}
	if e.Light != nil && e.Light.HasVolume() {
		box = box.Enclose(e.Light.Volume(e.WorldPosition()))
	}
	if box.IsEmpty() {
		p := e.WorldPosition()
		box = math.AABB{Min: p, Max: p}
	}

	e.bounds = box
	e.boundsDirty = false
	return box
}

func (e *Entity) SpatialChildren() []quadtree.Entity {
	children := make([]quadtree.Entity, len(e.Children))
	for i, c := range e.Children {
		children[i] = c
	}
	return children
}

// IsSpatial reports whether the entity occupies space and is indexed.
func (e *Entity) IsSpatial() bool {
	return e.Mesh != nil || (e.Light != nil && e.Light.HasVolume())
}

// IsRenderable reports whether the entity has an enabled mesh renderer.
func (e *Entity) IsRenderable() bool {
	return e.Mesh != nil && e.Renderer != nil && e.Renderer.Enabled
}

func (e *Entity) ActiveInHierarchy() bool {
	for n := e; n != nil; n = n.Parent {
		if !n.Active {
			return false
		}
	}
	return true
}

// IsVisible reports whether the entity takes part in rendering and picking.
func (e *Entity) IsVisible() bool {
	return e.Enabled && e.ActiveInHierarchy()
}

func (e *Entity) Scene() *Scene {
	return e.scene
}

func (e *Entity) SetActive(active bool) {
	e.Active = active
}

// SetStatic moves the entity between the quadtree and the dynamic list on
// the next Scene.Update.
func (e *Entity) SetStatic(static bool) {
	if e.Static == static {
		return
	}
	e.Static = static
	e.notifyMoved()
}

func (e *Entity) SetMesh(mesh *Mesh) {
	e.Mesh = mesh
	e.MarkBoundsDirty()
}

func (e *Entity) SetLight(light *Light) {
	e.Light = light
	e.MarkBoundsDirty()
}

func (e *Entity) AddChild(child *Entity) {
	if child.Parent != nil {
		child.Parent.detachChild(child)
	}
	child.Parent = e
	e.Children = append(e.Children, child)
	child.MarkWorldMatrixDirty()

	if e.scene != nil && child.scene == nil {
		e.scene.register(child)
	}
}

// RemoveChild detaches child. A child that belongs to a scene is re-parented
// to the scene root; use Scene.Destroy to take it out of the scene.
func (e *Entity) RemoveChild(child *Entity) {
	if child.Parent != e {
		return
	}
	e.detachChild(child)
	if child.scene != nil {
		child.scene.Root.AddChild(child)
		return
	}
	child.MarkWorldMatrixDirty()
}

func (e *Entity) detachChild(child *Entity) {
	for i, c := range e.Children {
		if c == child {
			e.Children = append(e.Children[:i], e.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// WorldMatrix returns local * parentWorld (row-vector order).
func (e *Entity) WorldMatrix() math.Mat4 {
	if e.worldMatrixDirty {
		local := e.Transform.GetMatrix()
		if e.Parent != nil {
			e.worldMatrix = local.Mul(e.Parent.WorldMatrix())
		} else {
			e.worldMatrix = local
		}
		e.worldMatrixDirty = false
	}
	return e.worldMatrix
}

func (e *Entity) WorldPosition() math.Vec3 {
	m := e.WorldMatrix()
	return math.Vec3{X: m[3][0], Y: m[3][1], Z: m[3][2]}
}

func (e *Entity) MarkWorldMatrixDirty() {
	e.worldMatrixDirty = true
	e.MarkBoundsDirty()
	for _, child := range e.Children {
		child.MarkWorldMatrixDirty()
	}
}

// MarkBoundsDirty schedules the entity for re-indexing after its mesh or
// light changed.
func (e *Entity) MarkBoundsDirty() {
	e.boundsDirty = true
	e.notifyMoved()
}

func (e *Entity) notifyMoved() {
	if e.scene != nil {
		e.scene.markMoved(e)
	}
}

func (e *Entity) SetPosition(pos math.Vec3) {
	e.Transform.Position = pos
	e.MarkWorldMatrixDirty()
}

func (e *Entity) SetRotation(rot math.Quaternion) {
	e.Transform.Rotation = rot
	e.MarkWorldMatrixDirty()
}

func (e *Entity) SetScale(scale math.Vec3) {
	e.Transform.Scale = scale
	e.MarkWorldMatrixDirty()
}

func (e *Entity) SetTransform(t core.Transform) {
	e.Transform = t
	e.MarkWorldMatrixDirty()
}

func (e *Entity) Translate(delta math.Vec3) {
	e.Transform.Position = e.Transform.Position.Add(delta)
	e.MarkWorldMatrixDirty()
}

func (e *Entity) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	e.Transform.Rotation = e.Transform.Rotation.Mul(rotation).Normalize()
	e.MarkWorldMatrixDirty()
}

// Traverse visits the entity and its descendants, parents first.
func (e *Entity) Traverse(callback func(*Entity)) {
	callback(e)
	for _, child := range e.Children {
		child.Traverse(callback)
	}
}

// Find finds an entity by name
func (e *Entity) Find(name string) *Entity {
	if e.Name == name {
		return e
	}
	for _, child := range e.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// IsDescendantOf reports whether e is ancestor itself or lies below it.
func (e *Entity) IsDescendantOf(ancestor *Entity) bool {
	for n := e; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Clone copies the entity and its descendants with fresh identities. Meshes
// are shared; renderers and lights are copied.
func (e *Entity) Clone() *Entity {
	c := NewEntity(e.Name)
	c.Tag = e.Tag
	c.Active = e.Active
	c.Enabled = e.Enabled
	c.Static = e.Static
	c.Transform = e.Transform
	c.Mesh = e.Mesh
	if e.Renderer != nil {
		r := *e.Renderer
		c.Renderer = &r
	}
	if e.Light != nil {
		l := *e.Light
		c.Light = &l
	}
	for _, child := range e.Children {
		cc := child.Clone()
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}
