package scene

import (
	"github.com/aukilabs/go-tooling/pkg/logs"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/quadtree"
)

// Scene owns the entity hierarchy and its spatial index. Static spatial
// entities live in the quadtree; moving entities, and static ones that do
// not fit a frozen tree, live in the dynamic list.
type Scene struct {
	Name     string
	Root     *Entity
	Camera   *Camera
	Ambient  core.Color
	SkyColor core.Color

	tree         *quadtree.Tree
	entities     map[uint32]*Entity
	dynamic      []*Entity
	dynamicIndex map[uint32]int
	moved        []*Entity
	movedSet     map[uint32]struct{}
}

// DefaultBounds is the initial quadtree region of a new scene.
func DefaultBounds() math.AABB {
	return math.NewAABB(math.Vec3{X: -64, Y: -1, Z: -64}, math.Vec3{X: 64, Y: 1, Z: 64})
}

func NewScene(bounds math.AABB, cfg quadtree.Config) *Scene {
	s := &Scene{
		Name:         "Scene",
		Ambient:      core.Color{R: 0.2, G: 0.2, B: 0.2, A: 1.0},
		SkyColor:     core.Color{R: 0.5, G: 0.7, B: 1.0, A: 1.0},
		tree:         quadtree.NewTree(bounds, cfg),
		entities:     make(map[uint32]*Entity),
		dynamicIndex: make(map[uint32]int),
		movedSet:     make(map[uint32]struct{}),
	}
	s.Root = NewEntity("Root")
	s.Root.scene = s
	return s
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) Tree() *quadtree.Tree {
	return s.tree
}

// Dynamic returns the entities outside the quadtree. The slice must not be
// modified.
func (s *Scene) Dynamic() []*Entity {
	return s.dynamic
}

// EntityCount excludes the root.
func (s *Scene) EntityCount() int {
	return len(s.entities)
}

func (s *Scene) EntityByID(id uint32) *Entity {
	return s.entities[id]
}

// AddEntity attaches e and its descendants under parent, or under the root
// when parent is nil, and indexes them.
func (s *Scene) AddEntity(e *Entity, parent *Entity) {
	if parent == nil {
		parent = s.Root
	}
	parent.AddChild(e)
	if e.scene == nil {
		s.register(e)
	}
}

func (s *Scene) register(e *Entity) {
	e.Traverse(func(n *Entity) {
		if n.scene == s {
			return
		}
		n.scene = s
		s.entities[n.ID] = n
		s.place(n)
	})
	instrumentEntities(len(s.entities), len(s.dynamic))
}

// Destroy removes e and its descendants from the hierarchy and from every
// index. It is the only way to take an entity out of a scene.
func (s *Scene) Destroy(e *Entity) {
	if e == nil || e == s.Root || e.scene != s {
		return
	}

	s.tree.RemoveGameObjectAndChildren(e)
	e.Traverse(func(n *Entity) {
		s.removeDynamic(n)
		s.clearMoved(n)
		delete(s.entities, n.ID)
		n.scene = nil
	})
	if e.Parent != nil {
		e.Parent.detachChild(e)
	}
	instrumentEntities(len(s.entities), len(s.dynamic))
}

// Traverse visits every entity below the root.
func (s *Scene) Traverse(callback func(*Entity)) {
	for _, child := range s.Root.Children {
		child.Traverse(callback)
	}
}

func (s *Scene) Find(name string) *Entity {
	for _, child := range s.Root.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// DirectionalLights returns the active directional lights. They have no
// volume and are never indexed.
func (s *Scene) DirectionalLights() []*Entity {
	var lights []*Entity
	s.Traverse(func(e *Entity) {
		if e.Light != nil && e.Light.Type == LightDirectional && e.IsVisible() {
			lights = append(lights, e)
		}
	})
	return lights
}

// Update re-indexes every entity whose transform, bounds or static flag
// changed since the last call.
func (s *Scene) Update(deltaTime float32) {
	if len(s.moved) == 0 {
		return
	}
	moved := s.moved
	s.moved = nil
	s.movedSet = make(map[uint32]struct{})

	for _, e := range moved {
		if e.scene == s {
			s.reindex(e)
		}
	}
	instrumentEntities(len(s.entities), len(s.dynamic))
}

// PendingUpdates is the number of entities waiting for Update.
func (s *Scene) PendingUpdates() int {
	return len(s.moved)
}

func (s *Scene) markMoved(e *Entity) {
	if _, ok := s.movedSet[e.ID]; ok {
		return
	}
	s.movedSet[e.ID] = struct{}{}
	s.moved = append(s.moved, e)
}

func (s *Scene) clearMoved(e *Entity) {
	if _, ok := s.movedSet[e.ID]; !ok {
		return
	}
	delete(s.movedSet, e.ID)
	for i, m := range s.moved {
		if m == e {
			s.moved = append(s.moved[:i], s.moved[i+1:]...)
			return
		}
	}
}

func (s *Scene) reindex(e *Entity) {
	if s.tree.Contains(e) && e.Static && e.IsSpatial() {
		if s.tree.Update(e) == quadtree.Rejected {
			s.overflow(e)
		}
		return
	}
	s.unplace(e)
	s.place(e)
}

func (s *Scene) place(e *Entity) {
	if !e.IsSpatial() {
		return
	}
	if e.Static {
		if s.tree.Add(e) {
			return
		}
		s.overflow(e)
		return
	}
	s.addDynamic(e)
}

func (s *Scene) unplace(e *Entity) {
	if s.tree.Contains(e) {
		s.tree.Remove(e)
		return
	}
	s.removeDynamic(e)
}

func (s *Scene) overflow(e *Entity) {
	logs.WithTag("entity", e.Name).
		WithTag("id", e.ID).
		Debug("static entity does not fit the quadtree, using the dynamic list")
	s.addDynamic(e)
}

func (s *Scene) addDynamic(e *Entity) {
	if _, ok := s.dynamicIndex[e.ID]; ok {
		return
	}
	s.dynamicIndex[e.ID] = len(s.dynamic)
	s.dynamic = append(s.dynamic, e)
}

func (s *Scene) removeDynamic(e *Entity) bool {
	i, ok := s.dynamicIndex[e.ID]
	if !ok {
		return false
	}
	last := len(s.dynamic) - 1
	s.dynamic[i] = s.dynamic[last]
	s.dynamicIndex[s.dynamic[i].ID] = i
	s.dynamic[last] = nil
	s.dynamic = s.dynamic[:last]
	delete(s.dynamicIndex, e.ID)
	return true
}

// InDynamicList reports whether e is tracked outside the quadtree.
func (s *Scene) InDynamicList(e *Entity) bool {
	_, ok := s.dynamicIndex[e.ID]
	return ok
}

func (s *Scene) Frozen() bool {
	return s.tree.Frozen()
}

// SetFrozen freezes or unfreezes the quadtree. Unfreezing moves static
// entities that overflowed into the dynamic list back into the tree.
func (s *Scene) SetFrozen(frozen bool) {
	s.tree.SetFreezedStatus(frozen)
	if frozen {
		return
	}

	var overflowed []*Entity
	for _, e := range s.dynamic {
		if e.Static {
			overflowed = append(overflowed, e)
		}
	}
	for _, e := range overflowed {
		s.removeDynamic(e)
		s.place(e)
	}
	instrumentEntities(len(s.entities), len(s.dynamic))
}

// Rebuild replaces the quadtree with a new one using cfg and re-inserts
// every static entity. The new root starts from the bounds of the static
// content, or from the old root region when there is none.
func (s *Scene) Rebuild(cfg quadtree.Config) {
	bounds := math.EmptyAABB()
	var static []*Entity
	s.Traverse(func(e *Entity) {
		if e.Static && e.IsSpatial() {
			static = append(static, e)
			bounds = bounds.Enclose(e.Bounds())
		}
	})
	if bounds.IsEmpty() {
		bounds = s.tree.Root().Box()
	}

	s.tree = quadtree.NewTree(bounds, cfg)
	for _, e := range static {
		s.removeDynamic(e)
		s.place(e)
	}
	logs.WithTag("nodes", s.tree.NodeCount()).
		WithTag("entities", s.tree.Len()).
		Debug("quadtree rebuilt")
	instrumentEntities(len(s.entities), len(s.dynamic))
}
