// Package quadtree implements the engine's spatial index: a mutable tree of
// XZ regions with adjustable height that subdivides as it fills, merges as it
// empties and expands its root to fit out-of-bounds content.
package quadtree

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"spatial-engine/math"
)

// Entity is anything the tree can index. The tree does not own entities.
type Entity interface {
	SpatialID() uint32
	Bounds() math.AABB
}

// Hierarchical entities expose their descendants for
// RemoveGameObjectAndChildren.
type Hierarchical interface {
	Entity
	SpatialChildren() []Entity
}

// AddResult is the outcome of TryAdd.
type AddResult int

const (
	Added AddResult = iota
	// NeedsExpansion means the entity lies outside the root region and the
	// root must be expanded before it can be stored.
	NeedsExpansion
	// Rejected means the entity cannot be stored: its bounds are not finite,
	// or the tree is frozen and the entity does not fit the root.
	Rejected
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case NeedsExpansion:
		return "needs_expansion"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type Tree struct {
	root      *Node
	cfg       Config
	index     map[uint32]*Node
	nodeCount int
}

// NewTree creates a tree whose root covers box.
func NewTree(box math.AABB, cfg Config) *Tree {
	t := &Tree{
		cfg:   cfg.normalized(),
		index: make(map[uint32]*Node),
	}
	t.root = newNode(rootBox(box, t.cfg), nil, t)
	t.nodeCount = 1
	return t
}

func rootBox(box math.AABB, cfg Config) math.AABB {
	box = math.NewAABB(box.Min, box.Max)
	if box.Max.X-box.Min.X < cfg.MinQuadrantSideSize {
		box.Max.X = box.Min.X + cfg.MinQuadrantSideSize
	}
	if box.Max.Z-box.Min.Z < cfg.MinQuadrantSideSize {
		box.Max.Z = box.Min.Z + cfg.MinQuadrantSideSize
	}
	return box
}

func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Config() Config {
	return t.cfg
}

// TryAdd inserts e if the root region can hold it. Adding an entity that is
// already indexed moves it according to its current bounds.
func (t *Tree) TryAdd(e Entity) AddResult {
	res := t.tryAdd(e)
	instrumentAdd(res)
	return res
}

func (t *Tree) tryAdd(e Entity) AddResult {
	b := e.Bounds()
	if !b.IsFinite() || b.IsEmpty() {
		return Rejected
	}

	if t.cfg.Frozen {
		if !t.root.box.Contains(b) {
			return Rejected
		}
	} else if !t.root.box.ContainsXZ(b) {
		return NeedsExpansion
	}

	if t.Contains(e) {
		t.detach(e)
	}
	t.root.add(e, b)
	return Added
}

// Add inserts e, expanding the root when needed. It returns false when e was
// rejected.
func (t *Tree) Add(e Entity) bool {
	switch t.TryAdd(e) {
	case Added:
		return true
	case NeedsExpansion:
		if !t.ExpandToFit(e) {
			return false
		}
		return t.TryAdd(e) == Added
	default:
		return false
	}
}

// Remove takes e out of the tree and merges quadrants that became underfull.
func (t *Tree) Remove(e Entity) bool {
	n := t.detach(e)
	if n == nil {
		return false
	}
	n.OptimizeParentObjects()
	return true
}

// RemoveGameObjectAndChildren removes e and, for Hierarchical entities, all
// of its descendants. It returns the number of entities removed.
func (t *Tree) RemoveGameObjectAndChildren(e Entity) int {
	removed := 0
	if t.Remove(e) {
		removed++
	}
	if h, ok := e.(Hierarchical); ok {
		for _, c := range h.SpatialChildren() {
			removed += t.RemoveGameObjectAndChildren(c)
		}
	}
	return removed
}

// detach removes e from its node without merging and returns that node.
func (t *Tree) detach(e Entity) *Node {
	id := e.SpatialID()
	n, ok := t.index[id]
	if !ok {
		return nil
	}
	if !n.removeLocal(e) {
		// Stale index entry; fall back to a full search.
		if n = t.root.find(id); n == nil {
			delete(t.index, id)
			return nil
		}
		n.removeLocal(e)
	}
	delete(t.index, id)
	return n
}

// Update moves e after its bounds changed. On a frozen tree an entity that
// left the root region is removed and Rejected is returned.
func (t *Tree) Update(e Entity) AddResult {
	t.Remove(e)
	if t.Add(e) {
		return Added
	}
	return Rejected
}

// ExpandToFit doubles the root toward e until the root region contains it in
// XZ. The old root becomes one quadrant of the new root. It returns false on
// frozen trees, for non-finite bounds, and when the expansion limit is hit.
func (t *Tree) ExpandToFit(e Entity) bool {
	if t.cfg.Frozen {
		return false
	}

	b := e.Bounds()
	if !b.IsFinite() {
		return false
	}

	for i := 0; !t.root.box.ContainsXZ(b); i++ {
		if i >= t.cfg.MaxExpansions {
			logs.Warn(errors.New("quadtree expansion limit reached").
				WithTag("entity", e.SpatialID()).
				WithTag("expansions", i))
			return false
		}
		t.grow(b)
	}
	return true
}

func (t *Tree) grow(toward math.AABB) {
	old := t.root
	box := old.box
	size := box.Size()

	oldX := [2]float32{box.Min.X, box.Max.X}
	oldZ := [2]float32{box.Min.Z, box.Max.Z}
	growNegX := toward.Min.X < box.Min.X
	growNegZ := toward.Min.Z < box.Min.Z

	newX := [2]float32{box.Max.X, box.Max.X + size.X}
	if growNegX {
		newX = [2]float32{box.Min.X - size.X, box.Min.X}
	}
	newZ := [2]float32{box.Max.Z, box.Max.Z + size.Z}
	if growNegZ {
		newZ = [2]float32{box.Min.Z - size.Z, box.Min.Z}
	}

	leftX, rightX := oldX, newX
	if growNegX {
		leftX, rightX = newX, oldX
	}
	backZ, frontZ := oldZ, newZ
	if growNegZ {
		backZ, frontZ = newZ, oldZ
	}

	region := func(x, z [2]float32) math.AABB {
		return math.AABB{
			Min: math.Vec3{X: x[0], Y: box.Min.Y, Z: z[0]},
			Max: math.Vec3{X: x[1], Y: box.Max.Y, Z: z[1]},
		}
	}

	root := newNode(region([2]float32{leftX[0], rightX[1]}, [2]float32{backZ[0], frontZ[1]}), nil, t)
	root.children = []*Node{
		FrontLeft:  newNode(region(leftX, frontZ), root, t),
		FrontRight: newNode(region(rightX, frontZ), root, t),
		BackLeft:   newNode(region(leftX, backZ), root, t),
		BackRight:  newNode(region(rightX, backZ), root, t),
	}

	var q Quadrant
	switch {
	case !growNegX && growNegZ:
		q = FrontLeft
	case growNegX && growNegZ:
		q = FrontRight
	case !growNegX && !growNegZ:
		q = BackLeft
	default:
		q = BackRight
	}
	root.children[q] = old
	old.parent = root

	t.root = root
	t.nodeCount += 4

	instrumentExpansion()
	instrumentNodeCount(t.nodeCount)
	logs.WithTag("min", root.box.Min).
		WithTag("max", root.box.Max).
		Debug("quadtree root expanded")
}

// SetFreezedStatus freezes or unfreezes the tree. A frozen tree keeps its
// structure: no subdivision, merging, expansion or height growth. Unfreezing
// settles what was added meanwhile: entities held above a child that now
// can grow to fit them move down, and leaves over capacity subdivide.
func (t *Tree) SetFreezedStatus(frozen bool) {
	wasFrozen := t.cfg.Frozen
	t.cfg.Frozen = frozen
	if wasFrozen && !frozen {
		t.root.settle()
	}
}

func (t *Tree) Frozen() bool {
	return t.cfg.Frozen
}

// CheckRaycastIntersection returns the entities of every node whose region
// the segment touches, ancestors included. Only regions are tested.
func (t *Tree) CheckRaycastIntersection(seg math.LineSegment) []Entity {
	var entities []Entity
	t.root.visitRaycast(seg, func(e Entity) bool {
		entities = append(entities, e)
		return true
	})
	return entities
}

// VisitRaycast calls fn for the same entities as CheckRaycastIntersection
// until fn returns false. It reports whether the walk completed.
func (t *Tree) VisitRaycast(seg math.LineSegment, fn func(Entity) bool) bool {
	return t.root.visitRaycast(seg, fn)
}

// Walk visits nodes depth-first, parents before children. Returning false
// from fn skips the node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.root.walk(fn)
}

func (t *Tree) NodeCount() int {
	return t.nodeCount
}

// Depth is the number of levels; a lone root has depth 1.
func (t *Tree) Depth() int {
	return t.root.depth()
}

func (t *Tree) Len() int {
	return len(t.index)
}

func (t *Tree) Contains(e Entity) bool {
	_, ok := t.index[e.SpatialID()]
	return ok
}

// NodeOf returns the node currently holding e.
func (t *Tree) NodeOf(e Entity) (*Node, bool) {
	n, ok := t.index[e.SpatialID()]
	return n, ok
}

// Entities returns every indexed entity in walk order.
func (t *Tree) Entities() []Entity {
	entities := make([]Entity, 0, len(t.index))
	t.Walk(func(n *Node) bool {
		entities = append(entities, n.entities...)
		return true
	})
	return entities
}

// Clear drops all entities and children and keeps the root region.
func (t *Tree) Clear() {
	t.root = newNode(t.root.box, nil, t)
	t.index = make(map[uint32]*Node)
	t.nodeCount = 1
	instrumentNodeCount(t.nodeCount)
}
