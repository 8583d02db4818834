package quadtree

import (
	"spatial-engine/math"
)

// Quadrant identifies a child slot. Front is +Z, left is -X.
type Quadrant int

const (
	FrontLeft Quadrant = iota
	FrontRight
	BackLeft
	BackRight
)

// Node is one region of the tree. A node is a leaf iff it has no children.
// Entities that straddle the split lines of a non-leaf node stay in that node.
type Node struct {
	box      math.AABB
	parent   *Node
	children []*Node
	entities []Entity
	tree     *Tree
}

func newNode(box math.AABB, parent *Node, tree *Tree) *Node {
	return &Node{
		box:    box,
		parent: parent,
		tree:   tree,
	}
}

// Box is the region covered by the node. Its Y extent covers every entity
// stored in the subtree.
func (n *Node) Box() math.AABB {
	return n.box
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the four children in Quadrant order, or nil for a leaf.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) Child(q Quadrant) *Node {
	if n.IsLeaf() {
		return nil
	}
	return n.children[q]
}

// Entities returns the entities stored directly in this node.
func (n *Node) Entities() []Entity {
	return n.entities
}

func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Len is the number of entities in the subtree rooted at n.
func (n *Node) Len() int {
	count := len(n.entities)
	for _, c := range n.children {
		count += c.Len()
	}
	return count
}

func (n *Node) frozen() bool {
	return n.tree.cfg.Frozen
}

// add stores e at the deepest node under n whose region contains b.
func (n *Node) add(e Entity, b math.AABB) {
	if !n.frozen() {
		n.box = n.box.EncloseY(b)
	}

	if !n.IsLeaf() {
		if c := n.childContaining(b); c != nil {
			c.add(e, b)
			return
		}
		n.store(e)
		return
	}

	n.store(e)
	if len(n.entities) > n.tree.cfg.QuadrantCapacity && n.canSubdivide() {
		n.Subdivide()
		held := make([]Entity, len(n.entities))
		copy(held, n.entities)
		for _, h := range held {
			n.RedistributeGameObjects(h)
		}
	}
}

func (n *Node) store(e Entity) {
	n.entities = append(n.entities, e)
	n.tree.index[e.SpatialID()] = n
}

// childContaining returns the child whose region fully contains b. Frozen
// trees cannot grow a child vertically so they also require Y containment.
func (n *Node) childContaining(b math.AABB) *Node {
	for _, c := range n.children {
		if n.frozen() {
			if c.box.Contains(b) {
				return c
			}
		} else if c.box.ContainsXZ(b) {
			return c
		}
	}
	return nil
}

func (n *Node) canSubdivide() bool {
	return !n.frozen() && n.box.SideXZ()/2 >= n.tree.cfg.MinQuadrantSideSize
}

// Subdivide splits a leaf into four equal XZ quadrants sharing the node's
// vertical extent. Held entities are not moved; see RedistributeGameObjects.
func (n *Node) Subdivide() {
	if !n.IsLeaf() {
		panic("quadtree: subdividing a node that already has children")
	}

	n.children = make([]*Node, 4)
	for q := FrontLeft; q <= BackRight; q++ {
		n.children[q] = newNode(n.quadrantBox(q), n, n.tree)
	}
	n.tree.nodeCount += 4

	instrumentSubdivision()
	instrumentNodeCount(n.tree.nodeCount)
}

func (n *Node) quadrantBox(q Quadrant) math.AABB {
	mid := n.box.Center()
	box := n.box
	switch q {
	case FrontLeft:
		box.Max.X = mid.X
		box.Min.Z = mid.Z
	case FrontRight:
		box.Min.X = mid.X
		box.Min.Z = mid.Z
	case BackLeft:
		box.Max.X = mid.X
		box.Max.Z = mid.Z
	case BackRight:
		box.Min.X = mid.X
		box.Max.Z = mid.Z
	}
	return box
}

// RedistributeGameObjects moves e from n into the deepest child that fully
// contains it. It reports whether e moved; straddlers stay in n.
func (n *Node) RedistributeGameObjects(e Entity) bool {
	if n.IsLeaf() {
		return false
	}

	b := e.Bounds()
	c := n.childContaining(b)
	if c == nil || !n.removeLocal(e) {
		return false
	}
	c.add(e, b)
	return true
}

// settle restores the placement rules below n after the tree was frozen.
func (n *Node) settle() {
	if n.IsLeaf() {
		if len(n.entities) <= n.tree.cfg.QuadrantCapacity || !n.canSubdivide() {
			return
		}
		n.Subdivide()
	}

	held := make([]Entity, len(n.entities))
	copy(held, n.entities)
	for _, h := range held {
		n.RedistributeGameObjects(h)
	}
	for _, c := range n.children {
		c.settle()
	}
}

func (n *Node) removeLocal(e Entity) bool {
	id := e.SpatialID()
	for i, held := range n.entities {
		if held.SpatialID() == id {
			last := len(n.entities) - 1
			n.entities[i] = n.entities[last]
			n.entities[last] = nil
			n.entities = n.entities[:last]
			return true
		}
	}
	return false
}

func (n *Node) find(id uint32) *Node {
	for _, held := range n.entities {
		if held.SpatialID() == id {
			return n
		}
	}
	for _, c := range n.children {
		if found := c.find(id); found != nil {
			return found
		}
	}
	return nil
}

// OptimizeParentObjects collapses underfull quadruples of leaves back into
// their parent, starting at n (or its parent when n is a leaf) and walking
// up while merges succeed. It does nothing on frozen trees or when merging
// is disabled.
func (n *Node) OptimizeParentObjects() {
	cfg := n.tree.cfg
	if cfg.Frozen || cfg.DisableMerge {
		return
	}

	node := n
	if node.IsLeaf() {
		node = node.parent
	}
	for node != nil && node.tryMerge() {
		node = node.parent
	}
}

func (n *Node) tryMerge() bool {
	if n.IsLeaf() {
		return false
	}

	total := len(n.entities)
	for _, c := range n.children {
		if !c.IsLeaf() {
			return false
		}
		total += len(c.entities)
	}
	if total > n.tree.cfg.QuadrantCapacity {
		return false
	}

	for _, c := range n.children {
		for _, e := range c.entities {
			n.store(e)
		}
		c.entities = nil
		c.parent = nil
	}
	n.children = nil
	n.tree.nodeCount -= 4

	instrumentMerge()
	instrumentNodeCount(n.tree.nodeCount)
	return true
}

func (n *Node) visitRaycast(seg math.LineSegment, fn func(Entity) bool) bool {
	if !seg.HasIntersection(n.box) {
		return true
	}
	for _, e := range n.entities {
		if !fn(e) {
			return false
		}
	}
	for _, c := range n.children {
		if !c.visitRaycast(seg, fn) {
			return false
		}
	}
	return true
}

func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *Node) depth() int {
	d := 0
	for _, c := range n.children {
		if cd := c.depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}
