// Package bvh implements a binary bounding volume hierarchy over triangles,
// used to answer "does any triangle touch this box" while voxelizing meshes.
package bvh

import (
	"sort"

	"github.com/o0olele/svo-go/geometry"
)

// Axis is a split axis.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// MaxLeafTriangles is the largest triangle count stored in a single leaf.
const MaxLeafTriangles = 2

// Node is a BVH node. Leaves have nil children and own their triangles.
type Node struct {
	Left      *Node
	Right     *Node
	Box       geometry.AABB
	Triangles []geometry.Triangle
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Stats describes the shape of a tree.
type Stats struct {
	Triangles int `json:"triangles"`
	Nodes     int `json:"nodes"`
	Leaves    int `json:"leaves"`
	MaxDepth  int `json:"maxDepth"`
}

// Tree is a triangle BVH.
type Tree struct {
	root  *Node
	stats Stats
}

// Build constructs a tree over tris. The slice is copied, the caller keeps ownership.
// An empty input produces a single empty leaf with a zero box.
func Build(tris []geometry.Triangle) *Tree {
	work := make([]geometry.Triangle, len(tris))
	copy(work, tris)

	t := &Tree{stats: Stats{Triangles: len(work)}}
	t.root = t.partition(work, 0)
	return t
}

func (t *Tree) partition(work []geometry.Triangle, depth int) *Node {
	t.stats.Nodes++
	if depth > t.stats.MaxDepth {
		t.stats.MaxDepth = depth
	}

	if len(work) <= MaxLeafTriangles {
		t.stats.Leaves++
		return &Node{Box: geometry.AABBFromTriangles(work), Triangles: work}
	}

	box := geometry.AABBFromTriangles(work)
	axis := splitAxis(box)
	sort.SliceStable(work, func(i, j int) bool {
		return work[i].Centroid().Get(int(axis)) < work[j].Centroid().Get(int(axis))
	})

	mid := len(work) / 2
	left := t.partition(work[:mid:mid], depth+1)
	right := t.partition(work[mid:], depth+1)
	return &Node{
		Left:  left,
		Right: right,
		Box:   left.Box.Union(right.Box),
	}
}

// splitAxis picks the longest extent, Y only when strictly longer than both others.
func splitAxis(box geometry.AABB) Axis {
	size := box.Size()
	switch {
	case size.Y > size.X && size.Y > size.Z:
		return YAxis
	case size.Z > size.X:
		return ZAxis
	default:
		return XAxis
	}
}

// Root returns the root node, nil after Clear.
func (t *Tree) Root() *Node {
	return t.root
}

// Bounds returns the root box.
func (t *Tree) Bounds() geometry.AABB {
	if t.root == nil {
		return geometry.AABB{}
	}
	return t.root.Box
}

// Stats returns build statistics.
func (t *Tree) Stats() Stats {
	return t.stats
}

// Len returns the number of triangles in the tree.
func (t *Tree) Len() int {
	return t.stats.Triangles
}

// Query reports whether any triangle intersects box.
func (t *Tree) Query(box geometry.AABB) bool {
	if t.root == nil {
		return false
	}

	stack := make([]*Node, 0, 2*t.stats.MaxDepth+2)
	stack = append(stack, t.root)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !n.Box.Intersects(box) {
			continue
		}
		if n.IsLeaf() {
			for _, tri := range n.Triangles {
				if tri.IntersectsAABB(box) {
					return true
				}
			}
			continue
		}
		if n.Right != nil {
			stack = append(stack, n.Right)
		}
		if n.Left != nil {
			stack = append(stack, n.Left)
		}
	}
	return false
}

// Walk visits every node in depth-first order until fn returns false.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	type item struct {
		n     *Node
		depth int
	}
	if t.root == nil {
		return
	}
	stack := []item{{t.root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.n, it.depth) {
			return
		}
		if it.n.Right != nil {
			stack = append(stack, item{it.n.Right, it.depth + 1})
		}
		if it.n.Left != nil {
			stack = append(stack, item{it.n.Left, it.depth + 1})
		}
	}
}

// Clear releases every node without recursion.
func (t *Tree) Clear() {
	if t.root == nil {
		return
	}
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Left != nil {
			stack = append(stack, n.Left)
		}
		if n.Right != nil {
			stack = append(stack, n.Right)
		}
		n.Left, n.Right, n.Triangles = nil, nil, nil
	}
	t.root = nil
	t.stats = Stats{}
}
