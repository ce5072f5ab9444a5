// Package octree stores sparse voxel octrees as a flat array of fixed-size
// node records and implements building, merging and ray traversal over it.
package octree

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

// Occupancy decides whether any solid content touches a cube of the unit frame.
type Occupancy interface {
	IntersectsUnitCube(cube geometry.UnitCube) bool
}

// OccupancyFunc adapts a function to Occupancy.
type OccupancyFunc func(cube geometry.UnitCube) bool

// IntersectsUnitCube calls f(cube).
func (f OccupancyFunc) IntersectsUnitCube(cube geometry.UnitCube) bool {
	return f(cube)
}

// ColorFunc returns the color of the finest voxel whose min corner is pos.
type ColorFunc func(pos math32.Vector3) colorful.Color

// VoxelOctree is a sparse voxel octree over the unit cube [-0.5, 0.5]^3.
// Node 0 is the root when the tree is not empty.
type VoxelOctree struct {
	nodes []OctreeNode
}

// New returns an empty octree.
func New() *VoxelOctree {
	return &VoxelOctree{}
}

// NewFromNodes wraps nodes, copying them when clone is set.
func NewFromNodes(nodes []OctreeNode, clone bool) *VoxelOctree {
	if clone {
		nodes = append([]OctreeNode(nil), nodes...)
	}
	return &VoxelOctree{nodes: nodes}
}

// Nodes returns the node array. Callers must not modify it.
func (o *VoxelOctree) Nodes() []OctreeNode {
	return o.nodes
}

// SetNodes replaces the node array.
func (o *VoxelOctree) SetNodes(nodes []OctreeNode) {
	o.nodes = nodes
}

// Len returns the number of nodes.
func (o *VoxelOctree) Len() int {
	return len(o.nodes)
}

// IsEmpty reports whether the tree has no nodes.
func (o *VoxelOctree) IsEmpty() bool {
	return len(o.nodes) == 0
}

// Clear drops every node.
func (o *VoxelOctree) Clear() {
	o.nodes = nil
}

// Clone returns a deep copy.
func (o *VoxelOctree) Clone() *VoxelOctree {
	return NewFromNodes(o.nodes, true)
}

type buildItem struct {
	cube   geometry.UnitCube
	parent int32
}

// Build replaces the tree with one sampled from occ, breadth first, down to
// voxels of edge 1/2^depth. Octants at the finest level get their color from
// color evaluated at the octant's min corner; a nil color paints black.
// If occ rejects the root cube the tree becomes empty.
func (o *VoxelOctree) Build(depth int, occ Occupancy, color ColorFunc) {
	o.nodes = build(depth, occ, color)
}

func build(depth int, occ Occupancy, color ColorFunc) []OctreeNode {
	if !occ.IntersectsUnitCube(geometry.RootCube) {
		return nil
	}

	depth = math32.Clamp(depth, 0, MaxDepth)
	voxelSize := 1 / float32(int(1)<<depth)

	var nodes []OctreeNode
	var q queue[buildItem]
	q.push(buildItem{cube: geometry.RootCube, parent: -1})

	for q.Len() > 0 {
		item := q.pop()
		node := OctreeNode{Child: -1, Parent: item.parent}
		half := item.cube.Size / 2

		for i := 0; i < 8; i++ {
			sub := item.cube.Octant(i)
			if !occ.IntersectsUnitCube(sub) {
				continue
			}
			node.Mask |= 1 << i

			if half > voxelSize {
				if node.Child == -1 {
					node.Child = int32(len(nodes) + q.Len() + 1)
				}
				q.push(buildItem{cube: sub, parent: int32(len(nodes))})
				continue
			}

			if color != nil {
				node.addColor(i, PackRGB15(color(sub.Min)))
			}
		}

		nodes = append(nodes, node)
	}
	return nodes
}

// Depth counts node levels along the first-child chain, -1 for an empty tree.
func (o *VoxelOctree) Depth() int {
	if len(o.nodes) == 0 {
		return -1
	}

	count := 1
	node := o.nodes[0]
	for node.Child != -1 && int(node.Child) < len(o.nodes) && count <= MaxDepth {
		node = o.nodes[node.Child]
		count++
	}
	return count
}
