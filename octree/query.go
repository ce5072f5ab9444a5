package octree

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

// Stats summarises a tree.
type Stats struct {
	Nodes  int `json:"nodes"`
	Leaves int `json:"leaves"`
	Voxels int `json:"voxels"`
	Levels int `json:"levels"`
	Depth  int `json:"depth"`
	Bytes  int `json:"bytes"`
}

// Stats walks the node array once. Out of range children are ignored.
func (o *VoxelOctree) Stats() Stats {
	st := Stats{Nodes: len(o.nodes), Depth: o.Depth(), Bytes: len(o.nodes) * NodeSize}
	if len(o.nodes) == 0 {
		return st
	}

	levels := make([]int, len(o.nodes))
	levels[0] = 1
	for i, n := range o.nodes {
		st.Levels = max(st.Levels, levels[i])
		if n.Child == -1 {
			if n.Mask&0xFF != 0 {
				st.Leaves++
				st.Voxels += n.ChildCount()
			}
			continue
		}
		for j := int(n.Child); j < int(n.Child)+n.ChildCount() && j < len(levels); j++ {
			if j > i {
				levels[j] = levels[i] + 1
			}
		}
	}
	return st
}

// Validate checks that every child run and parent index stays inside the array.
func (o *VoxelOctree) Validate() error {
	n := len(o.nodes)
	for i, node := range o.nodes {
		if node.Mask&^0xFF != 0 {
			return errors.Wrapf(ErrMalformedTree, "node %d: mask %#x has bits above octant 7", i, node.Mask)
		}
		if i == 0 && node.Parent != -1 {
			return errors.Wrapf(ErrMalformedTree, "root parent is %d", node.Parent)
		}
		if i > 0 && (node.Parent < 0 || int(node.Parent) >= n) {
			return errors.Wrapf(ErrMalformedTree, "node %d: parent %d out of range [0,%d)", i, node.Parent, n)
		}
		if node.Child == -1 {
			continue
		}
		if node.Child <= int32(i) || int(node.Child)+node.ChildCount() > n {
			return errors.Wrapf(ErrMalformedTree, "node %d: children [%d,%d) out of range (%d,%d)",
				i, node.Child, int(node.Child)+node.ChildCount(), i, n)
		}
	}
	return nil
}

// lookup descends to the solid voxel containing p, a point of the unit frame.
// Faces belong to the lower octant, matching UnitCube.Contains.
func (o *VoxelOctree) lookup(p math32.Vector3) (OctreeNode, int, bool) {
	if len(o.nodes) == 0 || !geometry.RootCube.Contains(p) {
		return OctreeNode{}, 0, false
	}

	cube := geometry.RootCube
	node := o.nodes[0]
	for level := 0; level <= MaxDepth; level++ {
		c := cube.Center()
		octant := 0
		if p.X > c.X {
			octant |= 1
		}
		if p.Y > c.Y {
			octant |= 2
		}
		if p.Z > c.Z {
			octant |= 4
		}

		if !node.Has(octant) {
			return OctreeNode{}, 0, false
		}
		if node.Child == -1 {
			return node, octant, true
		}

		ci := node.ChildIndex(octant)
		if ci < 0 || int(ci) >= len(o.nodes) {
			return OctreeNode{}, 0, false
		}
		node = o.nodes[ci]
		cube = cube.Octant(octant)
	}
	return OctreeNode{}, 0, false
}

// ContainsPoint reports whether p lies in a solid voxel.
func (o *VoxelOctree) ContainsPoint(p math32.Vector3) bool {
	_, _, ok := o.lookup(p)
	return ok
}

// ColorAt returns the color of the voxel containing p.
func (o *VoxelOctree) ColorAt(p math32.Vector3) (colorful.Color, bool) {
	node, octant, ok := o.lookup(p)
	if !ok {
		return colorful.Color{}, false
	}
	return node.RGB(octant), true
}

// Equal reports whether both trees have identical node arrays.
func (o *VoxelOctree) Equal(other *VoxelOctree) bool {
	if len(o.nodes) != len(other.nodes) {
		return false
	}
	for i := range o.nodes {
		if o.nodes[i] != other.nodes[i] {
			return false
		}
	}
	return true
}

// Occupied follows path, one octant per level from the root, and reports
// whether the cell it names is solid or has solid content below it.
func (o *VoxelOctree) Occupied(path []int) bool {
	if len(o.nodes) == 0 {
		return false
	}
	node := o.nodes[0]
	for _, octant := range path {
		if !node.Has(octant) {
			return false
		}
		if node.Child == -1 {
			return true
		}
		ci := node.ChildIndex(octant)
		if ci < 0 || int(ci) >= len(o.nodes) {
			return false
		}
		node = o.nodes[ci]
	}
	return true
}
