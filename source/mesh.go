package source

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/bvh"
	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
)

// Mesh answers occupancy queries against a triangle mesh through a BVH.
type Mesh struct {
	tree  *bvh.Tree
	frame Frame
	color octree.ColorFunc
}

// NewMesh builds the BVH for tris. A nil color shades by distance from the center.
func NewMesh(tris []geometry.Triangle, color octree.ColorFunc) *Mesh {
	tree := bvh.Build(tris)
	return &Mesh{tree: tree, frame: NewFrame(tree.Bounds()), color: color}
}

// IntersectsUnitCube maps cube into mesh space and queries the BVH.
func (m *Mesh) IntersectsUnitCube(cube geometry.UnitCube) bool {
	if m.tree.Len() == 0 || m.frame.Degenerate() {
		return false
	}
	return m.tree.Query(m.frame.CubeToWorld(cube))
}

// ColorAt returns the voxel color at pos.
func (m *Mesh) ColorAt(pos math32.Vector3) colorful.Color {
	return colorOr(m.color, pos)
}

// Bounds returns the mesh bounds.
func (m *Mesh) Bounds() geometry.AABB {
	return m.frame.Bounds
}

// Tree returns the underlying BVH.
func (m *Mesh) Tree() *bvh.Tree {
	return m.tree
}

// Release frees the BVH. The mesh answers false afterwards.
func (m *Mesh) Release() {
	m.tree.Clear()
}
