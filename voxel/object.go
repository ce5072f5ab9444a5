// Package voxel places sparse voxel octrees in the world and edits them.
package voxel

import (
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/source"
)

const (
	MinDepth     = 1
	MaxDepth     = 9
	DefaultDepth = 5
)

// Source supplies occupancy and voxel colors for a build.
type Source interface {
	octree.Occupancy
	ColorAt(pos math32.Vector3) colorful.Color
}

// bounded sources report the world bounds mapped onto the unit frame.
type bounded interface {
	Bounds() geometry.AABB
}

// rootKeeper sources want a single empty node instead of an empty tree.
type rootKeeper interface {
	KeepRoot() bool
}

// Transform places an object: a cube of edge Scale centered on Position.
type Transform struct {
	Scale    float32        `json:"scale" yaml:"scale"`
	Position math32.Vector3 `json:"position" yaml:"position"`
}

// Placement converts the transform for ray traversal.
func (t Transform) Placement() octree.Placement {
	return octree.Placement{Scale: t.Scale, Position: t.Position}
}

// ToLocal maps a world point into the unit frame.
func (t Transform) ToLocal(p math32.Vector3) math32.Vector3 {
	return p.Sub(t.Position).Scale(1 / t.Scale)
}

// ToWorld maps a unit-frame point into world space.
func (t Transform) ToWorld(p math32.Vector3) math32.Vector3 {
	return p.Scale(t.Scale).Add(t.Position)
}

// Object is a placed voxel octree. Several objects may share one octree;
// edits through any of them are seen by all.
type Object struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Transform Transform `json:"transform"`

	depth  int
	tree   *octree.VoxelOctree
	bounds geometry.AABB
}

// NewObject returns an object with its own empty octree, unit scale and a fresh id.
func NewObject(name string, depth int) *Object {
	return &Object{
		ID:        uuid.NewString(),
		Name:      name,
		Transform: Transform{Scale: 1},
		depth:     math32.Clamp(depth, MinDepth, MaxDepth),
		tree:      octree.New(),
		bounds:    unitBounds(),
	}
}

func unitBounds() geometry.AABB {
	return geometry.AABB{Min: math32.Splat(-0.5), Max: math32.Splat(0.5)}
}

// Octree returns the shared octree handle.
func (o *Object) Octree() *octree.VoxelOctree {
	return o.tree
}

// SetOctree shares tree with this object and takes its depth from the tree.
func (o *Object) SetOctree(tree *octree.VoxelOctree) {
	o.tree = tree
	o.bounds = unitBounds()
	if d := o.CalculateDepth(); d > 0 {
		o.depth = d
	}
}

// CalculateDepth counts node levels along the first-child chain, -1 when empty.
func (o *Object) CalculateDepth() int {
	if o.tree == nil {
		return -1
	}
	return o.tree.Depth()
}

// Depth returns the build depth.
func (o *Object) Depth() int {
	return o.depth
}

// SetDepth changes the depth used by the next build.
func (o *Object) SetDepth(depth int) {
	o.depth = math32.Clamp(depth, MinDepth, MaxDepth)
}

// Bounds returns the source bounds of the last build.
func (o *Object) Bounds() geometry.AABB {
	return o.bounds
}

// MinVoxelSize is the number of finest voxels per edge.
func (o *Object) MinVoxelSize() int {
	return 1 << o.depth
}

// MinVoxelScale is the world edge length of a finest voxel.
func (o *Object) MinVoxelScale() float32 {
	return o.Transform.Scale / float32(o.MinVoxelSize())
}

// Build rebuilds the shared octree from src.
func (o *Object) Build(src Source) {
	if o.tree == nil {
		o.tree = octree.New()
	}
	o.tree.Build(o.depth, src, src.ColorAt)

	o.bounds = unitBounds()
	if b, ok := src.(bounded); ok {
		o.bounds = b.Bounds()
	}
	if k, ok := src.(rootKeeper); ok && k.KeepRoot() && o.tree.IsEmpty() {
		o.tree.SetNodes([]octree.OctreeNode{octree.EmptyNode})
	}
}

// SetVoxel adds the voxel next to a surface hit. point is a world position on
// the surface and normal the outward face normal there; the point is pushed
// half a voxel along the normal before it is located.
func (o *Object) SetVoxel(point, normal math32.Vector3, c colorful.Color) error {
	if o.tree == nil {
		o.tree = octree.New()
	}

	point = point.Add(normal.Scale(o.MinVoxelScale() / 2))
	p := source.Point{P: o.Transform.ToLocal(point), Color: c, Depth: o.depth}

	single := octree.New()
	single.Build(o.depth, p, p.ColorAt)
	return o.tree.MergeWith(single)
}

// Raycast traces a world-space ray against the object.
func (o *Object) Raycast(ro, rd math32.Vector3) (octree.RayHit, error) {
	if o.tree == nil {
		return octree.RayHit{Distance: geometry.MaxRayDistance}, nil
	}
	return o.tree.Raycast(o.Transform.Placement(), o.depth, ro, rd)
}

// WorldBounds returns the world box the object's cube occupies.
func (o *Object) WorldBounds() geometry.AABB {
	h := math32.Splat(o.Transform.Scale / 2)
	return geometry.AABB{Min: o.Transform.Position.Sub(h), Max: o.Transform.Position.Add(h)}
}
