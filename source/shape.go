package source

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
)

// Shape fills the voxels overlapping a solid given in the unit frame.
type Shape struct {
	solid geometry.Solid
	color octree.ColorFunc
}

// NewShape wraps solid. A nil color shades by distance from the center.
func NewShape(solid geometry.Solid, color octree.ColorFunc) *Shape {
	return &Shape{solid: solid, color: color}
}

// IntersectsUnitCube reports a positive-volume overlap with the solid.
func (s *Shape) IntersectsUnitCube(cube geometry.UnitCube) bool {
	return s.solid.IntersectsAABB(cube.AABB())
}

// ColorAt returns the voxel color at pos.
func (s *Shape) ColorAt(pos math32.Vector3) colorful.Color {
	return colorOr(s.color, pos)
}

// Solid returns the wrapped solid.
func (s *Shape) Solid() geometry.Solid {
	return s.solid
}
