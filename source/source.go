// Package source provides the occupancy sources an octree can be built from:
// triangle meshes, bit grids, procedural heightmaps, random fills and single points.
package source

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
)

// GreyByDistance shades a voxel by |pos|^1.5, darkest at the cube center.
func GreyByDistance(pos math32.Vector3) colorful.Color {
	l := float64(math32.Pow(pos.Length(), 1.5))
	return colorful.Color{R: l, G: l, B: l}.Clamped()
}

// Solid paints every voxel c.
func Solid(c colorful.Color) octree.ColorFunc {
	return func(math32.Vector3) colorful.Color {
		return c
	}
}

func colorOr(fn octree.ColorFunc, pos math32.Vector3) colorful.Color {
	if fn == nil {
		return GreyByDistance(pos)
	}
	return fn(pos)
}

// Empty occupies nothing; an object built from it keeps a single empty root
// node so it can still be edited.
type Empty struct{}

// IntersectsUnitCube always reports false.
func (Empty) IntersectsUnitCube(geometry.UnitCube) bool {
	return false
}

// ColorAt returns black.
func (Empty) ColorAt(math32.Vector3) colorful.Color {
	return colorful.Color{}
}

// KeepRoot reports true.
func (Empty) KeepRoot() bool {
	return true
}
