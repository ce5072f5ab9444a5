package source

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

// Point occupies the single finest voxel containing P, a unit-frame point.
type Point struct {
	P     math32.Vector3
	Color colorful.Color
	// Depth is the resolution of the tree being built; it decides which
	// voxel receives Color.
	Depth int
}

// IntersectsUnitCube uses half-open containment, so a point on a shared face
// belongs to exactly one cube.
func (p Point) IntersectsUnitCube(cube geometry.UnitCube) bool {
	return cube.Contains(p.P)
}

// ColorAt returns Color for the voxel whose min corner is pos when that voxel
// holds P, and black otherwise.
func (p Point) ColorAt(pos math32.Vector3) colorful.Color {
	cells := float32(int(1) << max(p.Depth, 1))
	cube := geometry.UnitCube{Min: pos, Size: 1 / cells}
	if cube.Contains(p.P) {
		return p.Color
	}
	return colorful.Color{}
}
