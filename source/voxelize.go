package source

import (
	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

// Frame maps world space onto the unit frame: the largest extent of Bounds
// becomes 1 and its center becomes the origin.
type Frame struct {
	Bounds geometry.AABB
	center math32.Vector3
	extent float32
}

// NewFrame returns the frame fitted to bounds.
func NewFrame(bounds geometry.AABB) Frame {
	return Frame{Bounds: bounds, center: bounds.Center(), extent: bounds.MaxExtent()}
}

// Degenerate reports whether the bounds have no extent.
func (f Frame) Degenerate() bool {
	return f.extent <= 0
}

// ToWorld maps a unit-frame point to world space.
func (f Frame) ToWorld(p math32.Vector3) math32.Vector3 {
	return p.Scale(f.extent).Add(f.center)
}

// ToUnit maps a world point to the unit frame.
func (f Frame) ToUnit(p math32.Vector3) math32.Vector3 {
	return p.Sub(f.center).Scale(1 / f.extent)
}

// CubeToWorld returns the world box covered by a unit cube.
func (f Frame) CubeToWorld(cube geometry.UnitCube) geometry.AABB {
	return geometry.AABB{Min: f.ToWorld(cube.Min), Max: f.ToWorld(cube.Max())}
}

// Voxelize rasterizes tris into a grid of 2^depth cells per axis, fitting
// the mesh bounds to the unit frame.
func Voxelize(tris []geometry.Triangle, depth int) *Grid {
	g := NewGrid(depth)
	frame := NewFrame(geometry.AABBFromTriangles(tris))
	if len(tris) == 0 || frame.Degenerate() {
		return g
	}

	for _, t := range tris {
		g.voxelizeTriangle(geometry.Triangle{A: frame.ToUnit(t.A), B: frame.ToUnit(t.B), C: frame.ToUnit(t.C)})
	}
	return g
}

// VoxelizeTriangles marks every cell touched by tris, given in the unit frame.
func (g *Grid) VoxelizeTriangles(tris []geometry.Triangle) {
	for i := range tris {
		g.voxelizeTriangle(tris[i])
	}
}

// voxelizeTriangle tests every cell of the triangle's bounds with the exact SAT test.
func (g *Grid) voxelizeTriangle(tri geometry.Triangle) {
	bounds := tri.Bounds()
	last := math32.Vector3i{X: g.size - 1, Y: g.size - 1, Z: g.size - 1}
	// a triangle on a max face of the frame has its min corner one cell past the end
	minCell := g.CellOf(bounds.Min).Max(math32.Vector3i{}).Min(last)
	maxCell := g.CellOf(bounds.Max).Min(last).Max(math32.Vector3i{})

	half := math32.Splat(0.5 / float32(g.size))
	for z := minCell.Z; z <= maxCell.Z; z++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for x := minCell.X; x <= maxCell.X; x++ {
				c := math32.Vector3i{X: x, Y: y, Z: z}
				if tri.IntersectsBox(g.CellMin(c).Add(half), half) {
					g.Set(c, true)
				}
			}
		}
	}
}
