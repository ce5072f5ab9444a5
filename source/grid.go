package source

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
)

// Grid is a cubic bit grid of 2^depth cells per axis covering the unit frame.
// Cells are stored in Morton order so that every aligned octree cube maps to
// one contiguous bit range.
type Grid struct {
	depth int
	size  int32
	bits  math32.Bitmap
	color octree.ColorFunc
}

// NewGrid allocates an empty grid.
func NewGrid(depth int) *Grid {
	depth = math32.Clamp(depth, 0, octree.MaxDepth)
	size := int32(1) << depth
	return &Grid{
		depth: depth,
		size:  size,
		bits:  math32.NewBitmap(uint32(size) * uint32(size) * uint32(size)),
	}
}

// WithColor sets the color function used for built voxels.
func (g *Grid) WithColor(fn octree.ColorFunc) *Grid {
	g.color = fn
	return g
}

// Depth returns the grid resolution exponent.
func (g *Grid) Depth() int {
	return g.depth
}

// Size returns the number of cells per axis.
func (g *Grid) Size() int32 {
	return g.size
}

// Set turns a cell on or off. Cells outside the grid are ignored.
func (g *Grid) Set(c math32.Vector3i, on bool) {
	if !c.InRange(g.size) {
		return
	}
	code := uint32(octree.EncodeMorton3D(uint32(c.X), uint32(c.Y), uint32(c.Z)))
	if on {
		g.bits.Set(code)
	} else {
		g.bits.Remove(code)
	}
}

// Get reports whether a cell is on.
func (g *Grid) Get(c math32.Vector3i) bool {
	if !c.InRange(g.size) {
		return false
	}
	return g.bits.Contains(uint32(octree.EncodeMorton3D(uint32(c.X), uint32(c.Y), uint32(c.Z))))
}

// Count returns the number of cells that are on.
func (g *Grid) Count() int {
	return g.bits.Count()
}

// Clear turns every cell off.
func (g *Grid) Clear() {
	g.bits.Clear()
}

// CellOf returns the cell containing a point of the unit frame.
func (g *Grid) CellOf(p math32.Vector3) math32.Vector3i {
	return math32.FloorToInt(p.Add(math32.Splat(0.5)).Scale(float32(g.size)))
}

// CellMin returns the unit-frame min corner of a cell.
func (g *Grid) CellMin(c math32.Vector3i) math32.Vector3 {
	inv := 1 / float32(g.size)
	return math32.Vec3(float32(c.X), float32(c.Y), float32(c.Z)).Scale(inv).Sub(math32.Splat(0.5))
}

// IntersectsUnitCube reports whether any cell inside cube is on. A cube
// smaller than one cell tests the cell containing its min corner.
func (g *Grid) IntersectsUnitCube(cube geometry.UnitCube) bool {
	lo := g.CellOf(cube.Min)
	span := int32(float32(g.size) * cube.Size)
	if span < 1 {
		return g.Get(lo)
	}

	if span&(span-1) == 0 && lo.X%span == 0 && lo.Y%span == 0 && lo.Z%span == 0 && lo.InRange(g.size) {
		from, to := octree.MortonRange(lo, uint32(span))
		return g.bits.AnyInRange(uint32(from), uint32(to))
	}

	min := lo.Max(math32.Vector3i{})
	max := lo.Add(math32.Vector3i{X: span, Y: span, Z: span}).Min(math32.Vector3i{X: g.size, Y: g.size, Z: g.size})
	for x := min.X; x < max.X; x++ {
		for y := min.Y; y < max.Y; y++ {
			for z := min.Z; z < max.Z; z++ {
				if g.Get(math32.Vector3i{X: x, Y: y, Z: z}) {
					return true
				}
			}
		}
	}
	return false
}

// ColorAt returns the voxel color at pos.
func (g *Grid) ColorAt(pos math32.Vector3) colorful.Color {
	return colorOr(g.color, pos)
}

// Dilate grows every solid cell by radius cells, in a sphere.
func (g *Grid) Dilate(radius int32) {
	if radius <= 0 {
		return
	}

	orig := append(math32.Bitmap(nil), g.bits...)
	r2 := radius * radius
	for code := uint32(0); code < uint32(g.size)*uint32(g.size)*uint32(g.size); code++ {
		if !orig.Contains(code) {
			continue
		}
		x, y, z := octree.DecodeMorton3D(octree.MortonCode(code))
		center := math32.Vector3i{X: int32(x), Y: int32(y), Z: int32(z)}
		for dz := -radius; dz <= radius; dz++ {
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if dx*dx+dy*dy+dz*dz <= r2 {
						g.Set(center.Add(math32.Vector3i{X: dx, Y: dy, Z: dz}), true)
					}
				}
			}
		}
	}
}
