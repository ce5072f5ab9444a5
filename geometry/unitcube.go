package geometry

import "github.com/o0olele/svo-go/math32"

// UnitCube is an axis-aligned cube inside the canonical [-0.5, 0.5]^3 frame.
type UnitCube struct {
	Min  math32.Vector3 `json:"min"`
	Size float32        `json:"size"`
}

// RootCube is the whole canonical frame.
var RootCube = UnitCube{Min: math32.Splat(-0.5), Size: 1}

// NewUnitCube returns a cube at min with its size clamped to [0, 1].
func NewUnitCube(min math32.Vector3, size float32) UnitCube {
	return UnitCube{Min: min, Size: math32.Clamp(size, 0, 1)}
}

// Max returns the far corner.
func (c UnitCube) Max() math32.Vector3 {
	return c.Min.Add(math32.Splat(c.Size))
}

// Center returns the cube center.
func (c UnitCube) Center() math32.Vector3 {
	return c.Min.Add(math32.Splat(c.Size / 2))
}

// AABB returns the cube as a bounding box.
func (c UnitCube) AABB() AABB {
	return AABB{Min: c.Min, Max: c.Max()}
}

// Contains uses half-open bounds: min < p <= max on every axis.
func (c UnitCube) Contains(p math32.Vector3) bool {
	max := c.Max()
	return c.Min.X < p.X && p.X <= max.X &&
		c.Min.Y < p.Y && p.Y <= max.Y &&
		c.Min.Z < p.Z && p.Z <= max.Z
}

// OctantOffset returns the 0/1 offset of octant i: bit 0 is +X, bit 1 is +Y, bit 2 is +Z.
func OctantOffset(i int) math32.Vector3 {
	return math32.Vector3{X: float32(i & 1), Y: float32((i >> 1) & 1), Z: float32((i >> 2) & 1)}
}

// Octant returns the i-th child cube of half the size.
func (c UnitCube) Octant(i int) UnitCube {
	half := c.Size / 2
	return UnitCube{Min: c.Min.Add(OctantOffset(i).Scale(half)), Size: half}
}
