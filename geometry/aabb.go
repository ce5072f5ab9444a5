package geometry

import "github.com/o0olele/svo-go/math32"

// AABB is axis-aligned bounding box
type AABB struct {
	Min math32.Vector3 `json:"min"`
	Max math32.Vector3 `json:"max"`
}

// AABBFromTriangles returns the union bounds of tris, or the zero box when tris is empty.
func AABBFromTriangles(tris []Triangle) AABB {
	if len(tris) == 0 {
		return AABB{}
	}
	box := tris[0].Bounds()
	for i := 1; i < len(tris); i++ {
		box = box.Union(tris[i].Bounds())
	}
	return box
}

// Contains checks if the point is inside the AABB
func (aabb AABB) Contains(point math32.Vector3) bool {
	return point.X >= aabb.Min.X && point.X <= aabb.Max.X &&
		point.Y >= aabb.Min.Y && point.Y <= aabb.Max.Y &&
		point.Z >= aabb.Min.Z && point.Z <= aabb.Max.Z
}

// Center returns the center of the AABB
func (aabb AABB) Center() math32.Vector3 {
	return aabb.Min.Add(aabb.Max).Scale(0.5)
}

// Size returns the size of the AABB
func (aabb AABB) Size() math32.Vector3 {
	return aabb.Max.Sub(aabb.Min)
}

// HalfSize returns half of the AABB extents.
func (aabb AABB) HalfSize() math32.Vector3 {
	return aabb.Size().Scale(0.5)
}

// MaxExtent returns the largest edge length.
func (aabb AABB) MaxExtent() float32 {
	return aabb.Size().MaxComponent()
}

// Intersects checks if the AABB overlaps another one; touching faces count.
func (aabb AABB) Intersects(other AABB) bool {
	return aabb.Min.X <= other.Max.X && aabb.Max.X >= other.Min.X &&
		aabb.Min.Y <= other.Max.Y && aabb.Max.Y >= other.Min.Y &&
		aabb.Min.Z <= other.Max.Z && aabb.Max.Z >= other.Min.Z
}

// Union returns the smallest box enclosing both boxes.
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.MinV(other.Min), Max: aabb.Max.MaxV(other.Max)}
}

// IsEmpty checks if the AABB has no volume.
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X >= aabb.Max.X || aabb.Min.Y >= aabb.Max.Y || aabb.Min.Z >= aabb.Max.Z
}
