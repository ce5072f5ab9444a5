package geometry

import (
	"github.com/o0olele/svo-go/math32"
)

// Solid is a closed volume an octree can be filled from.
type Solid interface {
	Bounds() AABB
	// IntersectsAABB reports a positive-volume overlap with aabb; touching
	// faces do not count.
	IntersectsAABB(aabb AABB) bool
	ContainsPoint(point math32.Vector3) bool
}

// Box is an axis-aligned solid box.
type Box struct {
	Center math32.Vector3 `json:"center" yaml:"center"`
	Size   math32.Vector3 `json:"size" yaml:"size"`
}

// Bounds returns the box itself.
func (b Box) Bounds() AABB {
	halfSize := b.Size.Scale(0.5)
	return AABB{
		Min: b.Center.Sub(halfSize),
		Max: b.Center.Add(halfSize),
	}
}

// IntersectsAABB checks if the box overlaps aabb.
func (b Box) IntersectsAABB(aabb AABB) bool {
	bounds := b.Bounds()
	return !(bounds.Max.X <= aabb.Min.X || bounds.Min.X >= aabb.Max.X ||
		bounds.Max.Y <= aabb.Min.Y || bounds.Min.Y >= aabb.Max.Y ||
		bounds.Max.Z <= aabb.Min.Z || bounds.Min.Z >= aabb.Max.Z)
}

// ContainsPoint checks if the point is inside the box.
func (b Box) ContainsPoint(point math32.Vector3) bool {
	return b.Bounds().Contains(point)
}

// Sphere is a solid ball.
type Sphere struct {
	Center math32.Vector3 `json:"center" yaml:"center"`
	Radius float32        `json:"radius" yaml:"radius"`
}

// Bounds returns the bounding box of the sphere.
func (s Sphere) Bounds() AABB {
	r := math32.Splat(s.Radius)
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// IntersectsAABB checks the distance from the center to the box.
func (s Sphere) IntersectsAABB(aabb AABB) bool {
	return closestPointInAABB(aabb, s.Center).Distance(s.Center) < s.Radius
}

// ContainsPoint checks if the point is inside the sphere.
func (s Sphere) ContainsPoint(point math32.Vector3) bool {
	return point.Distance(s.Center) <= s.Radius
}

// Capsule is a segment swept by a sphere.
type Capsule struct {
	Start  math32.Vector3 `json:"start" yaml:"start"`
	End    math32.Vector3 `json:"end" yaml:"end"`
	Radius float32        `json:"radius" yaml:"radius"`
}

// Bounds returns the bounding box of the capsule.
func (c Capsule) Bounds() AABB {
	r := math32.Splat(c.Radius)
	return AABB{
		Min: c.Start.MinV(c.End).Sub(r),
		Max: c.Start.MaxV(c.End).Add(r),
	}
}

// capsuleIterations bounds the alternating projections in IntersectsAABB.
const capsuleIterations = 16

// IntersectsAABB measures the segment to box distance by projecting back and
// forth between the two convex sets.
func (c Capsule) IntersectsAABB(aabb AABB) bool {
	if !c.Bounds().Intersects(aabb) {
		return false
	}

	p := closestPointOnLineSegment(c.Start, c.End, aabb.Center())
	for i := 0; i < capsuleIterations; i++ {
		q := closestPointInAABB(aabb, p)
		if q.Distance(p) < c.Radius {
			return true
		}
		next := closestPointOnLineSegment(c.Start, c.End, q)
		if next.Distance(p) < 1e-7 {
			break
		}
		p = next
	}
	return false
}

// ContainsPoint checks if the point is inside the capsule.
func (c Capsule) ContainsPoint(point math32.Vector3) bool {
	return PointToLineSegmentDistance(point, c.Start, c.End) <= c.Radius
}

// PointToLineSegmentDistance returns the distance from point to the segment.
func PointToLineSegmentDistance(point, lineStart, lineEnd math32.Vector3) float32 {
	return point.Distance(closestPointOnLineSegment(lineStart, lineEnd, point))
}

func closestPointOnLineSegment(a, b, point math32.Vector3) math32.Vector3 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom == 0 {
		return a
	}
	t := math32.Clamp(point.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Scale(t))
}

func closestPointInAABB(aabb AABB, p math32.Vector3) math32.Vector3 {
	return p.MaxV(aabb.Min).MinV(aabb.Max)
}
