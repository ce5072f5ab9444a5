package geometry

import (
	"github.com/o0olele/svo-go/math32"
)

// axisEpsilon is the squared length below which a separating axis is ignored.
const axisEpsilon = 1e-6

var boxAxes = [3]math32.Vector3{
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

// Triangle is a triangle geometry
type Triangle struct {
	A math32.Vector3 `json:"a"`
	B math32.Vector3 `json:"b"`
	C math32.Vector3 `json:"c"`
}

// Bounds returns the bounding box of the triangle
func (t Triangle) Bounds() AABB {
	return AABB{
		Min: t.A.MinV(t.B).MinV(t.C),
		Max: t.A.MaxV(t.B).MaxV(t.C),
	}
}

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() math32.Vector3 {
	return t.A.Add(t.B).Add(t.C).Scale(1.0 / 3.0)
}

// Normal returns the unit face normal, or zero for a degenerate triangle.
func (t Triangle) Normal() math32.Vector3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

// IntersectsAABB reports whether the triangle touches the box.
func (t Triangle) IntersectsAABB(aabb AABB) bool {
	return t.IntersectsBox(aabb.Center(), aabb.HalfSize())
}

// IntersectsBox is the separating axis test against a box given by center and half extents.
// It checks the 3 box face axes, the triangle normal and the 9 edge x box-axis products.
func (t Triangle) IntersectsBox(center, halfSize math32.Vector3) bool {
	v0 := t.A.Sub(center)
	v1 := t.B.Sub(center)
	v2 := t.C.Sub(center)

	edges := [3]math32.Vector3{v1.Sub(v0), v2.Sub(v1), v0.Sub(v2)}

	for _, axis := range boxAxes {
		if separated(axis, v0, v1, v2, halfSize) {
			return false
		}
	}

	if normal := edges[0].Cross(edges[1]); normal.LengthSquared() > axisEpsilon {
		if separated(normal, v0, v1, v2, halfSize) {
			return false
		}
	}

	for _, e := range edges {
		for _, u := range boxAxes {
			axis := e.Cross(u)
			if axis.LengthSquared() <= axisEpsilon {
				continue
			}
			if separated(axis, v0, v1, v2, halfSize) {
				return false
			}
		}
	}

	return true
}

// separated reports whether axis splits the triangle from the box.
func separated(axis, v0, v1, v2, halfSize math32.Vector3) bool {
	p0 := v0.Dot(axis)
	p1 := v1.Dot(axis)
	p2 := v2.Dot(axis)

	triMin := math32.Min(math32.Min(p0, p1), p2)
	triMax := math32.Max(math32.Max(p0, p1), p2)

	r := math32.Abs(halfSize.X*axis.X) + math32.Abs(halfSize.Y*axis.Y) + math32.Abs(halfSize.Z*axis.Z)
	return triMin > r || triMax < -r
}
