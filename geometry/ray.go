package geometry

import "github.com/o0olele/svo-go/math32"

// MaxRayDistance is the farthest box entry RayBoxEntry accepts.
const MaxRayDistance = 1000

// RayBoxEntry intersects a ray with the cube [min, min+size] (slab method).
// It returns the entry distance, or the exit distance when ro is inside,
// and the outward normal of the face crossed at tNear.
func RayBoxEntry(ro, rd, min math32.Vector3, size float32) (float32, math32.Vector3, bool) {
	t0 := min.Sub(ro).Div(rd)
	t1 := min.Add(math32.Splat(size)).Sub(ro).Div(rd)

	tMin := t0.MinV(t1)
	tMax := t0.MaxV(t1)

	tNear := tMin.MaxComponent()
	tFar := tMax.MinComponent()

	if tFar < 0 || tNear > tFar {
		return 0, math32.Vector3{}, false
	}

	dist := tNear
	if tNear < 0 {
		dist = tFar
	}
	if dist > MaxRayDistance {
		return 0, math32.Vector3{}, false
	}

	return dist, faceNormal(tMin, tNear, rd), true
}

// RayCellExit returns the distance from po, which lies inside the cell, to
// the cell face the ray leaves through, and that face's normal pointing back
// against the ray.
func RayCellExit(po, rd, cellMin math32.Vector3, size float32) (float32, math32.Vector3) {
	b := cellMin.Add(rd.Step(0).Scale(size))
	t := b.Sub(po).Div(rd)
	dist := t.MinComponent()
	return dist, faceNormal(t, dist, rd)
}

func faceNormal(t math32.Vector3, d float32, rd math32.Vector3) math32.Vector3 {
	var n math32.Vector3
	if t.X == d {
		n.X = -math32.Sign(rd.X)
	}
	if t.Y == d {
		n.Y = -math32.Sign(rd.Y)
	}
	if t.Z == d {
		n.Z = -math32.Sign(rd.Z)
	}
	return n
}

// RayAABB checks if the ray intersects with the AABB (slab method), returns [tmin, tmax] and whether it intersects
func RayAABB(origin, dir math32.Vector3, aabb AABB) (float32, float32, bool) {
	const eps = 1e-6
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o, d := origin.Get(axis), dir.Get(axis)
		lo, hi := aabb.Min.Get(axis), aabb.Max.Get(axis)
		if math32.Abs(d) < eps {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}

	if tmax < 0 {
		return 0, 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, tmax, true
}
