package octree

import (
	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

const (
	// MaxDepth is the deepest level the traversal descends to.
	MaxDepth = 10
	// MaxRayIterations bounds the traversal loop; reaching it reports a miss.
	MaxRayIterations = 150

	rayNudge   = 1e-6
	epsilonK   = 0.000707
	levelWidth = 3
)

// Placement positions the unit cube in world space: a cube of edge Scale centered on Position.
type Placement struct {
	Scale    float32        `json:"scale"`
	Position math32.Vector3 `json:"position"`
}

// Min returns the world-space min corner of the cube.
func (p Placement) Min() math32.Vector3 {
	return p.Position.Sub(math32.Splat(0.5 * p.Scale))
}

// Contains reports whether a world point lies in [min, min+scale) on every axis.
func (p Placement) Contains(pt math32.Vector3) bool {
	min := p.Min()
	return pt.X >= min.X && pt.X < min.X+p.Scale &&
		pt.Y >= min.Y && pt.Y < min.Y+p.Scale &&
		pt.Z >= min.Z && pt.Z < min.Z+p.Scale
}

// RayHit is a traversal result. Normal is the outward normal of the face the
// ray crossed last, pointing back against the ray.
type RayHit struct {
	Hit      bool           `json:"hit"`
	Distance float32        `json:"distance"`
	Normal   math32.Vector3 `json:"normal"`
	Point    math32.Vector3 `json:"point"`
}

func miss() RayHit {
	return RayHit{Distance: geometry.MaxRayDistance}
}

// Raycast walks the tree placed by p along ro + t*rd without recursion,
// keeping the octant path as 3 bits per level. depth is the tree depth used
// to size the stepping epsilon.
func (o *VoxelOctree) Raycast(p Placement, depth int, ro, rd math32.Vector3) (RayHit, error) {
	nodes := o.nodes
	if len(nodes) == 0 || p.Scale <= 0 {
		return miss(), nil
	}

	scale := p.Scale
	epsilon := epsilonK * scale / float32(max(depth, 1))
	pos := p.Min()

	if rd.X == 0 {
		rd.X = rayNudge
	}
	if rd.Y == 0 {
		rd.Y = rayNudge
	}
	if rd.Z == 0 {
		rd.Z = rayNudge
	}

	var distance float32
	var normal math32.Vector3

	if !p.Contains(ro) {
		d, n, ok := geometry.RayBoxEntry(ro, rd, pos, scale)
		if !ok {
			return miss(), nil
		}
		distance = d + epsilon
		normal = n
	}

	level := 0
	stack := 0
	po := ro.Add(rd.Scale(distance))
	node := nodes[0]

	for iter := 1; level < MaxDepth; iter++ {
		if iter == MaxRayIterations {
			break
		}

		local := po.Sub(pos)
		nodeICoord := math32.FloorToInt(local.Scale(float32(int(1)<<level) / scale)).Parity()
		if nodeICoord != (stack>>(level*levelWidth))&7 {
			if level == 0 {
				break
			}
			level--
			if node.Parent < 0 || int(node.Parent) >= len(nodes) {
				return miss(), errors.Wrapf(ErrMalformedTree, "parent index %d out of range [0,%d)", node.Parent, len(nodes))
			}
			node = nodes[node.Parent]
			continue
		}

		childLevel := level + 1
		childScale := scale / float32(int(1)<<childLevel)
		childPo := local.Div(math32.Splat(childScale))
		c := math32.FloorToInt(childPo).Parity()

		if !node.Has(c) {
			childPos := childPo.Floor().Scale(childScale).Add(pos)
			dist, n := geometry.RayCellExit(po, rd, childPos, childScale)
			distE := dist + epsilon
			if distE <= 0 {
				break
			}
			normal = n
			distance += distE
			po = ro.Add(rd.Scale(distance))
			continue
		}

		if node.Child == -1 {
			return RayHit{Hit: true, Distance: distance, Normal: normal, Point: po}, nil
		}

		stack &^= 7 << (childLevel * levelWidth)
		stack |= c << (childLevel * levelWidth)

		ci := node.ChildIndex(c)
		if ci < 0 || int(ci) >= len(nodes) {
			return miss(), errors.Wrapf(ErrMalformedTree, "child index %d out of range [0,%d)", ci, len(nodes))
		}
		node = nodes[ci]
		level = childLevel
	}

	return miss(), nil
}
