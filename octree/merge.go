package octree

import (
	"github.com/pkg/errors"
)

// ColorPolicy decides the color of an octant set in both merge operands.
type ColorPolicy int

const (
	// ColorUnion ORs both packed colors.
	ColorUnion ColorPolicy = iota
	// ColorPreferSecond keeps the second operand's color.
	ColorPreferSecond
)

// MergeOptions tunes Merge.
type MergeOptions struct {
	Colors ColorPolicy
}

// side references a node of one merge operand. A fill side stands for a
// solid region of one color that the operand stopped subdividing above.
type side struct {
	index int32
	fill  bool
	color int32
}

var absent = side{index: -1}

func (s side) present() bool {
	return s.fill || s.index != -1
}

type mergeItem struct {
	a, b   side
	parent int32
}

// Merge returns the union of a and b as a new tree. Neither input is modified.
func Merge(a, b *VoxelOctree) (*VoxelOctree, error) {
	return MergeWithOptions(a, b, MergeOptions{})
}

// MergeWithOptions is Merge with an explicit color policy.
func MergeWithOptions(a, b *VoxelOctree, opts MergeOptions) (*VoxelOctree, error) {
	m := merger{a: a.nodes, b: b.nodes, opts: opts}
	nodes, err := m.run()
	if err != nil {
		return nil, err
	}
	return &VoxelOctree{nodes: nodes}, nil
}

// MergeWith replaces o with the union of o and other.
func (o *VoxelOctree) MergeWith(other *VoxelOctree) error {
	snapshot := &VoxelOctree{nodes: o.nodes}
	merged, err := Merge(snapshot, other)
	if err != nil {
		return err
	}
	o.nodes = merged.nodes
	return nil
}

type merger struct {
	a, b []OctreeNode
	opts MergeOptions
}

func (m *merger) run() ([]OctreeNode, error) {
	rootA, rootB := absent, absent
	if len(m.a) > 0 {
		rootA = side{index: 0}
	}
	if len(m.b) > 0 {
		rootB = side{index: 0}
	}
	if !rootA.present() && !rootB.present() {
		return nil, nil
	}

	nodes := make([]OctreeNode, 0, max(len(m.a), len(m.b)))
	var q queue[mergeItem]
	q.push(mergeItem{a: rootA, b: rootB, parent: -1})

	for q.Len() > 0 {
		item := q.pop()

		na, err := m.resolve(m.a, item.a, "first")
		if err != nil {
			return nil, err
		}
		nb, err := m.resolve(m.b, item.b, "second")
		if err != nil {
			return nil, err
		}

		node := OctreeNode{Mask: (na.Mask | nb.Mask) & 0xFF, Child: -1, Parent: item.parent}

		var childA, childB [8]side
		subdivides := false
		for i := 0; i < 8; i++ {
			childA[i], childB[i] = absent, absent
			if na.Has(i) && na.Child != -1 {
				childA[i] = side{index: na.ChildIndex(i)}
				subdivides = true
			}
			if nb.Has(i) && nb.Child != -1 {
				childB[i] = side{index: nb.ChildIndex(i)}
				subdivides = true
			}
		}

		for i := 0; i < 8; i++ {
			if !node.Has(i) {
				continue
			}

			if !subdivides {
				node.setColor(i, m.color(na, nb, i))
				continue
			}

			// every set octant needs a child once the node subdivides; a side
			// that ends here is carried down as a solid fill
			if na.Has(i) && !childA[i].present() {
				childA[i] = side{index: -1, fill: true, color: na.Color(i)}
			}
			if nb.Has(i) && !childB[i].present() {
				childB[i] = side{index: -1, fill: true, color: nb.Color(i)}
			}

			if node.Child == -1 {
				node.Child = int32(len(nodes) + q.Len() + 1)
			}
			q.push(mergeItem{a: childA[i], b: childB[i], parent: int32(len(nodes))})
		}

		nodes = append(nodes, node)
	}
	return nodes, nil
}

// resolve loads the node a side refers to. Absent sides yield a zero node.
func (m *merger) resolve(nodes []OctreeNode, s side, operand string) (OctreeNode, error) {
	switch {
	case s.fill:
		return fillNode(s.color), nil
	case s.index == -1:
		return OctreeNode{Child: -1}, nil
	}

	if s.index < 0 || int(s.index) >= len(nodes) {
		return OctreeNode{}, errors.Wrapf(ErrMalformedTree, "%s operand: node index %d out of range [0,%d)", operand, s.index, len(nodes))
	}
	n := nodes[s.index]
	if n.Child != -1 {
		if n.Child < 0 || int(n.Child)+n.ChildCount() > len(nodes) {
			return OctreeNode{}, errors.Wrapf(ErrMalformedTree, "%s operand: node %d children [%d,%d) out of range [0,%d)",
				operand, s.index, n.Child, int(n.Child)+n.ChildCount(), len(nodes))
		}
	}
	return n, nil
}

func (m *merger) color(na, nb OctreeNode, octant int) int32 {
	ha, hb := na.Has(octant), nb.Has(octant)
	switch {
	case ha && hb:
		if m.opts.Colors == ColorPreferSecond {
			return nb.Color(octant)
		}
		return na.Color(octant) | nb.Color(octant)
	case ha:
		return na.Color(octant)
	default:
		return nb.Color(octant)
	}
}

// fillNode is a solid leaf node with every octant painted rgb15.
func fillNode(rgb15 int32) OctreeNode {
	n := OctreeNode{Mask: 0xFF, Child: -1}
	for i := 0; i < 8; i++ {
		n.setColor(i, rgb15)
	}
	return n
}
