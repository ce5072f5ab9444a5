package octree

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/math32"
)

// NodeInts is the number of int32 fields in a node record.
const NodeInts = 7

// NodeSize is the byte size of a packed node record.
const NodeSize = NodeInts * 4

// OctreeNode is one record of the flat node array. Children of a node are
// stored contiguously in ascending octant order starting at Child; Child is
// -1 when the node's set octants are solid voxels. Octant bit 0 is +X,
// bit 1 is +Y and bit 2 is +Z.
type OctreeNode struct {
	Mask   int32 `json:"mask"`
	Child  int32 `json:"child"`
	Parent int32 `json:"parent"`
	Col0   int32 `json:"col0"`
	Col1   int32 `json:"col1"`
	Col2   int32 `json:"col2"`
	Col3   int32 `json:"col3"`
}

// EmptyNode is the childless, colorless node with no octants set.
var EmptyNode = OctreeNode{Child: -1, Parent: -1}

// IsLeaf reports whether the node has no children.
func (n OctreeNode) IsLeaf() bool {
	return n.Child == -1
}

// Has reports whether octant is set in the mask.
func (n OctreeNode) Has(octant int) bool {
	return n.Mask&(1<<octant) != 0
}

// ChildIndex returns the node index of octant's child.
func (n OctreeNode) ChildIndex(octant int) int32 {
	return n.Child + int32(math32.PopCount(n.Mask&((1<<octant)-1)))
}

// ChildCount is the number of set octants.
func (n OctreeNode) ChildCount() int {
	return math32.PopCount(n.Mask & 0xFF)
}

// Color returns the 15-bit color stored for octant.
func (n OctreeNode) Color(octant int) int32 {
	return (*n.colorWord(octant/2) >> (15 * (octant % 2))) & 0x7FFF
}

// RGB decodes the color stored for octant.
func (n OctreeNode) RGB(octant int) colorful.Color {
	return UnpackRGB15(n.Color(octant))
}

// addColor ORs a 15-bit color into octant's slot.
func (n *OctreeNode) addColor(octant int, rgb15 int32) {
	*n.colorWord(octant/2) |= (rgb15 & 0x7FFF) << (15 * (octant % 2))
}

// setColor overwrites octant's slot.
func (n *OctreeNode) setColor(octant int, rgb15 int32) {
	shift := 15 * (octant % 2)
	w := n.colorWord(octant / 2)
	*w = (*w &^ (0x7FFF << shift)) | (rgb15&0x7FFF)<<shift
}

func (n *OctreeNode) colorWord(k int) *int32 {
	switch k {
	case 0:
		return &n.Col0
	case 1:
		return &n.Col1
	case 2:
		return &n.Col2
	default:
		return &n.Col3
	}
}

// Ints returns the record in storage order.
func (n OctreeNode) Ints() [NodeInts]int32 {
	return [NodeInts]int32{n.Mask, n.Child, n.Parent, n.Col0, n.Col1, n.Col2, n.Col3}
}

// NodeFromInts is the inverse of Ints.
func NodeFromInts(v [NodeInts]int32) OctreeNode {
	return OctreeNode{Mask: v[0], Child: v[1], Parent: v[2], Col0: v[3], Col1: v[4], Col2: v[5], Col3: v[6]}
}

func (n OctreeNode) String() string {
	return fmt.Sprintf("Mask: %08b Child: %d Parent: %d Col: %d %d %d %d",
		n.Mask&0xFF, n.Child, n.Parent, n.Col0, n.Col1, n.Col2, n.Col3)
}

// PackRGB15 packs a color as r<<10 | g<<5 | b with 5 bits per channel.
// Channels are truncated, not rounded; callers clamp to [0, 1].
func PackRGB15(c colorful.Color) int32 {
	r := int32(c.R*31) & 31
	g := int32(c.G*31) & 31
	b := int32(c.B*31) & 31
	return (r<<10 | g<<5 | b) & 0x3fffffff
}

// UnpackRGB15 is the inverse of PackRGB15 up to quantization.
func UnpackRGB15(v int32) colorful.Color {
	return colorful.Color{
		R: float64((v>>10)&31) / 31,
		G: float64((v>>5)&31) / 31,
		B: float64(v&31) / 31,
	}
}
