package octree

import (
	"math/rand"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

var always = OccupancyFunc(func(geometry.UnitCube) bool { return true })

// cellSet is an occupancy backed by a set of cells of a res^3 grid.
type cellSet struct {
	res   int32
	cells map[math32.Vector3i]bool
}

func randomCells(r *rand.Rand, res int32, fill float32) cellSet {
	s := cellSet{res: res, cells: map[math32.Vector3i]bool{}}
	for x := int32(0); x < res; x++ {
		for y := int32(0); y < res; y++ {
			for z := int32(0); z < res; z++ {
				if r.Float32() < fill {
					s.cells[math32.Vector3i{X: x, Y: y, Z: z}] = true
				}
			}
		}
	}
	return s
}

func (s cellSet) IntersectsUnitCube(cube geometry.UnitCube) bool {
	lo := math32.FloorToInt(cube.Min.Add(math32.Splat(0.5)).Scale(float32(s.res)))
	n := max(int32(cube.Size*float32(s.res)), 1)
	for c := range s.cells {
		if c.X >= lo.X && c.X < lo.X+n && c.Y >= lo.Y && c.Y < lo.Y+n && c.Z >= lo.Z && c.Z < lo.Z+n {
			return true
		}
	}
	return false
}

func (s cellSet) center(c math32.Vector3i) math32.Vector3 {
	return math32.Vec3(float32(c.X)+0.5, float32(c.Y)+0.5, float32(c.Z)+0.5).Scale(1 / float32(s.res)).Sub(math32.Splat(0.5))
}

func forEachCell(res int32, fn func(c math32.Vector3i)) {
	for x := int32(0); x < res; x++ {
		for y := int32(0); y < res; y++ {
			for z := int32(0); z < res; z++ {
				fn(math32.Vector3i{X: x, Y: y, Z: z})
			}
		}
	}
}

func TestPackRGB15(t *testing.T) {
	assert.Equal(t, int32(0x7FFF), PackRGB15(colorful.Color{R: 1, G: 1, B: 1}))
	assert.Equal(t, int32(31<<10), PackRGB15(colorful.Color{R: 1}))
	assert.Equal(t, int32(15<<5), PackRGB15(colorful.Color{G: 0.5}))
	assert.Equal(t, int32(0), PackRGB15(colorful.Color{}))

	c := UnpackRGB15(PackRGB15(colorful.Color{R: 1, B: 1}))
	assert.Equal(t, colorful.Color{R: 1, B: 1}, c)
}

func TestNodeColorSlots(t *testing.T) {
	var n OctreeNode
	for i := 0; i < 8; i++ {
		n.addColor(i, int32(i+1)*1000)
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, int32(i+1)*1000, n.Color(i), "octant %d", i)
	}
	n.setColor(3, 7)
	assert.Equal(t, int32(7), n.Color(3))
	assert.Equal(t, int32(3000), n.Color(2))
	assert.Equal(t, n, NodeFromInts(n.Ints()))
}

func TestBuild(t *testing.T) {
	t.Run("root rejected", func(t *testing.T) {
		tree := New()
		tree.Build(3, OccupancyFunc(func(geometry.UnitCube) bool { return false }), nil)
		assert.True(t, tree.IsEmpty())
		assert.Equal(t, -1, tree.Depth())
	})

	t.Run("solid depth 1", func(t *testing.T) {
		tree := New()
		tree.Build(1, always, func(math32.Vector3) colorful.Color { return colorful.Color{R: 1} })
		require.Equal(t, 1, tree.Len())
		n := tree.Nodes()[0]
		assert.Equal(t, int32(0xFF), n.Mask)
		assert.Equal(t, int32(-1), n.Child)
		assert.Equal(t, int32(-1), n.Parent)
		for i := 0; i < 8; i++ {
			assert.Equal(t, int32(31<<10), n.Color(i))
		}
		assert.Equal(t, 1, tree.Depth())
	})

	t.Run("depth 0 is a single node", func(t *testing.T) {
		tree := New()
		tree.Build(0, always, nil)
		require.Equal(t, 1, tree.Len())
		assert.Equal(t, int32(0xFF), tree.Nodes()[0].Mask)
		assert.True(t, tree.Nodes()[0].IsLeaf())
	})

	t.Run("solid depth 2", func(t *testing.T) {
		tree := New()
		tree.Build(2, always, nil)
		require.Equal(t, 9, tree.Len())
		root := tree.Nodes()[0]
		assert.Equal(t, int32(1), root.Child)
		for i := 1; i < 9; i++ {
			n := tree.Nodes()[i]
			assert.Equal(t, int32(0), n.Parent)
			assert.Equal(t, int32(0xFF), n.Mask)
			assert.Equal(t, int32(-1), n.Child)
		}
		assert.Equal(t, 2, tree.Depth())
		require.NoError(t, tree.Validate())
	})

	t.Run("single point", func(t *testing.T) {
		p := math32.Vec3(0.3, -0.3, 0.1)
		tree := New()
		tree.Build(2, OccupancyFunc(func(c geometry.UnitCube) bool { return c.Contains(p) }), nil)
		require.Equal(t, 2, tree.Len())

		root, leaf := tree.Nodes()[0], tree.Nodes()[1]
		assert.Equal(t, int32(1<<5), root.Mask)
		assert.Equal(t, int32(1), root.Child)
		assert.Equal(t, int32(0), leaf.Parent)
		assert.Equal(t, 1, leaf.ChildCount())
		assert.True(t, leaf.IsLeaf())
		assert.True(t, tree.ContainsPoint(p))
		assert.False(t, tree.ContainsPoint(p.Scale(-1)))
	})

	t.Run("color sampled at octant min corner", func(t *testing.T) {
		var seen []math32.Vector3
		tree := New()
		tree.Build(1, always, func(pos math32.Vector3) colorful.Color {
			seen = append(seen, pos)
			return colorful.Color{}
		})
		require.Len(t, seen, 8)
		assert.Equal(t, math32.Splat(-0.5), seen[0])
		assert.Equal(t, math32.Vec3(0, -0.5, -0.5), seen[1])
		assert.Equal(t, math32.Vec3(0, 0, 0), seen[7])
	})
}

func TestBuildRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	const res = 8
	cells := randomCells(r, res, 0.3)

	tree := New()
	tree.Build(3, cells, nil)
	require.NoError(t, tree.Validate())
	assert.Equal(t, 3, tree.Depth())
	assert.Equal(t, len(cells.cells), tree.Stats().Voxels)

	forEachCell(res, func(c math32.Vector3i) {
		assert.Equal(t, cells.cells[c], tree.ContainsPoint(cells.center(c)), "cell %v", c)
		assert.Equal(t, cells.cells[c], tree.Occupied(OctantPath(c, 3)), "path of cell %v", c)
	})
}

func TestStats(t *testing.T) {
	tree := New()
	tree.Build(2, always, nil)
	st := tree.Stats()
	assert.Equal(t, 9, st.Nodes)
	assert.Equal(t, 8, st.Leaves)
	assert.Equal(t, 64, st.Voxels)
	assert.Equal(t, 2, st.Levels)
	assert.Equal(t, 9*NodeSize, st.Bytes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		nodes []OctreeNode
		ok    bool
	}{
		{"empty", nil, true},
		{"single empty node", []OctreeNode{EmptyNode}, true},
		{"child run past end", []OctreeNode{{Mask: 0x3, Child: 1, Parent: -1}, {Child: -1}}, false},
		{"bad parent", []OctreeNode{{Mask: 0x1, Child: 1, Parent: -1}, {Child: -1, Parent: 4}}, false},
		{"child points backwards", []OctreeNode{{Mask: 0x1, Child: 0, Parent: -1}}, false},
		{"mask overflow", []OctreeNode{{Mask: 0x1FF, Child: -1, Parent: -1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFromNodes(tt.nodes, false).Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrMalformedTree)
		})
	}
}

func TestMorton(t *testing.T) {
	for _, c := range []math32.Vector3i{{X: 0, Y: 0, Z: 0}, {X: 5, Y: 3, Z: 7}, {X: 1023, Y: 1, Z: 512}} {
		x, y, z := DecodeMorton3D(EncodeMorton3D(uint32(c.X), uint32(c.Y), uint32(c.Z)))
		assert.Equal(t, c, math32.Vector3i{X: int32(x), Y: int32(y), Z: int32(z)})
	}

	lo, hi := MortonRange(math32.Vector3i{X: 2, Y: 0, Z: 2}, 2)
	assert.Equal(t, MortonCode(40), lo)
	assert.Equal(t, MortonCode(48), hi)

	assert.Equal(t, []int{1, 0, 0}, OctantPath(math32.Vector3i{X: 4}, 3))
	assert.Equal(t, []int{7, 7}, OctantPath(math32.Vector3i{X: 3, Y: 3, Z: 3}, 2))
}
