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

func pointTree(depth int, p math32.Vector3, c colorful.Color) *VoxelOctree {
	tree := New()
	tree.Build(depth, OccupancyFunc(func(cube geometry.UnitCube) bool { return cube.Contains(p) }),
		func(math32.Vector3) colorful.Color { return c })
	return tree
}

func TestMergeWithEmpty(t *testing.T) {
	cells := randomCells(rand.New(rand.NewSource(1)), 8, 0.25)
	a := New()
	a.Build(3, cells, func(p math32.Vector3) colorful.Color { return colorful.Color{R: float64(p.X + 0.5)} })

	merged, err := Merge(a, New())
	require.NoError(t, err)
	assert.True(t, merged.Equal(a), "A merged with nothing is A")

	merged, err = Merge(New(), a)
	require.NoError(t, err)
	assert.True(t, merged.Equal(a), "nothing merged with A is A")

	merged, err = Merge(New(), New())
	require.NoError(t, err)
	assert.True(t, merged.IsEmpty())
}

func TestMergeIsUnion(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	for round := 0; round < 5; round++ {
		ca := randomCells(r, 8, 0.15)
		cb := randomCells(r, 8, 0.15)

		a, b := New(), New()
		a.Build(3, ca, nil)
		b.Build(3, cb, nil)
		aBefore, bBefore := a.Clone(), b.Clone()

		merged, err := Merge(a, b)
		require.NoError(t, err)
		require.NoError(t, merged.Validate())

		assert.True(t, a.Equal(aBefore), "merge must not modify its inputs")
		assert.True(t, b.Equal(bBefore), "merge must not modify its inputs")

		forEachCell(8, func(c math32.Vector3i) {
			want := ca.cells[c] || cb.cells[c]
			assert.Equal(t, want, merged.ContainsPoint(ca.center(c)), "cell %v", c)
		})
	}
}

func TestMergeMixedDepth(t *testing.T) {
	coarse := New()
	coarse.Build(1, OccupancyFunc(func(c geometry.UnitCube) bool { return c.Min.X < 0 }),
		func(math32.Vector3) colorful.Color { return colorful.Color{G: 1} })
	fine := pointTree(3, math32.Vec3(0.3, 0.3, 0.3), colorful.Color{B: 1})

	for _, order := range [][2]*VoxelOctree{{coarse, fine}, {fine, coarse}} {
		merged, err := Merge(order[0], order[1])
		require.NoError(t, err)
		require.NoError(t, merged.Validate())

		forEachCell(8, func(c math32.Vector3i) {
			p := math32.Vec3(float32(c.X)+0.5, float32(c.Y)+0.5, float32(c.Z)+0.5).Scale(1.0 / 8).Sub(math32.Splat(0.5))
			want := p.X < 0 || coarse.ContainsPoint(p) || fine.ContainsPoint(p)
			require.Equal(t, want, merged.ContainsPoint(p), "point %v", p)
		})

		col, ok := merged.ColorAt(math32.Vec3(-0.3, 0.1, 0.1))
		require.True(t, ok)
		assert.Equal(t, colorful.Color{G: 1}, col, "solid region keeps its color when carried down")

		col, ok = merged.ColorAt(math32.Vec3(0.3, 0.3, 0.3))
		require.True(t, ok)
		assert.Equal(t, colorful.Color{B: 1}, col)
	}
}

func TestMergeColors(t *testing.T) {
	p := math32.Vec3(0.1, 0.1, 0.1)
	a := pointTree(2, p, colorful.Color{R: 1})
	b := pointTree(2, p, colorful.Color{B: 1})

	union, err := Merge(a, b)
	require.NoError(t, err)
	col, ok := union.ColorAt(p)
	require.True(t, ok)
	assert.Equal(t, colorful.Color{R: 1, B: 1}, col)

	second, err := MergeWithOptions(a, b, MergeOptions{Colors: ColorPreferSecond})
	require.NoError(t, err)
	col, ok = second.ColorAt(p)
	require.True(t, ok)
	assert.Equal(t, colorful.Color{B: 1}, col)
}

func TestMergeWith(t *testing.T) {
	a := pointTree(3, math32.Vec3(-0.2, 0.2, 0.4), colorful.Color{R: 1})
	b := pointTree(3, math32.Vec3(0.4, -0.1, -0.3), colorful.Color{G: 1})

	shared := a
	require.NoError(t, a.MergeWith(b))
	assert.True(t, shared.ContainsPoint(math32.Vec3(-0.2, 0.2, 0.4)))
	assert.True(t, shared.ContainsPoint(math32.Vec3(0.4, -0.1, -0.3)))
	assert.Equal(t, 2, shared.Stats().Voxels)
	assert.Equal(t, 3, shared.Depth())
}

func TestMergeMalformed(t *testing.T) {
	bad := NewFromNodes([]OctreeNode{{Mask: 0x1, Child: 5, Parent: -1}}, false)
	good := pointTree(2, math32.Vec3(0.1, 0.1, 0.1), colorful.Color{})

	_, err := Merge(bad, good)
	require.ErrorIs(t, err, ErrMalformedTree)

	_, err = Merge(good, bad)
	require.ErrorIs(t, err, ErrMalformedTree)

	before := good.Clone()
	require.ErrorIs(t, good.MergeWith(bad), ErrMalformedTree)
	assert.True(t, good.Equal(before), "failed merge leaves the receiver untouched")
}
