package octree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

var unitPlacement = Placement{Scale: 1}

func TestRaycastSolidCube(t *testing.T) {
	tree := New()
	tree.Build(0, always, nil)

	tests := []struct {
		name string
		rd   math32.Vector3
	}{
		{"+X", math32.Vec3(1, 0, 0)},
		{"-X", math32.Vec3(-1, 0, 0)},
		{"+Y", math32.Vec3(0, 1, 0)},
		{"-Y", math32.Vec3(0, -1, 0)},
		{"+Z", math32.Vec3(0, 0, 1)},
		{"-Z", math32.Vec3(0, 0, -1)},
	}
	off := math32.Vec3(0.1, 0.2, -0.15)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// start 3 units back along the ray, off the cube's center line
			ro := off.Sub(off.Mul(tt.rd.Abs())).Sub(tt.rd.Scale(3))
			hit, err := tree.Raycast(unitPlacement, tree.Depth(), ro, tt.rd)
			require.NoError(t, err)
			require.True(t, hit.Hit)
			assert.InDelta(t, 2.5, float64(hit.Distance), 1e-3)
			assert.Equal(t, tt.rd.Scale(-1), hit.Normal)
		})
	}
}

func TestRaycastMiss(t *testing.T) {
	tree := New()
	tree.Build(2, always, nil)

	tests := []struct {
		name   string
		ro, rd math32.Vector3
	}{
		{"pointing away", math32.Vec3(-3, 0, 0), math32.Vec3(-1, 0, 0)},
		{"passing beside", math32.Vec3(-3, 2, 0), math32.Vec3(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, err := tree.Raycast(unitPlacement, 2, tt.ro, tt.rd)
			require.NoError(t, err)
			assert.False(t, hit.Hit)
			assert.Equal(t, float32(geometry.MaxRayDistance), hit.Distance)
		})
	}

	hit, err := New().Raycast(unitPlacement, 2, math32.Vec3(-3, 0, 0), math32.Vec3(1, 0, 0))
	require.NoError(t, err)
	assert.False(t, hit.Hit, "empty tree")
}

func TestRaycastSkipsEmptyCells(t *testing.T) {
	// only the slab x in (0.25, 0.5] is solid
	tree := New()
	tree.Build(2, OccupancyFunc(func(c geometry.UnitCube) bool { return c.Max().X > 0.25 }), nil)
	require.Equal(t, 5, tree.Len())

	hit, err := tree.Raycast(unitPlacement, 2, math32.Vec3(-3, 0.1, 0.2), math32.Vec3(1, 0, 0))
	require.NoError(t, err)
	require.True(t, hit.Hit)
	assert.InDelta(t, 3.25, float64(hit.Distance), 2e-3)
	assert.Equal(t, math32.Vec3(-1, 0, 0), hit.Normal)
	assert.InDelta(t, 0.25, float64(hit.Point.X), 2e-3)

	// from inside the empty half
	hit, err = tree.Raycast(unitPlacement, 2, math32.Vec3(-0.4, -0.3, 0.3), math32.Vec3(1, 0, 0))
	require.NoError(t, err)
	require.True(t, hit.Hit)
	assert.InDelta(t, 0.65, float64(hit.Distance), 2e-3)

	// travelling away from the slab leaves the cube
	hit, err = tree.Raycast(unitPlacement, 2, math32.Vec3(-0.4, -0.3, 0.3), math32.Vec3(-1, 0, 0))
	require.NoError(t, err)
	assert.False(t, hit.Hit)
}

func TestRaycastPlacement(t *testing.T) {
	tree := New()
	tree.Build(1, always, nil)

	p := Placement{Scale: 4, Position: math32.Vec3(10, 0, 0)}
	hit, err := tree.Raycast(p, 1, math32.Vec3(0, 0.5, 0.5), math32.Vec3(1, 0, 0))
	require.NoError(t, err)
	require.True(t, hit.Hit)
	assert.InDelta(t, 8, float64(hit.Distance), 1e-2)
}

func TestRaycastMalformed(t *testing.T) {
	tree := NewFromNodes([]OctreeNode{{Mask: 0xFF, Child: 9, Parent: -1}}, false)
	_, err := tree.Raycast(unitPlacement, 2, math32.Vec3(-3, 0.1, 0.1), math32.Vec3(1, 0, 0))
	require.ErrorIs(t, err, ErrMalformedTree)
}
