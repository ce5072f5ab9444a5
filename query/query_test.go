package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/o0olele/svo-go/builder"
	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/scene"
	"github.com/o0olele/svo-go/voxel"
)

type floor struct{}

func (floor) IntersectsUnitCube(cube geometry.UnitCube) bool { return cube.Min.Y < 0 }
func (floor) ColorAt(math32.Vector3) colorful.Color        { return colorful.Color{B: 1} }

func floorScene(t *testing.T) (*scene.Scene, *voxel.Object) {
	s := scene.New()
	obj := voxel.NewObject("floor", 2)
	s.Add(obj, floor{})
	require.NoError(t, s.Build(context.Background(), zaptest.NewLogger(t).Sugar()))
	return s, obj
}

var (
	above = math32.Vec3(0.1, 5, 0.1)
	down  = math32.Vec3(0, -1, 0)
)

func TestPick(t *testing.T) {
	s, obj := floorScene(t)
	p := NewPicker(s)
	assert.Same(t, s, p.GetScene())

	result, ok, err := p.Pick(above, down.Scale(3))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, obj.ID, result.ID)
	assert.InDelta(t, 5, result.Hit.Distance, 0.01, "direction is normalized")
	assert.Equal(t, math32.Vec3(0, 1, 0), result.Hit.Normal)

	_, ok, err = p.Pick(above, math32.Vec3(0, 1, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	p.GetPickOptions().MaxDistance = 3
	_, ok, err = p.Pick(above, down)
	require.NoError(t, err)
	assert.False(t, ok, "beyond max distance")

	_, _, err = p.Pick(above, math32.Vector3{})
	assert.ErrorIs(t, err, ErrZeroDirection)
}

func TestPaint(t *testing.T) {
	s, obj := floorScene(t)
	p := NewPicker(s)
	before := obj.Octree().Stats().Voxels

	red := colorful.Color{R: 1}
	_, ok, err := p.Paint(above, down, red)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before+1, obj.Octree().Stats().Voxels)

	col, ok := obj.Octree().ColorAt(math32.Vec3(0.1, 0.1, 0.1))
	require.True(t, ok)
	assert.Equal(t, red, col)

	result, ok, err := p.Pick(above, down)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 4.75, result.Hit.Distance, 0.01, "painted voxel is hit first")

	_, ok, err = p.Paint(above, math32.Vec3(0, 1, 0), red)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadAndPick(t *testing.T) {
	_, obj := floorScene(t)
	filename := filepath.Join(t.TempDir(), "floor.svo")
	require.NoError(t, builder.SaveFile(filename, obj.Octree().Nodes()))

	p, err := LoadAndPick(filename, voxel.Transform{})
	require.NoError(t, err)
	loaded, ok := p.GetScene().Find("floor")
	require.True(t, ok)
	assert.Equal(t, 2, loaded.Depth())

	result, ok, err := p.Pick(above, down)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 5, result.Hit.Distance, 0.01)

	_, err = LoadAndPick(filepath.Join(t.TempDir(), "missing.svo"), voxel.Transform{})
	assert.Error(t, err)
}
