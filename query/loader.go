package query

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/builder"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/scene"
	"github.com/o0olele/svo-go/voxel"
)

// LoadAndPick loads a snapshot into a one-object scene placed by transform
// and returns a picker over it.
func LoadAndPick(filename string, transform voxel.Transform) (*Picker, error) {
	nodes, err := builder.LoadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load octree")
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	obj := voxel.NewObject(name, voxel.DefaultDepth)
	if transform.Scale <= 0 {
		transform.Scale = 1
	}
	obj.Transform = transform
	obj.SetOctree(octree.NewFromNodes(nodes, false))

	s := scene.New()
	s.Add(obj, nil)
	return NewPicker(s), nil
}
