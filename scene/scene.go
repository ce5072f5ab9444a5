// Package scene groups voxel objects, builds their octrees and flattens them
// into the node and transform buffers a renderer uploads.
package scene

import (
	"context"
	"encoding/binary"
	"math"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/voxel"
)

// ErrUnknownObject is returned when an object id or name is not in the scene.
var ErrUnknownObject = errors.New("unknown object")

// TransformRecordSize is the packed byte size of a TransformRecord.
const TransformRecordSize = 24

// TransformRecord tells the renderer where an object sits and where its
// octree starts in the concatenated node buffer.
type TransformRecord struct {
	Scale    float32        `json:"scale"`
	Position math32.Vector3 `json:"position"`
	Index    int32          `json:"index"`
	Depth    int32          `json:"depth"`
}

// Scene is an ordered set of objects. It is not safe for concurrent mutation.
type Scene struct {
	objects []*voxel.Object
	sources map[*octree.VoxelOctree]voxel.Source
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{sources: make(map[*octree.VoxelOctree]voxel.Source)}
}

// Add appends obj. src, when not nil, is what Build uses for obj's octree;
// objects sharing an octree need only one source.
func (s *Scene) Add(obj *voxel.Object, src voxel.Source) {
	s.objects = append(s.objects, obj)
	if src != nil {
		s.sources[obj.Octree()] = src
	}
}

// Remove drops the object with id.
func (s *Scene) Remove(id string) error {
	_, idx, ok := lo.FindIndexOf(s.objects, func(o *voxel.Object) bool { return o.ID == id })
	if !ok {
		return errors.Wrap(ErrUnknownObject, id)
	}
	removed := s.objects[idx]
	s.objects = append(s.objects[:idx], s.objects[idx+1:]...)

	tree := removed.Octree()
	if !lo.ContainsBy(s.objects, func(o *voxel.Object) bool { return o.Octree() == tree }) {
		delete(s.sources, tree)
	}
	return nil
}

// Get returns the object with id.
func (s *Scene) Get(id string) (*voxel.Object, error) {
	obj, ok := lo.Find(s.objects, func(o *voxel.Object) bool { return o.ID == id })
	if !ok {
		return nil, errors.Wrap(ErrUnknownObject, id)
	}
	return obj, nil
}

// Find returns the first object named name.
func (s *Scene) Find(name string) (*voxel.Object, bool) {
	return lo.Find(s.objects, func(o *voxel.Object) bool { return o.Name == name })
}

// Objects returns the objects in insertion order.
func (s *Scene) Objects() []*voxel.Object {
	return s.objects
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.objects)
}

// OctreeLinks returns each distinct octree once, in order of first use.
func (s *Scene) OctreeLinks() []*octree.VoxelOctree {
	trees := lo.FilterMap(s.objects, func(o *voxel.Object, _ int) (*octree.VoxelOctree, bool) {
		return o.Octree(), o.Octree() != nil
	})
	return lo.Uniq(trees)
}

// Nodes concatenates the node arrays of OctreeLinks. Child and parent
// indexes stay relative to each octree; TransformRecord.Index is the offset.
func (s *Scene) Nodes() []octree.OctreeNode {
	links := s.OctreeLinks()
	total := lo.SumBy(links, func(t *octree.VoxelOctree) int { return t.Len() })

	nodes := make([]octree.OctreeNode, 0, total)
	for _, t := range links {
		nodes = append(nodes, t.Nodes()...)
	}
	return nodes
}

// Transforms returns one record per object, in object order.
func (s *Scene) Transforms() []TransformRecord {
	offsets := make(map[*octree.VoxelOctree]int32)
	next := int32(0)
	for _, t := range s.OctreeLinks() {
		offsets[t] = next
		next += int32(t.Len())
	}

	return lo.Map(s.objects, func(o *voxel.Object, _ int) TransformRecord {
		return TransformRecord{
			Scale:    o.Transform.Scale,
			Position: o.Transform.Position,
			Index:    offsets[o.Octree()],
			Depth:    int32(o.Depth()),
		}
	})
}

// PackTransforms encodes records as little-endian {scale, x, y, z, index, depth}.
func PackTransforms(records []TransformRecord) []byte {
	buf := make([]byte, len(records)*TransformRecordSize)
	for i, r := range records {
		b := buf[i*TransformRecordSize:]
		binary.LittleEndian.PutUint32(b[0:], math.Float32bits(r.Scale))
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(r.Position.X))
		binary.LittleEndian.PutUint32(b[8:], math.Float32bits(r.Position.Y))
		binary.LittleEndian.PutUint32(b[12:], math.Float32bits(r.Position.Z))
		binary.LittleEndian.PutUint32(b[16:], uint32(r.Index))
		binary.LittleEndian.PutUint32(b[20:], uint32(r.Depth))
	}
	return buf
}

// Build rebuilds every octree that has a source, distinct octrees in parallel.
// Objects sharing a built octree take their depth from it afterwards.
func (s *Scene) Build(ctx context.Context, logger *zap.SugaredLogger) error {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	owners := make(map[*octree.VoxelOctree]*voxel.Object)
	for _, tree := range s.OctreeLinks() {
		tree := tree
		src, ok := s.sources[tree]
		if !ok {
			continue
		}
		owner, _ := lo.Find(s.objects, func(o *voxel.Object) bool { return o.Octree() == tree })
		owners[tree] = owner

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			owner.Build(src)
			logger.Debugw("object built", "name", owner.Name, "depth", owner.Depth(),
				"nodes", tree.Len(), "elapsed", time.Since(t))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "failed to build scene")
	}

	for _, owner := range owners {
		s.syncDepth(owner)
	}

	logger.Infow("scene built", "objects", len(s.objects), "octrees", len(s.OctreeLinks()),
		"nodes", len(s.Nodes()), "elapsed", time.Since(start))
	return nil
}

// BuildObject rebuilds the octree obj uses from its registered source. It
// reports false when the octree has no source.
func (s *Scene) BuildObject(obj *voxel.Object) bool {
	tree := obj.Octree()
	src, ok := s.sources[tree]
	if !ok {
		return false
	}
	owner, _ := lo.Find(s.objects, func(o *voxel.Object) bool { return o.Octree() == tree })
	if owner == nil {
		owner = obj
	}
	owner.Build(src)
	s.syncDepth(owner)
	return true
}

// syncDepth gives every object sharing owner's octree owner's depth.
func (s *Scene) syncDepth(owner *voxel.Object) {
	for _, o := range s.objects {
		if o != owner && o.Octree() == owner.Octree() {
			o.SetDepth(owner.Depth())
		}
	}
}

// Pick returns the object whose surface ro + t*rd hits first.
func (s *Scene) Pick(ro, rd math32.Vector3) (*voxel.Object, octree.RayHit, error) {
	var best *voxel.Object
	bestHit := octree.RayHit{Distance: math32.MaxFloat32}

	for _, o := range s.objects {
		if _, _, ok := geometry.RayAABB(ro, rd, o.WorldBounds()); !ok {
			continue
		}
		hit, err := o.Raycast(ro, rd)
		if err != nil {
			return nil, octree.RayHit{}, errors.Wrapf(err, "raycast %s", o.Name)
		}
		if hit.Hit && hit.Distance < bestHit.Distance {
			best, bestHit = o, hit
		}
	}
	if best == nil {
		return nil, octree.RayHit{Distance: bestHit.Distance}, nil
	}
	return best, bestHit, nil
}
