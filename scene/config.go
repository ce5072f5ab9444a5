package scene

import (
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/o0olele/svo-go/builder"
	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/source"
	"github.com/o0olele/svo-go/voxel"
)

// ErrUnknownSource is returned for a source kind FromConfig cannot build.
var ErrUnknownSource = errors.New("unknown source kind")

// Source kinds accepted in a scene file.
const (
	KindMesh      = "mesh"
	KindGrid      = "grid"
	KindHeightmap = "heightmap"
	KindRandom    = "random"
	KindPoint     = "point"
	KindEmpty     = "empty"
	KindBox       = "box"
	KindSphere    = "sphere"
	KindCapsule   = "capsule"
)

// Config is a scene file.
type Config struct {
	Objects []ObjectConfig `yaml:"objects"`

	// dir resolves relative mesh paths.
	dir string
}

// ObjectConfig describes one object. Instance names an earlier object whose
// octree is shared; Source is then ignored.
type ObjectConfig struct {
	Name     string         `json:"name" yaml:"name"`
	Depth    int            `json:"depth" yaml:"depth"`
	Scale    float32        `json:"scale" yaml:"scale"`
	Position math32.Vector3 `json:"position" yaml:"position"`
	Instance string         `json:"instance,omitempty" yaml:"instance,omitempty"`
	Source   SourceConfig   `json:"source" yaml:"source"`
}

// SourceConfig selects and parameterises the source of an object.
type SourceConfig struct {
	Kind  string `json:"kind" yaml:"kind"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// grid
	Dilate int32 `json:"dilate,omitempty" yaml:"dilate,omitempty"`

	// heightmap and random
	Seed    int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Fill    float32 `json:"fill,omitempty" yaml:"fill,omitempty"`
	OffsetX float32 `json:"offset_x,omitempty" yaml:"offset_x,omitempty"`
	OffsetZ float32 `json:"offset_z,omitempty" yaml:"offset_z,omitempty"`

	// point, in the unit frame
	Point math32.Vector3 `json:"point,omitempty" yaml:"point,omitempty"`

	// box, sphere and capsule, in the unit frame; a capsule runs from Point to End
	Center math32.Vector3 `json:"center,omitempty" yaml:"center,omitempty"`
	Size   math32.Vector3 `json:"size,omitempty" yaml:"size,omitempty"`
	End    math32.Vector3 `json:"end,omitempty" yaml:"end,omitempty"`
	Radius float32        `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// MeshLoader reads the triangles of a mesh file.
type MeshLoader func(path string) ([]geometry.Triangle, error)

type options struct {
	loader MeshLoader
	dir    string
}

// Option customises FromConfig.
type Option func(*options)

// WithMeshLoader replaces the OBJ file reader, e.g. with a cached one.
func WithMeshLoader(loader MeshLoader) Option {
	return func(o *options) {
		o.loader = loader
	}
}

// WithBaseDir resolves relative mesh paths against dir.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// LoadConfig reads a YAML scene file.
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scene file")
	}
	cfg, err := ParseConfig(content)
	if err != nil {
		return nil, errors.Wrapf(err, "scene file %s", path)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes and validates a YAML scene description.
func ParseConfig(content []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode scene")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks names are unique and instances refer to earlier objects.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Objects))
	for i, o := range c.Objects {
		if o.Name == "" {
			return errors.Errorf("object %d has no name", i)
		}
		if seen[o.Name] {
			return errors.Errorf("duplicate object name %q", o.Name)
		}
		if o.Instance != "" && !seen[o.Instance] {
			return errors.Wrapf(ErrUnknownObject, "%s instances %q", o.Name, o.Instance)
		}
		seen[o.Name] = true
	}
	return nil
}

// FromConfig creates the objects of cfg and registers their sources. The
// octrees are empty until Build.
func FromConfig(cfg *Config, logger *zap.SugaredLogger, opts ...Option) (*Scene, error) {
	opts = append([]Option{WithBaseDir(cfg.dir)}, opts...)

	s := New()
	for _, oc := range cfg.Objects {
		obj, err := s.AddConfig(oc, opts...)
		if err != nil {
			return nil, err
		}
		logger.Debugw("object added", "name", oc.Name, "kind", oc.Source.Kind,
			"instance", oc.Instance, "depth", obj.Depth())
	}
	return s, nil
}

// AddConfig creates one object from oc and adds it. An instance shares the
// octree of the named object already in the scene; anything else gets its
// source registered for the next Build or BuildObject.
func (s *Scene) AddConfig(oc ObjectConfig, opts ...Option) (*voxel.Object, error) {
	o := options{loader: builder.LoadOBJFile}
	for _, opt := range opts {
		opt(&o)
	}
	if oc.Name == "" {
		return nil, errors.New("object has no name")
	}

	obj := voxel.NewObject(oc.Name, orDefault(oc.Depth, voxel.DefaultDepth))
	obj.Transform = voxel.Transform{Scale: orDefault(oc.Scale, 1), Position: oc.Position}

	if oc.Instance != "" {
		target, ok := s.Find(oc.Instance)
		if !ok {
			return nil, errors.Wrap(ErrUnknownObject, oc.Instance)
		}
		obj.SetOctree(target.Octree())
		obj.SetDepth(target.Depth())
		s.Add(obj, nil)
		return obj, nil
	}

	src, err := newSource(oc.Source, obj.Depth(), o)
	if err != nil {
		return nil, errors.Wrapf(err, "object %s", oc.Name)
	}
	s.Add(obj, src)
	return obj, nil
}

func orDefault[T int | float32](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

func newSource(sc SourceConfig, depth int, o options) (voxel.Source, error) {
	var color octree.ColorFunc
	col := colorful.Color{R: 1, G: 1, B: 1}
	if sc.Color != "" {
		var err error
		if col, err = colorful.Hex(sc.Color); err != nil {
			return nil, errors.Wrapf(err, "bad color %q", sc.Color)
		}
		color = source.Solid(col)
	}

	switch sc.Kind {
	case KindMesh, KindGrid:
		path := sc.Path
		if !filepath.IsAbs(path) && o.dir != "" {
			path = filepath.Join(o.dir, path)
		}
		tris, err := o.loader(path)
		if err != nil {
			return nil, err
		}
		if sc.Kind == KindMesh {
			return source.NewMesh(tris, color), nil
		}
		grid := source.Voxelize(tris, depth).WithColor(color)
		if sc.Dilate > 0 {
			grid.Dilate(sc.Dilate)
		}
		return grid, nil
	case KindHeightmap:
		return source.NewHeightmap(source.HeightmapOptions{
			Depth:   depth,
			Seed:    sc.Seed,
			OffsetX: sc.OffsetX,
			OffsetZ: sc.OffsetZ,
		}), nil
	case KindRandom:
		return source.NewRandom(sc.Seed, orDefault(sc.Fill, float32(source.DefaultFill))), nil
	case KindPoint:
		return source.Point{P: sc.Point, Color: col, Depth: depth}, nil
	case KindEmpty:
		return source.Empty{}, nil
	case KindBox:
		return source.NewShape(geometry.Box{Center: sc.Center, Size: sc.Size}, color), nil
	case KindSphere:
		return source.NewShape(geometry.Sphere{Center: sc.Center, Radius: sc.Radius}, color), nil
	case KindCapsule:
		return source.NewShape(geometry.Capsule{Start: sc.Point, End: sc.End, Radius: sc.Radius}, color), nil
	default:
		return nil, errors.Wrap(ErrUnknownSource, sc.Kind)
	}
}
