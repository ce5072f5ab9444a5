// Package query answers ray picks against a scene and applies voxel edits at
// the picked surface.
package query

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/scene"
	"github.com/o0olele/svo-go/voxel"
)

// ErrZeroDirection is returned for a ray without a direction.
var ErrZeroDirection = errors.New("ray direction is zero")

// PickResult is the object a ray hit first and where.
type PickResult struct {
	Object *voxel.Object `json:"-"`
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Hit    octree.RayHit `json:"hit"`
}

// Picker runs picks against a scene. It does not lock; callers serialise
// Paint with other edits.
type Picker struct {
	scene *scene.Scene
	opts  *PickOptions
}

// NewPicker returns a picker over s with default options.
func NewPicker(s *scene.Scene) *Picker {
	return &Picker{scene: s, opts: DefaultPickOptions()}
}

// GetScene returns the picked scene.
func (p *Picker) GetScene() *scene.Scene {
	return p.scene
}

// Pick returns the nearest hit along ro + t*rd. ok is false on a miss.
func (p *Picker) Pick(ro, rd math32.Vector3) (result PickResult, ok bool, err error) {
	if rd.LengthSquared() == 0 {
		return PickResult{}, false, ErrZeroDirection
	}
	if p.opts.Normalize {
		rd = rd.Normalize()
	}

	obj, hit, err := p.scene.Pick(ro, rd)
	if err != nil {
		return PickResult{}, false, err
	}
	if obj == nil || hit.Distance > p.opts.MaxDistance {
		return PickResult{Hit: hit}, false, nil
	}
	return PickResult{Object: obj, ID: obj.ID, Name: obj.Name, Hit: hit}, true, nil
}

// Paint adds a voxel of color c on the face the ray hits first.
func (p *Picker) Paint(ro, rd math32.Vector3, c colorful.Color) (PickResult, bool, error) {
	result, ok, err := p.Pick(ro, rd)
	if err != nil || !ok {
		return result, ok, err
	}
	if err := result.Object.SetVoxel(result.Hit.Point, result.Hit.Normal, c); err != nil {
		return result, false, errors.Wrapf(err, "failed to paint %s", result.Name)
	}
	return result, true, nil
}
