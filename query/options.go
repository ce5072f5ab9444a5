package query

import "github.com/o0olele/svo-go/geometry"

// PickOptions tune scene picking.
type PickOptions struct {
	// MaxDistance discards hits farther than this along the ray.
	MaxDistance float32
	// Normalize rescales ray directions to unit length so distances are in world units.
	Normalize bool
}

// DefaultPickOptions returns the options a new Picker starts with.
func DefaultPickOptions() *PickOptions {
	return &PickOptions{
		MaxDistance: geometry.MaxRayDistance,
		Normalize:   true,
	}
}

// GetPickOptions returns the live options; changes apply to the next pick.
func (p *Picker) GetPickOptions() *PickOptions {
	return p.opts
}
