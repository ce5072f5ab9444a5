package source

import (
	"math/rand"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

// DefaultFill is the probability Random accepts a cube with.
const DefaultFill = 0.8

// Random accepts each queried cube with a fixed probability. It is meant for
// stress tests and demos. Every build restarts the sequence at the root cube
// query, so rebuilding the same source gives the same tree.
type Random struct {
	mu   sync.Mutex
	seed int64
	rng  *rand.Rand
	fill float32
}

// NewRandom returns a seeded random source. fill <= 0 selects DefaultFill.
func NewRandom(seed int64, fill float32) *Random {
	if fill <= 0 {
		fill = DefaultFill
	}
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed)), fill: fill}
}

// IntersectsUnitCube draws one random number per query. The root cube
// reseeds first.
func (r *Random) IntersectsUnitCube(cube geometry.UnitCube) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cube == geometry.RootCube {
		r.rng.Seed(r.seed)
	}
	return r.rng.Float32() < r.fill
}

// ColorAt shades by distance from the center.
func (r *Random) ColorAt(pos math32.Vector3) colorful.Color {
	return GreyByDistance(pos)
}

// KeepRoot asks the builder for a single empty node rather than an empty tree.
func (r *Random) KeepRoot() bool {
	return true
}
