package source

import (
	"github.com/aquilax/go-perlin"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/o0olele/svo-go/math32"
)

// HeightmapOptions configures a perlin terrain chunk.
type HeightmapOptions struct {
	Depth int
	Seed  int64
	// OffsetX and OffsetZ shift the noise so neighbouring chunks line up;
	// use the chunk position divided by its scale.
	OffsetX float32
	OffsetZ float32
	Alpha   float64
	Beta    float64
	Octaves int32
}

// Heightmap is a terrain chunk: each column holds the two cells at and above
// the noise height.
type Heightmap struct {
	*Grid
	noise *perlin.Perlin
}

// NewHeightmap samples the noise once per column and fills the grid.
func NewHeightmap(opts HeightmapOptions) *Heightmap {
	if opts.Alpha == 0 {
		opts.Alpha = 2
	}
	if opts.Beta == 0 {
		opts.Beta = 2
	}
	if opts.Octaves == 0 {
		opts.Octaves = 3
	}

	h := &Heightmap{
		Grid:  NewGrid(opts.Depth),
		noise: perlin.NewPerlin(opts.Alpha, opts.Beta, opts.Octaves, opts.Seed),
	}

	size := h.size
	for i := int32(0); i < size; i++ {
		for j := int32(0); j < size; j++ {
			n := h.noise.Noise2D(
				float64(float32(i)/float32(size)+opts.OffsetX),
				float64(float32(j)/float32(size)+opts.OffsetZ),
			)
			height := math32.Clamp(float32(n+1)/2, 0, 1) * float32(size)
			y := int32(math32.Floor(height))

			h.Set(math32.Vector3i{X: i, Y: y, Z: j}, true)
			h.Set(math32.Vector3i{X: i, Y: y + 1, Z: j}, true)
		}
	}
	return h
}

// ColorAt varies the red channel with 3D noise and keeps green and blue fixed.
func (h *Heightmap) ColorAt(pos math32.Vector3) colorful.Color {
	r := (h.noise.Noise3D(float64(pos.X)*8, float64(pos.Y)*8, float64(pos.Z)*8) + 1) / 2
	return colorful.Color{R: r, G: 0.5, B: 0.3}.Clamped()
}
