package height

import (
	"fmt"
	"math"

	"survivecraft.ai/internal/sim/world/terrain/noise"
)

// Octave is one noise evaluation summed into the height grid.
type Octave struct {
	Frequency float64
	Amplitude float64
}

type Params struct {
	WorldSize  float64
	Resolution int
	Octaves    []Octave
}

// DefaultOctaves is a dominant base octave plus a finer, quieter one at 2.5x
// the base frequency.
func DefaultOctaves() []Octave {
	return []Octave{
		{Frequency: 0.0025, Amplitude: 8},
		{Frequency: 0.0025 * 2.5, Amplitude: 2},
	}
}

func DefaultParams() Params {
	return Params{WorldSize: 600, Resolution: 180, Octaves: DefaultOctaves()}
}

// Field is the precomputed (res+1)x(res+1) elevation grid centred on the
// origin. It never changes after Build returns.
type Field struct {
	size    float64
	half    float64
	res     int
	heights []float64

	min, max float64
}

func Build(src noise.Source, p Params) (*Field, error) {
	if src == nil {
		return nil, fmt.Errorf("height: nil noise source")
	}
	if p.WorldSize <= 0 || math.IsNaN(p.WorldSize) || math.IsInf(p.WorldSize, 0) {
		return nil, fmt.Errorf("height: world size must be positive, got %v", p.WorldSize)
	}
	if p.Resolution <= 0 {
		return nil, fmt.Errorf("height: resolution must be positive, got %d", p.Resolution)
	}

	f := &Field{
		size:    p.WorldSize,
		half:    p.WorldSize / 2,
		res:     p.Resolution,
		heights: make([]float64, (p.Resolution+1)*(p.Resolution+1)),
		min:     math.Inf(1),
		max:     math.Inf(-1),
	}
	cell := p.WorldSize / float64(p.Resolution)
	for iz := 0; iz <= p.Resolution; iz++ {
		z := float64(iz)*cell - f.half
		for ix := 0; ix <= p.Resolution; ix++ {
			x := float64(ix)*cell - f.half
			e := 0.0
			for _, o := range p.Octaves {
				e += src.Noise2D(x*o.Frequency, z*o.Frequency) * o.Amplitude
			}
			f.heights[iz*(p.Resolution+1)+ix] = e
			f.min = math.Min(f.min, e)
			f.max = math.Max(f.max, e)
		}
	}
	return f, nil
}

// SampleHeight returns the stored elevation of the grid cell containing
// (x, z). Lookup is nearest-cell, so the result steps between vertices.
// Coordinates outside the world clamp to the boundary cell.
func (f *Field) SampleHeight(x, z float64) float64 {
	ix, ok := f.index((x + f.half) / f.size)
	if !ok {
		return 0
	}
	iz, ok := f.index((z + f.half) / f.size)
	if !ok {
		return 0
	}
	v := f.heights[iz*(f.res+1)+ix]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (f *Field) index(u float64) (int, bool) {
	if math.IsNaN(u) {
		return 0, false
	}
	c := math.Floor(u * float64(f.res))
	if c < 0 {
		c = 0
	}
	if c > float64(f.res) {
		c = float64(f.res)
	}
	return int(c), true
}

func (f *Field) Resolution() int    { return f.res }
func (f *Field) WorldSize() float64 { return f.size }

// Bounds reports the lowest and highest stored elevation.
func (f *Field) Bounds() (min, max float64) { return f.min, f.max }

// Heights returns a copy of the grid in row-major (z, then x) order.
func (f *Field) Heights() []float64 {
	out := make([]float64, len(f.heights))
	copy(out, f.heights)
	return out
}

// At returns the vertex value at grid indices, clamped into range.
func (f *Field) At(ix, iz int) float64 {
	ix = clampInt(ix, 0, f.res)
	iz = clampInt(iz, 0, f.res)
	return f.heights[iz*(f.res+1)+ix]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
