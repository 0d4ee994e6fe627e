package noise

import "math"

var (
	f2 = 0.5 * (math.Sqrt(3.0) - 1.0)
	g2 = (3.0 - math.Sqrt(3.0)) / 6.0
)

// grad3 holds the 12 gradient directions as (x,y) pairs.
var grad3 = [24]float64{
	1, 1, -1, 1, 1, -1, -1, -1,
	1, 0, -1, 0, 1, 0, -1, 0,
	0, 1, 0, -1, 0, 1, 0, -1,
}

// Simplex is a seeded 2D simplex gradient noise field. It is immutable after
// construction and safe for concurrent readers.
type Simplex struct {
	perm      [512]uint8
	permMod12 [512]uint8
}

// NewSimplex shuffles the permutation table with a mulberry32 stream. Only
// the low 32 bits of seed are used.
func NewSimplex(seed int64) *Simplex {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	r := NewMulberry32(uint32(seed))
	for i := 255; i > 0; i-- {
		n := int(math.Floor(r.Float64() * float64(i+1)))
		p[i], p[n] = p[n], p[i]
	}
	s := &Simplex{}
	for i := 0; i < 512; i++ {
		s.perm[i] = p[i&255]
		s.permMod12[i] = s.perm[i] % 12
	}
	return s
}

// Noise2D returns the field value at (xin, yin), approximately in [-1, 1].
func (s *Simplex) Noise2D(xin, yin float64) float64 {
	var n0, n1, n2 float64

	sk := (xin + yin) * f2
	i := int(math.Floor(xin + sk))
	j := int(math.Floor(yin + sk))
	t := float64(i+j) * g2
	x0 := xin - (float64(i) - t)
	y0 := yin - (float64(j) - t)

	// Lower or upper triangle of the skewed cell.
	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	gi0 := int(s.permMod12[ii+int(s.perm[jj])]) * 2
	gi1 := int(s.permMod12[ii+i1+int(s.perm[jj+j1])]) * 2
	gi2 := int(s.permMod12[ii+1+int(s.perm[jj+1])]) * 2

	if t0 := 0.5 - x0*x0 - y0*y0; t0 >= 0 {
		t0 *= t0
		n0 = t0 * t0 * (grad3[gi0]*x0 + grad3[gi0+1]*y0)
	}
	if t1 := 0.5 - x1*x1 - y1*y1; t1 >= 0 {
		t1 *= t1
		n1 = t1 * t1 * (grad3[gi1]*x1 + grad3[gi1+1]*y1)
	}
	if t2 := 0.5 - x2*x2 - y2*y2; t2 >= 0 {
		t2 *= t2
		n2 = t2 * t2 * (grad3[gi2]*x2 + grad3[gi2+1]*y2)
	}
	return 70.0 * (n0 + n1 + n2)
}
