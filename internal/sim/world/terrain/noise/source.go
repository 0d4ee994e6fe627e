package noise

import (
	"fmt"
	"strings"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Source is a deterministic 2D scalar field.
type Source interface {
	Noise2D(x, y float64) float64
}

const (
	BackendSimplex     = "simplex"
	BackendOpenSimplex = "opensimplex"
	BackendPerlin      = "perlin"
)

// Backends lists the accepted backend names in a stable order.
func Backends() []string {
	return []string{BackendSimplex, BackendOpenSimplex, BackendPerlin}
}

// New builds the named backend. An empty name selects simplex.
func New(backend string, seed int64) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSimplex:
		return NewSimplex(seed), nil
	case BackendOpenSimplex:
		return openSimplexSource{n: opensimplex.New(seed)}, nil
	case BackendPerlin:
		return perlinSource{p: perlin.NewPerlin(2, 2, 3, seed)}, nil
	default:
		return nil, fmt.Errorf("unknown noise backend %q", backend)
	}
}

type openSimplexSource struct{ n opensimplex.Noise }

func (s openSimplexSource) Noise2D(x, y float64) float64 { return s.n.Eval2(x, y) }

type perlinSource struct{ p *perlin.Perlin }

func (s perlinSource) Noise2D(x, y float64) float64 { return s.p.Noise2D(x, y) }
