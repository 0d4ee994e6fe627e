package scatter

import (
	"fmt"

	"survivecraft.ai/internal/sim/world/logic/ids"
	"survivecraft.ai/internal/sim/world/logic/mathx"
	"survivecraft.ai/internal/sim/world/logic/rng"
)

type Kind uint8

const (
	Tree Kind = iota + 1
	Rock
)

func (k Kind) String() string {
	switch k {
	case Tree:
		return "TREE"
	case Rock:
		return "ROCK"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func ParseKind(s string) (Kind, bool) {
	switch s {
	case "TREE", "tree":
		return Tree, true
	case "ROCK", "rock":
		return Rock, true
	}
	return 0, false
}

// Instance is a placed tree or rock. Each one is also a harvestable resource
// node and is removed from the world when gathered.
type Instance struct {
	ID    string
	Kind  Kind
	Pos   mathx.Vec3
	Scale float64
}

// Heights is the grounding query scatter needs from the terrain.
type Heights interface {
	SampleHeight(x, z float64) float64
}

// Rand is a uniform [0,1) source. It must be seeded for placement to replay.
type Rand interface {
	Float64() float64
}

type Params struct {
	WorldSize      float64
	Trees          int
	Rocks          int
	Spread         float64 // fraction of WorldSize on each side of the origin
	WaterLevel     float64
	TreeSkipChance float64
	TreeScaleMin   float64
	TreeScaleMax   float64
	RockScaleMin   float64
	RockScaleMax   float64
}

func DefaultParams() Params {
	return Params{
		WorldSize:      600,
		Trees:          300,
		Rocks:          200,
		Spread:         0.45,
		WaterLevel:     1.0,
		TreeSkipChance: 0.25,
		TreeScaleMin:   0.9,
		TreeScaleMax:   1.4,
		RockScaleMin:   0.6,
		RockScaleMax:   1.4,
	}
}

type Result struct {
	Instances []Instance

	TreeAttempts    int
	TreesBelowWater int
	TreesSparsified int
}

func (r Result) Count(k Kind) int {
	n := 0
	for _, in := range r.Instances {
		if in.Kind == k {
			n++
		}
	}
	return n
}

// Place populates the world. Draws are consumed strictly in this order:
// per tree attempt x, z, [skip roll if above water], [scale if kept]; then
// per rock x, z, scale. Rejected trees are skipped, never retried.
func Place(h Heights, r Rand, p Params) Result {
	extent := p.WorldSize * p.Spread
	res := Result{Instances: make([]Instance, 0, p.Trees+p.Rocks)}

	var nextTree, nextRock uint64
	for i := 0; i < p.Trees; i++ {
		res.TreeAttempts++
		x := rng.Uniform(r, -extent, extent)
		z := rng.Uniform(r, -extent, extent)
		y := h.SampleHeight(x, z)
		if y < p.WaterLevel {
			res.TreesBelowWater++
			continue
		}
		if r.Float64() < p.TreeSkipChance {
			res.TreesSparsified++
			continue
		}
		nextTree++
		res.Instances = append(res.Instances, Instance{
			ID:    ids.Seq(ids.PrefixTree, nextTree),
			Kind:  Tree,
			Pos:   mathx.Vec3{X: x, Y: y, Z: z},
			Scale: rng.Uniform(r, p.TreeScaleMin, p.TreeScaleMax),
		})
	}
	for i := 0; i < p.Rocks; i++ {
		x := rng.Uniform(r, -extent, extent)
		z := rng.Uniform(r, -extent, extent)
		y := h.SampleHeight(x, z)
		nextRock++
		res.Instances = append(res.Instances, Instance{
			ID:    ids.Seq(ids.PrefixRock, nextRock),
			Kind:  Rock,
			Pos:   mathx.Vec3{X: x, Y: y, Z: z},
			Scale: rng.Uniform(r, p.RockScaleMin, p.RockScaleMax),
		})
	}
	return res
}
