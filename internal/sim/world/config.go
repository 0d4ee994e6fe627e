package world

import (
	"survivecraft.ai/internal/sim/tuning"
	"survivecraft.ai/internal/sim/world/feature/survival"
	"survivecraft.ai/internal/sim/world/terrain/height"
	"survivecraft.ai/internal/sim/world/terrain/noise"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

type WorldConfig struct {
	ID           string
	Seed         int64
	TickRateHz   int
	MaxStepMS    int
	NoiseBackend string

	Terrain  height.Params
	Scatter  scatter.Params
	Survival survival.Params

	TreeReach   float64
	RockReach   float64
	WoodAmount  [2]float64
	StoneAmount [2]float64

	// Ghost previews float this far above the ground to avoid z-fighting.
	GhostLift float64

	Speed        float64
	StarvedSpeed float64
	EyeHeight    float64
	GroundLerp   float64
}

// ConfigFromTuning maps the YAML tuning document onto a world config.
func ConfigFromTuning(id string, t tuning.Tuning) WorldConfig {
	octaves := make([]height.Octave, 0, len(t.World.Octaves))
	for _, o := range t.World.Octaves {
		octaves = append(octaves, height.Octave{Frequency: o.Frequency, Amplitude: o.Amplitude})
	}
	return WorldConfig{
		ID:           id,
		Seed:         t.World.Seed,
		TickRateHz:   t.Tick.TickRateHz,
		MaxStepMS:    t.Tick.MaxStepMS,
		NoiseBackend: t.World.NoiseBackend,
		Terrain: height.Params{
			WorldSize:  t.World.WorldSize,
			Resolution: t.World.Resolution,
			Octaves:    octaves,
		},
		Scatter: scatter.Params{
			WorldSize:      t.World.WorldSize,
			Trees:          t.Scatter.Trees,
			Rocks:          t.Scatter.Rocks,
			Spread:         t.Scatter.Spread,
			WaterLevel:     t.Scatter.WaterLevel,
			TreeSkipChance: t.Scatter.TreeSkipChance,
			TreeScaleMin:   t.Scatter.TreeScale[0],
			TreeScaleMax:   t.Scatter.TreeScale[1],
			RockScaleMin:   t.Scatter.RockScale[0],
			RockScaleMax:   t.Scatter.RockScale[1],
		},
		Survival: survival.Params{
			MaxVital:     t.Survival.MaxVital,
			HungerPerSec: t.Survival.HungerPerSec,
			ThirstPerSec: t.Survival.ThirstPerSec,
			LowThreshold: t.Survival.LowThreshold,
			DayPerSec:    t.Survival.DayPerSec,
		},
		TreeReach:    t.Gather.TreeReach,
		RockReach:    t.Gather.RockReach,
		WoodAmount:   t.Gather.WoodAmount,
		StoneAmount:  t.Gather.StoneAmount,
		GhostLift:    t.Build.GhostLift,
		Speed:        t.Player.Speed,
		StarvedSpeed: t.Player.StarvedSpeed,
		EyeHeight:    t.Player.EyeHeight,
		GroundLerp:   t.Player.GroundLerp,
	}
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 30
	}
	if c.MaxStepMS <= 0 {
		c.MaxStepMS = 33
	}
	if c.NoiseBackend == "" {
		c.NoiseBackend = noise.BackendSimplex
	}
	if c.Terrain.WorldSize <= 0 {
		c.Terrain.WorldSize = 600
	}
	if c.Terrain.Resolution <= 0 {
		c.Terrain.Resolution = 180
	}
	if len(c.Terrain.Octaves) == 0 {
		c.Terrain.Octaves = height.DefaultOctaves()
	}
	if c.Scatter == (scatter.Params{}) {
		c.Scatter = scatter.DefaultParams()
	}
	c.Scatter.WorldSize = c.Terrain.WorldSize
	if c.Survival == (survival.Params{}) {
		c.Survival = survival.DefaultParams()
	}
	if c.TreeReach <= 0 {
		c.TreeReach = 2.2
	}
	if c.RockReach <= 0 {
		c.RockReach = 2.0
	}
	if c.WoodAmount == ([2]float64{}) {
		c.WoodAmount = [2]float64{2, 4}
	}
	if c.StoneAmount == ([2]float64{}) {
		c.StoneAmount = [2]float64{1, 3}
	}
	if c.GhostLift <= 0 {
		c.GhostLift = 0.02
	}
	if c.Speed <= 0 {
		c.Speed = 3.2
	}
	if c.StarvedSpeed <= 0 {
		c.StarvedSpeed = 2.0
	}
	if c.EyeHeight <= 0 {
		c.EyeHeight = 1.0
	}
	if c.GroundLerp <= 0 || c.GroundLerp > 1 {
		c.GroundLerp = 0.4
	}
}

// stepSeconds is the simulated time per tick. It depends only on config so
// replays advance identically regardless of wall-clock jitter.
func (c WorldConfig) stepSeconds() float64 {
	dt := 1.0 / float64(c.TickRateHz)
	if limit := float64(c.MaxStepMS) / 1000.0; dt > limit {
		dt = limit
	}
	return dt
}
