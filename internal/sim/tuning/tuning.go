package tuning

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	World    World    `yaml:"world"`
	Scatter  Scatter  `yaml:"scatter"`
	Gather   Gather   `yaml:"gather"`
	Build    Build    `yaml:"build"`
	Player   Player   `yaml:"player"`
	Survival Survival `yaml:"survival"`
	Tick     Tick     `yaml:"tick"`
	Logging  Logging  `yaml:"logging"`
}

type World struct {
	Seed         int64    `yaml:"seed"`
	WorldSize    float64  `yaml:"world_size"`
	Resolution   int      `yaml:"resolution"`
	NoiseBackend string   `yaml:"noise_backend"`
	Octaves      []Octave `yaml:"octaves"`
}

type Octave struct {
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
}

type Scatter struct {
	Trees          int        `yaml:"trees"`
	Rocks          int        `yaml:"rocks"`
	Spread         float64    `yaml:"spread"`
	WaterLevel     float64    `yaml:"water_level"`
	TreeSkipChance float64    `yaml:"tree_skip_chance"`
	TreeScale      [2]float64 `yaml:"tree_scale"`
	RockScale      [2]float64 `yaml:"rock_scale"`
}

type Gather struct {
	TreeReach   float64    `yaml:"tree_reach"`
	RockReach   float64    `yaml:"rock_reach"`
	WoodAmount  [2]float64 `yaml:"wood_amount"`
	StoneAmount [2]float64 `yaml:"stone_amount"`
}

type Build struct {
	GhostLift float64 `yaml:"ghost_lift"`
}

type Player struct {
	Speed        float64 `yaml:"speed"`
	StarvedSpeed float64 `yaml:"starved_speed"`
	EyeHeight    float64 `yaml:"eye_height"`
	GroundLerp   float64 `yaml:"ground_lerp"`
}

type Survival struct {
	MaxVital     float64 `yaml:"max_vital"`
	HungerPerSec float64 `yaml:"hunger_per_sec"`
	ThirstPerSec float64 `yaml:"thirst_per_sec"`
	LowThreshold float64 `yaml:"low_threshold"`
	DayPerSec    float64 `yaml:"day_per_sec"`
}

type Tick struct {
	TickRateHz int `yaml:"tick_rate_hz"`
	MaxStepMS  int `yaml:"max_step_ms"`
}

type Logging struct {
	DataDir   string `yaml:"data_dir"`
	DisableDB bool   `yaml:"disable_db"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		World: World{
			Seed:         1337,
			WorldSize:    600,
			Resolution:   180,
			NoiseBackend: "simplex",
			Octaves: []Octave{
				{Frequency: 0.0025, Amplitude: 8},
				{Frequency: 0.00625, Amplitude: 2},
			},
		},
		Scatter: Scatter{
			Trees:          300,
			Rocks:          200,
			Spread:         0.45,
			WaterLevel:     1.0,
			TreeSkipChance: 0.25,
			TreeScale:      [2]float64{0.9, 1.4},
			RockScale:      [2]float64{0.6, 1.4},
		},
		Gather: Gather{
			TreeReach:   2.2,
			RockReach:   2.0,
			WoodAmount:  [2]float64{2, 4},
			StoneAmount: [2]float64{1, 3},
		},
		Build:  Build{GhostLift: 0.02},
		Player: Player{Speed: 3.2, StarvedSpeed: 2.0, EyeHeight: 1.0, GroundLerp: 0.4},
		Survival: Survival{
			MaxVital:     100,
			HungerPerSec: 0.8,
			ThirstPerSec: 1.2,
			LowThreshold: 10,
			DayPerSec:    0.02,
		},
		Tick:    Tick{TickRateHz: 30, MaxStepMS: 33},
		Logging: Logging{DataDir: "./data"},
	}
}

// Load reads a YAML tuning file on top of Defaults, so absent keys keep
// their default values. The result is validated.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	bad := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if t.World.WorldSize <= 0 {
		bad("world.world_size must be > 0")
	}
	if t.World.Resolution <= 0 {
		bad("world.resolution must be > 0")
	}
	if len(t.World.Octaves) == 0 {
		bad("world.octaves must not be empty")
	}
	for i, o := range t.World.Octaves {
		if o.Frequency <= 0 {
			bad("world.octaves[%d].frequency must be > 0", i)
		}
	}
	if t.Scatter.Trees < 0 || t.Scatter.Rocks < 0 {
		bad("scatter counts must be >= 0")
	}
	if t.Scatter.Spread <= 0 || t.Scatter.Spread > 0.5 {
		bad("scatter.spread must be in (0, 0.5]")
	}
	if t.Scatter.TreeSkipChance < 0 || t.Scatter.TreeSkipChance > 1 {
		bad("scatter.tree_skip_chance must be in [0, 1]")
	}
	checkRange(bad, "scatter.tree_scale", t.Scatter.TreeScale)
	checkRange(bad, "scatter.rock_scale", t.Scatter.RockScale)
	if t.Gather.TreeReach <= 0 || t.Gather.RockReach <= 0 {
		bad("gather reach must be > 0")
	}
	checkRange(bad, "gather.wood_amount", t.Gather.WoodAmount)
	checkRange(bad, "gather.stone_amount", t.Gather.StoneAmount)
	if t.Build.GhostLift < 0 {
		bad("build.ghost_lift must be >= 0")
	}
	if t.Player.Speed <= 0 || t.Player.StarvedSpeed <= 0 {
		bad("player speeds must be > 0")
	}
	if t.Player.GroundLerp <= 0 || t.Player.GroundLerp > 1 {
		bad("player.ground_lerp must be in (0, 1]")
	}
	if t.Survival.MaxVital <= 0 {
		bad("survival.max_vital must be > 0")
	}
	if t.Survival.HungerPerSec < 0 || t.Survival.ThirstPerSec < 0 || t.Survival.DayPerSec < 0 {
		bad("survival rates must be >= 0")
	}
	if t.Tick.TickRateHz <= 0 {
		bad("tick.tick_rate_hz must be > 0")
	}
	if t.Tick.MaxStepMS <= 0 {
		bad("tick.max_step_ms must be > 0")
	}
	return errors.Join(errs...)
}

func checkRange(bad func(string, ...any), name string, r [2]float64) {
	if r[0] < 0 || r[1] < r[0] {
		bad("%s must be [lo, hi] with 0 <= lo <= hi", name)
	}
}

// Save writes t as YAML, creating parent directories. A saved file loads
// back to the same values.
func Save(path string, t Tuning) error {
	b, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
