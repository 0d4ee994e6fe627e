package tuning

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_OverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	doc := `
world:
  seed: 42
  noise_backend: perlin
scatter:
  trees: 10
tick:
  tick_rate_hz: 20
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.World.Seed != 42 || got.World.NoiseBackend != "perlin" {
		t.Fatalf("world overrides not applied: %+v", got.World)
	}
	if got.World.Resolution != 180 || len(got.World.Octaves) != 2 {
		t.Fatalf("world defaults lost: %+v", got.World)
	}
	if got.Scatter.Trees != 10 || got.Scatter.Rocks != 200 {
		t.Fatalf("scatter: %+v", got.Scatter)
	}
	if got.Tick.TickRateHz != 20 || got.Tick.MaxStepMS != 33 {
		t.Fatalf("tick: %+v", got.Tick)
	}
	if got.Gather.TreeReach != 2.2 || got.Build.GhostLift != 0.02 {
		t.Fatalf("untouched sections changed: %+v %+v", got.Gather, got.Build)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("world: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Tuning)
		want string
	}{
		{"world size", func(t *Tuning) { t.World.WorldSize = 0 }, "world.world_size"},
		{"resolution", func(t *Tuning) { t.World.Resolution = -1 }, "world.resolution"},
		{"no octaves", func(t *Tuning) { t.World.Octaves = nil }, "world.octaves"},
		{"spread", func(t *Tuning) { t.Scatter.Spread = 0.6 }, "scatter.spread"},
		{"tree scale", func(t *Tuning) { t.Scatter.TreeScale = [2]float64{2, 1} }, "scatter.tree_scale"},
		{"wood amount", func(t *Tuning) { t.Gather.WoodAmount = [2]float64{-1, 3} }, "gather.wood_amount"},
		{"lerp", func(t *Tuning) { t.Player.GroundLerp = 0 }, "player.ground_lerp"},
		{"tick rate", func(t *Tuning) { t.Tick.TickRateHz = 0 }, "tick.tick_rate_hz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tu := Defaults()
			tc.mut(&tu)
			err := tu.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	want := Defaults()
	want.World.Seed = 77
	want.Scatter.Trees = 12
	path := filepath.Join(t.TempDir(), "nested", "tuning.yaml")
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoad_ShippedConfigMatchesDefaults(t *testing.T) {
	got, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, Defaults()) {
		t.Fatalf("configs/tuning.yaml drifted from Defaults:\n got %+v\nwant %+v", got, Defaults())
	}
}
