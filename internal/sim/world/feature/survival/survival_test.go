package survival

import (
	"math"
	"testing"
)

func TestDecay(t *testing.T) {
	p := DefaultParams()
	v := Full(p).Decay(p, 1)
	if math.Abs(v.Hunger-99.2) > 1e-9 || math.Abs(v.Thirst-98.8) > 1e-9 {
		t.Fatalf("unexpected vitals after 1s: %+v", v)
	}
	v = Vitals{Hunger: 0.1, Thirst: 0.1}.Decay(p, 10)
	if v.Hunger != 0 || v.Thirst != 0 {
		t.Fatalf("expected clamped 0, got %+v", v)
	}
	v = Vitals{Hunger: 150, Thirst: 100}.Decay(p, 0)
	if v.Hunger != 100 {
		t.Fatalf("expected clamp to max, got %+v", v)
	}
}

func TestStarving(t *testing.T) {
	p := DefaultParams()
	if Full(p).Starving(p) {
		t.Fatalf("full vitals should not be starving")
	}
	if !(Vitals{Hunger: 50, Thirst: 9}).Starving(p) {
		t.Fatalf("low thirst should count as starving")
	}
}

func TestClockRollsOver(t *testing.T) {
	p := DefaultParams()
	c := NewClock()
	if c.Day != 1 || c.TimeOfDay != 0 {
		t.Fatalf("unexpected start clock: %+v", c)
	}
	c = c.Advance(p, 25)
	if c.Day != 1 || math.Abs(c.TimeOfDay-0.5) > 1e-12 {
		t.Fatalf("expected midday, got %+v", c)
	}
	c = c.Advance(p, 30)
	if c.Day != 2 || c.TimeOfDay != 0 {
		t.Fatalf("expected day 2 start, got %+v", c)
	}
}

func TestIsNight(t *testing.T) {
	if !(Clock{TimeOfDay: 0.1}).IsNight() || !(Clock{TimeOfDay: 0.9}).IsNight() || (Clock{TimeOfDay: 0.5}).IsNight() {
		t.Fatalf("night/day classification mismatch")
	}
}
