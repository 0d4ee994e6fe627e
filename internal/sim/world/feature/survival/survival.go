package survival

import "survivecraft.ai/internal/sim/world/logic/mathx"

type Params struct {
	MaxVital     float64
	HungerPerSec float64
	ThirstPerSec float64
	// Below this either vital counts as starving and slows the player.
	LowThreshold float64
	DayPerSec    float64
}

func DefaultParams() Params {
	return Params{
		MaxVital:     100,
		HungerPerSec: 0.8,
		ThirstPerSec: 1.2,
		LowThreshold: 10,
		DayPerSec:    0.02,
	}
}

type Vitals struct {
	Hunger float64 `json:"hunger"`
	Thirst float64 `json:"thirst"`
}

func Full(p Params) Vitals { return Vitals{Hunger: p.MaxVital, Thirst: p.MaxVital} }

// Decay drains both vitals over dt seconds, clamped to [0, MaxVital].
func (v Vitals) Decay(p Params, dt float64) Vitals {
	return Vitals{
		Hunger: mathx.Clamp(v.Hunger-dt*p.HungerPerSec, 0, p.MaxVital),
		Thirst: mathx.Clamp(v.Thirst-dt*p.ThirstPerSec, 0, p.MaxVital),
	}
}

func (v Vitals) Starving(p Params) bool {
	return v.Hunger < p.LowThreshold || v.Thirst < p.LowThreshold
}

type Clock struct {
	Day       int     `json:"day"`
	TimeOfDay float64 `json:"time_of_day"`
}

func NewClock() Clock { return Clock{Day: 1} }

// Advance moves time forward. Crossing 1.0 wraps to 0 and starts a new day;
// the remainder is dropped.
func (c Clock) Advance(p Params, dt float64) Clock {
	c.TimeOfDay += dt * p.DayPerSec
	if c.TimeOfDay >= 1 {
		c.TimeOfDay = 0
		c.Day++
	}
	return c
}

func (c Clock) IsNight() bool {
	return c.TimeOfDay < 0.25 || c.TimeOfDay > 0.75
}
