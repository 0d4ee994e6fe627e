package world

import (
	"math"

	"survivecraft.ai/internal/sim/world/logic/mathx"
)

// systemMovement integrates the held intent over dt and eases the player
// toward standing height above the (stepped) terrain.
func (w *World) systemMovement(dt float64) {
	p := &w.player
	in := p.Intent

	fwd := mathx.Vec3{X: math.Sin(in.Yaw), Z: math.Cos(in.Yaw)}
	right := mathx.Vec3{X: fwd.Z, Z: -fwd.X}
	dir := fwd.Scale(in.Forward).Add(right.Scale(in.Strafe))
	if l := math.Hypot(dir.X, dir.Z); l > 0 {
		speed := w.cfg.Speed
		if p.Vitals.Starving(w.cfg.Survival) {
			speed = w.cfg.StarvedSpeed
		}
		p.Pos = p.Pos.Add(dir.Scale(speed * dt / l))
	}

	ground := w.field.SampleHeight(p.Pos.X, p.Pos.Z) + w.cfg.EyeHeight
	p.Pos.Y = mathx.Lerp(p.Pos.Y, ground, w.cfg.GroundLerp)
}

func (w *World) systemSurvival(dt float64) {
	w.player.Vitals = w.player.Vitals.Decay(w.cfg.Survival, dt)
	w.clock = w.clock.Advance(w.cfg.Survival, dt)
}
