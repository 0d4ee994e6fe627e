package world

import (
	"math"

	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
	"survivecraft.ai/internal/sim/world/logic/rng"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

// gatherOrder is the scan priority: wood is preferred whenever a tree
// qualifies, regardless of whether a rock is closer.
var gatherOrder = [...]scatter.Kind{scatter.Tree, scatter.Rock}

// GatherNearest harvests the closest live instance of the requested kinds
// strictly within maxDistance of the player. Ties go to the first instance
// in scan order. It returns false and changes nothing when none qualifies.
func (w *World) GatherNearest(kinds []scatter.Kind, maxDistance float64) (HarvestEvent, bool) {
	for _, k := range gatherOrder {
		if !containsKind(kinds, k) {
			continue
		}
		if i := w.nearestInstance(k, maxDistance); i >= 0 {
			return w.harvestAt(i), true
		}
	}
	return HarvestEvent{}, false
}

// Interact is the single action button: the nearest tree within reach,
// otherwise the nearest rock within its (shorter) reach.
func (w *World) Interact() (HarvestEvent, bool) {
	if ev, ok := w.GatherNearest([]scatter.Kind{scatter.Tree}, w.cfg.TreeReach); ok {
		return ev, true
	}
	return w.GatherNearest([]scatter.Kind{scatter.Rock}, w.cfg.RockReach)
}

// defaultReach is the gather distance when a command names none: tree reach
// whenever trees are wanted, rock reach for rock-only gathers.
func (c WorldConfig) defaultReach(kinds []scatter.Kind) float64 {
	if containsKind(kinds, scatter.Tree) {
		return c.TreeReach
	}
	return c.RockReach
}

func (w *World) nearestInstance(kind scatter.Kind, maxDistance float64) int {
	best := -1
	bestD := maxDistance
	for i := range w.instances {
		in := &w.instances[i]
		if in.Kind != kind {
			continue
		}
		if d := in.Pos.Dist(w.player.Pos); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func (w *World) harvestAt(i int) HarvestEvent {
	in := w.instances[i]
	w.instances = append(w.instances[:i], w.instances[i+1:]...)

	ev := HarvestEvent{ID: in.ID, Source: in.Kind}
	switch in.Kind {
	case scatter.Tree:
		ev.Kind = ledger.Wood
		ev.Amount = int(math.Floor(rng.Uniform(w.harvest, w.cfg.WoodAmount[0], w.cfg.WoodAmount[1])))
	case scatter.Rock:
		ev.Kind = ledger.Stone
		ev.Amount = int(math.Floor(rng.Uniform(w.harvest, w.cfg.StoneAmount[0], w.cfg.StoneAmount[1])))
	}
	// Kinds come from the fixed switch above, so Credit cannot reject them.
	_ = w.ledger.Credit(ev.Kind, ev.Amount)
	return ev
}

func containsKind(kinds []scatter.Kind, k scatter.Kind) bool {
	for _, v := range kinds {
		if v == k {
			return true
		}
	}
	return false
}
