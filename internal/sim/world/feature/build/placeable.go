package build

import (
	"errors"
	"fmt"
	"strings"

	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
)

var ErrUnknownPlaceable = errors.New("unknown placeable")

type Placeable uint8

const (
	Campfire Placeable = iota + 1
	Hut
	Spear
)

func Placeables() []Placeable { return []Placeable{Campfire, Hut, Spear} }

func (p Placeable) String() string {
	switch p {
	case Campfire:
		return "CAMPFIRE"
	case Hut:
		return "HUT"
	case Spear:
		return "SPEAR"
	default:
		return fmt.Sprintf("Placeable(%d)", uint8(p))
	}
}

func (p Placeable) Valid() bool { return p >= Campfire && p <= Spear }

func ParsePlaceable(s string) (Placeable, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CAMPFIRE":
		return Campfire, nil
	case "HUT":
		return Hut, nil
	case "SPEAR":
		return Spear, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownPlaceable)
}

// costs is the only place a placeable's price is defined.
var costs = [...]ledger.Bundle{
	Campfire: {ledger.Wood: 5, ledger.Stone: 0},
	Hut:      {ledger.Wood: 20, ledger.Stone: 10},
	Spear:    {ledger.Wood: 3, ledger.Stone: 2},
}

// CostOf returns a copy of the fixed cost of p.
func CostOf(p Placeable) (ledger.Bundle, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cost of %s: %w", p, ErrUnknownPlaceable)
	}
	out := make(ledger.Bundle, len(costs[p]))
	for k, v := range costs[p] {
		out[k] = v
	}
	return out, nil
}
