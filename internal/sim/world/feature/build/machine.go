package build

import (
	"errors"
	"fmt"

	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
	"survivecraft.ai/internal/sim/world/logic/mathx"
)

var ErrNoGhost = errors.New("no ghost to confirm")

type Phase uint8

const (
	Idle Phase = iota
	Selecting
	Ghosted
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "IDLE"
	case Selecting:
		return "SELECTING"
	case Ghosted:
		return "GHOSTED"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// State is the current placement phase. Kind is zero when Idle; Pos is only
// meaningful when Ghosted.
type State struct {
	Phase Phase
	Kind  Placeable
	Pos   mathx.Vec3
}

func (s State) String() string {
	switch s.Phase {
	case Selecting:
		return fmt.Sprintf("SELECTING(%s)", s.Kind)
	case Ghosted:
		return fmt.Sprintf("GHOSTED(%s @ %.2f,%.2f,%.2f)", s.Kind, s.Pos.X, s.Pos.Y, s.Pos.Z)
	default:
		return s.Phase.String()
	}
}

// Placement is a confirmed build ready to become a permanent structure.
type Placement struct {
	Kind Placeable
	Pos  mathx.Vec3
	Cost ledger.Bundle
}

// Debiter is the ledger side of a confirm.
type Debiter interface {
	Debit(cost ledger.Bundle) error
}

// Machine gates construction: select a kind, pick ground, then confirm
// against the ledger or cancel.
type Machine struct {
	state State
}

func (m *Machine) State() State { return m.state }

// Select chooses kind. From any phase it lands in Selecting(kind) and drops
// a pending preview. Affordability is not checked here.
func (m *Machine) Select(kind Placeable) error {
	if !kind.Valid() {
		return fmt.Errorf("select %s: %w", kind, ErrUnknownPlaceable)
	}
	m.state = State{Phase: Selecting, Kind: kind}
	return nil
}

// GroundPick places or moves the preview. A miss (hit=false) or an Idle
// machine leaves the state unchanged and returns false.
func (m *Machine) GroundPick(pos mathx.Vec3, hit bool) bool {
	if !hit || !pos.IsFinite() {
		return false
	}
	switch m.state.Phase {
	case Selecting, Ghosted:
		m.state = State{Phase: Ghosted, Kind: m.state.Kind, Pos: pos}
		return true
	default:
		return false
	}
}

// Confirm debits the cost of the ghosted kind. On failure the machine stays
// Ghosted at the same position and the ledger is untouched.
func (m *Machine) Confirm(l Debiter) (Placement, error) {
	if m.state.Phase != Ghosted {
		return Placement{}, ErrNoGhost
	}
	cost, err := CostOf(m.state.Kind)
	if err != nil {
		return Placement{}, err
	}
	if err := l.Debit(cost); err != nil {
		return Placement{}, fmt.Errorf("confirm %s: %w", m.state.Kind, err)
	}
	p := Placement{Kind: m.state.Kind, Pos: m.state.Pos, Cost: cost}
	m.state = State{}
	return p, nil
}

// Cancel returns to Idle. It reports whether there was anything to cancel.
func (m *Machine) Cancel() bool {
	had := m.state.Phase != Idle
	m.state = State{}
	return had
}
