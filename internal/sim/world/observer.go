package world

import (
	"fmt"

	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/world/feature/build"
)

func (w *World) joinClient(name string, out chan []byte) JoinResponse {
	w.nextSession++
	id := fmt.Sprintf("C%04d", w.nextSession)
	if out != nil {
		w.clients[id] = &clientState{ID: id, Name: name, Out: out}
	}
	return JoinResponse{Welcome: w.welcome(id)}
}

func (w *World) welcome(sessionID string) protocol.WelcomeMsg {
	refs := make([]protocol.InstanceRef, 0, len(w.instances))
	for _, in := range w.instances {
		refs = append(refs, protocol.InstanceRef{ID: in.ID, Kind: in.Kind.String(), Pos: in.Pos.ToArray(), Scale: in.Scale})
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		World: protocol.WorldParams{
			Seed:         w.cfg.Seed,
			WorldSize:    w.field.WorldSize(),
			Resolution:   w.field.Resolution(),
			TickRateHz:   w.cfg.TickRateHz,
			NoiseBackend: w.cfg.NoiseBackend,
		},
		Instances: refs,
	}
}

func (w *World) buildState(nowTick uint64) protocol.StateMsg {
	l := w.ledger.Snapshot()
	st := w.build.State()
	pv := protocol.PlacementView{Phase: st.Phase.String()}
	if st.Phase != build.Idle {
		pv.Kind = st.Kind.String()
	}
	if st.Phase == build.Ghosted {
		pos := st.Pos.ToArray()
		pv.Pos = &pos
	}
	events := w.events
	if events == nil {
		events = []protocol.Event{}
	}
	return protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Ledger:          protocol.LedgerView{Wood: l.Wood, Stone: l.Stone},
		Placement:       pv,
		Player: protocol.PlayerView{
			Pos:    w.player.Pos.ToArray(),
			Yaw:    w.player.Intent.Yaw,
			Hunger: w.player.Vitals.Hunger,
			Thirst: w.player.Vitals.Thirst,
		},
		Clock: protocol.ClockView{
			Day:       w.clock.Day,
			TimeOfDay: w.clock.TimeOfDay,
			Night:     w.clock.IsNight(),
		},
		Structures: len(w.structures),
		Events:     events,
	}
}

// StateMessage renders the current state the way it is broadcast each tick.
func (w *World) StateMessage() protocol.StateMsg { return w.buildState(w.tick.Load()) }
