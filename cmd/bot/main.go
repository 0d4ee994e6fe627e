package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"survivecraft.ai/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "bot", "client name")
		every = flag.Uint64("every", 15, "act every N ticks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
		MaxQueue:        8,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := newBot(*every)
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			b.welcome(w)
			logger.Printf("WELCOME session=%s tick_rate=%d seed=%d instances=%d", w.SessionID, w.World.TickRateHz, w.World.Seed, len(w.Instances))

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			for _, c := range b.plan(st) {
				if err := conn.WriteJSON(c); err != nil {
					return
				}
			}
			for _, ev := range st.Events {
				if ev["type"] == protocol.EventPlace {
					logger.Printf("placed %v at tick %d (wood=%d stone=%d)", ev["kind"], st.Tick, st.Ledger.Wood, st.Ledger.Stone)
				}
			}

		case protocol.TypeError:
			logger.Printf("server error: %s", msg)
		}
	}
}

// bot walks (teleports) to the nearest standing instance and gathers it,
// and places a campfire whenever it can afford one.
type bot struct {
	every     uint64
	seq       uint64
	instances map[string]protocol.InstanceRef
}

func newBot(every uint64) *bot {
	if every == 0 {
		every = 1
	}
	return &bot{every: every, instances: map[string]protocol.InstanceRef{}}
}

func (b *bot) welcome(w protocol.WelcomeMsg) {
	b.instances = make(map[string]protocol.InstanceRef, len(w.Instances))
	for _, in := range w.Instances {
		b.instances[in.ID] = in
	}
}

func (b *bot) plan(st protocol.StateMsg) []protocol.CmdMsg {
	for _, ev := range st.Events {
		if ev["type"] == protocol.EventHarvest {
			if id, ok := ev["id"].(string); ok {
				delete(b.instances, id)
			}
		}
	}
	if st.Tick%b.every != 0 {
		return nil
	}

	var out []protocol.Cmd
	if st.Ledger.Wood >= 5 && st.Placement.Phase == "IDLE" {
		p := st.Player.Pos
		ghost := [3]float64{p[0] + 1.5, p[1], p[2]}
		out = append(out,
			protocol.Cmd{Op: protocol.OpSelect, Kind: "CAMPFIRE"},
			protocol.Cmd{Op: protocol.OpGroundPick, Pos: &ghost},
			protocol.Cmd{Op: protocol.OpConfirm},
		)
	} else if target, d, ok := b.nearest(st.Player.Pos); ok {
		if d <= 1 {
			out = append(out, protocol.Cmd{Op: protocol.OpInteract})
		} else {
			// Positions apply after gathering within a tick, so interact
			// waits for the next turn.
			pos := [3]float64{target.Pos[0] + 0.5, target.Pos[1] + 1, target.Pos[2]}
			out = append(out, protocol.Cmd{Op: protocol.OpSetPos, Pos: &pos})
		}
	}

	msgs := make([]protocol.CmdMsg, 0, len(out))
	for _, c := range out {
		b.seq++
		msgs = append(msgs, protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, Seq: b.seq, Cmd: c})
	}
	return msgs
}

func (b *bot) nearest(from [3]float64) (protocol.InstanceRef, float64, bool) {
	var (
		best  protocol.InstanceRef
		bestD = math.Inf(1)
		found bool
	)
	for _, in := range b.instances {
		d := math.Hypot(in.Pos[0]-from[0], in.Pos[2]-from[2])
		if d < bestD || (d == bestD && in.ID < best.ID) {
			best, bestD, found = in, d, true
		}
	}
	return best, bestD, found
}
