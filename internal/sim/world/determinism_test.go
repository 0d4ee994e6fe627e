package world

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"survivecraft.ai/internal/protocol"
)

func scriptedCommands(tick int) []CommandEnvelope {
	var out []CommandEnvelope
	add := func(c protocol.Cmd) {
		out = append(out, CommandEnvelope{SessionID: "C0001", Seq: uint64(tick*10 + len(out)), Cmd: c})
	}
	switch tick % 7 {
	case 0:
		add(protocol.Cmd{Op: protocol.OpMove, Forward: 1, Yaw: float64(tick) * 0.1})
	case 1:
		add(protocol.Cmd{Op: protocol.OpInteract})
	case 2:
		add(protocol.Cmd{Op: protocol.OpGather, Kinds: []string{"TREE", "ROCK"}, MaxDistance: 40})
	case 3:
		add(protocol.Cmd{Op: protocol.OpSelect, Kind: "CAMPFIRE"})
		pos := [3]float64{float64(tick), 0, -float64(tick)}
		add(protocol.Cmd{Op: protocol.OpGroundPick, Pos: &pos})
	case 4:
		add(protocol.Cmd{Op: protocol.OpConfirm})
	case 5:
		add(protocol.Cmd{Op: protocol.OpMove, Strafe: -1, Yaw: 1.2})
	case 6:
		add(protocol.Cmd{Op: protocol.OpCancel})
	}
	return out
}

func TestDeterminism_SameSeedSameDigests(t *testing.T) {
	a := newTestWorld(t, 2024)
	b := newTestWorld(t, 2024)
	if a.Digest() != b.Digest() {
		t.Fatalf("fresh worlds differ")
	}
	for i := 0; i < 120; i++ {
		cmds := scriptedCommands(i)
		ta, da := a.StepOnce(cmds)
		tb, db := b.StepOnce(cmds)
		if ta != tb || da != db {
			t.Fatalf("tick %d diverged: %s vs %s", i, da, db)
		}
	}
	if a.LedgerSnapshot() != b.LedgerSnapshot() || len(a.Instances()) != len(b.Instances()) {
		t.Fatalf("end states differ")
	}
}

func TestDeterminism_SeedChangesDigest(t *testing.T) {
	a := newTestWorld(t, 1)
	b := newTestWorld(t, 2)
	if a.Digest() == b.Digest() {
		t.Fatalf("different seeds should produce different digests")
	}
}

func TestDeterminism_HarvestStreamInDigest(t *testing.T) {
	a := newTestWorld(t, 77)
	b := newTestWorld(t, 77)
	_ = a.harvest.Float64()
	if a.Digest() == b.Digest() {
		t.Fatalf("harvest stream position should be part of the digest")
	}
}

func TestRun_JoinReceivesWelcomeAndState(t *testing.T) {
	w, err := New(WorldConfig{ID: "run", Seed: 4, TickRateHz: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	out := make(chan []byte, 4)
	resp := make(chan JoinResponse, 1)
	w.Join() <- JoinRequest{Name: "test", Out: out, Resp: resp}

	var welcome protocol.WelcomeMsg
	select {
	case r := <-resp:
		welcome = r.Welcome
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for welcome")
	}
	if welcome.Type != protocol.TypeWelcome || welcome.SessionID == "" || welcome.World.Seed != 4 {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}
	if len(welcome.Instances) == 0 {
		t.Fatalf("welcome should list instances")
	}

	w.Inbox() <- CommandEnvelope{SessionID: welcome.SessionID, Seq: 1, Cmd: protocol.Cmd{Op: protocol.OpSelect, Kind: "HUT"}}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-out:
			var st protocol.StateMsg
			if err := json.Unmarshal(b, &st); err != nil {
				t.Fatalf("decode state: %v", err)
			}
			if st.Type != protocol.TypeState {
				t.Fatalf("unexpected frame: %s", b)
			}
			if st.Placement.Phase == "SELECTING" && st.Placement.Kind == "HUT" {
				cancel()
				if err := <-done; err != context.Canceled {
					t.Fatalf("Run returned %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for SELECTING state")
		}
	}
}
