package indexdb

import (
	"path/filepath"
	"testing"

	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/tuning"
	"survivecraft.ai/internal/sim/world"
)

func TestSQLiteIndex_TicksAndAudits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "world.sqlite")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	_ = s.WriteTick(world.TickLogEntry{
		Tick:   5,
		Joins:  []string{"C0001"},
		Digest: "abc",
		Commands: []world.RecordedCommand{
			{SessionID: "C0001", Seq: 1, Cmd: protocol.Cmd{Op: protocol.OpSelect, Kind: "HUT"}},
			{SessionID: "C0001", Seq: 2, Cmd: protocol.Cmd{Op: protocol.OpConfirm}},
		},
	})
	_ = s.WriteAudit(world.AuditEntry{Tick: 5, SessionID: "C0001", Action: world.AuditHarvest, Kind: "WOOD", ID: "T0001", Amount: 3})
	_ = s.WriteAudit(world.AuditEntry{Tick: 5, SessionID: "C0001", Action: world.AuditHarvest, Kind: "STONE", ID: "R0001", Amount: 1})
	_ = s.WriteAudit(world.AuditEntry{Tick: 6, SessionID: "C0001", Action: world.AuditReject, Reason: "Not enough resources"})

	// Close drains the queue and commits.
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	d, ok, err := s.TickDigest(5)
	if err != nil || !ok || d != "abc" {
		t.Fatalf("TickDigest(5) = %q %v %v", d, ok, err)
	}
	if _, ok, _ := s.TickDigest(6); ok {
		t.Fatalf("tick 6 should not be indexed")
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM commands WHERE tick=5`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("commands for tick 5 = %d (%v)", n, err)
	}
	if n, err := s.CountAudits(world.AuditHarvest); err != nil || n != 2 {
		t.Fatalf("harvest audits = %d (%v)", n, err)
	}
	if n, err := s.CountAudits(world.AuditReject); err != nil || n != 1 {
		t.Fatalf("reject audits = %d (%v)", n, err)
	}
}

func TestSQLiteIndex_UpsertTuning(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "world.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	tune := tuning.Defaults()
	d1, err := s.UpsertTuning(tune)
	if err != nil || d1 == "" {
		t.Fatalf("UpsertTuning: %q %v", d1, err)
	}
	got, ok, err := s.Meta("tuning_digest")
	if err != nil || !ok || got != d1 {
		t.Fatalf("meta tuning_digest = %q %v %v", got, ok, err)
	}
	seed, _, _ := s.Meta("seed")
	if seed != "1337" {
		t.Fatalf("seed meta = %q", seed)
	}

	tune.World.Seed = 9
	d2, err := s.UpsertTuning(tune)
	if err != nil {
		t.Fatalf("UpsertTuning: %v", err)
	}
	if d2 == d1 {
		t.Fatalf("digest should change with tuning")
	}
	if _, ok, _ := s.Meta("missing"); ok {
		t.Fatalf("unexpected meta key")
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
