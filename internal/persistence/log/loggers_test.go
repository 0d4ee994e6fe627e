package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/world"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)

	want := []world.TickLogEntry{
		{Tick: 0, Joins: []string{"C0001"}, Digest: "aa"},
		{Tick: 1, Commands: []world.RecordedCommand{{SessionID: "C0001", Seq: 7, Cmd: protocol.Cmd{Op: protocol.OpSelect, Kind: "HUT"}}}, Digest: "bb"},
		{Tick: 2, Leaves: []string{"C0001"}, Digest: "cc"},
	}
	for _, e := range want {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := TickFiles(EventsDir(dir))
	if err != nil {
		t.Fatalf("TickFiles: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected at least one tick file")
	}
	var got []world.TickLogEntry
	for _, f := range files {
		es, err := ReadTickEntries(f)
		if err != nil {
			t.Fatalf("ReadTickEntries(%s): %v", f, err)
		}
		got = append(got, es...)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Tick != want[i].Tick || got[i].Digest != want[i].Digest {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
	}
	if len(got[1].Commands) != 1 || got[1].Commands[0].Cmd.Kind != "HUT" || got[1].Commands[0].Seq != 7 {
		t.Fatalf("commands not preserved: %+v", got[1].Commands)
	}
}

func TestJSONLZstdWriter_RotatesByHour(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "events")
	base := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	now := base
	w.now = func() time.Time { return now }

	if err := w.Write(world.TickLogEntry{Tick: 1, Digest: "x"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	now = base.Add(2 * time.Minute)
	if err := w.Write(world.TickLogEntry{Tick: 2, Digest: "y"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"events-2024-05-01-10.jsonl.zst", "events-2024-05-01-11.jsonl.zst"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestJSONLZstdWriter_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		w := NewJSONLZstdWriter(filepath.Join(dir, "events"), "events")
		w.now = func() time.Time { return fixed }
		if err := w.Write(world.TickLogEntry{Tick: uint64(i), Digest: "d"}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	es, err := ReadTickEntries(filepath.Join(dir, "events", "events-2024-05-01-10.jsonl.zst"))
	if err != nil {
		t.Fatalf("ReadTickEntries: %v", err)
	}
	if len(es) != 2 || es[0].Tick != 0 || es[1].Tick != 1 {
		t.Fatalf("unexpected entries: %+v", es)
	}
}

func TestAuditLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	if err := l.WriteAudit(world.AuditEntry{Tick: 3, Action: world.AuditPlace, Kind: "HUT", ID: "S0001"}); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "audit", "audit-*.jsonl.zst"))
	if len(matches) != 1 {
		t.Fatalf("expected one audit file, got %v", matches)
	}
}

func TestReadTickEntries_Missing(t *testing.T) {
	if _, err := ReadTickEntries(filepath.Join(t.TempDir(), "nope.jsonl.zst")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
