package console

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"survivecraft.ai/internal/sim/world"
	"survivecraft.ai/internal/sim/world/feature/build"
	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

func newSession(t *testing.T) (*Session, *world.World) {
	t.Helper()
	w, err := world.New(world.WorldConfig{ID: "console", Seed: 5})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewSession(w), w
}

func mustExec(t *testing.T, s *Session, line string) string {
	t.Helper()
	out, err := s.Exec(line)
	if err != nil {
		t.Fatalf("Exec(%q): %v", line, err)
	}
	return out
}

func TestSession_HutWalkthrough(t *testing.T) {
	s, w := newSession(t)

	mustExec(t, s, "select hutt")
	if st := w.CurrentPlacementState(); st.Phase != build.Selecting || st.Kind != build.Hut {
		t.Fatalf("after select: %+v", st)
	}
	mustExec(t, s, "pick 3 4")
	st := w.CurrentPlacementState()
	if st.Phase != build.Ghosted || st.Pos.X != 3 || st.Pos.Z != 4 {
		t.Fatalf("after pick: %+v", st)
	}

	out := mustExec(t, s, "place")
	if !strings.Contains(out, "Not enough resources") {
		t.Fatalf("expected resource rejection, got %q", out)
	}
	if w.CurrentPlacementState().Phase != build.Ghosted {
		t.Fatalf("failed place should keep the ghost")
	}

	if err := w.Credit(ledger.Wood, 20); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := w.Credit(ledger.Stone, 10); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	out = mustExec(t, s, "place")
	if !strings.Contains(out, "placed HUT S0001") {
		t.Fatalf("expected placement, got %q", out)
	}
	if got := w.LedgerSnapshot(); got != (ledger.Counts{}) {
		t.Fatalf("ledger after hut = %+v", got)
	}
	if w.CurrentPlacementState().Phase != build.Idle {
		t.Fatalf("placement should be idle after confirm")
	}
}

func TestSession_GotoAndGatherWood(t *testing.T) {
	s, w := newSession(t)

	var tree scatter.Instance
	for _, in := range w.Instances() {
		if in.Kind == scatter.Tree {
			tree = in
			break
		}
	}
	if tree.ID == "" {
		t.Fatalf("world has no trees")
	}

	mustExec(t, s, "goto "+ftoa(tree.Pos.X)+" "+ftoa(tree.Pos.Z))
	out := mustExec(t, s, "gather wood")
	if !strings.Contains(out, "harvested") || !strings.Contains(out, "WOOD") {
		t.Fatalf("expected wood harvest, got %q", out)
	}
	if w.LedgerSnapshot().Wood < 1 {
		t.Fatalf("wood not credited: %+v", w.LedgerSnapshot())
	}
}

func TestSession_WaitAdvancesTicks(t *testing.T) {
	s, w := newSession(t)
	out := mustExec(t, s, "wait 12")
	if !strings.Contains(out, "advanced 12 tick(s)") {
		t.Fatalf("unexpected output %q", out)
	}
	if w.CurrentTick() != 12 {
		t.Fatalf("tick = %d want 12", w.CurrentTick())
	}
	if _, err := s.Exec("wait 0"); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestSession_MoveKeepsYawWhenOmitted(t *testing.T) {
	s, w := newSession(t)
	mustExec(t, s, "move 0 0 1.5")
	mustExec(t, s, "move 1 0")
	if got := w.Player().Intent; got.Yaw != 1.5 || got.Forward != 1 {
		t.Fatalf("intent = %+v", got)
	}
	if _, err := s.Exec("move fast 0"); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestSession_StatusAndHelp(t *testing.T) {
	s, _ := newSession(t)
	status := mustExec(t, s, "status")
	for _, want := range []string{"tick 0", "wood 0", "placement IDLE", "player ("} {
		if !strings.Contains(status, want) {
			t.Fatalf("status missing %q:\n%s", want, status)
		}
	}
	help := mustExec(t, s, "help")
	if !strings.Contains(help, "select <campfire|hut|spear>") {
		t.Fatalf("help missing select usage:\n%s", help)
	}
}

func TestSession_BadPlaceable(t *testing.T) {
	s, w := newSession(t)
	if _, err := s.Exec("select castle"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if w.CurrentTick() != 0 {
		t.Fatalf("a rejected line must not advance the world")
	}
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
