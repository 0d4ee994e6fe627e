package console

import (
	"fmt"
	"strconv"
	"strings"

	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/world"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

// SessionID tags every command the console issues.
const SessionID = "CONSOLE"

const maxWait = 10000

// Session drives a local world one tick per command. It is not safe for
// concurrent use and the world must not also be running its own loop.
type Session struct {
	w   *world.World
	seq uint64
}

func NewSession(w *world.World) *Session { return &Session{w: w} }

// Exec parses and runs one console line, returning what to print.
func (s *Session) Exec(line string) (string, error) {
	cmd, err := Parse(line)
	if err != nil {
		return "", err
	}

	switch cmd.Verb {
	case VerbHelp:
		return "commands:\n" + Usage(), nil
	case VerbStatus:
		return s.Status(), nil
	case VerbWait:
		n := 1
		if len(cmd.Args) == 1 {
			v, err := strconv.Atoi(cmd.Args[0])
			if err != nil || v < 1 || v > maxWait {
				return "", fmt.Errorf("%w: wait [1..%d]", ErrUsage, maxWait)
			}
			n = v
		}
		var out []string
		for i := 0; i < n; i++ {
			out = append(out, s.step()...)
		}
		out = append(out, fmt.Sprintf("advanced %d tick(s)", n))
		return strings.Join(out, "\n"), nil
	}

	pc, err := s.translate(cmd)
	if err != nil {
		return "", err
	}
	s.seq++
	out := s.step(world.CommandEnvelope{SessionID: SessionID, Seq: s.seq, Cmd: pc})
	if len(out) == 0 {
		out = append(out, "ok")
	}
	return strings.Join(out, "\n"), nil
}

func (s *Session) translate(cmd Command) (protocol.Cmd, error) {
	switch cmd.Verb {
	case VerbSelect:
		p, err := ParsePlaceable(cmd.Args[0])
		if err != nil {
			return protocol.Cmd{}, err
		}
		return protocol.Cmd{Op: protocol.OpSelect, Kind: p.String()}, nil

	case VerbPick:
		x, z, err := parseXZ(cmd.Args)
		if err != nil {
			return protocol.Cmd{}, err
		}
		pos := [3]float64{x, s.w.SampleHeight(x, z), z}
		return protocol.Cmd{Op: protocol.OpGroundPick, Pos: &pos}, nil

	case VerbPlace:
		return protocol.Cmd{Op: protocol.OpConfirm}, nil

	case VerbCancel:
		return protocol.Cmd{Op: protocol.OpCancel}, nil

	case VerbGather:
		c := protocol.Cmd{Op: protocol.OpGather}
		if len(cmd.Args) == 1 {
			k, err := ParseResource(cmd.Args[0])
			if err != nil {
				return protocol.Cmd{}, err
			}
			c.Kinds = []string{k.String()}
			if k == scatter.Rock {
				c.MaxDistance = s.w.Config().RockReach
			}
		}
		return c, nil

	case VerbInteract:
		return protocol.Cmd{Op: protocol.OpInteract}, nil

	case VerbMove:
		vals := make([]float64, len(cmd.Args))
		for i, a := range cmd.Args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return protocol.Cmd{}, fmt.Errorf("%w: move <forward> <strafe> [yaw]", ErrUsage)
			}
			vals[i] = v
		}
		c := protocol.Cmd{Op: protocol.OpMove, Forward: vals[0], Strafe: vals[1]}
		if len(vals) == 3 {
			c.Yaw = vals[2]
		} else {
			c.Yaw = s.w.Player().Intent.Yaw
		}
		return c, nil

	case VerbGoto:
		x, z, err := parseXZ(cmd.Args)
		if err != nil {
			return protocol.Cmd{}, err
		}
		pos := [3]float64{x, s.w.SampleHeight(x, z) + s.w.Config().EyeHeight, z}
		return protocol.Cmd{Op: protocol.OpSetPos, Pos: &pos}, nil
	}
	return protocol.Cmd{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Verb)
}

func parseXZ(args []string) (float64, float64, error) {
	x, err1 := strconv.ParseFloat(args[0], 64)
	z, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: expected <x> <z>", ErrUsage)
	}
	return x, z, nil
}

func (s *Session) step(cmds ...world.CommandEnvelope) []string {
	s.w.StepOnce(cmds)
	var out []string
	for _, ev := range s.w.LastEvents() {
		out = append(out, describeEvent(ev))
	}
	return out
}

func describeEvent(ev protocol.Event) string {
	switch ev["type"] {
	case protocol.EventHarvest:
		return fmt.Sprintf("harvested %v: +%v %v", ev["id"], ev["amount"], ev["kind"])
	case protocol.EventPlace:
		if p, ok := ev["pos"].([3]float64); ok {
			return fmt.Sprintf("placed %v %v at (%.2f, %.2f, %.2f)", ev["kind"], ev["id"], p[0], p[1], p[2])
		}
		return fmt.Sprintf("placed %v %v", ev["kind"], ev["id"])
	case protocol.EventReject:
		return fmt.Sprintf("rejected %v: %v (%v)", ev["op"], ev["message"], ev["code"])
	}
	return fmt.Sprintf("%v", map[string]interface{}(ev))
}

// Status summarizes the world the way the HUD would show it.
func (s *Session) Status() string {
	st := s.w.StateMessage()
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d  day %d %s\n", st.Tick, st.Clock.Day, dayPhase(st.Clock.Night))
	fmt.Fprintf(&b, "wood %d  stone %d\n", st.Ledger.Wood, st.Ledger.Stone)
	fmt.Fprintf(&b, "placement %s", st.Placement.Phase)
	if st.Placement.Kind != "" {
		fmt.Fprintf(&b, " %s", st.Placement.Kind)
	}
	if p := st.Placement.Pos; p != nil {
		fmt.Fprintf(&b, " at (%.2f, %.2f, %.2f)", p[0], p[1], p[2])
	}
	b.WriteByte('\n')
	p := st.Player.Pos
	fmt.Fprintf(&b, "player (%.2f, %.2f, %.2f)  hunger %.1f  thirst %.1f\n", p[0], p[1], p[2], st.Player.Hunger, st.Player.Thirst)
	fmt.Fprintf(&b, "structures %d  resources left %d", st.Structures, len(s.w.Instances()))
	return b.String()
}

func dayPhase(night bool) string {
	if night {
		return "night"
	}
	return "day"
}
