// Package console turns typed text into world commands for the headless
// console. Verbs and placeable names tolerate prefixes and small typos.
package console

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"survivecraft.ai/internal/sim/world/feature/build"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

var (
	ErrEmpty          = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoMatch        = errors.New("no match")
	ErrAmbiguous      = errors.New("ambiguous")
	ErrUsage          = errors.New("usage")
)

const (
	VerbSelect   = "select"
	VerbPick     = "pick"
	VerbPlace    = "place"
	VerbCancel   = "cancel"
	VerbGather   = "gather"
	VerbInteract = "interact"
	VerbMove     = "move"
	VerbGoto     = "goto"
	VerbStatus   = "status"
	VerbWait     = "wait"
	VerbHelp     = "help"
)

type commandDef struct {
	verb    string
	aliases []string
	minArgs int
	maxArgs int
	usage   string
}

var commands = []commandDef{
	{verb: VerbSelect, aliases: []string{"choose"}, minArgs: 1, maxArgs: 1, usage: "select <campfire|hut|spear>"},
	{verb: VerbPick, aliases: []string{"aim", "target"}, minArgs: 2, maxArgs: 2, usage: "pick <x> <z>"},
	{verb: VerbPlace, aliases: []string{"confirm", "build"}, usage: "place"},
	{verb: VerbCancel, aliases: []string{"esc", "abort"}, usage: "cancel"},
	{verb: VerbGather, aliases: []string{"harvest", "collect", "chop", "mine"}, maxArgs: 1, usage: "gather [wood|stone]"},
	{verb: VerbInteract, aliases: []string{"use", "e"}, usage: "interact"},
	{verb: VerbMove, aliases: []string{"walk"}, minArgs: 2, maxArgs: 3, usage: "move <forward> <strafe> [yaw]"},
	{verb: VerbGoto, aliases: []string{"tp", "teleport"}, minArgs: 2, maxArgs: 2, usage: "goto <x> <z>"},
	{verb: VerbStatus, aliases: []string{"info", "stat"}, usage: "status"},
	{verb: VerbWait, aliases: []string{"tick", "step"}, maxArgs: 1, usage: "wait [ticks]"},
	{verb: VerbHelp, aliases: []string{"h", "?"}, usage: "help"},
}

// Command is one parsed console line.
type Command struct {
	Verb  string
	Args  []string
	Score float64
}

type candidate struct {
	value string
	score float64
}

// Parse splits line into a verb and its arguments. The verb is resolved
// against the command table; arguments are left as typed.
func Parse(line string) (Command, error) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(tokens) == 0 {
		return Command{}, ErrEmpty
	}

	var cands []candidate
	for _, def := range commands {
		best := candidate{value: def.verb, score: scoreToken(tokens[0], def.verb)}
		for _, a := range def.aliases {
			if s := scoreToken(tokens[0], a); s > 0 {
				// Aliases rank just below the canonical spelling.
				if s == 1 {
					s = 0.97
				}
				if s > best.score {
					best.score = s
				}
			}
		}
		if best.score > 0 {
			cands = append(cands, best)
		}
	}
	best, err := pick(tokens[0], cands)
	if errors.Is(err, ErrNoMatch) {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, tokens[0])
	}
	if err != nil {
		return Command{}, err
	}

	def := lookup(best.value)
	args := tokens[1:]
	if len(args) < def.minArgs || len(args) > def.maxArgs {
		return Command{}, fmt.Errorf("%w: %s", ErrUsage, def.usage)
	}
	return Command{Verb: best.value, Args: args, Score: best.score}, nil
}

// ParsePlaceable resolves a placeable name, accepting prefixes and typos.
func ParsePlaceable(tok string) (build.Placeable, error) {
	names := make([]string, 0, len(build.Placeables()))
	for _, p := range build.Placeables() {
		names = append(names, strings.ToLower(p.String()))
	}
	best, err := matchToken(tok, names)
	if err != nil {
		return 0, fmt.Errorf("placeable %q: %w", tok, err)
	}
	return build.ParsePlaceable(best)
}

// ParseResource maps a resource or source name to the scatter kind that
// yields it: wood and tree mean trees, stone and rock mean rocks.
func ParseResource(tok string) (scatter.Kind, error) {
	best, err := matchToken(tok, []string{"wood", "stone", "tree", "rock"})
	if err != nil {
		return 0, fmt.Errorf("resource %q: %w", tok, err)
	}
	if best == "wood" || best == "tree" {
		return scatter.Tree, nil
	}
	return scatter.Rock, nil
}

func matchToken(tok string, values []string) (string, error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	cands := make([]candidate, 0, len(values))
	for _, v := range values {
		if s := scoreToken(tok, v); s > 0 {
			cands = append(cands, candidate{value: v, score: s})
		}
	}
	best, err := pick(tok, cands)
	if err != nil {
		return "", err
	}
	return best.value, nil
}

// scoreToken is 1 for an exact match, 0.9 for a prefix of at least two
// letters, a distance-scaled score for near misses, and 0 otherwise.
func scoreToken(tok, target string) float64 {
	switch {
	case tok == target:
		return 1
	case len(tok) >= 2 && strings.HasPrefix(target, tok):
		return 0.9
	case len(tok) < 3:
		return 0
	}
	d := levenshtein.ComputeDistance(tok, target)
	if d > levenshteinLimit(len(target)) {
		return 0
	}
	return 0.72 - 0.08*float64(d)
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func pick(tok string, cands []candidate) (candidate, error) {
	if len(cands) == 0 {
		return candidate{}, fmt.Errorf("%w for %q", ErrNoMatch, tok)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score == cands[j].score {
			return cands[i].value < cands[j].value
		}
		return cands[i].score > cands[j].score
	})
	if len(cands) > 1 && cands[0].score == cands[1].score {
		return candidate{}, fmt.Errorf("%w: %q could be %s or %s", ErrAmbiguous, tok, cands[0].value, cands[1].value)
	}
	return cands[0], nil
}

func lookup(verb string) commandDef {
	for _, def := range commands {
		if def.verb == verb {
			return def
		}
	}
	return commandDef{}
}

// Usage lists every command, one per line.
func Usage() string {
	var b strings.Builder
	for _, def := range commands {
		b.WriteString("  ")
		b.WriteString(def.usage)
		if len(def.aliases) > 0 {
			b.WriteString("  (")
			b.WriteString(strings.Join(def.aliases, ", "))
			b.WriteString(")")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
