package world

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync/atomic"

	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/world/feature/build"
	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
	"survivecraft.ai/internal/sim/world/feature/survival"
	"survivecraft.ai/internal/sim/world/logic/ids"
	"survivecraft.ai/internal/sim/world/logic/mathx"
	"survivecraft.ai/internal/sim/world/logic/rng"
	"survivecraft.ai/internal/sim/world/terrain/height"
	"survivecraft.ai/internal/sim/world/terrain/noise"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

var ErrInvalidPosition = errors.New("invalid position")

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg WorldConfig
	log *log.Logger

	tick atomic.Uint64

	field     *height.Field
	instances []scatter.Instance
	placement scatter.Result

	ledger     *ledger.Ledger
	build      build.Machine
	structures []Structure

	player Player
	clock  survival.Clock

	harvestSrc *rand.PCG
	harvest    *rand.Rand

	clients     map[string]*clientState
	nextSession uint64

	// Filled while applying a tick, flushed into STATE.
	events []protocol.Event

	tickLogger  TickLogger
	auditLogger AuditLogger

	inbox chan CommandEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	metrics atomic.Value // WorldMetrics
}

type clientState struct {
	ID   string
	Name string
	Out  chan []byte
}

// New generates the terrain and scatter for cfg.Seed and places the player
// at the origin.
func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()

	src, err := noise.New(cfg.NoiseBackend, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("world %s: %w", cfg.ID, err)
	}
	field, err := height.Build(src, cfg.Terrain)
	if err != nil {
		return nil, fmt.Errorf("world %s: %w", cfg.ID, err)
	}
	placed := scatter.Place(field, rng.New(cfg.Seed, rng.StreamScatter), cfg.Scatter)

	harvestSrc := rng.NewPCG(cfg.Seed, rng.StreamHarvest)
	w := &World{
		cfg:        cfg,
		field:      field,
		instances:  placed.Instances,
		placement:  placed,
		ledger:     ledger.New(),
		clock:      survival.NewClock(),
		harvestSrc: harvestSrc,
		harvest:    rand.New(harvestSrc), // #nosec G404
		clients:    map[string]*clientState{},
		inbox:      make(chan CommandEnvelope, 1024),
		join:       make(chan JoinRequest, 64),
		leave:      make(chan string, 64),
		stop:       make(chan struct{}),
	}
	w.player = Player{
		Pos:    mathx.Vec3{X: 0, Y: field.SampleHeight(0, 0) + cfg.EyeHeight, Z: 0},
		Vitals: survival.Full(cfg.Survival),
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) SetLogger(l *log.Logger)       { w.log = l }
func (w *World) SetTickLogger(l TickLogger)    { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)  { w.auditLogger = l }
func (w *World) Config() WorldConfig           { return w.cfg }
func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }
func (w *World) CurrentTick() uint64           { return w.tick.Load() }
func (w *World) Field() *height.Field          { return w.field }
func (w *World) ScatterStats() scatter.Result  { return w.placement }

func (w *World) SampleHeight(x, z float64) float64 { return w.field.SampleHeight(x, z) }

// Select starts a placement of kind. Affordability is checked at Confirm.
func (w *World) Select(kind build.Placeable) error { return w.build.Select(kind) }

// GroundPick moves the preview to the picked point, grounded on the terrain.
// hit=false is a raycast miss and changes nothing.
func (w *World) GroundPick(pos mathx.Vec3, hit bool) bool {
	if !hit {
		return false
	}
	grounded := mathx.Vec3{X: pos.X, Y: w.field.SampleHeight(pos.X, pos.Z) + w.cfg.GhostLift, Z: pos.Z}
	if !pos.IsFinite() {
		grounded = pos
	}
	return w.build.GroundPick(grounded, true)
}

// Confirm finalizes the ghost as a structure, debiting its cost. A failed
// debit leaves both the ledger and the ghost untouched.
func (w *World) Confirm() (Structure, error) {
	p, err := w.build.Confirm(w.ledger)
	if err != nil {
		return Structure{}, err
	}
	s := Structure{
		ID:   ids.Seq(ids.PrefixStructure, uint64(len(w.structures)+1)),
		Kind: p.Kind,
		Pos:  p.Pos,
		Tick: w.tick.Load(),
	}
	w.structures = append(w.structures, s)
	return s, nil
}

func (w *World) Cancel() bool { return w.build.Cancel() }

func (w *World) LedgerSnapshot() ledger.Counts { return w.ledger.Snapshot() }

func (w *World) CurrentPlacementState() build.State { return w.build.State() }

// Credit adds resources directly, bypassing gathering. Used by tools and tests.
func (w *World) Credit(kind ledger.Kind, amount int) error { return w.ledger.Credit(kind, amount) }

// SetPlayerPosition replaces the player position with one supplied by the
// rendering side. Ground following still applies on the next tick.
func (w *World) SetPlayerPosition(pos mathx.Vec3) error {
	if !pos.IsFinite() {
		return fmt.Errorf("set position %v: %w", pos, ErrInvalidPosition)
	}
	w.player.Pos = pos
	return nil
}

// Move replaces the held movement intent.
func (w *World) Move(in MoveIntent) {
	in.Forward = mathx.Clamp(in.Forward, -1, 1)
	in.Strafe = mathx.Clamp(in.Strafe, -1, 1)
	w.player.Intent = in
}

func (w *World) Player() Player { return w.player }

func (w *World) Clock() survival.Clock { return w.clock }

// Instances returns a copy of the live trees and rocks in scan order.
func (w *World) Instances() []scatter.Instance {
	out := make([]scatter.Instance, len(w.instances))
	copy(out, w.instances)
	return out
}

func (w *World) Structures() []Structure {
	out := make([]Structure, len(w.structures))
	copy(out, w.structures)
	return out
}

func (w *World) logf(format string, args ...any) {
	if w.log != nil {
		w.log.Printf(format, args...)
	}
}
