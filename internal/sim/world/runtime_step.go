package world

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/world/feature/build"
	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
	"survivecraft.ai/internal/sim/world/logic/mathx"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

// Commands within a tick are applied phase by phase, keeping arrival order
// inside a phase.
const (
	phaseSelect = iota
	phasePick
	phaseConfirm
	phaseGather
	phaseMove
	phaseUnknown
)

func commandPhase(op string) int {
	switch op {
	case protocol.OpSelect:
		return phaseSelect
	case protocol.OpGroundPick:
		return phasePick
	case protocol.OpConfirm, protocol.OpCancel:
		return phaseConfirm
	case protocol.OpGather, protocol.OpInteract:
		return phaseGather
	case protocol.OpMove, protocol.OpSetPos:
		return phaseMove
	default:
		return phaseUnknown
	}
}

func (w *World) stepInternal(joins []JoinRequest, leaves []string, cmds []CommandEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.events = make([]protocol.Event, 0, len(cmds))

	// Apply leaves and joins deterministically at tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := w.clients[id]; ok {
			delete(w.clients, id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]string, 0, len(joins))
	for _, req := range joins {
		resp := w.joinClient(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, resp.Welcome.SessionID)
	}

	ordered := make([]CommandEnvelope, len(cmds))
	copy(ordered, cmds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return commandPhase(ordered[i].Cmd.Op) < commandPhase(ordered[j].Cmd.Op)
	})
	recorded := make([]RecordedCommand, 0, len(ordered))
	for _, env := range ordered {
		recorded = append(recorded, RecordedCommand{SessionID: env.SessionID, Seq: env.Seq, Cmd: env.Cmd})
		w.applyCommand(env, nowTick)
	}

	// Systems: movement -> survival.
	dt := w.cfg.stepSeconds()
	w.systemMovement(dt)
	w.systemSurvival(dt)

	if len(w.clients) > 0 {
		if b, err := json.Marshal(w.buildState(nowTick)); err == nil {
			for _, cl := range w.clients {
				sendLatest(cl.Out, b)
			}
		} else {
			w.logf("marshal state: %v", err)
		}
	}

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, Joins: recordedJoins, Leaves: recordedLeaves, Commands: recorded, Digest: digest}); err != nil {
			w.logf("tick log: %v", err)
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.metrics.Store(WorldMetrics{
		Tick:       nextTick,
		Clients:    len(w.clients),
		Instances:  len(w.instances),
		Structures: len(w.structures),
		Ledger:     w.ledger.Snapshot(),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: stepMS,
	})
}

func (w *World) applyCommand(env CommandEnvelope, nowTick uint64) {
	c := env.Cmd
	switch c.Op {
	case protocol.OpSelect:
		kind, err := build.ParsePlaceable(c.Kind)
		if err == nil {
			err = w.Select(kind)
		}
		if err != nil {
			w.reject(env, nowTick, protocol.ErrBadRequest, err.Error(), c.Kind, mathx.Vec3{})
		}

	case protocol.OpGroundPick:
		if c.Pos == nil {
			return // raycast miss
		}
		if !w.GroundPick(mathx.FromArray(*c.Pos), true) {
			w.reject(env, nowTick, protocol.ErrInvalidTarget, "nothing to place", "", mathx.FromArray(*c.Pos))
		}

	case protocol.OpConfirm:
		ghost := w.build.State()
		s, err := w.Confirm()
		switch {
		case err == nil:
			w.emit(env, nowTick, protocol.Event{"type": protocol.EventPlace, "id": s.ID, "kind": s.Kind.String(), "pos": s.Pos.ToArray()},
				AuditEntry{Action: AuditPlace, Kind: s.Kind.String(), ID: s.ID, Pos: s.Pos.ToArray()})
		case errors.Is(err, ledger.ErrInsufficientResources):
			w.reject(env, nowTick, protocol.ErrNoResource, "Not enough resources", ghost.Kind.String(), ghost.Pos)
		case errors.Is(err, build.ErrNoGhost):
			w.reject(env, nowTick, protocol.ErrInvalidTarget, err.Error(), "", mathx.Vec3{})
		default:
			w.reject(env, nowTick, protocol.ErrInternal, err.Error(), "", mathx.Vec3{})
		}

	case protocol.OpCancel:
		w.Cancel()

	case protocol.OpGather, protocol.OpInteract:
		var (
			ev HarvestEvent
			ok bool
		)
		if c.Op == protocol.OpInteract {
			ev, ok = w.Interact()
		} else {
			kinds, err := parseKinds(c.Kinds)
			if err != nil {
				w.reject(env, nowTick, protocol.ErrBadRequest, err.Error(), "", mathx.Vec3{})
				return
			}
			maxD := c.MaxDistance
			if maxD <= 0 {
				maxD = w.cfg.defaultReach(kinds)
			}
			ev, ok = w.GatherNearest(kinds, maxD)
		}
		if !ok {
			w.reject(env, nowTick, protocol.ErrNothingFound, "nothing in reach", "", w.player.Pos)
			return
		}
		w.emit(env, nowTick, protocol.Event{"type": protocol.EventHarvest, "id": ev.ID, "kind": string(ev.Kind), "amount": ev.Amount},
			AuditEntry{Action: AuditHarvest, Kind: string(ev.Kind), ID: ev.ID, Pos: w.player.Pos.ToArray(), Amount: ev.Amount})

	case protocol.OpMove:
		w.Move(MoveIntent{Forward: c.Forward, Strafe: c.Strafe, Yaw: c.Yaw})

	case protocol.OpSetPos:
		if c.Pos == nil {
			w.reject(env, nowTick, protocol.ErrBadRequest, "missing pos", "", mathx.Vec3{})
			return
		}
		if err := w.SetPlayerPosition(mathx.FromArray(*c.Pos)); err != nil {
			w.reject(env, nowTick, protocol.ErrInvalidTarget, err.Error(), "", mathx.Vec3{})
		}

	default:
		w.reject(env, nowTick, protocol.ErrBadRequest, "unknown op: "+c.Op, "", mathx.Vec3{})
	}
}

// parseKinds maps wire kinds to scatter kinds. Empty means both.
func parseKinds(in []string) ([]scatter.Kind, error) {
	if len(in) == 0 {
		return []scatter.Kind{scatter.Tree, scatter.Rock}, nil
	}
	out := make([]scatter.Kind, 0, len(in))
	for _, s := range in {
		k, ok := scatter.ParseKind(s)
		if !ok {
			return nil, errors.New("unknown gather kind: " + s)
		}
		out = append(out, k)
	}
	return out, nil
}

func (w *World) reject(env CommandEnvelope, nowTick uint64, code, msg, kind string, pos mathx.Vec3) {
	w.emit(env, nowTick, protocol.Event{"type": protocol.EventReject, "op": env.Cmd.Op, "code": code, "message": msg},
		AuditEntry{Action: AuditReject, Kind: kind, Pos: pos.ToArray(), Reason: code})
}

func (w *World) emit(env CommandEnvelope, nowTick uint64, ev protocol.Event, audit AuditEntry) {
	ev["t"] = nowTick
	if env.SessionID != "" {
		ev["session_id"] = env.SessionID
		ev["seq"] = env.Seq
	}
	w.events = append(w.events, ev)

	if w.auditLogger != nil {
		audit.Tick = nowTick
		audit.SessionID = env.SessionID
		if err := w.auditLogger.WriteAudit(audit); err != nil {
			w.logf("audit log: %v", err)
		}
	}
}
