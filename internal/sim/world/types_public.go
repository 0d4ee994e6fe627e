package world

import (
	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/world/feature/build"
	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
	"survivecraft.ai/internal/sim/world/feature/survival"
	"survivecraft.ai/internal/sim/world/logic/mathx"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
)

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// CommandEnvelope is one inbound command tagged with the session that sent it.
type CommandEnvelope struct {
	SessionID string
	Seq       uint64
	Cmd       protocol.Cmd
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Joins    []string          `json:"joins,omitempty"`
	Leaves   []string          `json:"leaves,omitempty"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Digest   string            `json:"digest"`
}

type RecordedCommand struct {
	SessionID string       `json:"session_id"`
	Seq       uint64       `json:"seq"`
	Cmd       protocol.Cmd `json:"cmd"`
}

// Audit actions.
const (
	AuditHarvest = "HARVEST"
	AuditPlace   = "PLACE"
	AuditReject  = "REJECT"
)

type AuditEntry struct {
	Tick      uint64     `json:"tick"`
	SessionID string     `json:"session_id,omitempty"`
	Action    string     `json:"action"`
	Kind      string     `json:"kind,omitempty"`
	ID        string     `json:"id,omitempty"`
	Pos       [3]float64 `json:"pos"`
	Amount    int        `json:"amount,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// HarvestEvent describes one gathered instance and what it credited.
type HarvestEvent struct {
	ID     string
	Source scatter.Kind
	Kind   ledger.Kind
	Amount int
}

// Structure is a confirmed placement. It is never removed.
type Structure struct {
	ID   string
	Kind build.Placeable
	Pos  mathx.Vec3
	Tick uint64
}

// MoveIntent is held until replaced, like a pressed key. Forward and Strafe
// are in [-1, 1]; Yaw is radians around +Y with yaw 0 facing +Z.
type MoveIntent struct {
	Forward float64
	Strafe  float64
	Yaw     float64
}

type Player struct {
	Pos    mathx.Vec3
	Vitals survival.Vitals
	Intent MoveIntent
}
