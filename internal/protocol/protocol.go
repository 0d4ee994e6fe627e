package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeCmd     = "CMD"
	TypeState   = "STATE"
	TypeError   = "ERROR"
)

// Command ops carried in CMD.
const (
	OpSelect     = "SELECT"
	OpGroundPick = "GROUND_PICK"
	OpConfirm    = "CONFIRM"
	OpCancel     = "CANCEL"
	OpGather     = "GATHER"
	OpInteract   = "INTERACT"
	OpMove       = "MOVE"
	OpSetPos     = "SET_POS"
)

// Event types carried in STATE.events.
const (
	EventHarvest = "HARVEST"
	EventPlace   = "PLACE"
	EventReject  = "REJECT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
