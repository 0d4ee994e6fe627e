package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	SessionID       string        `json:"session_id"`
	World           WorldParams   `json:"world"`
	Instances       []InstanceRef `json:"instances"`
}

type WorldParams struct {
	Seed         int64   `json:"seed"`
	WorldSize    float64 `json:"world_size"`
	Resolution   int     `json:"resolution"`
	TickRateHz   int     `json:"tick_rate_hz"`
	NoiseBackend string  `json:"noise_backend,omitempty"`
}

// InstanceRef is a tree or rock the renderer should draw until a HARVEST
// event names its id.
type InstanceRef struct {
	ID    string     `json:"id"`
	Kind  string     `json:"kind"`
	Pos   [3]float64 `json:"pos"`
	Scale float64    `json:"scale"`
}

// CMD (client -> server)
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	Cmd             Cmd    `json:"cmd"`
}

type Cmd struct {
	Op string `json:"op"`

	// SELECT
	Kind string `json:"kind,omitempty"`
	// GROUND_PICK and SET_POS. A GROUND_PICK without pos is a raycast miss.
	Pos *[3]float64 `json:"pos,omitempty"`
	// GATHER
	Kinds       []string `json:"kinds,omitempty"`
	MaxDistance float64  `json:"max_distance,omitempty"`
	// MOVE
	Forward float64 `json:"forward,omitempty"`
	Strafe  float64 `json:"strafe,omitempty"`
	Yaw     float64 `json:"yaw,omitempty"`
}

// STATE (server -> client), once per tick.
type StateMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	Ledger          LedgerView    `json:"ledger"`
	Placement       PlacementView `json:"placement"`
	Player          PlayerView    `json:"player"`
	Clock           ClockView     `json:"clock"`
	Structures      int           `json:"structures"`
	Events          []Event       `json:"events"`
}

type LedgerView struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
}

type PlacementView struct {
	Phase string      `json:"phase"`
	Kind  string      `json:"kind,omitempty"`
	Pos   *[3]float64 `json:"pos,omitempty"`
}

type PlayerView struct {
	Pos    [3]float64 `json:"pos"`
	Yaw    float64    `json:"yaw"`
	Hunger float64    `json:"hunger"`
	Thirst float64    `json:"thirst"`
}

type ClockView struct {
	Day       int     `json:"day"`
	TimeOfDay float64 `json:"time_of_day"`
	Night     bool    `json:"night"`
}

// ERROR (server -> client) for frames the server could not accept.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
	Seq             uint64 `json:"seq,omitempty"`
}

func NewError(code, message string, seq uint64) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code, Message: message, Seq: seq}
}

type Event map[string]interface{}
