package protocol

import "encoding/json"

const Version = "0.9"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeObs     = "OBS"
	TypeAct     = "ACT"
	TypeError   = "ERROR"
)

// Task types the bot issues. The server may support more; these are the ones
// the goal executor needs.
const (
	TaskMoveTo = "MOVE_TO"
	TaskMine   = "MINE"
	TaskCraft  = "CRAFT"
	TaskSmelt  = "SMELT"
	TaskAttack = "ATTACK"
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
