package protocol

// OBS (server -> client)
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	AgentID         string `json:"agent_id"`

	Self      SelfObs     `json:"self"`
	Inventory []ItemStack `json:"inventory"`

	Voxels   VoxelsObs   `json:"voxels"`
	Entities []EntityObs `json:"entities"`
	Events   []Event     `json:"events"`
	Tasks    []TaskObs   `json:"tasks"`

	// Positions reserved by in-progress builds; the bot must not mine them.
	Reserved [][3]int `json:"reserved,omitempty"`
}

type SelfObs struct {
	Pos     [3]int   `json:"pos"`
	Yaw     int      `json:"yaw"`
	HP      int      `json:"hp"`
	Hunger  int      `json:"hunger"`
	Stamina float64  `json:"stamina"`
	Status  []string `json:"status"`
}

type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type VoxelsObs struct {
	Center   [3]int `json:"center"`
	Radius   int    `json:"radius"`
	Encoding string `json:"encoding"` // "RLE"
	Data     string `json:"data,omitempty"`
}

type EntityObs struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "AGENT", "MOB", "ITEM", ...
	Pos  [3]int `json:"pos"`

	Item  string `json:"item,omitempty"`
	Count int    `json:"count,omitempty"`
}

type Event map[string]interface{}

type TaskObs struct {
	TaskID   string  `json:"task_id"`
	Kind     string  `json:"kind"`
	Progress float64 `json:"progress"`
	Target   [3]int  `json:"target,omitempty"`
	EtaTicks int     `json:"eta_ticks,omitempty"`
}

// ACT (client -> server)
type ActMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Tick            uint64    `json:"tick"`
	AgentID         string    `json:"agent_id"`
	Tasks           []TaskReq `json:"tasks,omitempty"`
	Cancel          []string  `json:"cancel,omitempty"`
}

type TaskReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// MOVE_TO
	Target    [3]int  `json:"target,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`

	// MINE
	BlockType string   `json:"block_type,omitempty"`
	Exclude   [][3]int `json:"exclude,omitempty"`

	// CRAFT/SMELT
	ItemID string `json:"item_id,omitempty"`
	Count  int    `json:"count,omitempty"`

	// ATTACK
	TargetType string `json:"target_type,omitempty"`
}
