package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	Params          WorldParams `json:"params"`
	BuildKinds      []string    `json:"build_kinds"`
	Resources       []string    `json:"resources"`
}

type WorldParams struct {
	TickRateHz  int   `json:"tick_rate_hz"`
	StateRateHz int   `json:"state_rate_hz"`
	Seed        int64 `json:"seed"`
	SlotID      int64 `json:"slot_id"`
}

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Actions struct {
	Attack *bool `json:"attack,omitempty"`
	Build  *bool `json:"build,omitempty"`
	Jump   *bool `json:"jump,omitempty"`
}

// INPUT (client -> server): joystick-style input. Move and look replace the
// previous values; only the actions present are set.
type InputMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Move            *Vec2    `json:"move,omitempty"`
	Look            *Vec2    `json:"look,omitempty"`
	Actions         *Actions `json:"actions,omitempty"`
}

// KEY (client -> server): one keyboard transition, by DOM key code.
type KeyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Down            bool   `json:"down"`
	Repeat          bool   `json:"repeat,omitempty"`
}

// CMD (client -> server): one mutator call. Fields beyond op are read per op.
type CmdMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ReqID           string      `json:"req_id,omitempty"`
	Op              string      `json:"op"`
	Resource        string      `json:"resource,omitempty"`
	Amount          int         `json:"amount,omitempty"`
	Damage          float64     `json:"damage,omitempty"`
	Kind            string      `json:"kind,omitempty"`
	Position        *[3]float64 `json:"position,omitempty"`
	Rotation        *float64    `json:"rotation,omitempty"`
}

// ACK (server -> client): whether a CMD was accepted by the loop.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for,omitempty"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

type Inventory struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
	Scrap int `json:"scrap"`
	Water int `json:"water"`
}

type Structure struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Kind     string     `json:"kind"`
	Rotation float64    `json:"rotation"`
}

type Daylight struct {
	IsDay            bool       `json:"is_day"`
	SunIntensity     float64    `json:"sun_intensity"`
	AmbientIntensity float64    `json:"ambient_intensity"`
	SunPosition      [3]float64 `json:"sun_position"`
}

type Pose struct {
	ID  int        `json:"id,omitempty"`
	Pos [3]float64 `json:"pos"`
	Yaw float64    `json:"yaw,omitempty"`
}

// STATE (server -> client): the HUD/renderer view.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	HP     float64 `json:"hp"`
	Hunger float64 `json:"hunger"`
	Thirst float64 `json:"thirst"`
	IsDead bool    `json:"is_dead"`

	Inventory  Inventory   `json:"inventory"`
	Structures []Structure `json:"structures"`

	IsBuildMode       bool    `json:"is_build_mode"`
	SelectedBuildKind string  `json:"selected_build_kind"`
	BuildRotation     float64 `json:"build_rotation"`

	Time     float64  `json:"time"`
	Daylight Daylight `json:"daylight"`

	Player    Pose     `json:"player"`
	Enemies   []Pose   `json:"enemies"`
	Collected []string `json:"collected,omitempty"`
}

// NOTICE (server -> client): user-visible outcome, e.g. of a save or load.
type NoticeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Level           string `json:"level"`
	Op              string `json:"op,omitempty"`
	Text            string `json:"text"`
}

// ERROR (server -> client): a frame that could not be handled.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
