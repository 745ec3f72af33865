package observerproto

import "wildscrap.game/internal/sim/game"

// Version is the observer protocol version (separate from the player WS protocol).
const Version = "0.1"

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RateHz          int    `json:"rate_hz"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
	Nodes           []Node      `json:"nodes"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	Seed       int64 `json:"seed"`
}

type Node struct {
	ID     string     `json:"id"`
	Kind   string     `json:"kind"`
	Pos    [3]float64 `json:"pos"`
	Radius float64    `json:"radius"`
}

// Server -> Client. Sent at the subscribed rate whenever the state changed.
type TickMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	State           *game.State `json:"state"`
}
