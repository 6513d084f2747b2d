package websocket

import "encoding/json"

// Event discriminates server -> client frames on the monitor stream.
type Event string

const (
	EventStateChange Event = "state_change"
	EventPing        Event = "ping"
	EventError       Event = "error"
)

// StateChangeFrame carries one session lifecycle event. Payload is the
// monitor event JSON exactly as published, passed through without
// re-marshaling.
type StateChangeFrame struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// PingFrame keeps idle connections alive through proxies.
type PingFrame struct {
	Event Event `json:"event"`
}

// ErrorFrame reports a stream-level failure before the server closes the
// connection.
type ErrorFrame struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
