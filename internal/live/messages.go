package live

import (
	"encoding/json"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
)

// Client message types.
const (
	TypeResolve = "resolve"
	TypePing    = "ping"
)

// Server message types.
const (
	TypeSession = "session"
	TypeNode    = "node"
	TypeError   = "error"
	TypePong    = "pong"
)

// ClientMessage is a client request. An empty Type means resolve. When Schema
// is omitted the session's previous schema is reused so a debug editor can
// stream data edits alone.
type ClientMessage struct {
	Type   string          `json:"type,omitempty"`
	ID     string          `json:"id"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Path   string          `json:"path,omitempty"`
	UX     json.RawMessage `json:"ux,omitempty"`
	State  map[string]any  `json:"state,omitempty"`
}

// ServerMessage is the envelope for all server replies.
type ServerMessage struct {
	Type      string      `json:"type"`
	ID        string      `json:"id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Node      render.Node `json:"node,omitempty"`
	Error     *ErrorData  `json:"error,omitempty"`
}

// ErrorData describes a failed request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
