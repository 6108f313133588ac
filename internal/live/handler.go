// Package live re-resolves render trees over a websocket as a client edits
// schema, data or state.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/engine"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
)

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOriginPatterns accepts browser origins matching the given host
// patterns in addition to the request host. Defaults to same-origin only.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Handler) {
		h.origins = patterns
	}
}

// Handler upgrades requests to websockets and runs one session per
// connection.
type Handler struct {
	engine  *engine.Engine
	logger  *slog.Logger
	origins []string
}

// NewHandler creates a live Handler backed by e.
func NewHandler(e *engine.Engine, options ...Option) *Handler {
	h := &Handler{
		engine: e,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

type session struct {
	id     string
	schema *schema.Node
}

// ServeHTTP upgrades to a websocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn("live: websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	sess := &session{id: uuid.NewString()}
	ctx := r.Context()
	logger := h.logger.With("session_id", sess.id)
	logger.Debug("live: session opened")

	h.send(ctx, conn, ServerMessage{Type: TypeSession, SessionID: sess.id})

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				logger.Debug("live: connection closed", "status", status)
			} else if !errors.Is(err, context.Canceled) {
				logger.Debug("live: read", "error", err)
			}
			return
		}

		switch msg.Type {
		case "", TypeResolve:
			h.handleResolve(ctx, conn, sess, msg)
		case TypePing:
			h.send(ctx, conn, ServerMessage{Type: TypePong, ID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "UNKNOWN_TYPE", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleResolve(ctx context.Context, conn *websocket.Conn, sess *session, msg ClientMessage) {
	if len(msg.Schema) > 0 {
		node, err := h.engine.ParseSchema(msg.Schema)
		if err != nil {
			h.sendError(ctx, conn, msg.ID, "INVALID_SCHEMA", err.Error())
			return
		}
		sess.schema = node
	}
	if sess.schema == nil {
		h.sendError(ctx, conn, msg.ID, "MISSING_SCHEMA", engine.ErrSchemaRequired.Error())
		return
	}

	node, err := h.engine.ResolveWith(sess.schema, engine.Request{
		Data:  msg.Data,
		Path:  msg.Path,
		UX:    msg.UX,
		State: msg.State,
	})
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "INVALID_REQUEST", err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{Type: TypeNode, ID: msg.ID, Node: node})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.logger.Debug("live: write", "error", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, id, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:  TypeError,
		ID:    id,
		Error: &ErrorData{Code: code, Message: message},
	})
}
