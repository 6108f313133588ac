// Package api exposes schema resolution over HTTP.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/engine"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/columns"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

const defaultMaxBodyBytes = 4 << 20

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for request and encode errors.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithLive mounts a websocket handler at GET /v1/live.
func WithLive(live http.Handler) Option {
	return func(h *Handler) {
		h.live = live
	}
}

// Handler implements the resolution endpoints.
type Handler struct {
	engine       *engine.Engine
	logger       *slog.Logger
	maxBodyBytes int64
	live         http.Handler
}

// NewHandler creates a Handler backed by e.
func NewHandler(e *engine.Engine, options ...Option) *Handler {
	h := &Handler{
		engine:       e,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes builds the router with request id and logging middleware.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Get("/healthz", h.HandleHealth)
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the /v1 endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/resolve", h.HandleResolve)
		r.Post("/columns", h.HandleColumns)
		r.Post("/ux/extract", h.HandleExtract)
		r.Post("/display/normalize", h.HandleNormalizeDisplay)
		if h.live != nil {
			r.Method(http.MethodGet, "/live", h.live)
		}
	})
}

// HandleHealth reports liveness.
// GET /healthz
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleResolve resolves data against a schema and returns the render tree.
// POST /v1/resolve
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if !h.decodeJSON(w, r, &req) {
		return
	}
	node, err := h.engine.Resolve(req)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		Node render.Node `json:"node"`
	}{Node: node})
}

// HandleColumns discovers table columns for an array or object schema.
// POST /v1/columns
func (h *Handler) HandleColumns(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if !h.decodeJSON(w, r, &req) {
		return
	}
	node, err := h.engine.ParseSchema(req.Schema)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}
	plan, err := columns.ForNode(node)
	if err != nil {
		if errors.Is(err, columns.ErrNoColumns) {
			h.writeError(w, http.StatusUnprocessableEntity, "NO_COLUMNS", "no columns found")
			return
		}
		h.writeError(w, http.StatusBadRequest, "INVALID_SCHEMA", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, plan)
}

// HandleExtract returns the merged annotation tree of a schema node.
// POST /v1/ux/extract
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Schema) == 0 {
		h.writeRequestError(w, engine.ErrSchemaRequired)
		return
	}
	value, err := schema.DecodeJSON(req.Schema)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_SCHEMA", err.Error())
		return
	}
	raw, ok := ux.AsObject(value)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "INVALID_SCHEMA", "schema must be an object")
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		UX *ux.Object `json:"ux"`
	}{UX: h.engine.Extractor().Tree(raw)})
}

// HandleNormalizeDisplay maps a raw display annotation onto its mode.
// POST /v1/display/normalize
func (h *Handler) HandleNormalizeDisplay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Display any `json:"display"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		Mode ux.DisplayMode `json:"mode"`
	}{Mode: ux.NormalizeDisplay(req.Display)})
}

func (h *Handler) writeRequestError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrSchemaRequired) {
		h.writeError(w, http.StatusBadRequest, "MISSING_SCHEMA", err.Error())
		return
	}
	h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
}
