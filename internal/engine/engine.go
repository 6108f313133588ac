// Package engine wires configuration into a schema parser, template
// evaluator and resolver shared by the CLI, HTTP API and live socket.
package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/config"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/template"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// ErrSchemaRequired is returned when a request carries no schema.
var ErrSchemaRequired = errors.New("engine: schema is required")

// Request describes a single resolution.
type Request struct {
	Schema json.RawMessage `json:"schema"`
	Data   json.RawMessage `json:"data"`
	Path   string          `json:"path,omitempty"`
	UX     json.RawMessage `json:"ux,omitempty"`
	State  map[string]any  `json:"state,omitempty"`
}

// Engine bundles the configured components.
type Engine struct {
	extractor *ux.Extractor
	parser    *schema.Parser
	resolver  *render.Resolver
	logger    *slog.Logger
}

// New builds an Engine from configuration. A nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine: config is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	templateOpts := []template.Option{template.WithLogger(logger)}
	if cfg.Template.Sanitize() {
		templateOpts = append(templateOpts, template.WithSanitizer(template.SanitizeHTML))
	}
	evaluator, err := template.NewForDialect(template.Dialect(cfg.Template.Dialect), templateOpts...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	extractor := ux.NewExtractor(ux.WithNamespace(cfg.Resolver.Namespace))
	return &Engine{
		extractor: extractor,
		parser:    schema.NewParser(schema.WithExtractor(extractor)),
		resolver: render.New(
			render.WithTemplates(evaluator),
			render.WithLogger(logger),
			render.WithMaxDepth(cfg.Resolver.MaxDepth),
			render.WithRowWorkers(cfg.Resolver.RowWorkers),
		),
		logger: logger,
	}, nil
}

// Parser returns the configured schema parser.
func (e *Engine) Parser() *schema.Parser { return e.parser }

// Extractor returns the configured annotation extractor.
func (e *Engine) Extractor() *ux.Extractor { return e.extractor }

// Resolver returns the configured resolver.
func (e *Engine) Resolver() *render.Resolver { return e.resolver }

// ParseSchema parses an inline JSON or YAML schema payload.
func (e *Engine) ParseSchema(raw []byte) (*schema.Node, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, ErrSchemaRequired
	}
	doc, err := schema.NewDocument(schema.SourceInline("request"), raw)
	if err != nil {
		return nil, err
	}
	return e.parser.ParseDocument(doc)
}

// Resolve parses the request and produces its render tree. Resolution itself
// never fails; errors come from malformed schema, data, path or ux payloads.
func (e *Engine) Resolve(req Request) (render.Node, error) {
	node, err := e.ParseSchema(req.Schema)
	if err != nil {
		return nil, err
	}
	return e.ResolveWith(node, req)
}

// ResolveWith resolves req against an already parsed schema. req.Schema is
// ignored.
func (e *Engine) ResolveWith(node *schema.Node, req Request) (render.Node, error) {
	data, err := DecodeData(req.Data)
	if err != nil {
		return nil, err
	}
	path, err := render.ParsePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("engine: path: %w", err)
	}

	opts := []render.ResolveOption{render.WithState(req.State)}
	if len(bytes.TrimSpace(req.UX)) > 0 {
		cfg, err := DecodeUX(req.UX)
		if err != nil {
			return nil, err
		}
		opts = append(opts, render.WithUX(cfg))
	}
	return e.resolver.Resolve(data, node, path, opts...), nil
}

// DecodeData decodes an inline JSON value keeping object key order. An empty
// payload decodes to nil.
func DecodeData(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	value, err := schema.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("engine: data: %w", err)
	}
	return value, nil
}

// DecodeUX decodes an inline annotation object into a Config.
func DecodeUX(raw json.RawMessage) (ux.Config, error) {
	value, err := schema.DecodeJSON(raw)
	if err != nil {
		return ux.Config{}, fmt.Errorf("engine: ux: %w", err)
	}
	tree, ok := ux.AsObject(value)
	if !ok {
		return ux.Config{}, errors.New("engine: ux must be an object")
	}
	return ux.Decode(tree), nil
}
