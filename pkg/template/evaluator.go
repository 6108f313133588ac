package template

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// Evaluator renders a template for one item. Implementations must not fail;
// problems are reported inside the returned string.
type Evaluator interface {
	Render(source string, item any, state map[string]any) string
}

// Engine compiles and executes template source against a prepared context.
type Engine interface {
	Name() string
	Execute(source string, ctx map[string]any) (string, error)
}

// Dialect names a supported template engine.
type Dialect string

const (
	DialectJinja  Dialect = "jinja"
	DialectDjango Dialect = "django"
)

// ErrorPrefix starts every inline failure string.
const ErrorPrefix = "[Template Error: "

// Option configures a Renderer.
type Option func(*Renderer)

// WithEngine overrides the template engine.
func WithEngine(engine Engine) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithSanitizer runs every successful render through fn.
func WithSanitizer(fn func(string) string) Option {
	return func(r *Renderer) {
		r.sanitize = fn
	}
}

// WithLogger sets the logger used to report template failures at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer adapts an Engine to the Evaluator contract.
type Renderer struct {
	engine   Engine
	sanitize func(string) string
	logger   *slog.Logger
}

var _ Evaluator = (*Renderer)(nil)

// New constructs a Renderer. Without WithEngine the Jinja engine is used.
func New(options ...Option) *Renderer {
	r := &Renderer{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.engine == nil {
		r.engine = NewJinja()
	}
	return r
}

// NewForDialect constructs a Renderer backed by the named dialect.
func NewForDialect(dialect Dialect, options ...Option) (*Renderer, error) {
	var engine Engine
	switch Dialect(strings.ToLower(strings.TrimSpace(string(dialect)))) {
	case "", DialectJinja:
		engine = NewJinja()
	case DialectDjango:
		engine = NewDjango()
	default:
		return nil, fmt.Errorf("template: unknown dialect %q", dialect)
	}
	return New(append([]Option{WithEngine(engine)}, options...)...), nil
}

// Engine returns the configured engine.
func (r *Renderer) Engine() Engine {
	return r.engine
}

// Render evaluates source. The context exposes the item as `value` and
// `item`, the workflow state as `state`, and, when the item is an object, each
// of its keys at the top level. Panics inside the engine are recovered.
func (r *Renderer) Render(source string, item any, state map[string]any) (out string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Debug("template panic", "engine", r.engine.Name(), "panic", recovered)
			out = inlineError(fmt.Sprint(recovered))
		}
	}()

	rendered, err := r.engine.Execute(source, Context(item, state))
	if err != nil {
		r.logger.Debug("template failed", "engine", r.engine.Name(), "error", err)
		return inlineError(err.Error())
	}
	if r.sanitize != nil {
		rendered = r.sanitize(rendered)
	}
	return rendered
}

// Context builds the evaluation context for item and state.
func Context(item any, state map[string]any) map[string]any {
	plain := ux.Plain(item)
	ctx := make(map[string]any)
	if fields, ok := plain.(map[string]any); ok {
		for key, value := range fields {
			ctx[key] = value
		}
	}
	ctx["value"] = plain
	ctx["item"] = plain
	if state != nil {
		ctx["state"] = ux.Plain(state)
	} else {
		ctx["state"] = map[string]any{}
	}
	return ctx
}

// IsError reports whether s is an inline failure string.
func IsError(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}

func inlineError(message string) string {
	return ErrorPrefix + strings.TrimSpace(message) + "]"
}
