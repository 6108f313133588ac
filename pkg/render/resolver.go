package render

import (
	"io"
	"log/slog"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/directive"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/template"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// DefaultMaxDepth bounds recursion through compound directives and nested
// schemas.
const DefaultMaxDepth = 64

// Option configures a Resolver.
type Option func(*Resolver)

// WithTemplates sets the evaluator used for display_format and computed
// columns.
func WithTemplates(evaluator template.Evaluator) Option {
	return func(r *Resolver) {
		if evaluator != nil {
			r.templates = evaluator
		}
	}
}

// WithLogger sets the logger. Error nodes are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithRowWorkers resolves table rows on up to n goroutines. Values below 2
// keep row resolution sequential.
func WithRowWorkers(n int) Option {
	return func(r *Resolver) {
		r.rowWorkers = n
	}
}

// Resolver turns (data, schema) pairs into render trees. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	templates  template.Evaluator
	logger     *slog.Logger
	maxDepth   int
	rowWorkers int
}

// New constructs a Resolver. Without WithTemplates the Jinja evaluator is used.
func New(options ...Option) *Resolver {
	r := &Resolver{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.templates == nil {
		r.templates = template.New()
	}
	return r
}

// ResolveOption adjusts a single Resolve call.
type ResolveOption func(*call)

// WithUX replaces the root node's UX annotation for this call.
func WithUX(cfg ux.Config) ResolveOption {
	return func(c *call) {
		c.override = &cfg
	}
}

// WithState exposes workflow state to templates as `state`.
func WithState(state map[string]any) ResolveOption {
	return func(c *call) {
		c.state = state
	}
}

type call struct {
	override *ux.Config
	state    map[string]any
}

// Resolve produces the render tree for data against node at path.
func (r *Resolver) Resolve(data any, node *schema.Node, path Path, options ...ResolveOption) Node {
	c := &call{}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if node == nil {
		node = &schema.Node{}
	}
	cfg := node.UX
	if c.override != nil {
		cfg = *c.override
	}
	if path == nil {
		path = Path{}
	}
	return r.resolve(c, data, node, cfg, path, nil, 0)
}

var defaultResolver = New()

// Resolve uses a shared default Resolver, so compiled templates are cached
// across calls.
func Resolve(data any, node *schema.Node, path Path, options ...ResolveOption) Node {
	return defaultResolver.Resolve(data, node, path, options...)
}

func (r *Resolver) resolve(c *call, data any, node *schema.Node, cfg ux.Config, path Path, children []Node, depth int) Node {
	base := Base{Path: path, Schema: node, UX: cfg, Children: children}

	if depth > r.maxDepth {
		return r.fail(base, CodeDepthExceeded, "resolution exceeded the maximum depth", "")
	}
	if ux.ShouldShortCircuit(data, cfg) {
		return &Null{Base: Base{Path: path, Schema: node, UX: cfg}}
	}
	// Hidden nodes render nothing. A hidden input stays so its value is still
	// collected, but it never carries render_as or display_format output.
	mode := cfg.Mode()
	if mode.Hidden() {
		if cfg.InputType != "" {
			return &Input{Base: Base{Path: path, Schema: node, UX: cfg}, InputType: cfg.InputType, Value: data}
		}
		return &Null{Base: Base{Path: path, Schema: node, UX: cfg}}
	}

	if cfg.RenderAs != "" && directive.IsCompound(cfg.RenderAs) {
		chain, err := directive.Parse(cfg.RenderAs)
		if err != nil {
			return r.fail(base, CodeDirectiveSyntax, err.Error(), cfg.RenderAs)
		}
		return r.resolveChain(c, data, node, cfg, path, children, chain, depth)
	}

	switch atom := cfg.RenderAs; {
	case atom == directive.AtomTab:
		return &TabRole{Base: base}
	case atom == directive.AtomTabs:
		return &TabsContainer{Base: base}
	case atom == directive.AtomTable:
		return r.table(c, data, node, base, depth)
	case directive.IsSpecial(atom):
		return &Special{Base: base, Renderer: atom, Data: data}
	}

	if cfg.DisplayFormat != "" {
		return &Terminal{
			Base:    base,
			Value:   r.templates.Render(cfg.DisplayFormat, data, c.state),
			Format:  cfg.DisplayFormat,
			Display: mode,
		}
	}

	if cfg.InputType != "" {
		return &Input{Base: base, InputType: cfg.InputType, Value: data}
	}

	switch node.Type {
	case schema.TypeArray:
		if items, ok := asList(data); ok {
			return r.array(c, items, node, base, depth)
		}
	case schema.TypeObject:
		if obj, ok := asFields(data); ok {
			return r.object(c, obj, node, base, depth)
		}
	}

	if cfg.InputSchema != nil {
		inner := r.resolve(c, data, node, cfg.WithoutInputSchema(), path, children, depth+1)
		return &InputSchemaComposer{
			Base:        Base{Path: path, Schema: node, UX: cfg, Children: []Node{inner}},
			InputSchema: cfg.InputSchema,
		}
	}

	return &Terminal{Base: base, Value: data, Display: mode}
}

// resolveChain folds a dot chain right to left: the last token is resolved
// with the incoming children and every token to its left wraps the previous
// result as its only child. Each wrapping level counts toward the depth limit.
func (r *Resolver) resolveChain(c *call, data any, node *schema.Node, cfg ux.Config, path Path, children []Node, chain directive.Chain, depth int) Node {
	var result Node
	for idx := len(chain) - 1; idx >= 0; idx-- {
		kids := children
		if result != nil {
			kids = []Node{result}
		}
		result = r.resolveToken(c, data, node, cfg, path, kids, chain[idx], depth+len(chain)-idx)
	}
	return result
}

// resolveToken resolves a single token. Sibling resolutions are appended after
// the incoming children; an input_schema sibling gathers the other siblings
// into one composer.
func (r *Resolver) resolveToken(c *call, data any, node *schema.Node, cfg ux.Config, path Path, children []Node, token directive.Token, depth int) Node {
	if !token.HasSiblings() {
		return r.resolve(c, data, node, cfg.WithRenderAs(token.Atom), path, children, depth)
	}

	composed := false
	var siblings []Node
	for _, sibling := range token.Siblings {
		if sibling.Atom == directive.AtomInputSchema && !sibling.HasSiblings() {
			composed = true
			continue
		}
		siblingCfg := cfg.WithRenderAs(sibling.String()).WithoutInputSchema()
		siblings = append(siblings, r.resolve(c, data, node, siblingCfg, path, nil, depth+1))
	}

	cleaned := cfg.WithRenderAs(token.Atom)
	kids := append([]Node(nil), children...)
	if composed {
		kids = append(kids, &InputSchemaComposer{
			Base:        Base{Path: path, Schema: node, UX: cfg, Children: siblings},
			InputSchema: cfg.InputSchema,
		})
		cleaned = cleaned.WithoutInputSchema()
	} else {
		kids = append(kids, siblings...)
	}
	return r.resolve(c, data, node, cleaned, path, kids, depth)
}

func (r *Resolver) array(c *call, items []any, node *schema.Node, base Base, depth int) Node {
	itemSchema := node.ItemSchema()
	out := &ArrayContainer{Base: base, Items: make([]Node, len(items))}
	for idx, item := range items {
		out.Items[idx] = r.resolve(c, item, itemSchema, itemSchema.UX, base.Path.Index(idx), nil, depth+1)
	}
	return out
}

func (r *Resolver) object(c *call, obj fields, node *schema.Node, base Base, depth int) Node {
	out := &ObjectContainer{Base: base}
	for pair := node.Props().Oldest(); pair != nil; pair = pair.Next() {
		key, prop := pair.Key, pair.Value
		value, _ := obj.get(key)
		out.Fields = append(out.Fields, Field{
			Key:   key,
			Label: prop.UX.Label(key),
			Node:  r.resolve(c, value, prop, prop.UX, base.Path.Key(key), nil, depth+1),
		})
	}

	extra := node.AdditionalProperties
	if extra == nil {
		return out
	}
	for _, key := range obj.keys() {
		if _, declared := node.Property(key); declared {
			continue
		}
		value, _ := obj.get(key)
		out.Fields = append(out.Fields, Field{
			Key:   key,
			Label: key,
			Node:  r.resolve(c, value, extra, extra.UX, base.Path.Key(key), nil, depth+1),
		})
	}
	return out
}

func (r *Resolver) fail(base Base, code, message, renderer string) Node {
	r.logger.Debug("render error node",
		"code", code,
		"path", base.Path.String(),
		"renderer", renderer,
		"message", message,
	)
	return &Error{Base: base, Code: code, Message: message, Renderer: renderer}
}
