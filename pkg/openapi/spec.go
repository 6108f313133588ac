package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

var (
	// ErrUnknownSchema is returned when a component name is not declared.
	ErrUnknownSchema = errors.New("openapi: unknown component schema")
	// ErrUnknownOperation is returned when no operation matches an id.
	ErrUnknownOperation = errors.New("openapi: unknown operation")
	// ErrNoSchema is returned when an operation carries no body schema.
	ErrNoSchema = errors.New("openapi: operation has no schema")
)

var preferredMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// Option configures Load.
type Option func(*options)

type options struct {
	parser      *schema.Parser
	validate    bool
	extraFields []string
}

// WithParser overrides the schema parser used for components.
func WithParser(parser *schema.Parser) Option {
	return func(o *options) {
		if parser != nil {
			o.parser = parser
		}
	}
}

// WithValidation toggles kin-openapi document validation. Enabled by default.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// WithExtraFields lists non `x-` schema keys that validation should accept
// alongside the default `_ux` annotation key.
func WithExtraFields(fields ...string) Option {
	return func(o *options) {
		o.extraFields = append(o.extraFields, fields...)
	}
}

// Operation summarises a single path/method pair.
type Operation struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`

	op *openapi3.Operation
}

// Spec is a loaded OpenAPI document.
type Spec struct {
	location   string
	doc        *openapi3.T
	root       *ux.Object
	parser     *schema.Parser
	names      []string
	operations []Operation
}

// Load validates an OpenAPI document and indexes its component schemas and
// operations.
func Load(ctx context.Context, document schema.Document, opts ...Option) (*Spec, error) {
	cfg := options{validate: true, extraFields: []string{"_ux"}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.parser == nil {
		cfg.parser = schema.NewParser()
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(document.Raw())
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", document.Location(), err)
	}
	if cfg.validate {
		if err := doc.Validate(ctx,
			openapi3.DisableExamplesValidation(),
			openapi3.AllowExtraSiblingFields(cfg.extraFields...),
		); err != nil {
			return nil, fmt.Errorf("openapi: validate %s: %w", document.Location(), err)
		}
	}

	value, err := schema.DecodeDocument(document)
	if err != nil {
		return nil, fmt.Errorf("openapi: decode %s: %w", document.Location(), err)
	}
	root, ok := ux.AsObject(value)
	if !ok {
		return nil, fmt.Errorf("openapi: %s: document root must be an object", document.Location())
	}

	spec := &Spec{
		location: document.Location(),
		doc:      doc,
		root:     root,
		parser:   cfg.parser,
		names:    componentNames(root),
	}
	spec.operations = collectOperations(doc)
	return spec, nil
}

// Location reports where the document was loaded from.
func (s *Spec) Location() string { return s.location }

// Title returns info.title.
func (s *Spec) Title() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Title
}

// Version returns info.version.
func (s *Spec) Version() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Version
}

// SchemaNames lists components.schemas keys in document order.
func (s *Spec) SchemaNames() []string {
	return append([]string(nil), s.names...)
}

// Schema parses the named component. References to other components resolve
// against the whole document.
func (s *Spec) Schema(name string) (*schema.Node, error) {
	found := false
	for _, candidate := range s.names {
		if candidate == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return s.parser.ParseAt(s.root, "#/components/schemas/"+escapePointer(name))
}

// Operations lists every operation sorted by path then method.
func (s *Spec) Operations() []Operation {
	return append([]Operation(nil), s.operations...)
}

// Operation looks up an operation by id.
func (s *Spec) Operation(id string) (Operation, error) {
	for _, op := range s.operations {
		if op.ID == id {
			return op, nil
		}
	}
	return Operation{}, fmt.Errorf("%w: %q", ErrUnknownOperation, id)
}

// RequestSchema parses the request body schema of an operation, preferring
// JSON over form encodings.
func (s *Spec) RequestSchema(operationID string) (*schema.Node, error) {
	op, err := s.Operation(operationID)
	if err != nil {
		return nil, err
	}
	body := op.op.RequestBody
	if body == nil || body.Value == nil {
		return nil, fmt.Errorf("%w: %s request body", ErrNoSchema, operationID)
	}
	base := operationPointer(op) + "/requestBody"
	if body.Ref != "" {
		base = body.Ref
	}
	media, ok := pickMediaType(body.Value.Content)
	if !ok {
		return nil, fmt.Errorf("%w: %s request body", ErrNoSchema, operationID)
	}
	return s.parser.ParseAt(s.root, base+"/content/"+escapePointer(media)+"/schema")
}

// ResponseSchema parses the body schema of the response with the given status
// code (for example "200" or "default").
func (s *Spec) ResponseSchema(operationID, status string) (*schema.Node, error) {
	op, err := s.Operation(operationID)
	if err != nil {
		return nil, err
	}
	if op.op.Responses == nil {
		return nil, fmt.Errorf("%w: %s response %s", ErrNoSchema, operationID, status)
	}
	ref := op.op.Responses.Value(status)
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %s response %s", ErrNoSchema, operationID, status)
	}
	base := operationPointer(op) + "/responses/" + escapePointer(status)
	if ref.Ref != "" {
		base = ref.Ref
	}
	media, ok := pickMediaType(ref.Value.Content)
	if !ok {
		return nil, fmt.Errorf("%w: %s response %s", ErrNoSchema, operationID, status)
	}
	return s.parser.ParseAt(s.root, base+"/content/"+escapePointer(media)+"/schema")
}

func componentNames(root *ux.Object) []string {
	components, ok := root.Get("components")
	if !ok {
		return nil
	}
	componentsObj, ok := ux.AsObject(components)
	if !ok {
		return nil
	}
	schemas, ok := componentsObj.Get("schemas")
	if !ok {
		return nil
	}
	schemasObj, ok := ux.AsObject(schemas)
	if !ok {
		return nil
	}
	names := make([]string, 0, schemasObj.Len())
	for pair := schemasObj.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func collectOperations(doc *openapi3.T) []Operation {
	if doc.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation == nil {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{
				ID:      id,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: operation.Summary,
				op:      operation,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func operationPointer(op Operation) string {
	return "#/paths/" + escapePointer(op.Path) + "/" + strings.ToLower(op.Method)
}

func pickMediaType(content openapi3.Content) (string, bool) {
	if len(content) == 0 {
		return "", false
	}
	for _, media := range preferredMediaTypes {
		if mt, ok := content[media]; ok && mt != nil && mt.Schema != nil {
			return media, true
		}
	}
	keys := make([]string, 0, len(content))
	for key, mt := range content {
		if mt != nil && mt.Schema != nil {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return keys[0], true
}

func escapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	return strings.ReplaceAll(segment, "/", "~1")
}
