package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

const defaultMaxRefDepth = 64

// ErrCircularRef is returned when a local $ref chain loops back on itself.
var ErrCircularRef = errors.New("schema: circular $ref")

// ParseOption configures a Parser.
type ParseOption func(*Parser)

// WithExtractor overrides the UX extractor (for example to use a custom
// annotation namespace).
func WithExtractor(extractor *ux.Extractor) ParseOption {
	return func(p *Parser) {
		if extractor != nil {
			p.extractor = extractor
		}
	}
}

// WithMaxRefDepth caps the length of $ref chains and nesting of referenced
// schemas.
func WithMaxRefDepth(depth int) ParseOption {
	return func(p *Parser) {
		if depth > 0 {
			p.maxRefDepth = depth
		}
	}
}

// Parser converts decoded schema payloads into Node trees.
type Parser struct {
	extractor   *ux.Extractor
	maxRefDepth int
}

// NewParser constructs a Parser with the default extractor and ref depth.
func NewParser(options ...ParseOption) *Parser {
	p := &Parser{
		extractor:   ux.NewExtractor(),
		maxRefDepth: defaultMaxRefDepth,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Parse converts a decoded root object into a Node tree, resolving local
// `#/...` references against the same root.
func (p *Parser) Parse(root *ux.Object) (*Node, error) {
	if root == nil {
		return nil, errors.New("schema: root is nil")
	}
	state := &parseState{root: root, inStack: make(map[string]struct{})}
	return p.parseNode(root, state, "#")
}

// ParseAt parses the schema found at a local JSON pointer (for example
// "#/components/schemas/Order") while resolving references against root.
func (p *Parser) ParseAt(root *ux.Object, pointer string) (*Node, error) {
	if root == nil {
		return nil, errors.New("schema: root is nil")
	}
	target, err := lookupPointer(root, pointer)
	if err != nil {
		return nil, err
	}
	state := &parseState{root: root, inStack: make(map[string]struct{})}
	return p.parseNode(target, state, pointer)
}

// ParseValue parses any decoded value, requiring it to be an object.
func (p *Parser) ParseValue(value any) (*Node, error) {
	obj, ok := ux.AsObject(value)
	if !ok {
		return nil, fmt.Errorf("schema: root must be an object, got %T", value)
	}
	return p.Parse(obj)
}

// ParseDocument decodes and parses a Document.
func (p *Parser) ParseDocument(doc Document) (*Node, error) {
	value, err := DecodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", doc.Location(), err)
	}
	node, err := p.ParseValue(value)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", doc.Location(), err)
	}
	return node, nil
}

// Parse parses a decoded root object with default options.
func Parse(root *ux.Object) (*Node, error) {
	return NewParser().Parse(root)
}

// ParseJSON decodes and parses a JSON schema payload with default options.
func ParseJSON(raw []byte) (*Node, error) {
	value, err := DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return NewParser().ParseValue(value)
}

// ParseYAML decodes and parses a YAML schema payload with default options.
func ParseYAML(raw []byte) (*Node, error) {
	value, err := DecodeYAML(raw)
	if err != nil {
		return nil, err
	}
	return NewParser().ParseValue(value)
}

type parseState struct {
	root    *ux.Object
	stack   []string
	inStack map[string]struct{}
}

func (p *Parser) parseNode(raw *ux.Object, state *parseState, pointer string) (*Node, error) {
	raw, pushed, err := p.expandRef(raw, state)
	if err != nil {
		return nil, fmt.Errorf("%w at %s", err, pointer)
	}
	defer func() {
		for _, ref := range pushed {
			state.pop(ref)
		}
	}()

	node := &Node{
		Raw:         raw,
		Title:       stringField(raw, "title"),
		Description: stringField(raw, "description"),
		Format:      stringField(raw, "format"),
		UX:          p.extractor.Extract(raw),
	}
	node.Default, _ = raw.Get("default")
	if enum, ok := raw.Get("enum"); ok {
		if values, ok := enum.([]any); ok {
			node.Enum = values
		}
	}
	if required, ok := raw.Get("required"); ok {
		if values, ok := required.([]any); ok {
			for _, value := range values {
				if s, ok := value.(string); ok {
					node.Required = append(node.Required, s)
				}
			}
		}
	}

	propsRaw, hasProps := raw.Get("properties")
	itemsRaw, hasItems := raw.Get("items")
	node.Type = resolveType(raw, hasProps, hasItems)

	if node.Type == TypeObject {
		node.Properties = orderedmap.New[string, *Node]()
		if props, ok := ux.AsObject(propsRaw); ok {
			for pair := props.Oldest(); pair != nil; pair = pair.Next() {
				childRaw, ok := ux.AsObject(pair.Value)
				if !ok {
					return nil, fmt.Errorf("schema: property %q at %s is not an object", pair.Key, pointer)
				}
				child, err := p.parseNode(childRaw, state, pointer+"/properties/"+escapePointer(pair.Key))
				if err != nil {
					return nil, err
				}
				node.Properties.Set(pair.Key, child)
			}
		}
		if additional, ok := raw.Get("additionalProperties"); ok {
			if additionalRaw, ok := ux.AsObject(additional); ok {
				child, err := p.parseNode(additionalRaw, state, pointer+"/additionalProperties")
				if err != nil {
					return nil, err
				}
				node.AdditionalProperties = child
			}
		}
	}

	if node.Type == TypeArray && hasItems {
		if itemRaw, ok := ux.AsObject(itemsRaw); ok {
			child, err := p.parseNode(itemRaw, state, pointer+"/items")
			if err != nil {
				return nil, err
			}
			node.Items = child
		}
	}

	return node, nil
}

// expandRef follows a chain of local $ref values. Sibling keys of each
// referencing node are overlaid on the target, outermost last, so annotations
// placed next to a $ref win. Every followed ref stays on the in-progress stack
// until the caller pops the returned list.
func (p *Parser) expandRef(raw *ux.Object, state *parseState) (*ux.Object, []string, error) {
	if _, ok := raw.Get("$ref"); !ok {
		return raw, nil, nil
	}

	var (
		pushed   []string
		overlays []*ux.Object
		current  = raw
	)
	fail := func(err error) (*ux.Object, []string, error) {
		for _, ref := range pushed {
			state.pop(ref)
		}
		return nil, nil, err
	}

	for {
		refValue, ok := current.Get("$ref")
		if !ok {
			break
		}
		ref, ok := refValue.(string)
		if !ok {
			return fail(errors.New("schema: $ref must be a string"))
		}
		if _, busy := state.inStack[ref]; busy {
			chain := append(append([]string(nil), state.stack...), ref)
			return fail(fmt.Errorf("%w: %s", ErrCircularRef, strings.Join(chain, " -> ")))
		}
		if len(state.stack) >= p.maxRefDepth {
			return fail(fmt.Errorf("schema: $ref depth exceeds %d", p.maxRefDepth))
		}
		target, err := lookupPointer(state.root, ref)
		if err != nil {
			return fail(err)
		}
		state.push(ref)
		pushed = append(pushed, ref)
		overlays = append(overlays, stripRef(current))
		current = target
	}

	merged := ux.CloneObject(current)
	for idx := len(overlays) - 1; idx >= 0; idx-- {
		for pair := overlays[idx].Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
	}
	return merged, pushed, nil
}

func (s *parseState) push(ref string) {
	s.stack = append(s.stack, ref)
	s.inStack[ref] = struct{}{}
}

func (s *parseState) pop(ref string) {
	delete(s.inStack, ref)
	for idx := len(s.stack) - 1; idx >= 0; idx-- {
		if s.stack[idx] == ref {
			s.stack = append(s.stack[:idx], s.stack[idx+1:]...)
			return
		}
	}
}

func lookupPointer(root *ux.Object, ref string) (*ux.Object, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("schema: only local $ref values are supported, got %q", ref)
	}
	pointer := strings.TrimPrefix(ref, "#")
	var current any = root
	if pointer != "" {
		for _, segment := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
			segment = strings.ReplaceAll(segment, "~1", "/")
			segment = strings.ReplaceAll(segment, "~0", "~")
			switch value := current.(type) {
			case *ux.Object:
				next, ok := value.Get(segment)
				if !ok {
					return nil, fmt.Errorf("schema: $ref %q not found", ref)
				}
				current = next
			case []any:
				idx, err := strconv.Atoi(segment)
				if err != nil || idx < 0 || idx >= len(value) {
					return nil, fmt.Errorf("schema: $ref %q index %q out of range", ref, segment)
				}
				current = value[idx]
			default:
				return nil, fmt.Errorf("schema: $ref %q traverses a scalar", ref)
			}
		}
	}
	obj, ok := ux.AsObject(current)
	if !ok {
		return nil, fmt.Errorf("schema: $ref %q does not point at an object", ref)
	}
	return obj, nil
}

func resolveType(raw *ux.Object, hasProps, hasItems bool) Type {
	if value, ok := raw.Get("type"); ok {
		switch t := value.(type) {
		case string:
			return Type(strings.TrimSpace(t))
		case []any:
			for _, candidate := range t {
				if s, ok := candidate.(string); ok && s != string(TypeNull) {
					return Type(s)
				}
			}
		}
	}
	switch {
	case hasProps:
		return TypeObject
	case hasItems:
		return TypeArray
	default:
		return TypeUnknown
	}
}

func stripRef(raw *ux.Object) *ux.Object {
	if _, ok := raw.Get("$ref"); !ok {
		return raw
	}
	out := ux.CloneObject(raw)
	out.Delete("$ref")
	return out
}

func stringField(raw *ux.Object, key string) string {
	value, _ := raw.Get(key)
	s, _ := value.(string)
	return s
}

func escapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	return strings.ReplaceAll(segment, "/", "~1")
}
