package ux

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is the insertion-ordered map used for every decoded JSON/YAML object.
type Object = orderedmap.OrderedMap[string, any]

// DefaultDisplayOrder is applied when `display_order` is absent.
const DefaultDisplayOrder = 999.0

// Well-known annotation keys.
const (
	KeyDisplay       = "display"
	KeyRenderAs      = "render_as"
	KeyDisplayLabel  = "display_label"
	KeyDisplayFormat = "display_format"
	KeyDisplayOrder  = "display_order"
	KeyNudges        = "nudges"
	KeySelectable    = "selectable"
	KeyHighlight     = "highlight"
	KeyInputType     = "input_type"
	KeyInputSchema   = "input_schema"
	KeyComputed      = "computed"
	KeyProvider      = "provider"
	KeyPromptID      = "prompt_id"
)

// Config is the unified UX annotation for one schema node. Typed fields cover
// the annotations the resolver reads; Raw keeps the full merged tree (known and
// unknown fields) in document order.
type Config struct {
	Display       string
	RenderAs      string
	DisplayLabel  string
	DisplayFormat string
	DisplayOrder  *float64
	Nudges        []string
	Selectable    bool
	Highlight     bool
	InputType     string
	InputSchema   *Object
	Computed      []ComputedField
	Provider      string
	PromptID      string
	Raw           *Object
}

// ComputedField is a synthetic value derived per item through its own
// display_format template.
type ComputedField struct {
	Name string
	UX   Config
}

// Decode builds a Config from a merged annotation tree.
func Decode(tree *Object) Config {
	cfg := Config{Raw: tree}
	if tree == nil {
		return cfg
	}

	cfg.Display = stringValue(get(tree, KeyDisplay))
	if b, ok := get(tree, KeyDisplay).(bool); ok {
		cfg.Display = string(NormalizeDisplay(b))
	}
	cfg.RenderAs = strings.TrimSpace(stringValue(get(tree, KeyRenderAs)))
	cfg.DisplayLabel = stringValue(get(tree, KeyDisplayLabel))
	cfg.DisplayFormat = stringValue(get(tree, KeyDisplayFormat))
	if order, ok := floatValue(get(tree, KeyDisplayOrder)); ok {
		cfg.DisplayOrder = &order
	}
	cfg.Nudges = stringSet(get(tree, KeyNudges))
	cfg.Selectable = boolValue(get(tree, KeySelectable))
	cfg.Highlight = boolValue(get(tree, KeyHighlight))
	cfg.InputType = strings.TrimSpace(stringValue(get(tree, KeyInputType)))
	if schema, ok := AsObject(get(tree, KeyInputSchema)); ok {
		cfg.InputSchema = schema
	}
	cfg.Provider = stringValue(get(tree, KeyProvider))
	cfg.PromptID = stringValue(get(tree, KeyPromptID))

	if computed, ok := AsObject(get(tree, KeyComputed)); ok {
		for pair := computed.Oldest(); pair != nil; pair = pair.Next() {
			fieldTree, ok := AsObject(pair.Value)
			if !ok {
				continue
			}
			cfg.Computed = append(cfg.Computed, ComputedField{
				Name: pair.Key,
				UX:   Decode(fieldTree),
			})
		}
	}
	return cfg
}

// Mode returns the normalised display mode.
func (c Config) Mode() DisplayMode {
	return NormalizeDisplay(c.Display)
}

// Order returns display_order or DefaultDisplayOrder when unset.
func (c Config) Order() float64 {
	if c.DisplayOrder == nil {
		return DefaultDisplayOrder
	}
	return *c.DisplayOrder
}

// Empty reports whether no annotation was present.
func (c Config) Empty() bool {
	return c.Raw == nil || c.Raw.Len() == 0
}

// Label returns display_label, falling back to the supplied key.
func (c Config) Label(fallback string) string {
	if label := strings.TrimSpace(c.DisplayLabel); label != "" {
		return label
	}
	return fallback
}

// HasNudge reports whether the named nudge is enabled.
func (c Config) HasNudge(name string) bool {
	for _, nudge := range c.Nudges {
		if nudge == name {
			return true
		}
	}
	return false
}

// WithRenderAs returns a copy whose render_as is replaced by token.
func (c Config) WithRenderAs(token string) Config {
	out := c
	out.RenderAs = token
	out.Raw = withKey(c.Raw, KeyRenderAs, token)
	return out
}

// WithoutInputSchema returns a copy with input_schema cleared.
func (c Config) WithoutInputSchema() Config {
	out := c
	out.InputSchema = nil
	out.Raw = withoutKeys(c.Raw, KeyInputSchema)
	return out
}

// ForCell strips the column-level annotations so a table cell resolves as a
// plain value of its schema.
func (c Config) ForCell() Config {
	out := c
	out.RenderAs = ""
	out.DisplayLabel = ""
	out.DisplayOrder = nil
	out.Raw = withoutKeys(c.Raw, KeyRenderAs, KeyDisplayLabel, KeyDisplayOrder)
	return out
}

// MarshalJSON emits the merged annotation tree in document order.
func (c Config) MarshalJSON() ([]byte, error) {
	if c.Raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Raw)
}

// AsObject converts supported object representations into an ordered Object.
// Plain maps are copied with their keys sorted so the result is deterministic.
func AsObject(v any) (*Object, bool) {
	switch obj := v.(type) {
	case *Object:
		if obj == nil {
			return nil, false
		}
		return obj, true
	case map[string]any:
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := orderedmap.New[string, any]()
		for _, key := range keys {
			out.Set(key, obj[key])
		}
		return out, true
	default:
		return nil, false
	}
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// CloneObject returns a shallow copy preserving key order.
func CloneObject(src *Object) *Object {
	out := orderedmap.New[string, any]()
	if src == nil {
		return out
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

func withKey(src *Object, key string, value any) *Object {
	out := CloneObject(src)
	out.Set(key, value)
	return out
}

func withoutKeys(src *Object, keys ...string) *Object {
	if src == nil {
		return nil
	}
	out := CloneObject(src)
	for _, key := range keys {
		out.Delete(key)
	}
	return out
}

func get(tree *Object, key string) any {
	if tree == nil {
		return nil
	}
	v, _ := tree.Get(key)
	return v
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func boolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

func stringSet(v any) []string {
	var raw []string
	switch items := v.(type) {
	case string:
		raw = []string{items}
	case []string:
		raw = items
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Plain converts ordered objects (recursively, including inside slices) into
// map[string]any so values can be handed to code that expects plain maps.
func Plain(v any) any {
	switch value := v.(type) {
	case *Object:
		if value == nil {
			return nil
		}
		out := make(map[string]any, value.Len())
		for pair := value.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = Plain(pair.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[key] = Plain(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for idx, item := range value {
			out[idx] = Plain(item)
		}
		return out
	default:
		return v
	}
}
