// Package interact collects values for the editable parts of a render tree on
// a terminal. Input nodes prompt according to their input_type; input_schema
// composers prompt once per property of their input schema.
package interact

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("interact: aborted")
	// ErrNoDriver is returned when a Collector has no prompt driver.
	ErrNoDriver = errors.New("interact: prompt driver is nil")
)

// Option configures a Collector.
type Option func(*Collector)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(c *Collector) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithParser sets the parser used for input_schema payloads.
func WithParser(parser *schema.Parser) Option {
	return func(c *Collector) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// Collector walks a render tree and prompts for every editable node.
type Collector struct {
	driver PromptDriver
	parser *schema.Parser
}

// New constructs a Collector using the survey driver by default.
func New(options ...Option) *Collector {
	c := &Collector{
		driver: NewSurveyDriver(),
		parser: schema.NewParser(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Collect prompts for each Input and InputSchemaComposer in render order.
// Values are keyed by path string (for example `items[0].caption`), in the
// order they were asked.
func (c *Collector) Collect(ctx context.Context, root render.Node) (*ux.Object, error) {
	if c.driver == nil {
		return nil, ErrNoDriver
	}
	values := ux.NewObject()
	var walkErr error
	render.Walk(root, func(n render.Node) bool {
		if walkErr != nil {
			return false
		}
		switch node := n.(type) {
		case *render.Input:
			walkErr = c.promptInput(ctx, node, values)
		case *render.InputSchemaComposer:
			walkErr = c.promptComposer(ctx, node, values)
		}
		return walkErr == nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return values, nil
}

func (c *Collector) promptInput(ctx context.Context, node *render.Input, values *ux.Object) error {
	field := promptField{
		path:      node.Path.String(),
		label:     labelFor(node.UX, node.Path),
		inputType: node.InputType,
		schema:    node.Schema,
		current:   node.Value,
	}
	value, err := c.ask(ctx, field)
	if err != nil {
		return err
	}
	values.Set(field.path, value)
	return nil
}

func (c *Collector) promptComposer(ctx context.Context, node *render.InputSchemaComposer, values *ux.Object) error {
	if node.InputSchema == nil {
		return nil
	}
	inputSchema, err := c.parser.Parse(node.InputSchema)
	if err != nil {
		return fmt.Errorf("interact: input_schema at %s: %w", node.Path.String(), err)
	}
	if err := c.driver.Info(ctx, labelFor(node.UX, node.Path)); err != nil {
		return err
	}

	if !inputSchema.HasProperties() {
		field := promptField{
			path:      node.Path.String(),
			label:     labelFor(inputSchema.UX, node.Path),
			inputType: inputSchema.UX.InputType,
			schema:    inputSchema,
			current:   inputSchema.Default,
		}
		value, err := c.ask(ctx, field)
		if err != nil {
			return err
		}
		values.Set(field.path, value)
		return nil
	}

	for pair := inputSchema.Props().Oldest(); pair != nil; pair = pair.Next() {
		key, prop := pair.Key, pair.Value
		if prop.UX.Mode().Hidden() {
			continue
		}
		path := node.Path.Key(key)
		field := promptField{
			path:      path.String(),
			label:     prop.UX.Label(firstNonEmpty(prop.Title, key)),
			inputType: prop.UX.InputType,
			schema:    prop,
			current:   prop.Default,
			required:  inputSchema.IsRequired(key),
		}
		value, err := c.ask(ctx, field)
		if err != nil {
			return err
		}
		values.Set(field.path, value)
	}
	return nil
}

type promptField struct {
	path      string
	label     string
	inputType string
	schema    *schema.Node
	current   any
	required  bool
}

func (f promptField) help() string {
	if f.schema == nil {
		return ""
	}
	return f.schema.Description
}

func (f promptField) schemaType() schema.Type {
	if f.schema == nil {
		return schema.TypeUnknown
	}
	return f.schema.Type
}

func (f promptField) enum() []any {
	if f.schema == nil {
		return nil
	}
	if len(f.schema.Enum) > 0 {
		return f.schema.Enum
	}
	if f.schema.Items != nil {
		return f.schema.Items.Enum
	}
	return nil
}

func (c *Collector) ask(ctx context.Context, f promptField) (any, error) {
	kind := strings.ToLower(strings.TrimSpace(f.inputType))
	if kind == "" {
		kind = defaultInputType(f)
	}

	switch kind {
	case "checkbox", "toggle", "boolean", "confirm":
		return c.driver.Confirm(ctx, ConfirmConfig{
			Message: f.label,
			Help:    f.help(),
			Default: truthy(f.current),
		})
	case "select", "radio":
		options := stringify(f.enum())
		if len(options) == 0 {
			break
		}
		idx, err := c.driver.Select(ctx, SelectConfig{
			Message:      f.label,
			Options:      options,
			DefaultIndex: indexOf(options, stringOf(f.current)),
			Help:         f.help(),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, fmt.Errorf("interact: %s: selection out of range", f.path)
		}
		return f.enum()[idx], nil
	case "multiselect", "tags", "checkboxes":
		options := stringify(f.enum())
		if len(options) == 0 {
			break
		}
		indices, err := c.driver.MultiSelect(ctx, SelectConfig{
			Message:  f.label,
			Options:  options,
			Defaults: indicesOf(options, stringify(asSlice(f.current))),
			Help:     f.help(),
		})
		if err != nil {
			return nil, err
		}
		enum := f.enum()
		out := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(enum) {
				out = append(out, enum[idx])
			}
		}
		return out, nil
	case "textarea", "multiline":
		return c.driver.TextArea(ctx, TextAreaConfig{
			Message: f.label,
			Default: stringOf(f.current),
			Help:    f.help(),
		})
	case "password", "secret":
		return c.driver.Password(ctx, InputConfig{
			Message:   f.label,
			Help:      f.help(),
			Validator: requiredValidator(f.required),
		})
	case "number", "integer", "range", "slider":
		integer := kind == "integer" || f.schemaType() == schema.TypeInteger
		raw, err := c.driver.Input(ctx, InputConfig{
			Message:   f.label,
			Default:   stringOf(f.current),
			Help:      f.help(),
			Validator: numberValidator(integer, f.required),
		})
		if err != nil {
			return nil, err
		}
		return parseNumber(raw, integer)
	}

	return c.driver.Input(ctx, InputConfig{
		Message:   f.label,
		Default:   stringOf(f.current),
		Help:      f.help(),
		Validator: requiredValidator(f.required),
	})
}

func defaultInputType(f promptField) string {
	switch f.schemaType() {
	case schema.TypeBoolean:
		return "checkbox"
	case schema.TypeInteger:
		return "integer"
	case schema.TypeNumber:
		return "number"
	case schema.TypeArray:
		return "multiselect"
	}
	if len(f.enum()) > 0 {
		return "select"
	}
	if f.schema != nil && f.schema.Format == "password" {
		return "password"
	}
	return "text"
}

func labelFor(cfg ux.Config, path render.Path) string {
	fallback := path.String()
	if len(path) > 0 && !path[len(path)-1].IsIndex {
		fallback = path[len(path)-1].Key
	}
	if fallback == "" {
		fallback = "value"
	}
	return cfg.Label(fallback)
}

func requiredValidator(required bool) func(string) error {
	if !required {
		return nil
	}
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("value is required")
		}
		return nil
	}
}

func numberValidator(integer, required bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if required {
				return errors.New("value is required")
			}
			return nil
		}
		_, err := parseNumber(s, integer)
		return err
	}
}

func parseNumber(raw string, integer bool) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if integer {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return f, nil
}

func stringify(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, stringOf(v))
	}
	return out
}

func stringOf(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

func asSlice(v any) []any {
	out, _ := v.([]any)
	return out
}

func truthy(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		b, _ := strconv.ParseBool(value)
		return b
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
