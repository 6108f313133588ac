package render

import (
	"encoding/json"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/columns"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// Kind tags a render node variant.
type Kind string

const (
	KindNull        Kind = "null"
	KindTerminal    Kind = "terminal"
	KindInput       Kind = "input"
	KindArray       Kind = "array"
	KindObject      Kind = "object"
	KindSpecial     Kind = "special"
	KindTab         Kind = "tab"
	KindTabs        Kind = "tabs"
	KindInputSchema Kind = "input_schema"
	KindError       Kind = "error"
)

// Error codes carried by *Error nodes.
const (
	CodeDirectiveSyntax  = "directive_syntax"
	CodeDepthExceeded    = "depth_exceeded"
	CodeTableInvalidData = "table_invalid_data"
	CodeTableNoColumns   = "table_no_columns"
)

// Node is a resolved render instruction. The set of implementations is closed;
// switch on the concrete pointer types.
type Node interface {
	Kind() Kind
	// Location returns the data path the node was resolved for.
	Location() Path
	// Nodes returns the direct descendants in render order.
	Nodes() []Node
	node()
}

// Base holds the fields shared by every variant. Children are the nodes handed
// down by an enclosing compound directive.
type Base struct {
	Path     Path         `json:"path"`
	Schema   *schema.Node `json:"schema,omitempty"`
	UX       ux.Config    `json:"ux"`
	Children []Node       `json:"children,omitempty"`
}

func (b Base) Location() Path { return b.Path }

func (b Base) Nodes() []Node { return b.Children }

// Null renders nothing.
type Null struct {
	Base
}

// Terminal is a leaf value. Value holds the formatted string when Format is
// set, otherwise the raw data.
type Terminal struct {
	Base
	Value   any            `json:"value"`
	Format  string         `json:"format,omitempty"`
	Display ux.DisplayMode `json:"display"`
}

// Input is an editable control. Value may be nil; inputs manage their own
// value out of band.
type Input struct {
	Base
	InputType string `json:"inputType"`
	Value     any    `json:"value,omitempty"`
}

// ArrayContainer holds one resolution per array element.
type ArrayContainer struct {
	Base
	Items []Node `json:"items"`
}

// Field is one resolved property of an object container.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Node  Node   `json:"node"`
}

// ObjectContainer holds one resolution per property, in schema order followed
// by additional properties in data order.
type ObjectContainer struct {
	Base
	Fields []Field `json:"fields"`
}

// Special names a widget-level renderer. Table is set for the table renderer.
type Special struct {
	Base
	Renderer string     `json:"renderer"`
	Data     any        `json:"data,omitempty"`
	Table    *TablePlan `json:"table,omitempty"`
}

// TabRole marks its children as the content of one tab.
type TabRole struct {
	Base
}

// TabsContainer groups tab roles.
type TabsContainer struct {
	Base
}

// InputSchemaComposer pairs its children with an editable sibling described by
// InputSchema.
type InputSchemaComposer struct {
	Base
	InputSchema *ux.Object `json:"inputSchema,omitempty"`
}

// Error is a localized failure. Sibling and ancestor resolution is unaffected.
type Error struct {
	Base
	Code     string `json:"code"`
	Message  string `json:"message"`
	Renderer string `json:"renderer,omitempty"`
}

// TablePlan is the column plan and resolved cells of a table renderer. Rows may
// be empty while Columns is not.
type TablePlan struct {
	Columns []columns.Column      `json:"columns"`
	Headers []columns.HeaderGroup `json:"headers"`
	Rows    []Row                 `json:"rows"`
}

// Row is one table row.
type Row struct {
	Index int    `json:"index"`
	Path  Path   `json:"path"`
	Cells []Cell `json:"cells"`
}

// Cell is the resolution of one column for one row.
type Cell struct {
	Column string `json:"column"`
	Node   Node   `json:"node"`
}

func (*Null) Kind() Kind                { return KindNull }
func (*Terminal) Kind() Kind            { return KindTerminal }
func (*Input) Kind() Kind               { return KindInput }
func (*ArrayContainer) Kind() Kind      { return KindArray }
func (*ObjectContainer) Kind() Kind     { return KindObject }
func (*Special) Kind() Kind             { return KindSpecial }
func (*TabRole) Kind() Kind             { return KindTab }
func (*TabsContainer) Kind() Kind       { return KindTabs }
func (*InputSchemaComposer) Kind() Kind { return KindInputSchema }
func (*Error) Kind() Kind               { return KindError }

func (*Null) node()                {}
func (*Terminal) node()            {}
func (*Input) node()               {}
func (*ArrayContainer) node()      {}
func (*ObjectContainer) node()     {}
func (*Special) node()             {}
func (*TabRole) node()             {}
func (*TabsContainer) node()       {}
func (*InputSchemaComposer) node() {}
func (*Error) node()               {}

// Nodes returns outer-directive children followed by the element resolutions.
func (n *ArrayContainer) Nodes() []Node {
	return append(append([]Node(nil), n.Children...), n.Items...)
}

// Nodes returns outer-directive children followed by the field resolutions.
func (n *ObjectContainer) Nodes() []Node {
	out := append([]Node(nil), n.Children...)
	for _, field := range n.Fields {
		out = append(out, field.Node)
	}
	return out
}

// Nodes returns outer-directive children followed by every table cell, row by
// row.
func (n *Special) Nodes() []Node {
	out := append([]Node(nil), n.Children...)
	if n.Table == nil {
		return out
	}
	for _, row := range n.Table.Rows {
		for _, cell := range row.Cells {
			out = append(out, cell.Node)
		}
	}
	return out
}

func (n *Null) MarshalJSON() ([]byte, error) {
	type alias Null
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindNull, alias(*n)})
}

func (n *Terminal) MarshalJSON() ([]byte, error) {
	type alias Terminal
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindTerminal, alias(*n)})
}

func (n *Input) MarshalJSON() ([]byte, error) {
	type alias Input
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindInput, alias(*n)})
}

func (n *ArrayContainer) MarshalJSON() ([]byte, error) {
	type alias ArrayContainer
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindArray, alias(*n)})
}

func (n *ObjectContainer) MarshalJSON() ([]byte, error) {
	type alias ObjectContainer
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindObject, alias(*n)})
}

func (n *Special) MarshalJSON() ([]byte, error) {
	type alias Special
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindSpecial, alias(*n)})
}

func (n *TabRole) MarshalJSON() ([]byte, error) {
	type alias TabRole
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindTab, alias(*n)})
}

func (n *TabsContainer) MarshalJSON() ([]byte, error) {
	type alias TabsContainer
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindTabs, alias(*n)})
}

func (n *InputSchemaComposer) MarshalJSON() ([]byte, error) {
	type alias InputSchemaComposer
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindInputSchema, alias(*n)})
}

func (n *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		alias
	}{KindError, alias(*n)})
}
