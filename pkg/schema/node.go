package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// Type is the simplified enum of schema kinds the resolver routes on.
type Type string

const (
	TypeUnknown Type = ""
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeNull    Type = "null"
)

// Properties is the insertion-ordered property map of an object node.
type Properties = orderedmap.OrderedMap[string, *Node]

// Node is one parsed schema node. Properties is only populated for objects and
// Items only for arrays; UX holds the merged annotations.
type Node struct {
	Type                 Type
	Title                string
	Description          string
	Format               string
	Default              any
	Enum                 []any
	Required             []string
	Properties           *Properties
	Items                *Node
	AdditionalProperties *Node
	UX                   ux.Config
	Raw                  *ux.Object
}

// String returns a node of type string. It is used for synthetic columns.
func String() *Node {
	return &Node{Type: TypeString}
}

// EmptyObject returns an object node with no properties.
func EmptyObject() *Node {
	return &Node{Type: TypeObject, Properties: orderedmap.New[string, *Node]()}
}

// IsObject reports whether the node routes as an object container.
func (n *Node) IsObject() bool {
	return n != nil && n.Type == TypeObject
}

// IsArray reports whether the node routes as an array container.
func (n *Node) IsArray() bool {
	return n != nil && n.Type == TypeArray
}

// Props returns the property map, never nil.
func (n *Node) Props() *Properties {
	if n == nil || n.Properties == nil {
		return orderedmap.New[string, *Node]()
	}
	return n.Properties
}

// HasProperties reports whether at least one property is declared.
func (n *Node) HasProperties() bool {
	return n != nil && n.Properties != nil && n.Properties.Len() > 0
}

// Property returns the named property schema.
func (n *Node) Property(key string) (*Node, bool) {
	if n == nil || n.Properties == nil {
		return nil, false
	}
	return n.Properties.Get(key)
}

// PropertyKeys lists property names in declaration order.
func (n *Node) PropertyKeys() []string {
	if n == nil || n.Properties == nil {
		return nil
	}
	keys := make([]string, 0, n.Properties.Len())
	for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// ItemSchema returns the array item schema, defaulting to an empty object
// schema when items is absent.
func (n *Node) ItemSchema() *Node {
	if n == nil || n.Items == nil {
		return EmptyObject()
	}
	return n.Items
}

// IsRequired reports whether key is listed in required.
func (n *Node) IsRequired(key string) bool {
	if n == nil {
		return false
	}
	for _, name := range n.Required {
		if name == key {
			return true
		}
	}
	return false
}

// WithUX returns a shallow copy of the node carrying cfg.
func (n *Node) WithUX(cfg ux.Config) *Node {
	if n == nil {
		return &Node{UX: cfg}
	}
	clone := *n
	clone.UX = cfg
	return &clone
}

// MarshalJSON emits the original raw payload in document order.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil || n.Raw == nil {
		if n != nil && n.Type != TypeUnknown {
			return []byte(`{"type":"` + string(n.Type) + `"}`), nil
		}
		return []byte("{}"), nil
	}
	return n.Raw.MarshalJSON()
}
