package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// DecodeJSON decodes a JSON payload keeping object key order. Objects become
// *ux.Object, arrays []any, numbers float64.
func DecodeJSON(raw []byte) (any, error) {
	if !json.Valid(raw) {
		return nil, errors.New("schema: invalid JSON payload")
	}
	value, dataType, _, err := jsonparser.Get(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: decode JSON: %w", err)
	}
	return decodeJSONValue(value, dataType)
}

func decodeJSONValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		return decodeJSONObject(value)
	case jsonparser.Array:
		return decodeJSONArray(value)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("schema: decode string: %w", err)
		}
		return s, nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(value)
		if err != nil {
			return nil, fmt.Errorf("schema: decode number: %w", err)
		}
		return f, nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, fmt.Errorf("schema: decode boolean: %w", err)
		}
		return b, nil
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("schema: unsupported JSON value %q", string(value))
	}
}

func decodeJSONObject(raw []byte) (*ux.Object, error) {
	out := orderedmap.New[string, any]()
	err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		decoded, err := decodeJSONValue(value, dataType)
		if err != nil {
			return err
		}
		out.Set(string(key), decoded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeJSONArray(raw []byte) ([]any, error) {
	out := make([]any, 0)
	var inner error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if inner != nil {
			return
		}
		if err != nil {
			inner = err
			return
		}
		decoded, err := decodeJSONValue(value, dataType)
		if err != nil {
			inner = err
			return
		}
		out = append(out, decoded)
	})
	if inner != nil {
		return nil, inner
	}
	if err != nil {
		return nil, fmt.Errorf("schema: decode array: %w", err)
	}
	return out, nil
}

// DecodeYAML decodes a YAML payload keeping mapping order. Integer and float
// scalars are normalised to float64 to match DecodeJSON.
func DecodeYAML(raw []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("schema: decode YAML: %w", err)
	}
	return decodeYAMLNode(&root)
}

func decodeYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeYAMLNode(node.Content[0])
	case yaml.MappingNode:
		out := orderedmap.New[string, any]()
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			keyNode, valueNode := node.Content[idx], node.Content[idx+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("schema: YAML mapping key at line %d is not a scalar", keyNode.Line)
			}
			value, err := decodeYAMLNode(valueNode)
			if err != nil {
				return nil, err
			}
			out.Set(keyNode.Value, value)
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := decodeYAMLNode(child)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, nil
		}
		return decodeYAMLNode(node.Alias)
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!int", "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return nil, fmt.Errorf("schema: YAML number at line %d: %w", node.Line, err)
			}
			return f, nil
		case "!!null":
			return nil, nil
		default:
			var v any
			if err := node.Decode(&v); err != nil {
				return nil, fmt.Errorf("schema: YAML scalar at line %d: %w", node.Line, err)
			}
			return v, nil
		}
	default:
		return nil, fmt.Errorf("schema: unsupported YAML node kind %d", node.Kind)
	}
}

// DecodeDocument decodes a Document according to its detected format.
func DecodeDocument(doc Document) (any, error) {
	if doc.Format() == FormatJSON {
		return DecodeJSON(doc.Raw())
	}
	return DecodeYAML(doc.Raw())
}
