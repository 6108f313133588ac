package render

import (
	"reflect"
	"sort"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// asList returns the elements of a slice or array value. []byte is treated as
// a scalar.
func asList(data any) ([]any, bool) {
	switch list := data.(type) {
	case nil:
		return nil, false
	case []any:
		return list, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for idx := range out {
		out[idx] = rv.Index(idx).Interface()
	}
	return out, true
}

// fields is a read-only view over the object shapes data can arrive in.
type fields struct {
	ordered *ux.Object
	plain   map[string]any
}

func asFields(data any) (fields, bool) {
	switch obj := data.(type) {
	case *ux.Object:
		if obj == nil {
			return fields{}, false
		}
		return fields{ordered: obj}, true
	case map[string]any:
		if obj == nil {
			return fields{}, false
		}
		return fields{plain: obj}, true
	default:
		return fields{}, false
	}
}

func (f fields) get(key string) (any, bool) {
	if f.ordered != nil {
		return f.ordered.Get(key)
	}
	value, ok := f.plain[key]
	return value, ok
}

// keys lists keys in document order for ordered objects and sorted order for
// plain maps.
func (f fields) keys() []string {
	if f.ordered != nil {
		out := make([]string, 0, f.ordered.Len())
		for pair := f.ordered.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, pair.Key)
		}
		return out
	}
	out := make([]string, 0, len(f.plain))
	for key := range f.plain {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// lookupPath follows keys through nested objects. Missing keys yield nil.
func lookupPath(data any, keys []string) any {
	current := data
	for _, key := range keys {
		obj, ok := asFields(current)
		if !ok {
			return nil
		}
		current, _ = obj.get(key)
	}
	return current
}
