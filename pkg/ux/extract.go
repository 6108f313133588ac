package ux

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultNamespace is the reserved schema key that carries UX annotations.
const DefaultNamespace = "_ux"

// Option configures an Extractor.
type Option func(*Extractor)

// WithNamespace overrides the reserved annotation key. Flat keys use the same
// namespace followed by a dot.
func WithNamespace(namespace string) Option {
	return func(e *Extractor) {
		trimmed := strings.TrimSpace(namespace)
		if trimmed == "" {
			return
		}
		e.namespace = trimmed
	}
}

// Extractor merges nested and flat annotations. It holds no mutable state and
// is safe for concurrent use.
type Extractor struct {
	namespace string
}

// NewExtractor constructs an Extractor using DefaultNamespace unless
// overridden.
func NewExtractor(options ...Option) *Extractor {
	e := &Extractor{namespace: DefaultNamespace}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract merges the annotations of a raw schema node using DefaultNamespace.
func Extract(node *Object) Config {
	return defaultExtractor.Extract(node)
}

// ExtractTree returns the merged annotation tree using DefaultNamespace.
func ExtractTree(node *Object) *Object {
	return defaultExtractor.Tree(node)
}

// Namespace returns the reserved annotation key.
func (e *Extractor) Namespace() string {
	return e.namespace
}

// IsAnnotationKey reports whether key belongs to the annotation namespace in
// either notation.
func (e *Extractor) IsAnnotationKey(key string) bool {
	return key == e.namespace || strings.HasPrefix(key, e.namespace+".")
}

// Extract merges the annotations of a raw schema node into a Config.
func (e *Extractor) Extract(node *Object) Config {
	return Decode(e.Tree(node))
}

// Tree merges the annotations of node into a fresh ordered tree. The nested
// object is shallow-copied first; every flat key is then applied in document
// order, overriding only the path it names. The input node is never mutated.
func (e *Extractor) Tree(node *Object) *Object {
	out := orderedmap.New[string, any]()
	if node == nil {
		return out
	}

	if nested, ok := node.Get(e.namespace); ok {
		if obj, ok := AsObject(nested); ok {
			out = CloneObject(obj)
		}
	}

	prefix := e.namespace + "."
	for pair := node.Oldest(); pair != nil; pair = pair.Next() {
		if !strings.HasPrefix(pair.Key, prefix) {
			continue
		}
		segments := splitPath(strings.TrimPrefix(pair.Key, prefix))
		if len(segments) == 0 {
			continue
		}
		setPath(out, segments, pair.Value)
	}
	return out
}

func splitPath(raw string) []string {
	if raw == "" {
		return nil
	}
	segments := strings.Split(raw, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil
		}
	}
	return segments
}

// setPath writes value at segments, replacing intermediate objects with copies
// so shared subtrees of the source schema stay untouched.
func setPath(root *Object, segments []string, value any) {
	current := root
	for _, segment := range segments[:len(segments)-1] {
		existing, _ := current.Get(segment)
		child, ok := AsObject(existing)
		if ok {
			child = CloneObject(child)
		} else {
			child = orderedmap.New[string, any]()
		}
		current.Set(segment, child)
		current = child
	}
	current.Set(segments[len(segments)-1], value)
}
