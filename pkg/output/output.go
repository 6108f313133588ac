package output

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
)

// Options describe per-call presentation settings.
type Options struct {
	// Styled enables ANSI styling in text output.
	Styled bool
	// Indent pretty-prints structured output.
	Indent bool
}

// Writer converts a resolved render tree into bytes.
type Writer interface {
	Name() string
	ContentType() string
	Write(ctx context.Context, node render.Node, options Options) ([]byte, error)
}

// Registry stores writers by name.
type Registry struct {
	mu      sync.RWMutex
	writers map[string]Writer
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		writers: make(map[string]Writer),
	}
}

// Default returns a registry with the json and text writers registered.
func Default() *Registry {
	registry := NewRegistry()
	registry.MustRegister(NewJSON())
	registry.MustRegister(NewText())
	return registry
}

// Register adds a writer by its Name(). Duplicate names return an error.
func (r *Registry) Register(writer Writer) error {
	if writer == nil {
		return fmt.Errorf("output: writer is required")
	}
	name := writer.Name()
	if name == "" {
		return fmt.Errorf("output: writer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.writers[name]; exists {
		return fmt.Errorf("output: writer %q already registered", name)
	}
	r.writers[name] = writer
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(writer Writer) {
	if err := r.Register(writer); err != nil {
		panic(err)
	}
}

// Get retrieves a writer by name.
func (r *Registry) Get(name string) (Writer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	writer, ok := r.writers[name]
	if !ok {
		return nil, fmt.Errorf("output: writer %q not found", name)
	}
	return writer, nil
}

// List returns the sorted writer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
