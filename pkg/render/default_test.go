package render

import (
	"testing"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/template"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

func TestResolve_DefaultResolverCachesTemplates(t *testing.T) {
	renderer, ok := defaultResolver.templates.(*template.Renderer)
	if !ok {
		t.Fatalf("expected *template.Renderer, got %T", defaultResolver.templates)
	}
	engine, ok := renderer.Engine().(*template.Jinja)
	if !ok {
		t.Fatalf("expected *template.Jinja, got %T", renderer.Engine())
	}

	node := &schema.Node{Type: schema.TypeString, UX: ux.Config{DisplayFormat: "{{ value }} (cached)"}}
	before := engine.Cached()
	for idx := 0; idx < 3; idx++ {
		got, ok := Resolve("x", node, nil).(*Terminal)
		if !ok || got.Value != "x (cached)" {
			t.Fatalf("unexpected node: %#v", got)
		}
	}
	if after := engine.Cached(); after != before+1 {
		t.Fatalf("expected one new cached template, got %d -> %d", before, after)
	}
}
