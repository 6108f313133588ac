package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/testsupport"
)

func TestJinja_JoinArray(t *testing.T) {
	r := New()
	got := r.Render("{{ value | join(', ') }}", []any{"a", "b", "c"}, nil)
	if got != "a, b, c" {
		t.Fatalf("join mismatch: %q", got)
	}
}

func TestJinja_ObjectKeysAndState(t *testing.T) {
	r := New()
	item := testsupport.Object("name", "Ada", "role", "admin")
	state := map[string]any{"user": "grace"}

	got := r.Render("{{ name }} ({{ item.role }}) by {{ state.user }}", item, state)
	if got != "Ada (admin) by grace" {
		t.Fatalf("render mismatch: %q", got)
	}
}

func TestJinja_CachesCompiledTemplates(t *testing.T) {
	engine := NewJinja()
	r := New(WithEngine(engine))
	for idx := 0; idx < 3; idx++ {
		if got := r.Render("{{ value }}", "x", nil); got != "x" {
			t.Fatalf("render mismatch: %q", got)
		}
	}
	if len(engine.cache) != 1 {
		t.Fatalf("expected one cached template, got %d", len(engine.cache))
	}
}

func TestJinja_ErrorsAreInline(t *testing.T) {
	r := New()
	cases := []string{
		"{{ value | no_such_filter }}",
		"{% if %}",
		"{% include 'other.html' %}",
	}
	for _, source := range cases {
		got := r.Render(source, "x", nil)
		if !IsError(got) || !strings.HasSuffix(got, "]") {
			t.Fatalf("%q: expected inline error, got %q", source, got)
		}
	}
}

func TestDjango_Filters(t *testing.T) {
	r, err := NewForDialect(DialectDjango)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := r.Render(`{{ value|join:", " }}`, []any{"a", "b"}, nil); got != "a, b" {
		t.Fatalf("join mismatch: %q", got)
	}
	if got := r.Render(`{{ value|trim|lowerfirst }}`, "  Hello ", nil); got != "hello" {
		t.Fatalf("trim/lowerfirst mismatch: %q", got)
	}
	if got := r.Render(`{% if %}`, nil, nil); !IsError(got) {
		t.Fatalf("expected inline error, got %q", got)
	}
}

func TestDjango_FileTagsAreBanned(t *testing.T) {
	r, err := NewForDialect(DialectDjango)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []string{
		`{% include "/etc/hostname" %}`,
		`{% ssi "/etc/hostname" %}`,
		`{% ssi "/etc/hostname" parsed %}`,
		`{% extends "/etc/hostname" %}`,
		`{% import "/etc/hostname" value %}`,
	}
	for _, source := range cases {
		got := r.Render(source, "x", nil)
		if !IsError(got) {
			t.Fatalf("%q: expected inline error, got %q", source, got)
		}
	}
}

func TestNewForDialect_Unknown(t *testing.T) {
	if _, err := NewForDialect("mustache"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}

type panicEngine struct{}

func (panicEngine) Name() string { return "panic" }

func (panicEngine) Execute(string, map[string]any) (string, error) {
	panic("boom")
}

type failingEngine struct{}

func (failingEngine) Name() string { return "fail" }

func (failingEngine) Execute(string, map[string]any) (string, error) {
	return "", errors.New("bad input")
}

func TestRender_RecoversAndReportsInline(t *testing.T) {
	if got := New(WithEngine(panicEngine{})).Render("x", nil, nil); got != "[Template Error: boom]" {
		t.Fatalf("panic not recovered: %q", got)
	}
	if got := New(WithEngine(failingEngine{})).Render("x", nil, nil); got != "[Template Error: bad input]" {
		t.Fatalf("error not inlined: %q", got)
	}
}

type staticEngine string

func (staticEngine) Name() string { return "static" }

func (s staticEngine) Execute(string, map[string]any) (string, error) {
	return string(s), nil
}

func TestRender_Sanitizer(t *testing.T) {
	r := New(WithEngine(staticEngine("<script>alert(1)</script><b>ok</b>")), WithSanitizer(SanitizeHTML))
	got := r.Render("ignored", nil, nil)
	if got != "<b>ok</b>" {
		t.Fatalf("sanitize mismatch: %q", got)
	}
}

func TestContext(t *testing.T) {
	ctx := Context(testsupport.Object("a", 1.0), nil)
	if ctx["a"] != 1.0 {
		t.Fatalf("object keys should be promoted: %#v", ctx)
	}
	if _, ok := ctx["state"].(map[string]any); !ok {
		t.Fatalf("state should default to an empty map: %#v", ctx["state"])
	}
	scalar := Context("x", nil)
	if scalar["value"] != "x" || scalar["item"] != "x" {
		t.Fatalf("scalar context mismatch: %#v", scalar)
	}
}
