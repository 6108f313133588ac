package schema

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/testsupport"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

func TestParseJSON_ResolvesRefsAndAnnotations(t *testing.T) {
	raw := testsupport.MustReadFixture(t, filepath.Join("testdata", "orders.json"))

	root, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if diff := cmp.Diff([]string{"orders", "note"}, root.PropertyKeys()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	if !root.IsRequired("orders") || root.IsRequired("note") {
		t.Fatalf("required flags mismatch: %v", root.Required)
	}

	orders, _ := root.Property("orders")
	if !orders.IsArray() {
		t.Fatalf("orders should be an array, got %q", orders.Type)
	}
	if orders.UX.RenderAs != "table" || orders.UX.DisplayLabel != "Orders" {
		t.Fatalf("orders UX mismatch: %+v", orders.UX)
	}

	item := orders.ItemSchema()
	if diff := cmp.Diff([]string{"sku", "qty", "customer"}, item.PropertyKeys()); diff != "" {
		t.Fatalf("item property order mismatch (-want +got):\n%s", diff)
	}
	sku, _ := item.Property("sku")
	if sku.UX.Order() != 1 || sku.UX.RenderAs != "column" {
		t.Fatalf("sku UX mismatch: %+v", sku.UX)
	}
	qty, _ := item.Property("qty")
	if qty.Type != TypeInteger || qty.UX.RenderAs != "column" {
		t.Fatalf("qty mismatch: type=%q ux=%+v", qty.Type, qty.UX)
	}

	customer, _ := item.Property("customer")
	if customer.UX.DisplayLabel != "Buyer" {
		t.Fatalf("sibling annotation should override ref target, got %q", customer.UX.DisplayLabel)
	}
	if got := customer.PropertyKeys(); len(got) != 1 || got[0] != "name" {
		t.Fatalf("customer properties mismatch: %v", got)
	}

	note, _ := root.Property("note")
	if note.Type != TypeString {
		t.Fatalf("type array should pick first non-null entry, got %q", note.Type)
	}
	if note.UX.Mode() != ux.DisplayHidden {
		t.Fatalf("note should be hidden, got %q", note.UX.Mode())
	}
}

func TestParseYAML_KeepsOrderAndInfersTypes(t *testing.T) {
	raw := testsupport.MustReadFixture(t, filepath.Join("testdata", "orders.yaml"))

	root, err := ParseYAML(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "beta"}, root.PropertyKeys()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}

	zeta, _ := root.Property("zeta")
	if zeta.Default != 3.0 {
		t.Fatalf("yaml ints should decode as float64, got %#v", zeta.Default)
	}
	alpha, _ := root.Property("alpha")
	if alpha.UX.Order() != 2 {
		t.Fatalf("alpha order mismatch: %v", alpha.UX.Order())
	}
	beta, _ := root.Property("beta")
	if !beta.IsArray() {
		t.Fatalf("items without type should infer array, got %q", beta.Type)
	}
	if beta.ItemSchema().Type != TypeString {
		t.Fatalf("beta item type mismatch: %q", beta.ItemSchema().Type)
	}
}

func TestParseDocument_DetectsFormat(t *testing.T) {
	doc := MustNewDocument(SourceInline("inline"), []byte(`{"type":"object","properties":{"a":{"type":"string"}}}`))
	root, err := NewParser().ParseDocument(doc)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	if got := root.PropertyKeys(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestParse_CircularRef(t *testing.T) {
	raw := []byte(`{
		"type": "object",
		"properties": {"node": {"$ref": "#/definitions/node"}},
		"definitions": {
			"node": {"type": "object", "properties": {"child": {"$ref": "#/definitions/node"}}}
		}
	}`)
	_, err := ParseJSON(raw)
	if !errors.Is(err, ErrCircularRef) {
		t.Fatalf("expected ErrCircularRef, got %v", err)
	}
}

func TestParse_RefErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "missing target", raw: `{"properties":{"a":{"$ref":"#/definitions/none"}}}`, want: "not found"},
		{name: "remote ref", raw: `{"properties":{"a":{"$ref":"other.json#/a"}}}`, want: "only local"},
		{name: "scalar target", raw: `{"properties":{"a":{"$ref":"#/x"}},"x":1}`, want: "does not point at an object"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.raw))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParse_RefChainDepth(t *testing.T) {
	raw := []byte(`{
		"properties": {"a": {"$ref": "#/definitions/one"}},
		"definitions": {
			"one": {"$ref": "#/definitions/two", "title": "One"},
			"two": {"type": "string", "title": "Two", "format": "email"}
		}
	}`)

	root, err := ParseJSON(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a, _ := root.Property("a")
	if a.Title != "One" || a.Format != "email" || a.Type != TypeString {
		t.Fatalf("ref chain merge mismatch: %+v", a)
	}

	_, err = NewParser(WithMaxRefDepth(1)).ParseValue(mustDecode(t, raw))
	if err == nil || !strings.Contains(err.Error(), "depth exceeds 1") {
		t.Fatalf("expected depth error, got %v", err)
	}
}

func TestParse_CustomNamespace(t *testing.T) {
	raw := []byte(`{"type":"string","x-ui":{"render_as":"media"},"_ux":{"render_as":"table"}}`)
	node, err := NewParser(WithExtractor(ux.NewExtractor(ux.WithNamespace("x-ui")))).ParseValue(mustDecode(t, raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if node.UX.RenderAs != "media" {
		t.Fatalf("custom namespace ignored, got %q", node.UX.RenderAs)
	}
}

func TestParse_RejectsNonObjectRoot(t *testing.T) {
	if _, err := ParseJSON([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for array root")
	}
	if _, err := ParseJSON([]byte(`{`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestNode_MarshalJSONKeepsOrder(t *testing.T) {
	node, err := ParseJSON([]byte(`{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"string"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	payload, err := node.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"string"}}}`
	if string(payload) != want {
		t.Fatalf("marshal mismatch:\nwant %s\ngot  %s", want, payload)
	}
}

func mustDecode(t *testing.T, raw []byte) any {
	t.Helper()
	value, err := DecodeJSON(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return value
}
