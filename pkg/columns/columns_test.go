package columns

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
)

func mustItem(t *testing.T, raw string) *schema.Node {
	t.Helper()
	node, err := schema.ParseJSON([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return node
}

func keys(columns []Column) []string {
	out := make([]string, len(columns))
	for idx, column := range columns {
		out[idx] = column.Key()
	}
	return out
}

func TestDiscover_SortIsStable(t *testing.T) {
	item := mustItem(t, `{
		"type": "object",
		"properties": {
			"a": {"type": "string", "_ux": {"render_as": "column", "display_order": 2}},
			"b": {"type": "string", "_ux": {"render_as": "column"}},
			"c": {"type": "string", "_ux": {"render_as": "column", "display_order": 1}},
			"d": {"type": "string", "_ux": {"render_as": "column", "display_order": 2}},
			"e": {"type": "string", "_ux": {"render_as": "column", "display_order": 1}}
		}
	}`)

	plan, err := Discover(item.Properties, nil, nil)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{"c", "e", "a", "d", "b"}, keys(plan.Columns)); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
	if plan.Columns[4].DisplayOrder != 999 {
		t.Fatalf("default display order should be 999, got %v", plan.Columns[4].DisplayOrder)
	}
}

func TestDiscover_NestedAndComputed(t *testing.T) {
	item := mustItem(t, `{
		"type": "object",
		"_ux": {
			"computed": {
				"summary": {"render_as": "column", "display_label": "Summary", "display_format": "{{ name }}", "display_order": 5},
				"secret": {"render_as": "column", "display": "hidden"},
				"plain": {"display_format": "{{ name }}"}
			}
		},
		"properties": {
			"name": {"type": "string", "_ux": {"render_as": "column", "display_order": 1}},
			"address": {
				"type": "object",
				"_ux": {"display_label": "Address"},
				"properties": {
					"city": {"type": "string", "_ux": {"render_as": "column", "display_order": 2}},
					"zip": {"type": "string", "_ux": {"render_as": "column", "display_order": 3, "display_label": "ZIP"}}
				}
			},
			"internal": {
				"type": "object",
				"_ux": {"display": "hidden"},
				"properties": {
					"id": {"type": "string", "_ux": {"render_as": "column"}}
				}
			},
			"notes": {"type": "string"}
		}
	}`)

	plan, err := ForNode(item)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "address.city", "address.zip", "summary"}, keys(plan.Columns)); diff != "" {
		t.Fatalf("column keys mismatch (-want +got):\n%s", diff)
	}

	zip := plan.Columns[2]
	if zip.Label != "ZIP" || zip.ParentKey != "address" || zip.ParentLabel != "Address" {
		t.Fatalf("nested column mismatch: %+v", zip)
	}
	summary := plan.Columns[3]
	if !summary.Computed || summary.DisplayFormat != "{{ name }}" || summary.Schema.Type != schema.TypeString {
		t.Fatalf("computed column mismatch: %+v", summary)
	}

	want := []HeaderGroup{
		{Label: "", ParentKey: "", ColSpan: 1},
		{Label: "Address", ParentKey: "address", ColSpan: 2},
		{Label: "", ParentKey: "", ColSpan: 1},
	}
	if diff := cmp.Diff(want, plan.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	if !plan.Nested() {
		t.Fatalf("plan with parent keys should report nested")
	}
}

func TestDiscover_HiddenExcluded(t *testing.T) {
	item := mustItem(t, `{
		"type": "object",
		"properties": {
			"shown": {"type": "string", "_ux": {"render_as": "column"}},
			"gone": {"type": "string", "_ux": {"render_as": "column", "display": "hidden"}},
			"flat": {"type": "string", "_ux": {"render_as": "column"}, "_ux.display": "hidden"}
		}
	}`)

	plan, err := Discover(item.Properties, nil, nil)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{"shown"}, keys(plan.Columns)); diff != "" {
		t.Fatalf("hidden columns leaked (-want +got):\n%s", diff)
	}
}

func TestDiscover_NoColumns(t *testing.T) {
	item := mustItem(t, `{"type":"object","properties":{"name":{"type":"string"}}}`)

	plan, err := Discover(item.Properties, nil, nil)
	if !errors.Is(err, ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
	if len(plan.Columns) != 0 || len(plan.Headers) != 0 {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestDiscover_ArrayWithoutItems(t *testing.T) {
	node := mustItem(t, `{"type":"array"}`)
	if _, err := ForNode(node); !errors.Is(err, ErrNoColumns) {
		t.Fatalf("array without items should discover nothing, got %v", err)
	}
}

func TestMergeHeaders_ColSpanInvariant(t *testing.T) {
	cases := [][]Column{
		nil,
		{{KeyPath: []string{"a"}}},
		{
			{KeyPath: []string{"a"}},
			{KeyPath: []string{"p", "x"}, ParentKey: "p"},
			{KeyPath: []string{"q", "y"}, ParentKey: "q"},
			{KeyPath: []string{"p", "z"}, ParentKey: "p"},
			{KeyPath: []string{"b"}},
			{KeyPath: []string{"c"}},
		},
	}
	for idx, columns := range cases {
		total := 0
		for _, group := range MergeHeaders(columns) {
			total += group.ColSpan
		}
		if total != len(columns) {
			t.Fatalf("case %d: colSpan sum %d != %d columns", idx, total, len(columns))
		}
	}
}

func TestMergeHeaders_SplitsNonConsecutiveParents(t *testing.T) {
	columns := []Column{
		{KeyPath: []string{"p", "x"}, ParentKey: "p", ParentLabel: "P"},
		{KeyPath: []string{"a"}},
		{KeyPath: []string{"p", "y"}, ParentKey: "p", ParentLabel: "P"},
	}
	want := []HeaderGroup{
		{Label: "P", ParentKey: "p", ColSpan: 1},
		{Label: "", ParentKey: "", ColSpan: 1},
		{Label: "P", ParentKey: "p", ColSpan: 1},
	}
	if diff := cmp.Diff(want, MergeHeaders(columns)); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
}
