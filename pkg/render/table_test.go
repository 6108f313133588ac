package render_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/columns"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
)

const ordersSchema = `{
	"type": "array",
	"_ux": {"render_as": "table"},
	"items": {
		"type": "object",
		"_ux": {
			"computed": {
				"label": {"render_as": "column", "display_format": "{{ sku }} x{{ qty | int }}", "display_order": 4}
			}
		},
		"properties": {
			"sku": {"type": "string", "_ux": {"render_as": "column", "display_order": 1, "display_label": "SKU"}},
			"qty": {"type": "integer", "_ux": {"render_as": "column", "display_order": 2, "display_format": "#{{ value | int }}"}},
			"customer": {
				"type": "object",
				"_ux": {"display_label": "Customer"},
				"properties": {
					"name": {"type": "string", "_ux": {"render_as": "column", "display_order": 3}}
				}
			},
			"internal": {"type": "string", "_ux": {"render_as": "column", "display": "hidden"}}
		}
	}
}`

func TestTable_EmptyRowsKeepColumnPlan(t *testing.T) {
	node := mustSchema(t, `{
		"type": "array",
		"_ux": {"render_as": "table"},
		"items": {"type": "object", "properties": {"name": {"type": "string", "_ux": {"render_as": "column", "display_order": 1}}}}
	}`)

	got := render.Resolve([]any{}, node, nil)

	special, ok := got.(*render.Special)
	if !ok || special.Table == nil {
		t.Fatalf("expected table special, got %#v", got)
	}
	if len(special.Table.Rows) != 0 {
		t.Fatalf("expected zero rows, got %d", len(special.Table.Rows))
	}
	if len(special.Table.Columns) != 1 || special.Table.Columns[0].Key() != "name" {
		t.Fatalf("column plan mismatch: %+v", special.Table.Columns)
	}
	if diff := cmp.Diff([]columns.HeaderGroup{{ColSpan: 1}}, special.Table.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_RowsAndCells(t *testing.T) {
	node := mustSchema(t, ordersSchema)
	data := mustData(t, `[
		{"sku": "A1", "qty": 2, "customer": {"name": "Ada"}, "internal": "x"},
		{"sku": "B2", "qty": 5}
	]`)

	got := render.Resolve(data, node, render.Path{}.Key("orders"))

	table := got.(*render.Special).Table
	var keys []string
	for _, column := range table.Columns {
		keys = append(keys, column.Key())
	}
	if diff := cmp.Diff([]string{"sku", "qty", "customer.name", "label"}, keys); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	wantHeaders := []columns.HeaderGroup{
		{ColSpan: 2},
		{Label: "Customer", ParentKey: "customer", ColSpan: 1},
		{ColSpan: 1},
	}
	if diff := cmp.Diff(wantHeaders, table.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}

	first := table.Rows[0]
	if first.Path.String() != "orders[0]" {
		t.Fatalf("row path mismatch: %q", first.Path)
	}
	sku := first.Cells[0].Node.(*render.Terminal)
	if sku.Value != "A1" || sku.UX.RenderAs != "" || sku.UX.DisplayLabel != "" {
		t.Fatalf("cell should resolve with stripped ux: %+v", sku)
	}
	if sku.Location().String() != "orders[0].sku" {
		t.Fatalf("cell path mismatch: %q", sku.Location())
	}
	qty := first.Cells[1].Node.(*render.Terminal)
	if qty.Value != "#2" {
		t.Fatalf("cell display_format should apply: %#v", qty.Value)
	}
	name := first.Cells[2].Node.(*render.Terminal)
	if name.Value != "Ada" || name.Location().String() != "orders[0].customer.name" {
		t.Fatalf("nested cell mismatch: %+v", name)
	}
	label := first.Cells[3].Node.(*render.Terminal)
	if label.Value != "A1 x2" {
		t.Fatalf("computed cell mismatch: %#v", label.Value)
	}

	second := table.Rows[1]
	if second.Cells[2].Node.Kind() != render.KindNull {
		t.Fatalf("missing nested value should be null, got %s", second.Cells[2].Node.Kind())
	}
}

func TestTable_SingleObjectRow(t *testing.T) {
	node := mustSchema(t, `{
		"type": "object",
		"_ux": {"render_as": "table"},
		"properties": {"name": {"type": "string", "_ux": {"render_as": "column"}}}
	}`)

	got := render.Resolve(map[string]any{"name": "solo"}, node, render.Path{}.Key("record"))

	table := got.(*render.Special).Table
	if len(table.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(table.Rows))
	}
	if got := table.Rows[0].Cells[0].Node.Location().String(); got != "record.name" {
		t.Fatalf("cell path mismatch: %q", got)
	}
}

func TestTable_Errors(t *testing.T) {
	cases := []struct {
		name   string
		schema string
		data   any
		code   string
	}{
		{
			name:   "scalar data",
			schema: ordersSchema,
			data:   "not rows",
			code:   render.CodeTableInvalidData,
		},
		{
			name:   "no columns",
			schema: `{"type":"array","_ux":{"render_as":"table"},"items":{"type":"object","properties":{"a":{"type":"string"}}}}`,
			data:   []any{map[string]any{"a": "x"}},
			code:   render.CodeTableNoColumns,
		},
		{
			name:   "no items schema",
			schema: `{"type":"array","_ux":{"render_as":"table"}}`,
			data:   []any{},
			code:   render.CodeTableNoColumns,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := render.Resolve(tc.data, mustSchema(t, tc.schema), nil)
			failure, ok := got.(*render.Error)
			if !ok {
				t.Fatalf("expected error node, got %T", got)
			}
			if failure.Code != tc.code || failure.Renderer != "table" || failure.Message == "" {
				t.Fatalf("error mismatch: %+v", failure)
			}
		})
	}
}

func TestTable_RowWorkersMatchSequential(t *testing.T) {
	node := mustSchema(t, ordersSchema)
	rows := make([]any, 0, 40)
	for idx := 0; idx < 40; idx++ {
		rows = append(rows, map[string]any{"sku": "S", "qty": float64(idx), "customer": map[string]any{"name": "n"}})
	}

	sequential, err := json.Marshal(render.New().Resolve(rows, node, nil))
	if err != nil {
		t.Fatalf("marshal sequential: %v", err)
	}
	concurrent, err := json.Marshal(render.New(render.WithRowWorkers(8)).Resolve(rows, node, nil))
	if err != nil {
		t.Fatalf("marshal concurrent: %v", err)
	}
	if string(sequential) != string(concurrent) {
		t.Fatalf("concurrent rows should match sequential output")
	}
}
