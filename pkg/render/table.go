package render

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/columns"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/directive"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
)

const (
	msgTableInvalidData = "table data must be an array of rows or a single object"
	msgTableNoColumns   = `no columns found: mark at least one property with render_as "column" and a visible display mode`
)

// table builds the column plan and per-row cells for the table renderer. An
// array is a list of rows; an object is a single row whose item schema is the
// node itself.
func (r *Resolver) table(c *call, data any, node *schema.Node, base Base, depth int) Node {
	item := node
	if node.IsArray() {
		item = node.ItemSchema()
	}

	var (
		rows   []any
		single bool
	)
	if list, ok := asList(data); ok {
		rows = list
	} else if _, ok := asFields(data); ok {
		rows = []any{data}
		single = true
	} else {
		return r.fail(base, CodeTableInvalidData, msgTableInvalidData, directive.AtomTable)
	}

	plan, err := columns.Discover(item.Properties, item.UX.Computed, nil)
	if err != nil {
		if errors.Is(err, columns.ErrNoColumns) {
			return r.fail(base, CodeTableNoColumns, msgTableNoColumns, directive.AtomTable)
		}
		return r.fail(base, CodeTableInvalidData, err.Error(), directive.AtomTable)
	}

	out := &TablePlan{
		Columns: plan.Columns,
		Headers: plan.Headers,
		Rows:    make([]Row, len(rows)),
	}
	buildRow := func(idx int) {
		rowPath := base.Path.Index(idx)
		if single {
			rowPath = base.Path
		}
		out.Rows[idx] = r.row(c, rows[idx], idx, rowPath, plan.Columns, depth)
	}

	if r.rowWorkers > 1 && len(rows) > 1 {
		var g errgroup.Group
		g.SetLimit(r.rowWorkers)
		for idx := range rows {
			idx := idx
			g.Go(func() error {
				buildRow(idx)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for idx := range rows {
			buildRow(idx)
		}
	}

	return &Special{Base: base, Renderer: directive.AtomTable, Data: data, Table: out}
}

func (r *Resolver) row(c *call, data any, idx int, rowPath Path, cols []columns.Column, depth int) Row {
	row := Row{Index: idx, Path: rowPath, Cells: make([]Cell, len(cols))}
	for colIdx, column := range cols {
		cellPath := rowPath
		for _, key := range column.KeyPath {
			cellPath = cellPath.Key(key)
		}

		var cell Node
		if column.Computed {
			cell = &Terminal{
				Base:    Base{Path: cellPath, Schema: column.Schema, UX: column.UX.ForCell()},
				Value:   r.templates.Render(column.DisplayFormat, data, c.state),
				Format:  column.DisplayFormat,
				Display: column.UX.Mode(),
			}
		} else {
			value := lookupPath(data, column.KeyPath)
			cell = r.resolve(c, value, column.Schema, column.UX.ForCell(), cellPath, nil, depth+1)
		}
		row.Cells[colIdx] = Cell{Column: column.Key(), Node: cell}
	}
	return row
}
