package columns

import (
	"errors"
	"sort"
	"strings"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/directive"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// ErrNoColumns is returned when discovery yields an empty column list.
var ErrNoColumns = errors.New("columns: no columns found")

// Column describes one discovered table column.
type Column struct {
	KeyPath       []string     `json:"keyPath"`
	Label         string       `json:"label"`
	Schema        *schema.Node `json:"schema"`
	UX            ux.Config    `json:"ux"`
	DisplayOrder  float64      `json:"displayOrder"`
	ParentKey     string       `json:"parentKey,omitempty"`
	ParentLabel   string       `json:"parentLabel,omitempty"`
	Computed      bool         `json:"isComputed"`
	DisplayFormat string       `json:"displayFormat,omitempty"`
}

// Key returns the dotted key path, unique within one plan.
func (c Column) Key() string {
	return strings.Join(c.KeyPath, ".")
}

// HeaderGroup is a header cell spanning consecutive columns that share a
// parent key. Columns at the top level form groups with an empty ParentKey.
type HeaderGroup struct {
	Label     string `json:"label"`
	ParentKey string `json:"parentKey,omitempty"`
	ColSpan   int    `json:"colSpan"`
}

// Plan is the ordered column list plus its merged header row.
type Plan struct {
	Columns []Column      `json:"columns"`
	Headers []HeaderGroup `json:"headers"`
}

// Nested reports whether any column sits under a parent group, i.e. whether a
// second header row is needed.
func (p Plan) Nested() bool {
	for _, column := range p.Columns {
		if column.ParentKey != "" {
			return true
		}
	}
	return false
}

// Discover walks properties in declaration order and collects columns, then
// appends computed columns and sorts the result by display order. Equal orders
// keep discovery order. An empty result returns ErrNoColumns alongside the
// empty plan.
func Discover(properties *schema.Properties, computed []ux.ComputedField, parentPath []string) (Plan, error) {
	d := discoverer{labels: make(map[string]string)}
	d.walk(properties, parentPath)
	d.computed(computed, parentPath)

	sort.SliceStable(d.columns, func(i, j int) bool {
		return d.columns[i].DisplayOrder < d.columns[j].DisplayOrder
	})

	plan := Plan{Columns: d.columns, Headers: MergeHeaders(d.columns)}
	if len(plan.Columns) == 0 {
		return plan, ErrNoColumns
	}
	return plan, nil
}

// ForNode discovers columns for a table node. Arrays use their item schema,
// anything else is treated as its own single-row item schema. Computed fields
// come from the item's UX annotation.
func ForNode(node *schema.Node) (Plan, error) {
	item := node
	if node.IsArray() {
		item = node.ItemSchema()
	}
	return Discover(item.Properties, item.UX.Computed, nil)
}

type discoverer struct {
	columns []Column
	labels  map[string]string
}

func (d *discoverer) walk(properties *schema.Properties, parentPath []string) {
	if properties == nil {
		return
	}
	for pair := properties.Oldest(); pair != nil; pair = pair.Next() {
		key, prop := pair.Key, pair.Value
		if prop == nil || prop.UX.Mode().Hidden() {
			continue
		}
		path := appendPath(parentPath, key)

		if prop.UX.RenderAs == directive.AtomColumn {
			d.columns = append(d.columns, d.column(path, prop.UX, prop, false))
			continue
		}
		if prop.HasProperties() {
			if len(parentPath) == 0 {
				d.labels[key] = prop.UX.Label(key)
			}
			d.walk(prop.Properties, path)
		}
	}
}

func (d *discoverer) computed(fields []ux.ComputedField, parentPath []string) {
	for _, field := range fields {
		if field.UX.RenderAs != directive.AtomColumn || field.UX.Mode().Hidden() {
			continue
		}
		column := d.column(appendPath(parentPath, field.Name), field.UX, schema.String(), true)
		column.DisplayFormat = field.UX.DisplayFormat
		d.columns = append(d.columns, column)
	}
}

func (d *discoverer) column(path []string, cfg ux.Config, node *schema.Node, computed bool) Column {
	column := Column{
		KeyPath:      path,
		Label:        cfg.Label(path[len(path)-1]),
		Schema:       node,
		UX:           cfg,
		DisplayOrder: cfg.Order(),
		Computed:     computed,
	}
	if len(path) > 1 {
		column.ParentKey = path[0]
		column.ParentLabel = d.labels[path[0]]
		if column.ParentLabel == "" {
			column.ParentLabel = path[0]
		}
	}
	return column
}

// MergeHeaders groups consecutive columns with the same ParentKey. The sum of
// ColSpan over the result always equals len(columns).
func MergeHeaders(columns []Column) []HeaderGroup {
	var out []HeaderGroup
	for _, column := range columns {
		if n := len(out); n > 0 && out[n-1].ParentKey == column.ParentKey {
			out[n-1].ColSpan++
			continue
		}
		label := column.ParentLabel
		if column.ParentKey == "" {
			label = ""
		}
		out = append(out, HeaderGroup{
			Label:     label,
			ParentKey: column.ParentKey,
			ColSpan:   1,
		})
	}
	return out
}

func appendPath(parent []string, key string) []string {
	out := make([]string, len(parent)+1)
	copy(out, parent)
	out[len(parent)] = key
	return out
}
