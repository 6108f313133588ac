package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

// Text writes an indented terminal preview of the render tree. Tables are
// drawn with lipgloss; nested column groups get an extra header line.
type Text struct{}

// NewText constructs the text writer.
func NewText() *Text { return &Text{} }

func (*Text) Name() string { return "text" }

func (*Text) ContentType() string { return "text/plain; charset=utf-8" }

func (*Text) Write(ctx context.Context, node render.Node, options Options) ([]byte, error) {
	p := &printer{styles: newStyles(options.Styled)}
	if err := p.node(ctx, node, "", 0); err != nil {
		return nil, err
	}
	return []byte(p.b.String()), nil
}

type styles struct {
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Role   lipgloss.Style
	Error  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
}

func newStyles(styled bool) styles {
	if !styled {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		Value:  lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true),
		Role:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C792EA")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true),
		Header: lipgloss.NewStyle().Bold(true),
		Cell:   lipgloss.NewStyle(),
	}
}

type printer struct {
	b      strings.Builder
	styles styles
}

func (p *printer) line(depth int, text string) {
	p.b.WriteString(strings.Repeat("  ", depth))
	p.b.WriteString(text)
	p.b.WriteString("\n")
}

func (p *printer) prefix(label string) string {
	if label == "" {
		return ""
	}
	return p.styles.Label.Render(label+":") + " "
}

func (p *printer) node(ctx context.Context, n render.Node, label string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch node := n.(type) {
	case nil, *render.Null:
		return nil
	case *render.Terminal:
		p.line(depth, p.prefix(label)+p.styles.Value.Render(FormatValue(node.Value)))
	case *render.Input:
		text := p.styles.Muted.Render("[" + node.InputType + "]")
		if node.Value != nil {
			text += " " + p.styles.Value.Render(FormatValue(node.Value))
		}
		p.line(depth, p.prefix(label)+text)
	case *render.ArrayContainer:
		if label != "" {
			p.line(depth, p.styles.Label.Render(label+":"))
			depth++
		}
		for idx, item := range node.Items {
			if err := p.node(ctx, item, fmt.Sprintf("[%d]", idx), depth); err != nil {
				return err
			}
		}
	case *render.ObjectContainer:
		if label != "" {
			p.line(depth, p.styles.Label.Render(label+":"))
			depth++
		}
		for _, field := range node.Fields {
			if err := p.node(ctx, field.Node, field.Label, depth); err != nil {
				return err
			}
		}
	case *render.Special:
		if node.Table != nil {
			p.line(depth, p.prefix(label)+p.styles.Role.Render("[table]"))
			p.table(node.Table, depth+1)
		} else {
			text := p.styles.Role.Render("[" + node.Renderer + "]")
			if node.Data != nil && len(node.Children) == 0 {
				text += " " + p.styles.Value.Render(FormatValue(node.Data))
			}
			p.line(depth, p.prefix(label)+text)
		}
	case *render.TabRole:
		p.line(depth, p.prefix(label)+p.styles.Role.Render("[tab]"))
	case *render.TabsContainer:
		p.line(depth, p.prefix(label)+p.styles.Role.Render("[tabs]"))
	case *render.InputSchemaComposer:
		p.line(depth, p.prefix(label)+p.styles.Role.Render("[input_schema]"))
	case *render.Error:
		p.line(depth, p.prefix(label)+p.styles.Error.Render(fmt.Sprintf("! %s: %s", node.Code, node.Message)))
	default:
		return fmt.Errorf("output: unsupported node %T", n)
	}

	for _, child := range directChildren(n) {
		if err := p.node(ctx, child, "", depth+1); err != nil {
			return err
		}
	}
	return nil
}

// directChildren returns the outer-directive children only; container items,
// fields and table cells are printed by their parent case.
func directChildren(n render.Node) []render.Node {
	switch node := n.(type) {
	case *render.Terminal:
		return node.Children
	case *render.Input:
		return node.Children
	case *render.ArrayContainer:
		return node.Children
	case *render.ObjectContainer:
		return node.Children
	case *render.Special:
		return node.Children
	case *render.TabRole:
		return node.Children
	case *render.TabsContainer:
		return node.Children
	case *render.InputSchemaComposer:
		return node.Children
	case *render.Error:
		return node.Children
	default:
		return nil
	}
}

func (p *printer) table(plan *render.TablePlan, depth int) {
	indent := strings.Repeat("  ", depth)
	if hasGroups(plan) {
		var groups []string
		for _, group := range plan.Headers {
			groups = append(groups, fmt.Sprintf("%s(%d)", group.Label, group.ColSpan))
		}
		p.b.WriteString(indent + p.styles.Muted.Render(strings.Join(groups, " | ")) + "\n")
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.Header
			}
			return p.styles.Cell
		})

	headers := make([]string, len(plan.Columns))
	for idx, column := range plan.Columns {
		headers[idx] = column.Label
	}
	t.Headers(headers...)

	for _, row := range plan.Rows {
		cells := make([]string, len(row.Cells))
		for idx, cell := range row.Cells {
			cells[idx] = cellText(cell.Node)
		}
		t.Row(cells...)
	}

	for _, line := range strings.Split(t.String(), "\n") {
		p.b.WriteString(indent + line + "\n")
	}
	if len(plan.Rows) == 0 {
		p.b.WriteString(indent + p.styles.Muted.Render("(no rows)") + "\n")
	}
}

func hasGroups(plan *render.TablePlan) bool {
	for _, group := range plan.Headers {
		if group.ParentKey != "" {
			return true
		}
	}
	return false
}

func cellText(n render.Node) string {
	switch node := n.(type) {
	case *render.Terminal:
		return FormatValue(node.Value)
	case *render.Input:
		return FormatValue(node.Value)
	case *render.Special:
		return "[" + node.Renderer + "]"
	case *render.Error:
		return "!" + node.Code
	case *render.ArrayContainer:
		return fmt.Sprintf("[%d items]", len(node.Items))
	case *render.ObjectContainer:
		return fmt.Sprintf("{%d fields}", len(node.Fields))
	default:
		return ""
	}
}

// FormatValue renders a data value for display.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case []any:
		parts := make([]string, len(v))
		for idx, item := range v {
			parts[idx] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	case *ux.Object:
		var parts []string
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			parts = append(parts, pair.Key+": "+FormatValue(pair.Value))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
