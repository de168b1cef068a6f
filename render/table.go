// Package render provides tabular Renderers for stricttuple records, backed by
// go-pretty tables.
package render

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/roach88/stricttuple"
)

// Style selects the table layout.
type Style string

const (
	StyleLight    Style = "light"
	StyleRounded  Style = "rounded"
	StylePlain    Style = "plain"
	StyleMarkdown Style = "markdown"
)

// ValidStyles lists the accepted style names.
var ValidStyles = []Style{StyleLight, StyleRounded, StylePlain, StyleMarkdown}

// ParseStyle converts a name to a Style.
func ParseStyle(name string) (Style, error) {
	for _, s := range ValidStyles {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid style %q: must be one of %v", name, ValidStyles)
}

// Table renders a record as a two-column field/value table.
type Table struct {
	Style Style
	Title string
}

// NewTable returns a Table with the given style.
func NewTable(style Style) *Table {
	return &Table{Style: style}
}

// Render implements stricttuple.Renderer.
func (t *Table) Render(pairs []stricttuple.Pair) (string, error) {
	tw := table.NewWriter()
	switch t.Style {
	case StyleLight, StyleMarkdown, "":
		tw.SetStyle(table.StyleLight)
	case StyleRounded:
		tw.SetStyle(table.StyleRounded)
	case StylePlain:
		tw.SetStyle(table.StyleDefault)
	default:
		return "", fmt.Errorf("invalid style %q", t.Style)
	}
	if t.Title != "" {
		tw.SetTitle(t.Title)
	}

	tw.AppendHeader(table.Row{"field", "value"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})
	for _, p := range pairs {
		tw.AppendRow(table.Row{p.Name, formatValue(p.Value)})
	}

	if t.Style == StyleMarkdown {
		return tw.RenderMarkdown(), nil
	}
	return tw.Render(), nil
}

// Rows renders many records of possibly different types as one table, one row per
// record, with the union of field names as columns in first-seen order.
func Rows(style Style, records []stricttuple.Record) (string, error) {
	var cols []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, f := range rec.Fields() {
			if !seen[f] {
				seen[f] = true
				cols = append(cols, f)
			}
		}
	}

	header := []string{"record"}
	header = append(header, cols...)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := []string{rec.TypeName()}
		for _, c := range cols {
			v, ok := rec.Get(c)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatValue(v))
		}
		rows = append(rows, row)
	}
	return Grid(style, header, rows), nil
}

// Grid renders string cells under header. Unknown styles render as StyleLight.
func Grid(style Style, header []string, rows [][]string) string {
	tw := table.NewWriter()
	switch style {
	case StyleRounded:
		tw.SetStyle(table.StyleRounded)
	case StylePlain:
		tw.SetStyle(table.StyleDefault)
	default:
		tw.SetStyle(table.StyleLight)
	}

	tw.AppendHeader(toRow(header))
	for _, r := range rows {
		tw.AppendRow(toRow(r))
	}

	if style == StyleMarkdown {
		return tw.RenderMarkdown()
	}
	return tw.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func formatValue(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}
