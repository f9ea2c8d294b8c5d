package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/peerval/pkg/peerval/columns"
)

// Extra columns shown when live quotes are attached.
const (
	colPrice  = "price"
	colChgPct = "chg%"
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, views []View, opts RenderOptions) error {
	multi := len(views) > 1
	for vi, v := range views {
		cols := v.columns()
		if v.Quotes != nil {
			cols = withQuoteColumns(cols, v.Table.ID)
		}

		if multi && strings.TrimSpace(v.Name) != "" {
			fmt.Fprintln(w, text.Bold.Sprint(strings.ToUpper(v.Name)))
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		if opts.Color {
			tw.SetStyle(table.StyleColoredDark)
		} else {
			tw.SetStyle(table.StyleLight)
		}
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateRows = false
		tw.Style().Options.SeparateColumns = false

		hdr := make(table.Row, len(cols))
		for i, c := range cols {
			hdr[i] = strings.ToUpper(c)
		}
		tw.AppendHeader(hdr)

		maxWidth := opts.MaxColWidth
		if maxWidth <= 0 {
			maxWidth = 40
		}
		cfgs := make([]table.ColumnConfig, 0, len(cols))
		for i, c := range cols {
			cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
			if c == colPrice || c == colChgPct || (c != v.Table.ID && !isLabel(v, c) && columns.IsNumeric(c)) {
				cfg.Align = text.AlignRight
				cfg.AlignHeader = text.AlignRight
			}
			cfgs = append(cfgs, cfg)
		}
		tw.SetColumnConfigs(cfgs)

		for i, row := range v.Table.Rows {
			out := make(table.Row, len(cols))
			q, hasQuote := v.Quotes[row.Ticker]
			for j, c := range cols {
				switch c {
				case colPrice:
					out[j] = q.Price
				case colChgPct:
					out[j] = colorChange(q.ChgFmt, q.ChgRaw, opts.Color && hasQuote)
				default:
					s, val, numeric := v.Table.Cell(i, c)
					if numeric {
						s = columns.Format(c, val)
					}
					out[j] = s
				}
			}
			tw.AppendRow(out)
		}

		tw.Render()
		if vi < len(views)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// withQuoteColumns places price and change right after the identifier.
func withQuoteColumns(cols []string, id string) []string {
	out := make([]string, 0, len(cols)+2)
	inserted := false
	for _, c := range cols {
		out = append(out, c)
		if c == id && !inserted {
			out = append(out, colPrice, colChgPct)
			inserted = true
		}
	}
	if !inserted {
		out = append([]string{colPrice, colChgPct}, out...)
	}
	return out
}

func isLabel(v View, col string) bool {
	for _, l := range v.Table.Labels {
		if l == col {
			return true
		}
	}
	return false
}

func colorChange(s string, raw float64, color bool) string {
	if !color || s == "" {
		return s
	}
	switch {
	case raw < 0:
		return text.Colors{text.FgRed}.Sprint(s)
	case raw > 0:
		return text.Colors{text.FgGreen}.Sprint(s)
	}
	return s
}
