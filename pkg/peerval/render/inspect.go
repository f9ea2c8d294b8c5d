package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/report"
)

// Inspection prints the sheet list, snapshot gaps, and the best and worst
// companies of a report.
func Inspection(w io.Writer, ins report.Inspection) error {
	fmt.Fprintf(w, "%s %s\n\n", text.Bold.Sprint("SHEETS"), strings.Join(ins.Sheets, ", "))

	nulls := newPlainTable(w, "column", "missing", "rows")
	for _, n := range ins.Nulls {
		nulls.AppendRow(table.Row{n.Column, n.Missing, n.Total})
	}
	fmt.Fprintln(w, text.Bold.Sprint("SNAPSHOT GAPS"))
	nulls.Render()

	if ins.Composite == "" {
		fmt.Fprintln(w, "\nno composite ranking found")
		return nil
	}
	for _, block := range []struct {
		title string
		rows  []report.Ranked
	}{{"TOP", ins.Top}, {"BOTTOM", ins.Bottom}} {
		fmt.Fprintf(w, "\n%s\n", text.Bold.Sprintf("%s %d BY %s", block.title, len(block.rows), strings.ToUpper(ins.Composite)))
		tw := newPlainTable(w, "ticker", ins.Composite)
		for _, r := range block.rows {
			tw.AppendRow(table.Row{r.Ticker, columns.Format(ins.Composite, r.Score)})
		}
		tw.Render()
	}
	return nil
}

func newPlainTable(w io.Writer, headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	hdr := make(table.Row, len(headers))
	cfgs := make([]table.ColumnConfig, 0, len(headers))
	for i, h := range headers {
		hdr[i] = h
		if i > 0 {
			cfgs = append(cfgs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignRight})
		}
	}
	tw.AppendHeader(hdr)
	tw.SetColumnConfigs(cfgs)
	return tw
}
