// Package report writes the peer comparison workbook and reads it back.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/metrics"
	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// Sheet names in workbook order.
const (
	SheetPrices       = "Raw_Prices"
	SheetSnapshot     = "Raw_Snapshot"
	SheetFundamentals = "Fundamentals_Annual"
	SheetPeerMetrics  = "Peer_Metrics"
	SheetPeerFinal    = "Peer_Final"
	SheetSummary      = "Summary"
	SheetPeerStats    = "Peer_Stats"
	SheetReturns      = "Price_Returns"
)

// SummaryRows is the number of companies listed on the summary sheet.
const SummaryRows = 5

// Workbook gathers everything written to the report.
type Workbook struct {
	Prices       metrics.Frame
	Snapshots    []types.Snapshot
	Fundamentals []types.Fundamentals
	Simple       metrics.Table
	Final        metrics.Table
	Stats        []metrics.ColumnStats
	Returns      []metrics.ReturnStats
	Annual       metrics.Frame // period-over-period returns of year-end closes
	Quarterly    metrics.Frame // same for quarter-end closes
}

// snapshotHeader is the Raw_Snapshot column order.
var snapshotHeader = []string{
	"symbol", "shortName", "marketCap", "enterpriseValue", "trailingPE", "forwardPE",
	"priceToBook", "profitMargins", "returnOnEquity", "ebitdaMargins", "grossMargins",
	"operatingMargins", "beta", "sector", "industry", "fullTimeEmployees",
}

// Summary picks the top companies by composite. With a fundamentals table it
// lists [ticker, CompositeRank_All] when that column exists, else the simple
// table's [symbol, CompositeRank], else the simple table's first rows. Without
// one it is the first rows of the simple table with every column.
func Summary(simple, final metrics.Table) metrics.Table {
	switch {
	case final.Empty():
		return simple.Head(SummaryRows)
	case final.Has(columns.CompositeAll):
		return final.SortBy(columns.CompositeAll).Select(columns.CompositeAll).Head(SummaryRows)
	case simple.Has(columns.CompositeSimple):
		return simple.Select(columns.CompositeSimple).Head(SummaryRows)
	default:
		return simple.Head(SummaryRows)
	}
}

// Sheets returns the sheet names Write produces for wb, in order.
func Sheets(wb Workbook) []string {
	names := []string{SheetPrices, SheetSnapshot}
	if len(wb.Fundamentals) > 0 {
		names = append(names, SheetFundamentals)
	}
	names = append(names, SheetPeerMetrics)
	if !wb.Final.Empty() {
		names = append(names, SheetPeerFinal)
	}
	return append(names, SheetSummary, SheetPeerStats, SheetReturns)
}

// Write saves wb to path as an .xlsx workbook, creating parent directories.
// Missing values become empty cells.
func Write(path string, wb Workbook) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range Sheets(wb) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		var rows [][]any
		switch name {
		case SheetPrices:
			rows = frameRows(wb.Prices)
		case SheetSnapshot:
			rows = snapshotRows(wb.Snapshots)
		case SheetFundamentals:
			rows = fundamentalsRows(wb.Fundamentals)
		case SheetPeerMetrics:
			rows = tableRows(wb.Simple)
		case SheetPeerFinal:
			rows = tableRows(wb.Final)
		case SheetSummary:
			rows = tableRows(Summary(wb.Simple, wb.Final))
		case SheetPeerStats:
			rows = statsRows(wb.Stats)
		case SheetReturns:
			rows = returnsRows(wb)
		}
		if err := writeRows(f, name, rows); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// cell converts a value to a spreadsheet cell; missing becomes empty.
func cell(v num.Value) any {
	if f, ok := v.Get(); ok {
		return f
	}
	return nil
}

func header(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

func frameRows(fr metrics.Frame) [][]any {
	rows := [][]any{header(append([]string{"Date"}, fr.Tickers...))}
	for i, d := range fr.Dates {
		r := make([]any, 0, 1+len(fr.Tickers))
		r = append(r, d)
		for _, t := range fr.Tickers {
			r = append(r, cell(fr.Values[t][i]))
		}
		rows = append(rows, r)
	}
	return rows
}

func snapshotRows(snaps []types.Snapshot) [][]any {
	rows := [][]any{header(snapshotHeader)}
	for _, s := range snaps {
		nums, labels := s.Numeric(), s.Labels()
		r := make([]any, len(snapshotHeader))
		for i, h := range snapshotHeader {
			switch {
			case h == "symbol":
				r[i] = s.Symbol
			case labels[h] != "":
				r[i] = labels[h]
			default:
				r[i] = cell(nums[h])
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func fundamentalsRows(fund []types.Fundamentals) [][]any {
	cols := append([]string{"ticker", "date", "calendarYear"}, types.FundamentalsFields...)
	rows := [][]any{header(cols)}
	for _, f := range fund {
		nums := f.Numeric()
		r := []any{f.Ticker, f.Date, f.CalendarYear}
		for _, k := range types.FundamentalsFields {
			r = append(r, cell(nums[k]))
		}
		rows = append(rows, r)
	}
	return rows
}

func tableRows(t metrics.Table) [][]any {
	cols := t.AllColumns()
	rows := [][]any{header(cols)}
	for i := range t.Rows {
		r := make([]any, len(cols))
		for j, c := range cols {
			s, v, numeric := t.Cell(i, c)
			if numeric {
				r[j] = cell(v)
			} else {
				r[j] = s
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func statsRows(stats []metrics.ColumnStats) [][]any {
	rows := [][]any{header([]string{"metric", "count", "mean", "median", "min", "max"})}
	for _, s := range stats {
		rows = append(rows, []any{s.Column, s.Count, cell(s.Mean), cell(s.Median), cell(s.Min), cell(s.Max)})
	}
	return rows
}

// returnsRows stacks the per-ticker summary, then annual and quarterly returns,
// separated by blank rows.
func returnsRows(wb Workbook) [][]any {
	rows := [][]any{header([]string{
		"ticker", "firstDate", "lastDate", "firstClose", "lastClose",
		"totalReturn", "annualReturn", "volatility",
	})}
	for _, r := range wb.Returns {
		rows = append(rows, []any{
			r.Ticker, r.FirstDate, r.LastDate, cell(r.FirstClose), cell(r.LastClose),
			cell(r.TotalReturn), cell(r.AnnualReturn), cell(r.Volatility),
		})
	}
	for _, block := range []struct {
		title string
		fr    metrics.Frame
	}{{"Annual returns", wb.Annual}, {"Quarterly returns", wb.Quarterly}} {
		if block.fr.Empty() {
			continue
		}
		rows = append(rows, nil, []any{block.title})
		rows = append(rows, frameRows(block.fr)...)
	}
	return rows
}
