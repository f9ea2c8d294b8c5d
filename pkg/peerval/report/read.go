package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/num"
)

// Report is a workbook read back from disk.
type Report struct {
	Sheets []string
	Rows   map[string][][]string
}

// Read loads every sheet of the workbook at path with raw cell values.
func Read(path string) (Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	r := Report{Sheets: f.GetSheetList(), Rows: map[string][][]string{}}
	for _, s := range r.Sheets {
		rows, err := f.GetRows(s, excelize.Options{RawCellValue: true})
		if err != nil {
			return Report{}, fmt.Errorf("read sheet %s: %w", s, err)
		}
		r.Rows[s] = rows
	}
	return r, nil
}

// Column returns the cells under header col of sheet, one per data row.
// The second result is false when the sheet or column is absent.
func (r Report) Column(sheet, col string) ([]string, bool) {
	rows := r.Rows[sheet]
	if len(rows) == 0 {
		return nil, false
	}
	idx := -1
	for i, h := range rows[0] {
		if h == col {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idx < len(row) {
			out = append(out, row[idx])
		} else {
			out = append(out, "")
		}
	}
	return out, true
}

// InspectColumns are the snapshot fields whose gaps are reported by Inspect.
var InspectColumns = []string{
	"marketCap", "enterpriseValue", "trailingPE", "forwardPE", "priceToBook",
	"returnOnEquity", "profitMargins", "ebitdaMargins",
}

// NullCount is the number of empty cells in one column.
type NullCount struct {
	Column  string
	Missing int
	Total   int
}

// Ranked is one company and its composite score.
type Ranked struct {
	Ticker string
	Score  num.Value
}

// Inspection summarises a written report.
type Inspection struct {
	Sheets    []string
	Nulls     []NullCount
	Composite string // composite column used for Top and Bottom
	Top       []Ranked
	Bottom    []Ranked
}

// Inspect counts missing snapshot fields and lists the best and worst
// companies by composite, preferring the fundamentals table.
func Inspect(r Report) Inspection {
	ins := Inspection{Sheets: r.Sheets}
	for _, c := range InspectColumns {
		vals, ok := r.Column(SheetSnapshot, c)
		if !ok {
			continue
		}
		nc := NullCount{Column: c, Total: len(vals)}
		for _, v := range vals {
			if !num.Parse(v).Present() {
				nc.Missing++
			}
		}
		ins.Nulls = append(ins.Nulls, nc)
	}

	for _, src := range []struct{ sheet, id, comp string }{
		{SheetPeerFinal, columns.Ticker, columns.CompositeAll},
		{SheetPeerMetrics, columns.Symbol, columns.CompositeSimple},
	} {
		ids, ok1 := r.Column(src.sheet, src.id)
		scores, ok2 := r.Column(src.sheet, src.comp)
		if !ok1 || !ok2 {
			continue
		}
		var ranked []Ranked
		for i, id := range ids {
			if v := num.Parse(scores[i]); v.Present() {
				ranked = append(ranked, Ranked{Ticker: id, Score: v})
			}
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return ranked[a].Score.Or(0) < ranked[b].Score.Or(0)
		})
		ins.Composite = src.comp
		n := SummaryRows
		if n > len(ranked) {
			n = len(ranked)
		}
		ins.Top = ranked[:n]
		ins.Bottom = ranked[len(ranked)-n:]
		break
	}
	return ins
}
