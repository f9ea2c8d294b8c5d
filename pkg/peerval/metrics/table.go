// Package metrics derives valuation ratios and growth from snapshot and annual
// statement data and ranks companies against their peers.
package metrics

import (
	"sort"

	"github.com/komsit37/peerval/pkg/peerval/num"
)

// Row is one company in a Table.
type Row struct {
	Ticker string
	Labels map[string]string
	Values map[string]num.Value
}

// Value returns the numeric value of col, missing when absent.
func (r Row) Value(col string) num.Value { return r.Values[col] }

// Table is an ordered set of rows with ordered label and numeric columns.
// ID names the identifier column ("symbol" or "ticker").
type Table struct {
	ID      string
	Labels  []string
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Has reports whether col is a numeric column of t.
func (t Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AllColumns returns the identifier, label, and numeric columns in order.
func (t Table) AllColumns() []string {
	out := make([]string, 0, 1+len(t.Labels)+len(t.Columns))
	if t.ID != "" {
		out = append(out, t.ID)
	}
	out = append(out, t.Labels...)
	return append(out, t.Columns...)
}

func (t Table) isLabel(col string) bool {
	for _, c := range t.Labels {
		if c == col {
			return true
		}
	}
	return false
}

// Column returns the values of col in row order.
func (t Table) Column(col string) []num.Value {
	out := make([]num.Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[col]
	}
	return out
}

// Cell returns the display string for any column of row i.
func (t Table) Cell(i int, col string) (string, num.Value, bool) {
	r := t.Rows[i]
	if col == t.ID {
		return r.Ticker, num.Missing(), false
	}
	if v, ok := r.Labels[col]; ok || t.isLabel(col) {
		return v, num.Missing(), false
	}
	v := r.Values[col]
	return v.String(), v, true
}

// Head returns a copy holding the first n rows.
func (t Table) Head(n int) Table {
	out := t.Clone()
	if n < len(out.Rows) {
		out.Rows = out.Rows[:n]
	}
	return out
}

// Select returns a copy restricted to the given numeric columns.
func (t Table) Select(cols ...string) Table {
	out := t.Clone()
	out.Labels = nil
	out.Columns = append([]string(nil), cols...)
	for i := range out.Rows {
		out.Rows[i].Labels = map[string]string{}
	}
	return out
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	out := Table{
		ID:      t.ID,
		Labels:  append([]string(nil), t.Labels...),
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		nr := Row{
			Ticker: r.Ticker,
			Labels: make(map[string]string, len(r.Labels)),
			Values: make(map[string]num.Value, len(r.Values)),
		}
		for k, v := range r.Labels {
			nr.Labels[k] = v
		}
		for k, v := range r.Values {
			nr.Values[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// withColumn appends (or replaces) a numeric column in place.
func (t *Table) withColumn(col string, vals []num.Value) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
	for i := range t.Rows {
		t.Rows[i].Values[col] = vals[i]
	}
}

// SortBy returns a copy stable-sorted ascending by col; missing values go last.
func (t Table) SortBy(col string) Table {
	out := t.Clone()
	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, aok := out.Rows[i].Values[col].Get()
		b, bok := out.Rows[j].Values[col].Get()
		if aok != bok {
			return aok
		}
		return aok && a < b
	})
	return out
}

// Tickers returns the identifiers in row order.
func (t Table) Tickers() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Ticker
	}
	return out
}

func newRow(ticker string) Row {
	return Row{Ticker: ticker, Labels: map[string]string{}, Values: map[string]num.Value{}}
}
