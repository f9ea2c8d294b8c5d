package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/num"
)

// Polarity says which end of a metric ranks best.
type Polarity int

const (
	// Ascending ranks the lowest value first.
	Ascending Polarity = iota
	// Descending ranks the highest value first.
	Descending
)

// RankValues ranks present values 1..n with tied values sharing a rank and the
// next distinct value taking the next integer. Missing values get a missing rank.
func RankValues(vals []num.Value, p Polarity) []num.Value {
	distinct := make([]float64, 0, len(vals))
	seen := make(map[float64]struct{}, len(vals))
	for _, v := range vals {
		f, ok := v.Get()
		if !ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		distinct = append(distinct, f)
	}
	if p == Descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))
	} else {
		sort.Float64s(distinct)
	}
	pos := make(map[float64]int, len(distinct))
	for i, f := range distinct {
		pos[f] = i + 1
	}

	out := make([]num.Value, len(vals))
	for i, v := range vals {
		if f, ok := v.Get(); ok {
			out[i] = num.Of(float64(pos[f]))
		}
	}
	return out
}

// Rank adds a rank column for every candidate metric present in t with at least
// one value, then a composite column holding the mean of each row's present
// ranks, and returns the table sorted ascending by composite. The input is not
// modified. When no rank column could be built, no composite is added and the
// row order is kept.
func Rank(t Table, low, high []string, composite string) Table {
	out := t.Clone()
	var rankCols []string
	apply := func(cols []string, p Polarity) {
		for _, c := range cols {
			if !out.Has(c) {
				continue
			}
			vals := out.Column(c)
			if num.Count(vals) == 0 {
				continue
			}
			rc := columns.RankOf(c)
			out.withColumn(rc, RankValues(vals, p))
			rankCols = append(rankCols, rc)
		}
	}
	apply(low, Ascending)
	apply(high, Descending)

	if len(rankCols) == 0 {
		return out
	}
	comp := make([]num.Value, out.Len())
	for i, r := range out.Rows {
		comp[i] = Composite(r, rankCols)
	}
	out.withColumn(composite, comp)
	return out.SortBy(composite)
}

// Composite returns the unweighted mean of the row's present rank values, or
// missing when none are present.
func Composite(r Row, rankCols []string) num.Value {
	ranks := make([]float64, 0, len(rankCols))
	for _, c := range rankCols {
		if f, ok := r.Values[c].Get(); ok {
			ranks = append(ranks, f)
		}
	}
	if len(ranks) == 0 {
		return num.Missing()
	}
	return num.Of(stat.Mean(ranks, nil))
}

// RankColumns returns the rank columns of t in column order.
func RankColumns(t Table) []string {
	var out []string
	for _, c := range t.Columns {
		if columns.IsRank(c) {
			out = append(out, c)
		}
	}
	return out
}
