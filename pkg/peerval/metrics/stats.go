package metrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/komsit37/peerval/pkg/peerval/num"
)

// ColumnStats summarises the present values of one column across the peer set.
type ColumnStats struct {
	Column string
	Count  int
	Mean   num.Value
	Median num.Value
	Min    num.Value
	Max    num.Value
}

// PeerStats summarises every requested column of t that exists in the table.
// Columns with no present values report Count 0 and missing statistics.
func PeerStats(t Table, cols []string) []ColumnStats {
	out := make([]ColumnStats, 0, len(cols))
	for _, c := range cols {
		if !t.Has(c) {
			continue
		}
		var xs []float64
		for _, v := range t.Column(c) {
			if f, ok := v.Get(); ok {
				xs = append(xs, f)
			}
		}
		s := ColumnStats{Column: c, Count: len(xs)}
		if len(xs) > 0 {
			sort.Float64s(xs)
			s.Mean = num.Of(stat.Mean(xs, nil))
			s.Median = num.Of(median(xs))
			s.Min = num.Of(floats.Min(xs))
			s.Max = num.Of(floats.Max(xs))
		}
		out = append(out, s)
	}
	return out
}

// median of sorted xs, averaging the middle pair for even lengths.
func median(xs []float64) float64 {
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
