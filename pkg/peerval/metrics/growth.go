package metrics

import (
	"math"
	"sort"

	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// Growth column names.
const (
	RevYoY    = "Rev_YoY"
	RevCAGR3Y = "Rev_CAGR_3Y"
)

// cagrYears is the number of annual intervals spanned by the CAGR.
const cagrYears = 3

// Growth is the revenue growth of one company.
type Growth struct {
	Ticker string
	YoY    num.Value
	CAGR3Y num.Value
}

// RevenueGrowth computes year-over-year and 3-year compound revenue growth per
// ticker. Every ticker in rows yields exactly one Growth, sorted by ticker.
func RevenueGrowth(rows []types.Fundamentals) []Growth {
	groups := groupByTicker(rows)
	tickers := make([]string, 0, len(groups))
	for t := range groups {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make([]Growth, 0, len(tickers))
	for _, t := range tickers {
		var dated []types.Fundamentals
		for _, r := range groups[t] {
			if r.Revenue.Present() {
				dated = append(dated, r)
			}
		}
		sortByDate(dated, false)

		rev := make([]float64, len(dated))
		for i, r := range dated {
			rev[i], _ = r.Revenue.Get()
		}
		out = append(out, Growth{Ticker: t, YoY: yoy(rev), CAGR3Y: cagr(rev, cagrYears)})
	}
	return out
}

// yoy is (last - prev) / prev over the two most recent values.
func yoy(rev []float64) num.Value {
	n := len(rev)
	if n < 2 || rev[n-2] == 0 {
		return num.Missing()
	}
	return num.Of((rev[n-1] - rev[n-2]) / rev[n-2])
}

// cagr is (last / base)^(1/years) - 1 where base is years periods back. A base
// that is not strictly positive has no real CAGR.
func cagr(rev []float64, years int) num.Value {
	n := len(rev)
	if n < years+1 {
		return num.Missing()
	}
	start, end := rev[n-(years+1)], rev[n-1]
	if start <= 0 {
		return num.Missing()
	}
	return num.Of(math.Pow(end/start, 1/float64(years)) - 1)
}

func groupByTicker(rows []types.Fundamentals) map[string][]types.Fundamentals {
	groups := make(map[string][]types.Fundamentals)
	for _, r := range rows {
		if r.Ticker == "" {
			continue
		}
		groups[r.Ticker] = append(groups[r.Ticker], r)
	}
	return groups
}

// sortByDate stable-sorts rows by date; rows without a parseable date go last.
func sortByDate(rows []types.Fundamentals, descending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i].Time()
		b, bok := rows[j].Time()
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		if descending {
			return a.After(b)
		}
		return a.Before(b)
	})
}
