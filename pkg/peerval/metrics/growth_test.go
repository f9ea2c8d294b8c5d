package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

func series(ticker string, revenues ...any) []types.Fundamentals {
	out := make([]types.Fundamentals, 0, len(revenues))
	for i, r := range revenues {
		out = append(out, types.Fundamentals{
			Ticker:  ticker,
			Date:    []string{"2020-12-31", "2021-12-31", "2022-12-31", "2023-12-31", "2024-12-31"}[i],
			Revenue: num.Coerce(r),
		})
	}
	return out
}

func TestRevenueGrowth_YoY(t *testing.T) {
	got := RevenueGrowth(series("AAA", 100.0, 120.0))
	require.Len(t, got, 1)
	yoy, ok := got[0].YoY.Get()
	require.True(t, ok)
	assert.InDelta(t, 0.20, yoy, 1e-12)
	assert.False(t, got[0].CAGR3Y.Present())
}

func TestRevenueGrowth_CAGR(t *testing.T) {
	got := RevenueGrowth(series("AAA", 100.0, 105.0, 118.0, 133.1))
	require.Len(t, got, 1)
	cagr, ok := got[0].CAGR3Y.Get()
	require.True(t, ok)
	assert.InDelta(t, 0.10, cagr, 1e-9)
}

func TestRevenueGrowth_UsesLastFourPoints(t *testing.T) {
	got := RevenueGrowth(series("AAA", 1.0, 100.0, 105.0, 118.0, 133.1))
	cagr, ok := got[0].CAGR3Y.Get()
	require.True(t, ok)
	assert.InDelta(t, 0.10, cagr, 1e-9)
}

func TestRevenueGrowth_SortsByDate(t *testing.T) {
	rows := series("AAA", 100.0, 120.0)
	rows[0], rows[1] = rows[1], rows[0]
	got := RevenueGrowth(rows)
	yoy, _ := got[0].YoY.Get()
	assert.InDelta(t, 0.20, yoy, 1e-12)
}

func TestRevenueGrowth_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		revenues []any
		yoy      bool
		cagr     bool
	}{
		{"single point", []any{100.0}, false, false},
		{"zero prior year", []any{0.0, 50.0}, false, false},
		{"missing revenue dropped", []any{100.0, nil, 120.0}, true, false},
		{"negative base has no cagr", []any{-10.0, 5.0, 6.0, 7.0}, true, false},
		{"zero base has no cagr", []any{0.0, 5.0, 6.0, 7.0}, true, false},
		{"negative end has no cagr", []any{10.0, 5.0, 6.0, -7.0}, true, false},
		{"all missing", []any{nil, nil}, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RevenueGrowth(series("AAA", tc.revenues...))
			require.Len(t, got, 1, "every ticker keeps a row")
			assert.Equal(t, "AAA", got[0].Ticker)
			assert.Equal(t, tc.yoy, got[0].YoY.Present())
			assert.Equal(t, tc.cagr, got[0].CAGR3Y.Present())
		})
	}
}

func TestRevenueGrowth_MissingRowsSkippedBeforeYoY(t *testing.T) {
	got := RevenueGrowth(series("AAA", 100.0, nil, 150.0))
	yoy, ok := got[0].YoY.Get()
	require.True(t, ok)
	assert.InDelta(t, 0.5, yoy, 1e-12)
}

func TestRevenueGrowth_OrderedByTicker(t *testing.T) {
	rows := append(series("ZZZ", 1.0, 2.0), series("AAA", 1.0, 3.0)...)
	got := RevenueGrowth(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "AAA", got[0].Ticker)
	assert.Equal(t, "ZZZ", got[1].Ticker)
	assert.Empty(t, RevenueGrowth(nil))
}
