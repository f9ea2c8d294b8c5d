package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/metrics"
	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

func snapshots() []types.Snapshot {
	mk := func(sym string, pe, roe float64) types.Snapshot {
		return types.Snapshot{
			Symbol: sym, ShortName: sym + " Inc",
			MarketCap: num.Of(1e11), TrailingPE: num.Of(pe), ReturnOnEquity: num.Of(roe),
		}
	}
	return []types.Snapshot{
		mk("AAA", 30, 0.10), mk("BBB", 20, 0.20), mk("CCC", 10, 0.30),
		mk("DDD", 40, 0.05), mk("EEE", 25, 0.15), mk("FFF", 35, 0.12),
		{Symbol: "GGG"},
	}
}

func fundamentals() []types.Fundamentals {
	return []types.Fundamentals{
		{Ticker: "AAA", Date: "2024-12-31", CalendarYear: "2024", Revenue: num.Of(100), NetIncome: num.Of(10), TotalStockholdersEquity: num.Of(50)},
		{Ticker: "BBB", Date: "2024-12-31", CalendarYear: "2024", Revenue: num.Of(200), NetIncome: num.Of(50), TotalStockholdersEquity: num.Of(100)},
	}
}

func prices() metrics.Frame {
	return metrics.Wide([]types.PricePoint{
		{Date: "2024-01-02", Ticker: "AAA", Close: num.Of(10)},
		{Date: "2024-01-03", Ticker: "AAA", Close: num.Of(11)},
		{Date: "2024-01-03", Ticker: "BBB", Close: num.Of(20)},
	})
}

func TestSummary(t *testing.T) {
	snaps := snapshots()
	simple := metrics.SimpleValuation(snaps)
	final := metrics.FinalPeerTable(snaps, fundamentals())

	s := Summary(simple, final)
	assert.Equal(t, []string{columns.Ticker, columns.CompositeAll}, s.AllColumns())
	assert.Equal(t, SummaryRows, s.Len())

	s = Summary(simple, metrics.Table{})
	assert.Equal(t, simple.AllColumns(), s.AllColumns(), "no fundamentals table keeps every simple column")
	assert.Equal(t, SummaryRows, s.Len())
	assert.Equal(t, "CCC", s.Rows[0].Ticker)

	unranked := metrics.Table{ID: columns.Ticker, Columns: []string{"MarketCap"}, Rows: simple.Rows}
	s = Summary(simple, unranked)
	assert.Equal(t, []string{columns.Symbol, columns.CompositeSimple}, s.AllColumns())

	bare := metrics.Table{ID: columns.Symbol, Columns: []string{"PE_TTM"}, Rows: simple.Rows}
	s = Summary(bare, metrics.Table{})
	assert.Equal(t, []string{columns.Symbol, "PE_TTM"}, s.AllColumns())
	assert.Equal(t, SummaryRows, s.Len())
}

func TestSheets(t *testing.T) {
	assert.Equal(t,
		[]string{SheetPrices, SheetSnapshot, SheetPeerMetrics, SheetSummary, SheetPeerStats, SheetReturns},
		Sheets(Workbook{}))
}

func TestWriteAndRead(t *testing.T) {
	snaps := snapshots()
	simple := metrics.SimpleValuation(snaps)
	final := metrics.FinalPeerTable(snaps, fundamentals())
	px := prices()
	wb := Workbook{
		Prices:       px,
		Snapshots:    snaps,
		Fundamentals: fundamentals(),
		Simple:       simple,
		Final:        final,
		Stats:        metrics.PeerStats(final, []string{"PE_TTM", "ROE"}),
		Returns:      metrics.SummarizeReturns(px),
		Annual:       metrics.DailyReturns(metrics.ResampleLast(px, metrics.Annual)),
	}

	path := filepath.Join(t.TempDir(), "reports", "peer_comparison.xlsx")
	require.NoError(t, Write(path, wb))

	r, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		SheetPrices, SheetSnapshot, SheetFundamentals, SheetPeerMetrics,
		SheetPeerFinal, SheetSummary, SheetPeerStats, SheetReturns,
	}, r.Sheets)

	dates, ok := r.Column(SheetPrices, "Date")
	require.True(t, ok)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, dates)
	bbb, ok := r.Column(SheetPrices, "BBB")
	require.True(t, ok)
	assert.Equal(t, "", bbb[0], "missing price is an empty cell")

	pe, ok := r.Column(SheetSnapshot, "trailingPE")
	require.True(t, ok)
	assert.Equal(t, "30", pe[0])
	assert.Equal(t, "", pe[6])

	summary, ok := r.Column(SheetSummary, columns.Ticker)
	require.True(t, ok)
	assert.Len(t, summary, SummaryRows)
	assert.Equal(t, final.Tickers()[:SummaryRows], summary)

	ins := Inspect(r)
	assert.Equal(t, columns.CompositeAll, ins.Composite)
	require.Len(t, ins.Top, SummaryRows)
	assert.Equal(t, final.Tickers()[0], ins.Top[0].Ticker)
	require.NotEmpty(t, ins.Nulls)
	assert.Equal(t, NullCount{Column: "marketCap", Missing: 1, Total: 7}, ins.Nulls[0])
}

func TestInspect_FallsBackToSimple(t *testing.T) {
	simple := metrics.SimpleValuation(snapshots())
	path := filepath.Join(t.TempDir(), "r.xlsx")
	require.NoError(t, Write(path, Workbook{Snapshots: snapshots(), Simple: simple}))

	r, err := Read(path)
	require.NoError(t, err)
	ins := Inspect(r)
	assert.Equal(t, columns.CompositeSimple, ins.Composite)
	assert.Equal(t, "CCC", ins.Top[0].Ticker)
	assert.Equal(t, "DDD", ins.Bottom[len(ins.Bottom)-1].Ticker)
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}
