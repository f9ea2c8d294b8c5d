package metrics

import (
	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// Derived column names.
const (
	EV            = "EV"
	EVSnap        = "EV_snap"
	ROEFund       = "ROE_fund"
	NetMarginFund = "NetMargin_fund"
	EVEBITDA      = "EV_EBITDA"
	EVRevenue     = "EV_Revenue"
)

var snapshotLabels = []string{"shortName", "sector", "industry"}

// SimpleValuation builds the snapshot-only peer table: provider fields renamed
// to canonical names, ranked on the snapshot metrics, ordered by CompositeRank.
func SimpleValuation(snaps []types.Snapshot) Table {
	t := snapshotTable(snaps, columns.Symbol, columns.SimpleRenames)
	if t.Empty() {
		return t
	}
	return Rank(t, columns.SimpleLowBetter, columns.SimpleHighBetter, columns.CompositeSimple)
}

// FinalPeerTable joins each snapshot row with its latest annual statement and
// revenue growth, derives enterprise value, fundamentals-based returns and EV
// multiples, and ranks on every metric, ordered by CompositeRank_All. Snapshot
// rows are never dropped; companies without statements keep missing fields.
func FinalPeerTable(snaps []types.Snapshot, fund []types.Fundamentals) Table {
	t := snapshotTable(snaps, columns.Ticker, columns.FinalRenames)
	if t.Empty() {
		return t
	}

	latest := LatestAnnual(fund)
	if len(latest) > 0 {
		t.Labels = append(t.Labels, "date", "calendarYear")
		t.Columns = append(t.Columns, types.FundamentalsFields...)
		for i, r := range t.Rows {
			f, ok := latest[r.Ticker]
			if !ok {
				f = types.Fundamentals{}
			}
			r.Labels["date"] = f.Date
			r.Labels["calendarYear"] = f.CalendarYear
			for k, v := range f.Numeric() {
				r.Values[k] = v
			}
			t.Rows[i] = r
		}
	}

	growth := RevenueGrowth(fund)
	if len(growth) > 0 {
		byTicker := make(map[string]Growth, len(growth))
		for _, g := range growth {
			byTicker[g.Ticker] = g
		}
		t.Columns = append(t.Columns, RevYoY, RevCAGR3Y)
		for _, r := range t.Rows {
			g := byTicker[r.Ticker]
			r.Values[RevYoY] = g.YoY
			r.Values[RevCAGR3Y] = g.CAGR3Y
		}
	}

	t.Columns = append(t.Columns, EV)
	for _, r := range t.Rows {
		r.Values[EV] = EnterpriseValue(
			r.Value("MarketCap"), r.Value("totalDebt"), r.Value("cashAndCashEquivalents"), r.Value(EVSnap))
	}

	if len(latest) > 0 {
		t.Columns = append(t.Columns, ROEFund, NetMarginFund, EVEBITDA, EVRevenue)
		for _, r := range t.Rows {
			r.Values[ROEFund] = num.Div(r.Value("netIncome"), r.Value("totalStockholdersEquity"))
			r.Values[NetMarginFund] = num.Div(r.Value("netIncome"), r.Value("revenue"))
			r.Values[EVEBITDA] = num.Div(r.Value(EV), r.Value("ebitda"))
			r.Values[EVRevenue] = num.Div(r.Value(EV), r.Value("revenue"))
		}
	}

	return Rank(t, columns.LowBetter, columns.HighBetter, columns.CompositeAll)
}

// EnterpriseValue is market cap plus debt minus cash when all three are known,
// otherwise the fallback (typically the provider's figure), which may be missing.
func EnterpriseValue(marketCap, debt, cash, fallback num.Value) num.Value {
	if marketCap.Present() && debt.Present() && cash.Present() {
		return num.Sub(num.Add(marketCap, debt), cash)
	}
	return fallback
}

// LatestAnnual returns the most recent statement row per ticker. Rows without a
// parseable date are only chosen when a ticker has no dated rows.
func LatestAnnual(rows []types.Fundamentals) map[string]types.Fundamentals {
	out := make(map[string]types.Fundamentals)
	for t, g := range groupByTicker(rows) {
		sorted := append([]types.Fundamentals(nil), g...)
		sortByDate(sorted, true)
		out[t] = sorted[0]
	}
	return out
}

func snapshotTable(snaps []types.Snapshot, id string, renames map[string]string) Table {
	t := Table{ID: id, Labels: append([]string(nil), snapshotLabels...)}
	for _, f := range types.SnapshotFields {
		t.Columns = append(t.Columns, columns.Rename(renames, f))
	}
	if len(snaps) == 0 {
		return t
	}
	t.Rows = make([]Row, 0, len(snaps))
	for _, s := range snaps {
		r := newRow(s.Symbol)
		for k, v := range s.Labels() {
			r.Labels[k] = v
		}
		for k, v := range s.Numeric() {
			r.Values[columns.Rename(renames, k)] = v
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}
