package fetch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

var joinKeys = []string{"date", "calendarYear"}

// Normalize inner-joins income and balance rows on the statement date keys and
// maps them onto Fundamentals, most recent first. Either side empty yields no rows.
//
// Shares prefer the diluted weighted average. When no row carries totalDebt it
// is rebuilt as shortTermDebt + longTermDebt with absent parts counted as zero.
func Normalize(ticker string, income, balance []map[string]any) []types.Fundamentals {
	if len(income) == 0 || len(balance) == 0 {
		return nil
	}
	var on []string
	for _, k := range joinKeys {
		if hasKey(income, k) && hasKey(balance, k) {
			on = append(on, k)
		}
	}
	if len(on) == 0 {
		return nil
	}

	type pair struct{ inc, bal map[string]any }
	var merged []pair
	for _, i := range income {
		for _, b := range balance {
			if sameKeys(i, b, on) {
				merged = append(merged, pair{i, b})
			}
		}
	}

	anyDebt := false
	for _, p := range merged {
		if num.Coerce(p.bal["totalDebt"]).Present() {
			anyDebt = true
			break
		}
	}

	out := make([]types.Fundamentals, 0, len(merged))
	for _, p := range merged {
		i, b := p.inc, p.bal
		f := types.Fundamentals{
			Ticker:                  ticker,
			Date:                    normalizeDate(i["date"]),
			CalendarYear:            text(i["calendarYear"]),
			Revenue:                 num.Coerce(i["revenue"]),
			NetIncome:               num.Coerce(i["netIncome"]),
			EBITDA:                  num.Coerce(i["ebitda"]),
			OperatingIncome:         num.Coerce(i["operatingIncome"]),
			IncomeBeforeTax:         num.Coerce(i["incomeBeforeTax"]),
			IncomeTaxExpense:        num.Coerce(i["incomeTaxExpense"]),
			Shares:                  num.First(num.Coerce(i["weightedAverageShsOutDil"]), num.Coerce(i["weightedAverageShsOut"])),
			TotalAssets:             num.Coerce(b["totalAssets"]),
			TotalStockholdersEquity: num.Coerce(b["totalStockholdersEquity"]),
			CashAndCashEquivalents:  num.Coerce(b["cashAndCashEquivalents"]),
			TotalDebt:               num.Coerce(b["totalDebt"]),
			TotalCurrentAssets:      num.Coerce(b["totalCurrentAssets"]),
			TotalCurrentLiabilities: num.Coerce(b["totalCurrentLiabilities"]),
		}
		if f.CalendarYear == "" {
			f.CalendarYear = text(b["calendarYear"])
		}
		if !anyDebt {
			f.TotalDebt = num.Of(num.Coerce(b["shortTermDebt"]).Or(0) + num.Coerce(b["longTermDebt"]).Or(0))
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(a, b int) bool {
		ta, okA := out[a].Time()
		tb, okB := out[b].Time()
		switch {
		case okA && okB:
			return ta.After(tb)
		case okA:
			return true
		default:
			return false
		}
	})
	return out
}

func hasKey(rows []map[string]any, key string) bool {
	for _, r := range rows {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}

func sameKeys(a, b map[string]any, keys []string) bool {
	for _, k := range keys {
		if text(a[k]) != text(b[k]) {
			return false
		}
	}
	return true
}

func normalizeDate(v any) string {
	if t, ok := types.ParseDate(text(v)); ok {
		return t.Format(types.DateLayout)
	}
	return ""
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
