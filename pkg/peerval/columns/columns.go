package columns

import (
	"fmt"
	"math"
	"strings"

	"github.com/komsit37/peerval/pkg/peerval/num"
)

// Identifier column names used by the two peer tables.
const (
	Symbol = "symbol"
	Ticker = "ticker"
)

// Composite column names for the two peer tables.
const (
	CompositeSimple = "CompositeRank"
	CompositeAll    = "CompositeRank_All"
)

// RankSuffix is appended to a metric name to form its rank column.
const RankSuffix = "_rank"

// SimpleRenames maps provider snapshot fields to canonical names.
var SimpleRenames = map[string]string{
	"trailingPE":       "PE_TTM",
	"forwardPE":        "PE_FWD",
	"priceToBook":      "P_B",
	"marketCap":        "MarketCap",
	"enterpriseValue":  "EV",
	"profitMargins":    "NetMargin",
	"returnOnEquity":   "ROE",
	"ebitdaMargins":    "EBITDA_Margin",
	"grossMargins":     "GrossMargin",
	"operatingMargins": "OpMargin",
}

// FinalRenames is SimpleRenames with the provider enterprise value kept aside
// as EV_snap, since EV is recomputed from fundamentals.
var FinalRenames = map[string]string{
	"trailingPE":       "PE_TTM",
	"forwardPE":        "PE_FWD",
	"priceToBook":      "P_B",
	"marketCap":        "MarketCap",
	"enterpriseValue":  "EV_snap",
	"profitMargins":    "NetMargin",
	"returnOnEquity":   "ROE",
	"ebitdaMargins":    "EBITDA_Margin",
	"grossMargins":     "GrossMargin",
	"operatingMargins": "OpMargin",
}

// Rename returns the canonical name for a provider field, or the field itself.
func Rename(table map[string]string, field string) string {
	if c, ok := table[field]; ok {
		return c
	}
	return field
}

// Polarity lists. Lower values rank best in the Low lists, higher in the High lists.
var (
	SimpleLowBetter  = []string{"PE_TTM", "PE_FWD", "P_B"}
	SimpleHighBetter = []string{"ROE", "NetMargin", "EBITDA_Margin", "GrossMargin", "OpMargin"}

	LowBetter  = []string{"PE_TTM", "PE_FWD", "P_B", "EV_EBITDA", "EV_Revenue"}
	HighBetter = []string{
		"ROE", "ROE_fund", "NetMargin", "NetMargin_fund",
		"EBITDA_Margin", "GrossMargin", "OpMargin", "Rev_YoY", "Rev_CAGR_3Y",
	}
)

// Kind describes how a column is displayed.
type Kind int

const (
	KindText Kind = iota
	KindMultiple
	KindPercent
	KindMoney
	KindCount
	KindRank
)

// Def describes a known column.
type Def struct {
	Key  string
	Kind Kind
	Desc string
}

// Registry holds display definitions for known columns.
var Registry = map[string]Def{}

func register(kind Kind, desc string, keys ...string) {
	for _, k := range keys {
		Registry[k] = Def{Key: k, Kind: kind, Desc: desc}
	}
}

func init() {
	register(KindText, "company identifier", Symbol, Ticker)
	register(KindText, "provider short name", "shortName")
	register(KindText, "sector", "sector")
	register(KindText, "industry", "industry")
	register(KindText, "fiscal period end", "date")
	register(KindText, "fiscal year", "calendarYear")

	register(KindMultiple, "price / trailing earnings", "PE_TTM")
	register(KindMultiple, "price / forward earnings", "PE_FWD")
	register(KindMultiple, "price / book", "P_B")
	register(KindMultiple, "enterprise value / EBITDA", "EV_EBITDA")
	register(KindMultiple, "enterprise value / revenue", "EV_Revenue")
	register(KindMultiple, "beta", "beta")

	register(KindPercent, "return on equity (provider)", "ROE")
	register(KindPercent, "return on equity (net income / equity)", "ROE_fund")
	register(KindPercent, "net margin (provider)", "NetMargin")
	register(KindPercent, "net margin (net income / revenue)", "NetMargin_fund")
	register(KindPercent, "EBITDA margin", "EBITDA_Margin")
	register(KindPercent, "gross margin", "GrossMargin")
	register(KindPercent, "operating margin", "OpMargin")
	register(KindPercent, "revenue growth year over year", "Rev_YoY")
	register(KindPercent, "revenue 3-year CAGR", "Rev_CAGR_3Y")

	register(KindMoney, "market capitalisation", "MarketCap")
	register(KindMoney, "enterprise value", "EV")
	register(KindMoney, "enterprise value (provider)", "EV_snap")
	register(KindMoney, "annual statement field",
		"revenue", "netIncome", "ebitda", "operatingIncome", "incomeBeforeTax",
		"incomeTaxExpense", "totalAssets", "totalStockholdersEquity",
		"cashAndCashEquivalents", "totalDebt", "totalCurrentAssets", "totalCurrentLiabilities")

	register(KindCount, "full-time employees", "fullTimeEmployees")
	register(KindCount, "diluted shares", "shares")

	register(KindRank, "mean of metric ranks (snapshot)", CompositeSimple)
	register(KindRank, "mean of metric ranks (all)", CompositeAll)
}

// GetDef returns the definition for a column, deriving one for rank columns.
func GetDef(key string) (Def, bool) {
	if d, ok := Registry[key]; ok {
		return d, true
	}
	if IsRank(key) {
		return Def{Key: key, Kind: KindRank, Desc: "rank of " + strings.TrimSuffix(key, RankSuffix)}, true
	}
	return Def{}, false
}

// IsRank reports whether key names a per-metric rank column.
func IsRank(key string) bool { return strings.HasSuffix(key, RankSuffix) }

// RankOf returns the rank column name for a metric.
func RankOf(metric string) string { return metric + RankSuffix }

// IsNumeric reports whether a column holds numbers rather than labels.
func IsNumeric(key string) bool {
	d, ok := GetDef(key)
	if !ok {
		return true
	}
	return d.Kind != KindText
}

// UnknownColumnError reports a column that is not in the table being rendered.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string { return "unknown column: " + e.Name }

// Compute determines final column order. Explicit columns are honoured exactly
// (deduplicated); otherwise the default is identifier, name, composite, then
// every metric set in order, keeping only columns present in available.
func Compute(explicit []string, available []string) []string {
	if len(explicit) > 0 {
		seen := map[string]struct{}{}
		out := make([]string, 0, len(explicit))
		for _, k := range explicit {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
		return out
	}

	have := make(map[string]struct{}, len(available))
	for _, c := range available {
		have[c] = struct{}{}
	}
	out := make([]string, 0, 16)
	add := func(k string) {
		if _, ok := have[k]; !ok || contains(out, k) {
			return
		}
		out = append(out, k)
	}
	add(Ticker)
	add(Symbol)
	add("shortName")
	add(CompositeAll)
	add(CompositeSimple)
	for _, set := range DefaultSets {
		for _, k := range Sets[set] {
			add(k)
		}
	}
	return out
}

// Validate returns an UnknownColumnError for the first column not in available.
func Validate(cols []string, available []string) error {
	for _, c := range cols {
		if !contains(available, c) {
			return &UnknownColumnError{Name: c}
		}
	}
	return nil
}

// Format renders a value for terminal output according to the column kind.
func Format(key string, v num.Value) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	d, _ := GetDef(key)
	switch d.Kind {
	case KindPercent:
		return FormatFloat(f*100, 1) + "%"
	case KindMoney:
		return FormatMoney(f)
	case KindCount:
		return formatIntComma(int64(math.Round(f)))
	case KindRank:
		if f == math.Trunc(f) {
			return fmt.Sprintf("%d", int64(f))
		}
		return FormatFloat(f, 2)
	default:
		return FormatFloat(f, 2)
	}
}

// FormatFloat formats a float with a fixed number of decimals and comma separators.
func FormatFloat(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	dot := strings.IndexByte(s, '.')
	if dot == -1 {
		dot = len(s)
	}
	intPart, fracPart := s[:dot], s[dot:]
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	return sign + groupThousands(intPart) + fracPart
}

// FormatMoney abbreviates large amounts: 1.23T, 45.6B, 789.0M.
func FormatMoney(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return FormatFloat(v/1e12, 2) + "T"
	case abs >= 1e9:
		return FormatFloat(v/1e9, 2) + "B"
	case abs >= 1e6:
		return FormatFloat(v/1e6, 1) + "M"
	default:
		return FormatFloat(v, 0)
	}
}

func formatIntComma(n int64) string {
	if n < 0 {
		return "-" + groupThousands(fmt.Sprintf("%d", -n))
	}
	return groupThousands(fmt.Sprintf("%d", n))
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	out := make([]byte, 0, n+n/3)
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	out = append(out, digits[:rem]...)
	for i := rem; i < n; i += 3 {
		out = append(out, ',')
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
