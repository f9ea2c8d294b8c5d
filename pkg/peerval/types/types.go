package types

import (
	"strings"
	"time"

	"github.com/komsit37/peerval/pkg/peerval/num"
)

// DateLayout is the calendar-date format used in caches and reports.
const DateLayout = "2006-01-02"

// PeerSet is a named group of tickers compared against each other.
type PeerSet struct {
	Name    string
	Sector  string
	Tickers []string
}

// Snapshot holds point-in-time provider fields for one company.
// Field tags carry the provider names; the CSV cache uses them as headers.
type Snapshot struct {
	Symbol            string    `csv:"symbol" json:"symbol"`
	ShortName         string    `csv:"shortName" json:"shortName"`
	MarketCap         num.Value `csv:"marketCap" json:"marketCap"`
	EnterpriseValue   num.Value `csv:"enterpriseValue" json:"enterpriseValue"`
	TrailingPE        num.Value `csv:"trailingPE" json:"trailingPE"`
	ForwardPE         num.Value `csv:"forwardPE" json:"forwardPE"`
	PriceToBook       num.Value `csv:"priceToBook" json:"priceToBook"`
	ProfitMargins     num.Value `csv:"profitMargins" json:"profitMargins"`
	ReturnOnEquity    num.Value `csv:"returnOnEquity" json:"returnOnEquity"`
	EbitdaMargins     num.Value `csv:"ebitdaMargins" json:"ebitdaMargins"`
	GrossMargins      num.Value `csv:"grossMargins" json:"grossMargins"`
	OperatingMargins  num.Value `csv:"operatingMargins" json:"operatingMargins"`
	Beta              num.Value `csv:"beta" json:"beta"`
	Sector            string    `csv:"sector" json:"sector"`
	Industry          string    `csv:"industry" json:"industry"`
	FullTimeEmployees num.Value `csv:"fullTimeEmployees" json:"fullTimeEmployees"`
}

// SnapshotFields lists the numeric provider fields of Snapshot in report order.
var SnapshotFields = []string{
	"marketCap", "enterpriseValue", "trailingPE", "forwardPE", "priceToBook",
	"profitMargins", "returnOnEquity", "ebitdaMargins", "grossMargins",
	"operatingMargins", "beta", "fullTimeEmployees",
}

// Numeric returns the numeric fields keyed by provider name.
func (s Snapshot) Numeric() map[string]num.Value {
	return map[string]num.Value{
		"marketCap":         s.MarketCap,
		"enterpriseValue":   s.EnterpriseValue,
		"trailingPE":        s.TrailingPE,
		"forwardPE":         s.ForwardPE,
		"priceToBook":       s.PriceToBook,
		"profitMargins":     s.ProfitMargins,
		"returnOnEquity":    s.ReturnOnEquity,
		"ebitdaMargins":     s.EbitdaMargins,
		"grossMargins":      s.GrossMargins,
		"operatingMargins":  s.OperatingMargins,
		"beta":              s.Beta,
		"fullTimeEmployees": s.FullTimeEmployees,
	}
}

// Labels returns the text fields keyed by provider name.
func (s Snapshot) Labels() map[string]string {
	return map[string]string{
		"shortName": s.ShortName,
		"sector":    s.Sector,
		"industry":  s.Industry,
	}
}

// Fundamentals is one annual statement row for one company.
type Fundamentals struct {
	Ticker                  string    `csv:"ticker" json:"ticker"`
	Date                    string    `csv:"date" json:"date"`
	CalendarYear            string    `csv:"calendarYear" json:"calendarYear"`
	Revenue                 num.Value `csv:"revenue" json:"revenue"`
	NetIncome               num.Value `csv:"netIncome" json:"netIncome"`
	EBITDA                  num.Value `csv:"ebitda" json:"ebitda"`
	OperatingIncome         num.Value `csv:"operatingIncome" json:"operatingIncome"`
	IncomeBeforeTax         num.Value `csv:"incomeBeforeTax" json:"incomeBeforeTax"`
	IncomeTaxExpense        num.Value `csv:"incomeTaxExpense" json:"incomeTaxExpense"`
	Shares                  num.Value `csv:"shares" json:"shares"`
	TotalAssets             num.Value `csv:"totalAssets" json:"totalAssets"`
	TotalStockholdersEquity num.Value `csv:"totalStockholdersEquity" json:"totalStockholdersEquity"`
	CashAndCashEquivalents  num.Value `csv:"cashAndCashEquivalents" json:"cashAndCashEquivalents"`
	TotalDebt               num.Value `csv:"totalDebt" json:"totalDebt"`
	TotalCurrentAssets      num.Value `csv:"totalCurrentAssets" json:"totalCurrentAssets"`
	TotalCurrentLiabilities num.Value `csv:"totalCurrentLiabilities" json:"totalCurrentLiabilities"`
}

// FundamentalsFields lists the numeric fields of Fundamentals in report order.
var FundamentalsFields = []string{
	"revenue", "netIncome", "ebitda", "operatingIncome", "incomeBeforeTax",
	"incomeTaxExpense", "shares", "totalAssets", "totalStockholdersEquity",
	"cashAndCashEquivalents", "totalDebt", "totalCurrentAssets", "totalCurrentLiabilities",
}

// Numeric returns the numeric fields keyed by provider name.
func (f Fundamentals) Numeric() map[string]num.Value {
	return map[string]num.Value{
		"revenue":                 f.Revenue,
		"netIncome":               f.NetIncome,
		"ebitda":                  f.EBITDA,
		"operatingIncome":         f.OperatingIncome,
		"incomeBeforeTax":         f.IncomeBeforeTax,
		"incomeTaxExpense":        f.IncomeTaxExpense,
		"shares":                  f.Shares,
		"totalAssets":             f.TotalAssets,
		"totalStockholdersEquity": f.TotalStockholdersEquity,
		"cashAndCashEquivalents":  f.CashAndCashEquivalents,
		"totalDebt":               f.TotalDebt,
		"totalCurrentAssets":      f.TotalCurrentAssets,
		"totalCurrentLiabilities": f.TotalCurrentLiabilities,
	}
}

// Time parses Date. The second result is false for empty or malformed dates.
func (f Fundamentals) Time() (time.Time, bool) {
	return ParseDate(f.Date)
}

// ParseDate accepts a calendar date or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// PricePoint is one adjusted close for one ticker.
type PricePoint struct {
	Date   string    `csv:"date" json:"date"`
	Ticker string    `csv:"ticker" json:"ticker"`
	Close  num.Value `csv:"close" json:"close"`
}

// Quote contains formatted and raw change values for rendering.
type Quote struct {
	Price  string  `json:"price"`
	ChgFmt string  `json:"chgFmt"`
	ChgRaw float64 `json:"chgRaw"`
	Name   string  `json:"name"`
}
