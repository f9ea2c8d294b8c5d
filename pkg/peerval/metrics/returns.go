package metrics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// tradingDays annualises daily volatility.
const tradingDays = 252

// Frame is a date x ticker grid of prices or returns.
type Frame struct {
	Dates   []string
	Tickers []string
	Values  map[string][]num.Value
}

// Empty reports whether the frame has no dates.
func (f Frame) Empty() bool { return len(f.Dates) == 0 }

// Wide pivots long price points into a frame with ascending dates. Tickers keep
// first-seen order.
func Wide(points []types.PricePoint) Frame {
	dateSet := map[string]struct{}{}
	var tickers []string
	seenT := map[string]struct{}{}
	for _, p := range points {
		dateSet[p.Date] = struct{}{}
		if _, ok := seenT[p.Ticker]; !ok {
			seenT[p.Ticker] = struct{}{}
			tickers = append(tickers, p.Ticker)
		}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	idx := make(map[string]int, len(dates))
	for i, d := range dates {
		idx[d] = i
	}

	f := Frame{Dates: dates, Tickers: tickers, Values: make(map[string][]num.Value, len(tickers))}
	for _, t := range tickers {
		f.Values[t] = make([]num.Value, len(dates))
	}
	for _, p := range points {
		f.Values[p.Ticker][idx[p.Date]] = p.Close
	}
	return f
}

// DailyReturns is the percent change between consecutive dates per ticker.
// The first date and dates where every ticker is missing are dropped.
func DailyReturns(f Frame) Frame {
	out := Frame{Tickers: f.Tickers, Values: make(map[string][]num.Value, len(f.Tickers))}
	if len(f.Dates) < 2 {
		return out
	}
	for i := 1; i < len(f.Dates); i++ {
		row := make(map[string]num.Value, len(f.Tickers))
		present := false
		for _, t := range f.Tickers {
			prev, cur := f.Values[t][i-1], f.Values[t][i]
			v := num.Sub(num.Div(cur, prev), num.Of(1))
			row[t] = v
			present = present || v.Present()
		}
		if !present {
			continue
		}
		out.Dates = append(out.Dates, f.Dates[i])
		for _, t := range f.Tickers {
			out.Values[t] = append(out.Values[t], row[t])
		}
	}
	return out
}

// Period selects the resampling bucket.
type Period int

const (
	Annual Period = iota
	Quarterly
)

// ResampleLast keeps the last present value per ticker in each period. Periods
// are labelled with their end date.
func ResampleLast(f Frame, p Period) Frame {
	out := Frame{Tickers: f.Tickers, Values: make(map[string][]num.Value, len(f.Tickers))}
	bucketIdx := map[string]int{}
	for i, d := range f.Dates {
		tm, ok := types.ParseDate(d)
		if !ok {
			continue
		}
		label := periodEnd(tm, p).Format(types.DateLayout)
		b, ok := bucketIdx[label]
		if !ok {
			b = len(out.Dates)
			bucketIdx[label] = b
			out.Dates = append(out.Dates, label)
			for _, t := range f.Tickers {
				out.Values[t] = append(out.Values[t], num.Missing())
			}
		}
		for _, t := range f.Tickers {
			if v := f.Values[t][i]; v.Present() {
				out.Values[t][b] = v
			}
		}
	}
	return out
}

func periodEnd(t time.Time, p Period) time.Time {
	switch p {
	case Quarterly:
		q := (int(t.Month())-1)/3 + 1
		return time.Date(t.Year(), time.Month(q*3)+1, 0, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}
}

// ReturnStats summarises one ticker's price history.
type ReturnStats struct {
	Ticker       string
	FirstDate    string
	LastDate     string
	FirstClose   num.Value
	LastClose    num.Value
	TotalReturn  num.Value
	AnnualReturn num.Value
	Volatility   num.Value
}

// SummarizeReturns computes total and annualised return and annualised
// volatility of daily returns for every ticker in f.
func SummarizeReturns(f Frame) []ReturnStats {
	daily := DailyReturns(f)
	out := make([]ReturnStats, 0, len(f.Tickers))
	for _, t := range f.Tickers {
		s := ReturnStats{Ticker: t}
		first, last := -1, -1
		for i, v := range f.Values[t] {
			if !v.Present() {
				continue
			}
			if first < 0 {
				first = i
			}
			last = i
		}
		if first >= 0 {
			s.FirstDate, s.LastDate = f.Dates[first], f.Dates[last]
			s.FirstClose, s.LastClose = f.Values[t][first], f.Values[t][last]
			s.TotalReturn = num.Sub(num.Div(s.LastClose, s.FirstClose), num.Of(1))
			s.AnnualReturn = annualise(s)
		}

		var rets []float64
		for _, v := range daily.Values[t] {
			if x, ok := v.Get(); ok {
				rets = append(rets, x)
			}
		}
		if len(rets) >= 2 {
			s.Volatility = num.Of(stat.StdDev(rets, nil) * math.Sqrt(tradingDays))
		}
		out = append(out, s)
	}
	return out
}

func annualise(s ReturnStats) num.Value {
	t0, ok0 := types.ParseDate(s.FirstDate)
	t1, ok1 := types.ParseDate(s.LastDate)
	growth, ok := num.Div(s.LastClose, s.FirstClose).Get()
	if !ok0 || !ok1 || !ok || growth <= 0 {
		return num.Missing()
	}
	years := t1.Sub(t0).Hours() / 24 / 365.25
	if years <= 0 {
		return num.Missing()
	}
	return num.Of(math.Pow(growth, 1/years) - 1)
}
