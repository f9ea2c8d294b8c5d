package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
	"golang.org/x/time/rate"

	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// Bar is one daily close from the Yahoo chart endpoint.
type Bar struct {
	Date  time.Time
	Close float64
}

// YahooAPI is the subset of Yahoo Finance used by Yahoo. Info returns the quote
// summary keyed by Yahoo field name.
type YahooAPI interface {
	Info(symbol string) (map[string]any, error)
	History(symbol, period string) ([]Bar, error)
}

// Yahoo serves snapshots and prices from Yahoo Finance, one ticker at a time.
type Yahoo struct {
	api     YahooAPI
	log     zerolog.Logger
	limiter *rate.Limiter
	timeout time.Duration
	period  string
}

// YahooOption configures Yahoo.
type YahooOption func(*Yahoo)

// WithYahooAPI replaces the go-yfinance backend.
func WithYahooAPI(api YahooAPI) YahooOption {
	return func(y *Yahoo) { y.api = api }
}

// WithYahooLogger sets the logger.
func WithYahooLogger(l zerolog.Logger) YahooOption {
	return func(y *Yahoo) { y.log = l.With().Str("component", "yahoo").Logger() }
}

// WithYahooLimiter sets the request pacer.
func WithYahooLimiter(l *rate.Limiter) YahooOption {
	return func(y *Yahoo) { y.limiter = l }
}

// WithHistoryPeriod sets the chart range requested before date filtering.
func WithHistoryPeriod(p string) YahooOption {
	return func(y *Yahoo) {
		if p != "" {
			y.period = p
		}
	}
}

// NewYahoo creates a Yahoo provider. The timeout bounds each ticker call.
func NewYahoo(timeout time.Duration, opts ...YahooOption) *Yahoo {
	y := &Yahoo{
		api:     YFinance{},
		log:     zerolog.Nop(),
		limiter: NewLimiter(150 * time.Millisecond),
		timeout: timeout,
		period:  "5y",
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Snapshots fetches the quote summary of each ticker. A ticker whose lookup
// fails still yields a row carrying only its symbol.
func (y *Yahoo) Snapshots(ctx context.Context, tickers []string) ([]types.Snapshot, error) {
	out := make([]types.Snapshot, 0, len(tickers))
	for _, t := range tickers {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		info, err := call(ctx, y.timeout, func() (map[string]any, error) { return y.api.Info(t) })
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			y.log.Warn().Err(err).Str("ticker", t).Msg("snapshot unavailable")
			out = append(out, types.Snapshot{Symbol: t})
			continue
		}
		out = append(out, SnapshotFromInfo(t, info))
	}
	return out, nil
}

// Prices fetches adjusted daily closes and keeps those dated within [start, end).
// Tickers without history are logged and skipped.
func (y *Yahoo) Prices(ctx context.Context, tickers []string, start, end time.Time) ([]types.PricePoint, error) {
	var out []types.PricePoint
	for _, t := range tickers {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		bars, err := call(ctx, y.timeout, func() ([]Bar, error) { return y.api.History(t, y.period) })
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			y.log.Warn().Err(err).Str("ticker", t).Msg("price history unavailable")
			continue
		}
		n := 0
		for _, b := range bars {
			d := b.Date.UTC().Truncate(24 * time.Hour)
			if (!start.IsZero() && d.Before(start)) || (!end.IsZero() && !d.Before(end)) {
				continue
			}
			out = append(out, types.PricePoint{Date: d.Format(types.DateLayout), Ticker: t, Close: num.Of(b.Close)})
			n++
		}
		y.log.Debug().Str("ticker", t).Int("bars", n).Msg("price history")
	}
	return out, nil
}

// SnapshotFromInfo maps a quote summary onto a Snapshot. Keys match case-insensitively.
// Zero numbers are read as absent since the upstream structs cannot tell them apart.
func SnapshotFromInfo(symbol string, info map[string]any) types.Snapshot {
	lower := make(map[string]any, len(info))
	for k, v := range info {
		lower[strings.ToLower(k)] = v
	}
	n := func(key string) num.Value {
		v := num.Coerce(lower[strings.ToLower(key)])
		if f, ok := v.Get(); ok && f == 0 {
			return num.Missing()
		}
		return v
	}
	s := func(key string) string {
		if v, ok := lower[strings.ToLower(key)].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	return types.Snapshot{
		Symbol:            symbol,
		ShortName:         s("shortName"),
		MarketCap:         n("marketCap"),
		EnterpriseValue:   n("enterpriseValue"),
		TrailingPE:        n("trailingPE"),
		ForwardPE:         n("forwardPE"),
		PriceToBook:       n("priceToBook"),
		ProfitMargins:     n("profitMargins"),
		ReturnOnEquity:    n("returnOnEquity"),
		EbitdaMargins:     n("ebitdaMargins"),
		GrossMargins:      n("grossMargins"),
		OperatingMargins:  n("operatingMargins"),
		Beta:              n("beta"),
		Sector:            s("sector"),
		Industry:          s("industry"),
		FullTimeEmployees: n("fullTimeEmployees"),
	}
}

// call runs f and gives up once timeout elapses or ctx ends. The go-yfinance
// calls take no context, so an abandoned call finishes in the background.
func call[T any](ctx context.Context, timeout time.Duration, f func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := f()
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// YFinance is the go-yfinance backed YahooAPI.
type YFinance struct{}

// Info returns the ticker's quote summary as a generic map.
func (YFinance) Info(symbol string) (map[string]any, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("create ticker %s: %w", symbol, err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("info %s: %w", symbol, err)
	}
	if info == nil {
		return nil, fmt.Errorf("info %s: empty response", symbol)
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("info %s: %w", symbol, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("info %s: %w", symbol, err)
	}
	return m, nil
}

// History returns adjusted daily bars over period.
func (YFinance) History(symbol, period string) ([]Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("create ticker %s: %w", symbol, err)
	}
	defer t.Close()

	bars, err := t.History(models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	})
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		d, ok := barTime(b.Date)
		if !ok {
			continue
		}
		out = append(out, Bar{Date: d, Close: b.Close})
	}
	return out, nil
}

func barTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case int64:
		return time.Unix(t, 0).UTC(), true
	case string:
		return types.ParseDate(t)
	}
	return time.Time{}, false
}
