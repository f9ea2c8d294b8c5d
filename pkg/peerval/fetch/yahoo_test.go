package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/peerval/pkg/peerval/num"
)

type fakeYahoo struct {
	info    map[string]map[string]any
	bars    map[string][]Bar
	block   chan struct{}
	periods []string
}

func (f *fakeYahoo) Info(symbol string) (map[string]any, error) {
	if f.block != nil {
		<-f.block
	}
	m, ok := f.info[symbol]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (f *fakeYahoo) History(symbol, period string) ([]Bar, error) {
	f.periods = append(f.periods, period)
	b, ok := f.bars[symbol]
	if !ok {
		return nil, errors.New("no data")
	}
	return b, nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestYahoo_Snapshots(t *testing.T) {
	api := &fakeYahoo{info: map[string]map[string]any{
		"MSFT": {
			"shortName": "Microsoft Corporation", "marketCap": 3.1e12, "trailingPE": 36.2,
			"returnOnEquity": 0.35, "sector": "Technology", "beta": 0.0,
		},
		"ORCL": {"ShortName": "Oracle", "MarketCap": 4.0e11},
	}}
	y := NewYahoo(time.Second, WithYahooAPI(api), WithYahooLimiter(NewLimiter(0)))

	snaps, err := y.Snapshots(context.Background(), []string{"MSFT", "XXXX", "ORCL"})
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	assert.Equal(t, "MSFT", snaps[0].Symbol)
	assert.Equal(t, "Microsoft Corporation", snaps[0].ShortName)
	assert.Equal(t, num.Of(3.1e12), snaps[0].MarketCap)
	assert.Equal(t, num.Of(36.2), snaps[0].TrailingPE)
	assert.False(t, snaps[0].Beta.Present(), "zero reads as absent")
	assert.False(t, snaps[0].ForwardPE.Present())

	assert.Equal(t, "XXXX", snaps[1].Symbol, "failed ticker keeps a symbol-only row")
	assert.False(t, snaps[1].MarketCap.Present())

	assert.Equal(t, "Oracle", snaps[2].ShortName, "keys match case-insensitively")
	assert.Equal(t, num.Of(4.0e11), snaps[2].MarketCap)
}

func TestYahoo_SnapshotTimeout(t *testing.T) {
	api := &fakeYahoo{block: make(chan struct{}), info: map[string]map[string]any{}}
	defer close(api.block)
	y := NewYahoo(10*time.Millisecond, WithYahooAPI(api), WithYahooLimiter(NewLimiter(0)))

	snaps, err := y.Snapshots(context.Background(), []string{"SLOW"})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "SLOW", snaps[0].Symbol)
}

func TestYahoo_Prices(t *testing.T) {
	api := &fakeYahoo{bars: map[string][]Bar{
		"MSFT": {
			{Date: day("2021-08-30"), Close: 300},
			{Date: day("2021-08-31").Add(13 * time.Hour), Close: 301},
			{Date: day("2021-09-01"), Close: 302},
			{Date: day("2021-09-02"), Close: 303},
		},
	}}
	y := NewYahoo(time.Second, WithYahooAPI(api), WithYahooLimiter(NewLimiter(0)), WithHistoryPeriod("max"))

	pts, err := y.Prices(context.Background(), []string{"MSFT", "GONE"}, day("2021-08-31"), day("2021-09-02"))
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "2021-08-31", pts[0].Date)
	assert.Equal(t, num.Of(301), pts[0].Close)
	assert.Equal(t, "2021-09-01", pts[1].Date)
	assert.Equal(t, "MSFT", pts[1].Ticker)
	assert.Equal(t, []string{"max", "max"}, api.periods)
}

func TestYahoo_CancelledContext(t *testing.T) {
	y := NewYahoo(time.Second, WithYahooAPI(&fakeYahoo{}), WithYahooLimiter(NewLimiter(0)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := y.Snapshots(ctx, []string{"MSFT"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBarTime(t *testing.T) {
	d, ok := barTime(int64(1700000000))
	require.True(t, ok)
	assert.Equal(t, 2023, d.Year())

	_, ok = barTime(time.Time{})
	assert.False(t, ok)

	_, ok = barTime(3.5)
	assert.False(t, ok)
}
