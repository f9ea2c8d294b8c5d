// Package fetch retrieves company snapshots, price history, and annual
// fundamentals from market-data providers.
package fetch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

// SnapshotProvider returns one snapshot per requested ticker, in request order.
type SnapshotProvider interface {
	Snapshots(ctx context.Context, tickers []string) ([]types.Snapshot, error)
}

// PriceProvider returns adjusted daily closes within [start, end).
type PriceProvider interface {
	Prices(ctx context.Context, tickers []string, start, end time.Time) ([]types.PricePoint, error)
}

// FundamentalsProvider returns normalised annual statement rows for one ticker.
type FundamentalsProvider interface {
	Annual(ctx context.Context, ticker string) ([]types.Fundamentals, error)
}

// APIError is a non-200 response from a provider endpoint.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// NewLimiter paces requests one at a time at the given interval.
// A zero interval disables pacing.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
