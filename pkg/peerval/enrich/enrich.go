// Package enrich adds live quotes to ranked tickers for terminal output.
package enrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	yfgo "github.com/komsit37/yf-go"
	"github.com/rs/zerolog"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

// QuoteService fetches the latest quote for a symbol.
type QuoteService interface {
	Get(ctx context.Context, sym string) (types.Quote, error)
}

// YFService implements QuoteService using the yf-go price module.
type YFService struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYFService(timeout time.Duration) *YFService {
	return &YFService{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFService) Get(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, sym, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return types.Quote{}, err
	}
	if res.Price == nil {
		return types.Quote{}, fmt.Errorf("no price for %s", sym)
	}

	var q types.Quote
	p := res.Price.RegularMarketPrice
	if p.Fmt != "" {
		q.Price = p.Fmt
	} else if p.Raw != nil {
		q.Price = fmt.Sprintf("%.2f", *p.Raw)
	}
	cp := res.Price.RegularMarketChangePercent
	q.ChgFmt = cp.Fmt
	if cp.Raw != nil {
		q.ChgRaw = *cp.Raw
		if q.ChgFmt == "" {
			q.ChgFmt = fmt.Sprintf("%.2f%%", q.ChgRaw)
		}
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else {
		q.Name = res.Price.LongName
	}
	return q, nil
}

// Quotes looks up every ticker through svc. Failures are logged and the ticker
// is left out of the result.
func Quotes(ctx context.Context, svc QuoteService, tickers []string, log zerolog.Logger) map[string]types.Quote {
	out := make(map[string]types.Quote, len(tickers))
	for _, t := range tickers {
		q, err := svc.Get(ctx, t)
		if err != nil {
			log.Warn().Err(err).Str("ticker", t).Msg("quote unavailable")
			continue
		}
		out[t] = q
	}
	return out
}

// CacheService decorates a QuoteService with TTL+LRU cache.
type CacheService struct {
	next QuoteService
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry
	order []string // oldest first
}

type cacheEntry struct {
	at time.Time
	q  types.Quote
}

func NewCacheService(next QuoteService, ttl time.Duration, size int) *CacheService {
	return &CacheService{next: next, ttl: ttl, size: size, now: time.Now, items: make(map[string]cacheEntry)}
}

func (c *CacheService) Get(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, nil
	}
	now := c.now()
	c.mu.Lock()
	if ent, ok := c.items[sym]; ok {
		if now.Sub(ent.at) <= c.ttl {
			c.touchLocked(sym)
			c.mu.Unlock()
			return ent.q, nil
		}
		delete(c.items, sym)
		c.removeLocked(sym)
	}
	c.mu.Unlock()

	q, err := c.next.Get(ctx, sym)
	if err != nil {
		return q, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[sym]; ok {
		c.removeLocked(sym)
	}
	c.items[sym] = cacheEntry{at: now, q: q}
	c.order = append(c.order, sym)
	for len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
	return q, nil
}

func (c *CacheService) touchLocked(k string) {
	c.removeLocked(k)
	c.order = append(c.order, k)
}

func (c *CacheService) removeLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
