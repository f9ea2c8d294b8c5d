// Package cache keeps provider results as CSV files so repeated runs skip the network.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"github.com/komsit37/peerval/pkg/peerval/fetch"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// File names inside the data directory.
const (
	PricesFile       = "prices.csv"
	SnapshotFile     = "snapshot.csv"
	FundamentalsFile = "fmp_fundamentals.csv"
)

// Store loads cached tables from Dir, fetching and writing them on a miss.
type Store struct {
	Dir     string
	Refresh bool // ignore existing files
	log     zerolog.Logger
}

// New creates a Store rooted at dir.
func New(dir string, refresh bool, log zerolog.Logger) *Store {
	return &Store{Dir: dir, Refresh: refresh, log: log.With().Str("component", "cache").Logger()}
}

// Path returns the full path of a cache file.
func (s *Store) Path(name string) string { return filepath.Join(s.Dir, name) }

// Prices returns cached closes or fetches them from p.
func (s *Store) Prices(ctx context.Context, p fetch.PriceProvider, tickers []string, start, end time.Time) ([]types.PricePoint, error) {
	return loadOrFetch(s, PricesFile, true, func() ([]types.PricePoint, error) {
		return p.Prices(ctx, tickers, start, end)
	})
}

// Snapshots returns cached snapshots or fetches them from p.
func (s *Store) Snapshots(ctx context.Context, p fetch.SnapshotProvider, tickers []string) ([]types.Snapshot, error) {
	return loadOrFetch(s, SnapshotFile, true, func() ([]types.Snapshot, error) {
		return p.Snapshots(ctx, tickers)
	})
}

// Fundamentals returns cached annual rows or fetches each ticker from p.
// Tickers that fail are logged and left out; an empty result is not cached.
func (s *Store) Fundamentals(ctx context.Context, p fetch.FundamentalsProvider, tickers []string) ([]types.Fundamentals, error) {
	return loadOrFetch(s, FundamentalsFile, false, func() ([]types.Fundamentals, error) {
		var all []types.Fundamentals
		for _, t := range tickers {
			rows, err := p.Annual(ctx, t)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.log.Warn().Err(err).Str("ticker", t).Msg("fundamentals unavailable")
				continue
			}
			all = append(all, rows...)
		}
		return all, nil
	})
}

func loadOrFetch[T any](s *Store, name string, keepEmpty bool, fetchFn func() ([]T, error)) ([]T, error) {
	path := s.Path(name)
	if !s.Refresh {
		rows, err := Read[T](path)
		switch {
		case err == nil:
			s.log.Debug().Str("file", path).Int("rows", len(rows)).Msg("cache hit")
			return rows, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	rows, err := fetchFn()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && !keepEmpty {
		s.log.Info().Str("file", path).Msg("nothing fetched, cache not written")
		return rows, nil
	}
	if err := Write(path, rows); err != nil {
		return nil, err
	}
	s.log.Info().Str("file", path).Int("rows", len(rows)).Msg("cache written")
	return rows, nil
}

// Read decodes a CSV file into rows. A file holding no records yields no rows.
func Read[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Write encodes rows to path, creating parent directories.
func Write[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if rows == nil {
		rows = []T{}
	}
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
