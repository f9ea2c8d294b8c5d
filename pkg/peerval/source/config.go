package source

import (
	"context"
	"fmt"

	"github.com/komsit37/peerval/pkg/peerval/config"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// ConfigSource serves the single peer set defined in configuration.
type ConfigSource struct {
	Config config.Config
}

// Load ignores spec and returns the configured sector and tickers.
func (s ConfigSource) Load(ctx context.Context, spec any) ([]types.PeerSet, error) { //nolint:revive
	if len(s.Config.Tickers) == 0 {
		return nil, fmt.Errorf("config source: no tickers configured")
	}
	return []types.PeerSet{{
		Name:    s.Config.SectorName,
		Sector:  s.Config.SectorName,
		Tickers: append([]string(nil), s.Config.Tickers...),
	}}, nil
}
