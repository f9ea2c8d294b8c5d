package source

import (
	"context"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

// Source loads peer sets from a specification (e.g., filepath).
type Source interface {
	Load(ctx context.Context, spec any) ([]types.PeerSet, error)
}
