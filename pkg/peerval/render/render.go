package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/komsit37/peerval/pkg/peerval/metrics"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// View is one ranked peer table ready for output.
type View struct {
	Name    string
	Table   metrics.Table
	Columns []string               // display order; empty means all columns
	Quotes  map[string]types.Quote // optional live quotes keyed by ticker
}

// Renderer renders views to an output writer.
type Renderer interface {
	Render(w io.Writer, views []View, opts RenderOptions) error
}

type RenderOptions struct {
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}

// New returns the renderer for an output format: table, json, or tickers.
func New(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return NewTableRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	case "tickers", "syms":
		return NewTickersRenderer(), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want table, json, or tickers)", format)
}

func (v View) columns() []string {
	if len(v.Columns) > 0 {
		return v.Columns
	}
	return v.Table.AllColumns()
}
