package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/komsit37/peerval/pkg/peerval/cache"
	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/enrich"
	"github.com/komsit37/peerval/pkg/peerval/fetch"
	"github.com/komsit37/peerval/pkg/peerval/filter"
	"github.com/komsit37/peerval/pkg/peerval/metrics"
	"github.com/komsit37/peerval/pkg/peerval/render"
	"github.com/komsit37/peerval/pkg/peerval/report"
	"github.com/komsit37/peerval/pkg/peerval/source"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// ErrNoTickers is returned when filtering leaves nothing to compare.
var ErrNoTickers = errors.New("no tickers to compare")

// Runner wires a peer-set source, the data providers, the cache, and the
// output stages into one run.
type Runner struct {
	Source       source.Source
	Snapshots    fetch.SnapshotProvider
	Prices       fetch.PriceProvider
	Fundamentals fetch.FundamentalsProvider // nil skips fundamentals
	Cache        *cache.Store
	Quotes       enrich.QuoteService // nil skips live quotes
	Renderer     render.Renderer     // nil skips terminal output
	Writer       io.Writer
	Log          zerolog.Logger
}

// ExecuteOptions selects peers and controls the report and terminal output.
type ExecuteOptions struct {
	Group       filter.Filter // peer-set names
	Filter      filter.Filter // tickers
	Tickers     []string      // replaces every loaded set when non-empty
	Start       time.Time
	End         time.Time
	ReportPath  string // empty skips the workbook
	Columns     []string
	Sets        []string
	Top         int
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}

// Result is what a run produced.
type Result struct {
	Sets     []types.PeerSet
	Workbook report.Workbook
	Views    []render.View
}

// statColumns are summarised on the Peer_Stats sheet when present.
var statColumns = append(append([]string{"MarketCap", "EV"}, columns.LowBetter...), columns.HighBetter...)

// Execute runs one comparison over the sets loaded from spec and returns what
// it wrote and rendered.
func (r *Runner) Execute(ctx context.Context, spec any, opts ExecuteOptions) (Result, error) {
	sets, err := r.peerSets(ctx, spec, opts)
	if err != nil {
		return Result{}, err
	}
	universe := filter.Union(sets)
	r.Log.Info().Int("sets", len(sets)).Int("tickers", len(universe)).Msg("peer universe")

	points, err := r.Cache.Prices(ctx, r.Prices, universe, opts.Start, opts.End)
	if err != nil {
		return Result{}, fmt.Errorf("prices: %w", err)
	}
	snaps, err := r.Cache.Snapshots(ctx, r.Snapshots, universe)
	if err != nil {
		return Result{}, fmt.Errorf("snapshots: %w", err)
	}
	var fund []types.Fundamentals
	if r.Fundamentals != nil {
		if fund, err = r.Cache.Fundamentals(ctx, r.Fundamentals, universe); err != nil {
			return Result{}, fmt.Errorf("fundamentals: %w", err)
		}
	} else {
		r.Log.Info().Msg("no fundamentals provider; skipping annual statements")
	}

	wb := buildWorkbook(points, snaps, fund)
	if opts.ReportPath != "" {
		if err := report.Write(opts.ReportPath, wb); err != nil {
			return Result{}, err
		}
		r.Log.Info().Str("path", opts.ReportPath).Strs("sheets", report.Sheets(wb)).Msg("report written")
	}

	res := Result{Sets: sets, Workbook: wb}
	for _, s := range sets {
		v, err := r.view(ctx, s, snaps, fund, opts)
		if err != nil {
			return Result{}, err
		}
		res.Views = append(res.Views, v)
	}

	if r.Renderer == nil {
		return res, nil
	}
	return res, r.Renderer.Render(r.Writer, res.Views, render.RenderOptions{
		Color:       opts.Color,
		PrettyJSON:  opts.PrettyJSON,
		MaxColWidth: opts.MaxColWidth,
	})
}

// peerSets loads and filters the sets, applying the ticker override.
func (r *Runner) peerSets(ctx context.Context, spec any, opts ExecuteOptions) ([]types.PeerSet, error) {
	var sets []types.PeerSet
	if len(opts.Tickers) > 0 {
		sets = []types.PeerSet{{Name: "tickers", Tickers: opts.Tickers}}
	} else {
		loaded, err := r.Source.Load(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("load peer sets: %w", err)
		}
		sets = filter.Sets(loaded, opts.Group)
	}

	out := make([]types.PeerSet, 0, len(sets))
	for _, s := range sets {
		s.Tickers = filter.Tickers(s.Tickers, opts.Filter)
		if len(s.Tickers) == 0 {
			r.Log.Debug().Str("set", s.Name).Msg("no tickers left after filter")
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrNoTickers
	}
	return out, nil
}

// buildWorkbook derives every report table from the fetched data. The final
// table is built even without statements; it then ranks on snapshot metrics
// with EV taken from the provider.
func buildWorkbook(points []types.PricePoint, snaps []types.Snapshot, fund []types.Fundamentals) report.Workbook {
	px := metrics.Wide(points)
	wb := report.Workbook{
		Prices:       px,
		Snapshots:    snaps,
		Fundamentals: fund,
		Simple:       metrics.SimpleValuation(snaps),
		Final:        metrics.FinalPeerTable(snaps, fund),
		Returns:      metrics.SummarizeReturns(px),
		Annual:       metrics.DailyReturns(metrics.ResampleLast(px, metrics.Annual)),
		Quarterly:    metrics.DailyReturns(metrics.ResampleLast(px, metrics.Quarterly)),
	}
	wb.Stats = metrics.PeerStats(wb.Final, statColumns)
	return wb
}

// view ranks one peer set against itself and picks its display columns.
func (r *Runner) view(ctx context.Context, s types.PeerSet, snaps []types.Snapshot, fund []types.Fundamentals, opts ExecuteOptions) (render.View, error) {
	in := make(map[string]struct{}, len(s.Tickers))
	for _, t := range s.Tickers {
		in[t] = struct{}{}
	}
	var setSnaps []types.Snapshot
	for _, sn := range snaps {
		if _, ok := in[sn.Symbol]; ok {
			setSnaps = append(setSnaps, sn)
		}
	}
	var setFund []types.Fundamentals
	for _, f := range fund {
		if _, ok := in[f.Ticker]; ok {
			setFund = append(setFund, f)
		}
	}

	var t metrics.Table
	if len(setFund) > 0 {
		t = metrics.FinalPeerTable(setSnaps, setFund)
	} else {
		t = metrics.SimpleValuation(setSnaps)
	}
	if opts.Top > 0 {
		t = t.Head(opts.Top)
	}

	cols, err := displayColumns(t, opts)
	if err != nil {
		return render.View{}, fmt.Errorf("set %s: %w", s.Name, err)
	}
	v := render.View{Name: s.Name, Table: t, Columns: cols}
	if r.Quotes != nil {
		v.Quotes = enrich.Quotes(ctx, r.Quotes, t.Tickers(), r.Log)
	}
	return v, nil
}

// displayColumns resolves explicit columns, then column sets, then the default
// order. Explicit columns must exist in the table.
func displayColumns(t metrics.Table, opts ExecuteOptions) ([]string, error) {
	available := t.AllColumns()
	if len(opts.Columns) > 0 {
		cols := columns.Compute(opts.Columns, available)
		if err := columns.Validate(cols, available); err != nil {
			return nil, err
		}
		return cols, nil
	}
	if len(opts.Sets) > 0 {
		expanded, err := columns.ExpandSets(opts.Sets)
		if err != nil {
			return nil, err
		}
		return append([]string{t.ID}, columns.Present(expanded, available)...), nil
	}
	return columns.Compute(nil, available), nil
}
