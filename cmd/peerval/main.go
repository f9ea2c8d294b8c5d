package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/komsit37/peerval/pkg/peerval/cache"
	"github.com/komsit37/peerval/pkg/peerval/columns"
	"github.com/komsit37/peerval/pkg/peerval/config"
	"github.com/komsit37/peerval/pkg/peerval/enrich"
	"github.com/komsit37/peerval/pkg/peerval/fetch"
	"github.com/komsit37/peerval/pkg/peerval/filter"
	"github.com/komsit37/peerval/pkg/peerval/logger"
	"github.com/komsit37/peerval/pkg/peerval/pipeline"
	"github.com/komsit37/peerval/pkg/peerval/render"
	"github.com/komsit37/peerval/pkg/peerval/report"
	"github.com/komsit37/peerval/pkg/peerval/source"
)

const (
	quoteTTL       = 5 * time.Minute
	quoteCacheSize = 256
)

type runFlags struct {
	configFile  string
	filter      string
	group       string
	output      string
	columns     string
	sets        string
	quotes      bool
	top         int
	maxColWidth int
}

func main() {
	v := viper.New()
	var f runFlags

	run := func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, v, f, args)
	}

	rootCmd := &cobra.Command{
		Use:           "peerval [peers.yaml|dir]",
		Short:         "Rank peer companies on valuation and quality and write a comparison report",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "config file (default ./peerval.yaml)")
	pf.String("tickers", "", "comma-separated tickers; overrides the peer file")
	pf.StringVar(&f.filter, "filter", "", "keep tickers matching: exact list, glob, /regex/, substring; ! negates")
	pf.StringVar(&f.group, "group", "", "keep peer groups whose name matches (same syntax as --filter)")
	pf.String("report", "", "report workbook path")
	pf.String("data-dir", "", "cache directory")
	pf.Bool("refresh", false, "ignore cached data and fetch again")
	pf.String("log-level", "", "debug, info, warn, error")
	pf.StringVarP(&f.output, "output", "o", "table", "output format: table, json, tickers")
	pf.StringVar(&f.columns, "columns", "", "comma-separated columns to display")
	pf.StringVar(&f.sets, "sets", "", "comma-separated column sets to display (see 'peerval columns')")
	pf.BoolVar(&f.quotes, "quotes", false, "add live price and change columns")
	pf.IntVar(&f.top, "top", 0, "show only the best N companies per group")
	pf.IntVar(&f.maxColWidth, "max-col-width", 0, "truncate text columns to this width (0 = fit terminal)")

	for key, name := range map[string]string{
		config.KeyTickers:    "tickers",
		config.KeyReportPath: "report",
		config.KeyDataDir:    "data-dir",
		config.KeyRefresh:    "refresh",
		config.KeyLogLevel:   "log-level",
	} {
		if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run [peers.yaml|dir]",
			Short: "Fetch, rank, write the report, and print the peer tables",
			Args:  cobra.MaximumNArgs(1),
			RunE:  run,
		},
		&cobra.Command{
			Use:   "inspect <report.xlsx>",
			Short: "Summarise a written report: sheets, snapshot gaps, best and worst by composite",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := report.Read(args[0])
				if err != nil {
					return err
				}
				return render.Inspection(cmd.OutOrStdout(), report.Inspect(r))
			},
		},
		&cobra.Command{
			Use:   "columns",
			Short: "List known columns and column sets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printColumns(cmd)
				return nil
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, v *viper.Viper, f runFlags, args []string) error {
	cfg, err := config.Load(v, f.configFile)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	renderer, err := render.New(f.output)
	if err != nil {
		return err
	}
	group, err := filter.Parse(f.group)
	if err != nil {
		return err
	}
	tickerFilter, err := filter.Parse(f.filter)
	if err != nil {
		return err
	}

	limiter := fetch.NewLimiter(cfg.RequestInterval)
	yahoo := fetch.NewYahoo(cfg.Timeout,
		fetch.WithYahooLogger(log),
		fetch.WithYahooLimiter(limiter),
		fetch.WithHistoryPeriod(cfg.HistoryPeriod),
	)
	r := &pipeline.Runner{
		Snapshots: yahoo,
		Prices:    yahoo,
		Cache:     cache.New(cfg.DataDir, cfg.Refresh, log),
		Renderer:  renderer,
		Writer:    cmd.OutOrStdout(),
		Log:       log,
	}
	if cfg.FMPAPIKey != "" {
		r.Fundamentals = fetch.NewFMPClient(cfg.FMPAPIKey, cfg.Timeout,
			fetch.WithBaseURL(cfg.FMPBaseURL),
			fetch.WithLogger(log),
			fetch.WithLimiter(limiter),
		)
	} else {
		log.Warn().Msg("FMP_API_KEY not set; fundamentals, EV multiples, and growth are skipped")
	}
	if f.quotes {
		r.Quotes = enrich.NewCacheService(enrich.NewYFService(cfg.Timeout), quoteTTL, quoteCacheSize)
	}

	opts := pipeline.ExecuteOptions{
		Group:       group,
		Filter:      tickerFilter,
		Start:       cfg.Start(),
		End:         cfg.End(),
		ReportPath:  cfg.ReportPath,
		Columns:     splitColumns(f.columns),
		Sets:        splitColumns(f.sets),
		Top:         f.top,
		MaxColWidth: f.maxColWidth,
	}
	width := detectTerminalWidth()
	opts.Color = width > 0
	opts.PrettyJSON = width > 0
	if opts.MaxColWidth == 0 && width > 0 {
		opts.MaxColWidth = width / 4
	}

	var spec any
	if len(args) == 1 {
		r.Source = source.YAMLSource{}
		spec = args[0]
		if cmd.Flags().Changed("tickers") {
			opts.Tickers = cfg.Tickers
		}
	} else {
		r.Source = source.ConfigSource{Config: cfg}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_, err = r.Execute(ctx, spec, opts)
	if errors.Is(err, context.Canceled) {
		return errors.New("interrupted")
	}
	return err
}

// splitColumns splits a comma list, keeping case since column names are case-sensitive.
func splitColumns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printColumns(cmd *cobra.Command) {
	w := cmd.OutOrStdout()

	keys := make([]string, 0, len(columns.Registry))
	for k := range columns.Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.AppendHeader(table.Row{"COLUMN", "DESCRIPTION"})
	for _, k := range keys {
		tw.AppendRow(table.Row{k, columns.Registry[k].Desc})
	}
	tw.AppendRow(table.Row{"<metric>" + columns.RankSuffix, "rank of a metric within its group"})
	tw.Render()

	fmt.Fprintln(w)
	sets := table.NewWriter()
	sets.SetOutputMirror(w)
	sets.SetStyle(table.StyleLight)
	sets.Style().Options.DrawBorder = false
	sets.AppendHeader(table.Row{"SET", "COLUMNS"})
	for _, name := range columns.AvailableSets() {
		sets.AppendRow(table.Row{name, strings.Join(columns.Sets[name], ", ")})
	}
	sets.Render()
}
