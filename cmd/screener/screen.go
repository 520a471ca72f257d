package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/columns"
	"github.com/komsit37/screener/pkg/screener/filter"
	"github.com/komsit37/screener/pkg/screener/pipeline"
	"github.com/komsit37/screener/pkg/screener/query"
	"github.com/komsit37/screener/pkg/screener/render"
	"github.com/komsit37/screener/pkg/screener/source"
	"github.com/komsit37/screener/pkg/screener/types"
)

// sourceFlags choose where rows come from; shared by screen, quote and chart.
type sourceFlags struct {
	backend   string
	fromCache bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "backend", "", "read from a running screener backend at this base URL")
	cmd.Flags().BoolVar(&f.fromCache, "from-cache", false, "read the last batch persisted in the badger cache")
}

// resolve returns the source and its load spec. A positional path selects
// YAML rows; otherwise the backend, the cache or the live provider is used.
func (f *sourceFlags) resolve(args []string, symbolsExpr string) (source.Source, any, func(), error) {
	noop := func() {}
	switch {
	case len(args) > 0:
		return source.YAMLSource{}, args[0], noop, nil
	case f.backend != "":
		return source.NewHTTPSource(f.backend, cache.New(cache.NewMemoryStore(0, 0))), nil, noop, nil
	case f.fromCache:
		if cfg.Cache.Driver != "badger" {
			return nil, nil, nil, errors.New("--from-cache needs cache.driver=badger")
		}
		store, closeStore, err := openStore()
		if err != nil {
			return nil, nil, nil, err
		}
		return source.StoreSource{Store: store}, nil, closeStore, nil
	default:
		symbols, err := universeSymbols(symbolsExpr)
		if err != nil {
			return nil, nil, nil, err
		}
		return source.ProviderSource{Fetcher: newService()}, symbols, noop, nil
	}
}

func newScreenCmd() *cobra.Command {
	var (
		src         sourceFlags
		cols        []string
		sets        []string
		symbols     string
		asJSON      bool
		pretty      bool
		symsOnly    bool
		summary     bool
		noColor     bool
		maxColWidth int

		periodicity string
		sector      string
		perMax      float64
		epsMin      float64
		q           query.Query
	)
	cmd := &cobra.Command{
		Use:   "screen [rows.yaml|dir]",
		Short: "Screen tickers by sector, PER and EPS and rank momentum",
		Long: `Screen loads ticker rows, applies the screener filters and prints the
table page plus, with --summary, sector PER statistics and the rising
sectors and tickers.

Rows come from a YAML file or directory when given, otherwise from a running
backend (--backend), the persisted cache (--from-cache) or the live provider
for the configured universe.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, spec, closeSrc, err := src.resolve(args, symbols)
			if err != nil {
				return err
			}
			defer closeSrc()

			explicit, err := columns.ExpandSets(sets)
			if err != nil {
				return err
			}
			explicit = append(explicit, cols...)
			if _, err := columns.Compute(explicit); err != nil {
				return err
			}

			filt, err := filter.Parse(symbols)
			if err != nil {
				return err
			}

			q.Periodicity = types.Periodicity(periodicity)
			q.Sector = types.SectorFilter(sector)
			if cmd.Flags().Changed("per-max") {
				q.PERMax = &perMax
			}
			if cmd.Flags().Changed("eps-min") {
				q.EPSMin = &epsMin
			}

			var rnd render.Renderer = render.NewTableRenderer()
			switch {
			case asJSON:
				rnd = render.NewJSONRenderer()
			case symsOnly:
				rnd = render.NewSymsRenderer()
			}

			if maxColWidth <= 0 {
				maxColWidth = wrapWidth(detectTerminalWidth())
			}

			runner := &pipeline.Runner{Source: s, Renderer: rnd, Writer: cmd.OutOrStdout()}
			return runner.Execute(cmd.Context(), spec, pipeline.ExecuteOptions{
				Columns:     explicit,
				Filter:      filt,
				Query:       q,
				Color:       !noColor,
				PrettyJSON:  pretty,
				MaxColWidth: maxColWidth,
				Summary:     summary,
			})
		},
	}
	src.register(cmd)
	f := cmd.Flags()
	f.StringSliceVarP(&cols, "columns", "c", nil, "columns to show, in order (e.g. sym,per,rise)")
	f.StringSliceVar(&sets, "set", nil, "column sets to show: default, id, price, fundamentals")
	f.StringVarP(&symbols, "symbols", "s", "", "symbol filter: list (AAPL,MSFT), glob (BRK-*), /regex/ or substring")
	f.BoolVar(&asJSON, "json", false, "print the view as JSON")
	f.BoolVar(&pretty, "pretty", false, "indent JSON output")
	f.BoolVar(&symsOnly, "syms", false, "print matching symbols on one line")
	f.BoolVar(&summary, "summary", false, "add sector PER and rising sections")
	f.BoolVar(&noColor, "no-color", false, "disable colors")
	f.IntVar(&maxColWidth, "max-col-width", 0, "wrap columns wider than this (default: terminal width / 4)")

	f.StringVarP(&periodicity, "periodicity", "p", string(types.Quarterly), "quarterly or annual")
	f.StringVar(&sector, "sector", types.AllSectors, "sector name or all")
	f.Float64Var(&perMax, "per-max", 0, "keep rows with latest PER at or below this")
	f.Float64Var(&epsMin, "eps-min", 0, "keep rows with latest EPS at or above this")
	f.StringVar(&q.Search, "search", "", "narrow rising tickers by symbol or name")
	f.StringVar((*string)(&q.Sort), "sort", string(query.SortRise), "sort key: symbol, per, eps, price, rise")
	f.StringVar((*string)(&q.Order), "order", string(query.Desc), "sort order: asc or desc")
	f.IntVar(&q.Page, "page", 1, "table page, 1-based")
	f.IntVar(&q.PageSize, "page-size", query.DefaultPageSize, "rows per table page")
	f.IntVar(&q.Limit, "limit", 0, "cap the rising lists (0 = all)")
	return cmd
}
