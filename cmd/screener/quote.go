package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/komsit37/screener/pkg/screener/analytics"
	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/columns"
	"github.com/komsit37/screener/pkg/screener/normalize"
	"github.com/komsit37/screener/pkg/screener/query"
	"github.com/komsit37/screener/pkg/screener/render"
	"github.com/komsit37/screener/pkg/screener/source"
	"github.com/komsit37/screener/pkg/screener/types"
)

// rowFlags locate one ticker row.
type rowFlags struct {
	sourceFlags
	rows        string
	periodicity string
}

func (f *rowFlags) register(cmd *cobra.Command) {
	f.sourceFlags.register(cmd)
	cmd.Flags().StringVar(&f.rows, "rows", "", "read from a YAML rows file or directory")
	cmd.Flags().StringVarP(&f.periodicity, "periodicity", "p", string(types.Quarterly), "quarterly or annual")
}

// load returns the PER-enriched row for symbol.
func (f *rowFlags) load(ctx context.Context, symbol string) (types.TickerRow, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	p := types.Periodicity(f.periodicity)

	var rows []types.TickerRow
	switch {
	case f.rows != "" || f.fromCache:
		var args []string
		if f.rows != "" {
			args = []string{f.rows}
		}
		s, spec, closeSrc, err := f.sourceFlags.resolve(args, "")
		if err != nil {
			return types.TickerRow{}, err
		}
		defer closeSrc()
		if rows, err = s.Load(ctx, spec); err != nil {
			return types.TickerRow{}, err
		}
	case f.backend != "":
		row, err := source.NewHTTPSource(f.backend, cache.New(nil)).Ticker(ctx, symbol)
		if err != nil {
			return types.TickerRow{}, err
		}
		rows = []types.TickerRow{row}
	default:
		raw, err := newService().FetchTicker(ctx, symbol)
		if err != nil {
			return types.TickerRow{}, err
		}
		row, err := normalize.Ticker(raw)
		if err != nil {
			return types.TickerRow{}, err
		}
		rows = []types.TickerRow{row}
	}

	row, ok := query.NewEngine(rows).Lookup(symbol, p)
	if !ok {
		return types.TickerRow{}, fmt.Errorf("no %s data for %s", p, symbol)
	}
	return row, nil
}

func newQuoteCmd() *cobra.Command {
	var (
		rf      rowFlags
		asJSON  bool
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show one ticker's fundamentals and the context of its latest rise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := rf.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rc, hasRise := analytics.RiseContextOf(row)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Row  types.TickerRow       `json:"row"`
					Rise analytics.RiseContext `json:"rise"`
				}{row, rc})
			}

			view, err := query.NewEngine([]types.TickerRow{row}).Run(query.Query{Periodicity: row.Periodicity})
			if err != nil {
				return err
			}
			cols := append(append([]string{}, columns.Sets["id"]...), "period")
			cols = append(cols, columns.Sets["price"]...)
			cols = append(cols, columns.Sets["fundamentals"]...)
			if err := render.NewTableRenderer().Render(out, view, render.RenderOptions{Columns: cols, Color: !noColor}); err != nil {
				return err
			}
			if hasRise {
				fmt.Fprintln(out)
				render.RenderRise(out, rc, !noColor)
			}
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print row and rise context as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	return cmd
}
