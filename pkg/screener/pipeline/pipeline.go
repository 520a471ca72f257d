// Package pipeline wires a row source, the query engine and a renderer into
// one screener run.
package pipeline

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/filter"
	"github.com/komsit37/screener/pkg/screener/query"
	"github.com/komsit37/screener/pkg/screener/render"
	"github.com/komsit37/screener/pkg/screener/source"
	"github.com/komsit37/screener/pkg/screener/types"
)

type Runner struct {
	Source   source.Source
	Renderer render.Renderer
	Writer   io.Writer
}

type ExecuteOptions struct {
	Columns     []string
	Filter      filter.Filter
	Query       query.Query
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
	Summary     bool
}

// Execute loads rows for spec, keeps the symbols accepted by the filter, runs
// the query and renders the resulting view.
func (r *Runner) Execute(ctx context.Context, spec any, opts ExecuteOptions) error {
	view, err := r.View(ctx, spec, opts)
	if err != nil {
		return err
	}
	return r.Renderer.Render(r.Writer, view, render.RenderOptions{
		Columns:     opts.Columns,
		Color:       opts.Color,
		PrettyJSON:  opts.PrettyJSON,
		MaxColWidth: opts.MaxColWidth,
		Summary:     opts.Summary,
	})
}

// View runs everything Execute does except rendering.
func (r *Runner) View(ctx context.Context, spec any, opts ExecuteOptions) (query.View, error) {
	rows, err := r.Source.Load(ctx, spec)
	if err != nil {
		return query.View{}, err
	}

	// Apply filter by symbol
	var filt filter.Filter = filter.Always(true)
	if opts.Filter != nil {
		filt = opts.Filter
	}
	filtered := make([]types.TickerRow, 0, len(rows))
	for _, row := range rows {
		if filt.Match(row.Symbol) {
			filtered = append(filtered, row)
		}
	}
	log.Debug().Int("loaded", len(rows)).Int("kept", len(filtered)).Msg("pipeline rows")

	return query.NewEngine(filtered).Run(opts.Query)
}
