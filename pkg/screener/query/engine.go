package query

import (
	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/analytics"
	"github.com/komsit37/screener/pkg/screener/types"
)

// View is everything the dashboard renders for one query.
type View struct {
	Query         Query                   `json:"query"`
	Rows          []types.TickerRow       `json:"-"`
	Table         Page                    `json:"table"`
	SectorPER     []types.SectorAggregate `json:"sectorPer"`
	RisingSectors []types.SectorRise      `json:"risingSectors"`
	RisingTickers []types.RankedTicker    `json:"risingTickers"`
}

// Engine answers queries over a fixed row set. PER is derived once at
// construction; Run never mutates the rows.
type Engine struct {
	rows []types.TickerRow
}

// NewEngine enriches rows with PER and keeps the copy.
func NewEngine(rows []types.TickerRow) *Engine {
	return &Engine{rows: analytics.EnrichWithPER(rows)}
}

// Rows returns a copy of the enriched rows.
func (e *Engine) Rows() []types.TickerRow {
	out := make([]types.TickerRow, len(e.rows))
	for i, r := range e.rows {
		out[i] = r.Clone()
	}
	return out
}

// Lookup finds a row by symbol and periodicity.
func (e *Engine) Lookup(symbol string, p types.Periodicity) (types.TickerRow, bool) {
	for _, r := range e.rows {
		if r.Symbol == symbol && r.Periodicity == p {
			return r.Clone(), true
		}
	}
	return types.TickerRow{}, false
}

// Run selects by periodicity, applies the filters and derives every view.
// Search narrows only the rising-ticker list.
func (e *Engine) Run(q Query) (View, error) {
	q = q.withDefaults()
	if err := q.Validate(); err != nil {
		return View{}, err
	}
	selected := FilterByPeriodicity(e.rows, q.Periodicity)
	filtered := ApplyScreenerFilters(selected, q.Filters())

	rising := analytics.RankRisingTickers(filtered, q.Search)
	sectors := analytics.RankRisingSectors(filtered)
	if q.Limit > 0 {
		rising = rising[:min(q.Limit, len(rising))]
		sectors = sectors[:min(q.Limit, len(sectors))]
	}

	log.Debug().
		Str("periodicity", string(q.Periodicity)).
		Str("sector", string(q.Sector)).
		Int("selected", len(selected)).
		Int("filtered", len(filtered)).
		Msg("screener query")

	return View{
		Query:         q,
		Rows:          filtered,
		Table:         Paginate(SortRows(filtered, q.Sort, q.Order), q.Page, q.PageSize),
		SectorPER:     analytics.AggregateSectorPER(filtered),
		RisingSectors: sectors,
		RisingTickers: rising,
	}, nil
}

// SectorDetail returns the rows of one sector for periodicity p, in input
// order.
func (e *Engine) SectorDetail(sector types.Sector, p types.Periodicity) []types.TickerRow {
	return ApplyScreenerFilters(FilterByPeriodicity(e.rows, p), Filters{Sector: types.SectorFilter(sector)})
}
