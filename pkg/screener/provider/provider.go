// Package provider assembles raw per-ticker payloads from Yahoo Finance: a
// quoteSummary per symbol plus a quarter-end close per earnings report.
// Batches fan out per symbol and tolerate partial failure.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/komsit37/screener/pkg/screener/types"
	"github.com/komsit37/screener/pkg/screener/yahoo"
)

// ErrUpstreamUnavailable is returned when every symbol of a batch failed.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrSymbolNotFound is returned when the provider does not know a symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// UnknownSector is reported when the provider has no profile sector.
const UnknownSector = "Unknown"

const DefaultConcurrency = 8

// Fundamentals is the part of the Yahoo client the service reads.
type Fundamentals interface {
	QuoteSummary(ctx context.Context, symbol string) (*yahoo.Summary, error)
	QuarterEndPrice(ctx context.Context, symbol string, at time.Time, window time.Duration) (float64, bool, error)
}

// Fetcher produces raw payloads.
type Fetcher interface {
	FetchTicker(ctx context.Context, symbol string) (types.RawTicker, error)
	FetchBatch(ctx context.Context, symbols []string) ([]types.RawTicker, error)
}

// Service builds RawTickers from the provider.
type Service struct {
	fund        Fundamentals
	quoter      Quoter
	window      time.Duration
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithQuoter takes live price and name from q instead of the summary.
func WithQuoter(q Quoter) Option {
	return func(s *Service) { s.quoter = q }
}

// WithPriceWindow sets the search window around each quarter end.
func WithPriceWindow(d time.Duration) Option {
	return func(s *Service) { s.window = d }
}

// WithConcurrency bounds concurrent per-symbol fetches.
func WithConcurrency(n int) Option {
	return func(s *Service) { s.concurrency = n }
}

func NewService(fund Fundamentals, opts ...Option) *Service {
	s := &Service{fund: fund, window: yahoo.DefaultPriceWindow, concurrency: DefaultConcurrency}
	for _, o := range opts {
		o(s)
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	return s
}

// FetchTicker assembles the raw payload for one symbol. Snapshots are
// returned oldest first; records without EPS are left out.
func (s *Service) FetchTicker(ctx context.Context, symbol string) (types.RawTicker, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return types.RawTicker{}, fmt.Errorf("%w: empty symbol", ErrSymbolNotFound)
	}
	sum, err := s.fund.QuoteSummary(ctx, symbol)
	if err != nil {
		var apiErr *yahoo.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return types.RawTicker{}, fmt.Errorf("%w: %w", ErrSymbolNotFound, err)
		}
		return types.RawTicker{}, fmt.Errorf("quote summary %s: %w", symbol, err)
	}

	raw := types.RawTicker{Symbol: symbol, Name: symbol, Sector: UnknownSector}
	if p := sum.Price; p != nil {
		raw.Price = copyRaw(p.RegularMarketPrice)
		if p.ShortName != "" {
			raw.Name = p.ShortName
		} else if p.LongName != "" {
			raw.Name = p.LongName
		}
	}
	if s.quoter != nil {
		q, err := s.quoter.Quote(ctx, symbol)
		switch {
		case err != nil:
			log.Debug().Err(err).Str("symbol", symbol).Msg("live quote failed; using summary price")
		default:
			if q.Price != nil {
				raw.Price = types.Float(*q.Price)
			}
			if q.Name != "" {
				raw.Name = q.Name
			}
		}
	}
	if sum.SummaryProfile != nil && sum.SummaryProfile.Sector != "" {
		raw.Sector = sum.SummaryProfile.Sector
	}
	if ks := sum.DefaultKeyStatistics; ks != nil {
		raw.EPS = copyRaw(ks.TrailingEPS)
	}
	if raw.Price != nil && raw.EPS != nil && *raw.EPS != 0 {
		raw.PER = types.Float(*raw.Price / *raw.EPS)
	}

	if sum.EarningsHistory != nil {
		raw.Snapshots = s.snapshots(ctx, symbol, sum.EarningsHistory.History, raw.Price, sum.FinancialData)
	}
	return raw, nil
}

func (s *Service) snapshots(ctx context.Context, symbol string, history []yahoo.EarningsEntry, current *float64, fin *yahoo.FinancialDataModule) []types.RawSnapshot {
	latest := latestEntry(history)
	out := make([]types.RawSnapshot, 0, len(history))
	for i, h := range history {
		if h.EPSActual.Raw == nil {
			log.Debug().Str("symbol", symbol).Str("period", h.Label()).Msg("no reported eps")
			continue
		}
		rs := types.RawSnapshot{
			Period: h.Label(),
			EPS:    types.Float(*h.EPSActual.Raw),
			Price:  copyFloat(current),
		}
		if at, ok := h.QuarterEnd(); ok {
			price, found, err := s.fund.QuarterEndPrice(ctx, symbol, at, s.window)
			switch {
			case err != nil:
				log.Warn().Err(err).Str("symbol", symbol).Time("at", at).Msg("quarter-end price failed")
			case !found:
				log.Warn().Str("symbol", symbol).Time("at", at).Msg("no price history around quarter end")
			default:
				rs.Price = types.Float(price)
				if *rs.EPS != 0 {
					rs.PER = types.Float(price / *rs.EPS)
				}
			}
		}
		if i == latest && fin != nil {
			rs.Revenue = copyRaw(fin.TotalRevenue)
			rs.ROE = copyRaw(fin.ReturnOnEquity)
			if de := fin.DebtToEquity.Raw; de != nil {
				rs.DebtEquity = types.Float(*de / 100)
			}
		}
		out = append(out, rs)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := types.ParsePeriod(out[i].Period)
		b, _ := types.ParsePeriod(out[j].Period)
		return a.Less(b)
	})
	return out
}

// latestEntry is the index of the most recent quarter; without dates the
// provider's own order (oldest first) decides.
func latestEntry(history []yahoo.EarningsEntry) int {
	best := len(history) - 1
	var bestAt time.Time
	for i, h := range history {
		if at, ok := h.QuarterEnd(); ok && at.After(bestAt) {
			best, bestAt = i, at
		}
	}
	return best
}

// FetchBatch fetches symbols concurrently. A failing symbol is logged and
// omitted; results keep input order. If every symbol fails the batch fails
// with ErrUpstreamUnavailable.
func (s *Service) FetchBatch(ctx context.Context, symbols []string) ([]types.RawTicker, error) {
	results := make([]*types.RawTicker, len(symbols))
	errs := make([]error, len(symbols))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			raw, err := s.FetchTicker(ctx, sym)
			if err != nil {
				errs[i] = err
				log.Warn().Err(err).Str("symbol", sym).Msg("skip symbol")
				return nil
			}
			results[i] = &raw
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.RawTicker, 0, len(symbols))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if len(symbols) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("%w: all %d symbols failed: %w", ErrUpstreamUnavailable, len(symbols), errors.Join(errs...))
	}
	log.Info().Int("requested", len(symbols)).Int("count", len(out)).Msg("fetched batch")
	return out, nil
}

func copyRaw(v yahoo.Value) *float64 {
	return copyFloat(v.Raw)
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return types.Float(*p)
}
