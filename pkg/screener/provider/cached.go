package provider

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/types"
)

// Cached serves the universe batch and single tickers through a read-through
// cache. Only successful fetches are stored.
type Cached struct {
	next      Fetcher
	cache     *cache.Cache
	universe  func() []string
	batchTTL  time.Duration
	tickerTTL time.Duration
}

// NewCached wraps next. universe supplies the symbols of the batch entry.
func NewCached(next Fetcher, c *cache.Cache, universe func() []string, batchTTL, tickerTTL time.Duration) *Cached {
	if batchTTL <= 0 {
		batchTTL = cache.BatchTTL
	}
	if tickerTTL <= 0 {
		tickerTTL = cache.TickerTTL
	}
	return &Cached{next: next, cache: c, universe: universe, batchTTL: batchTTL, tickerTTL: tickerTTL}
}

// Batch returns the universe payloads, at most batchTTL old.
func (c *Cached) Batch(ctx context.Context) ([]types.RawTicker, error) {
	return c.batch(ctx, c.batchTTL)
}

func (c *Cached) batch(ctx context.Context, maxAge time.Duration) ([]types.RawTicker, error) {
	return cache.Fetch(ctx, c.cache, cache.BatchKey, maxAge, func(ctx context.Context) ([]types.RawTicker, error) {
		return c.next.FetchBatch(ctx, c.universe())
	})
}

// Ticker returns one payload, at most tickerTTL old.
func (c *Cached) Ticker(ctx context.Context, symbol string) (types.RawTicker, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return cache.Fetch(ctx, c.cache, cache.TickerKey(symbol), c.tickerTTL, func(ctx context.Context) (types.RawTicker, error) {
		return c.next.FetchTicker(ctx, symbol)
	})
}

// Refresh reloads the batch entry regardless of its age. On failure the
// previous entry is left in place.
func (c *Cached) Refresh(ctx context.Context) error {
	start := time.Now()
	raw, err := c.batch(ctx, 0)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(raw)).Dur("took", time.Since(start)).Msg("batch cache refreshed")
	return nil
}
