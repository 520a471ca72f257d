package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/filter"
	"github.com/komsit37/screener/pkg/screener/provider"
	"github.com/komsit37/screener/pkg/screener/source"
	"github.com/komsit37/screener/pkg/screener/types"
	"github.com/komsit37/screener/pkg/screener/universe"
	"github.com/komsit37/screener/pkg/screener/yahoo"
)

func newService() *provider.Service {
	client := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Provider.BaseURL),
		yahoo.WithTimeout(cfg.Provider.Timeout),
		yahoo.WithRateLimit(cfg.Provider.RateLimit),
	)
	opts := []provider.Option{
		provider.WithPriceWindow(cfg.Provider.PriceWindow),
		provider.WithConcurrency(cfg.Provider.Concurrency),
	}
	if cfg.Provider.UseYF {
		opts = append(opts, provider.WithQuoter(provider.NewYFQuoter(cfg.Provider.Timeout)))
	}
	return provider.NewService(client, opts...)
}

// openStore returns the configured cache backend and a closer. Driver "none"
// yields a nil store, which disables caching.
func openStore() (cache.Store, func(), error) {
	switch cfg.Cache.Driver {
	case "badger":
		s, err := cache.OpenBadger(cfg.Cache.Path, cfg.Cache.Retention)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("close cache")
			}
		}, nil
	case "memory":
		return cache.NewMemoryStore(cfg.Cache.Retention, cfg.Cache.Size), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

// universeSymbols loads the universe file and applies the configured symbol
// filter and limit. expr overrides the configured filter when set.
func universeSymbols(expr string) ([]string, error) {
	u, err := universe.Load(cfg.Universe.Path)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	if expr == "" {
		expr = cfg.Universe.Symbols
	}
	f, err := filter.Parse(expr)
	if err != nil {
		return nil, err
	}
	syms := u.Select(cfg.Universe.Limit, f)
	if len(syms) == 0 {
		return nil, fmt.Errorf("universe %s: no symbols selected", cfg.Universe.Path)
	}
	return syms, nil
}

// seedRows loads the sample rows. A missing seed directory is not an error.
func seedRows(ctx context.Context) []types.TickerRow {
	if cfg.Seed.Path == "" {
		return nil
	}
	if _, err := os.Stat(cfg.Seed.Path); errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", cfg.Seed.Path).Msg("no seed rows")
		return nil
	}
	rows, err := source.YAMLSource{}.Load(ctx, cfg.Seed.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Seed.Path).Msg("failed to load seed rows")
		return nil
	}
	return rows
}
