package source

import (
	"context"
	"fmt"

	"github.com/komsit37/screener/pkg/screener/normalize"
	"github.com/komsit37/screener/pkg/screener/types"
)

// BatchFetcher is the provider surface ProviderSource needs.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, symbols []string) ([]types.RawTicker, error)
}

// ProviderSource fetches live payloads and normalizes them.
type ProviderSource struct {
	Fetcher BatchFetcher
}

// Load expects spec to be a []string of symbols.
func (s ProviderSource) Load(ctx context.Context, spec any) ([]types.TickerRow, error) {
	symbols, ok := spec.([]string)
	if !ok {
		return nil, fmt.Errorf("provider source expects []string symbols spec")
	}
	raw, err := s.Fetcher.FetchBatch(ctx, symbols)
	if err != nil {
		return nil, err
	}
	return normalize.Normalize(raw), nil
}
