package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/normalize"
	"github.com/komsit37/screener/pkg/screener/types"
)

// ErrNoBatch is returned by StoreSource when the store holds no batch entry.
var ErrNoBatch = errors.New("no cached batch")

// StoreSource reads the last batch persisted by the server's cache, whatever
// its age. It lets the CLI screen offline against a badger directory.
type StoreSource struct {
	Store cache.Store
}

func (s StoreSource) Load(ctx context.Context, _ any) ([]types.TickerRow, error) {
	e, err := s.Store.Get(ctx, cache.BatchKey)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNoBatch
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cache.BatchKey, err)
	}
	var raw []types.RawTicker
	if err := json.Unmarshal(e.Data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", cache.BatchKey, err)
	}
	log.Debug().Time("stored", e.Timestamp).Int("count", len(raw)).Msg("batch from store")
	return normalize.Normalize(raw), nil
}
