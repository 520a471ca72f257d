// Package source loads canonical ticker rows for the screener from seeded
// YAML files, the live provider or a running backend.
package source

import (
	"context"

	"github.com/komsit37/screener/pkg/screener/types"
)

// Source loads rows from a specification (e.g., filepath, symbol list, URL).
// Rows are normalized: snapshots most recent first, PER not yet derived.
type Source interface {
	Load(ctx context.Context, spec any) ([]types.TickerRow, error)
}
