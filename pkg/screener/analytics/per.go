// Package analytics derives PER, sector statistics, momentum rankings and
// rise-start boundaries from normalised rows. Every function takes rows whose
// snapshots are most-recent-first and returns new values without mutating
// its input.
package analytics

import "github.com/komsit37/screener/pkg/screener/types"

// PER returns price/eps, or nil when eps is not positive.
func PER(eps, price float64) *float64 {
	if eps <= 0 {
		return nil
	}
	v := price / eps
	return &v
}

// EnrichWithPER returns copies of rows with PER recomputed on every snapshot.
// Stored PER values are always replaced.
func EnrichWithPER(rows []types.TickerRow) []types.TickerRow {
	out := make([]types.TickerRow, len(rows))
	for i, r := range rows {
		cp := r.Clone()
		for j := range cp.Snapshots {
			s := &cp.Snapshots[j]
			s.PER = PER(s.EPS, s.Price)
		}
		out[i] = cp
	}
	return out
}

// LatestPER returns the PER of a row's latest snapshot.
func LatestPER(r types.TickerRow) *float64 {
	latest, ok := r.Snapshots.Latest()
	if !ok {
		return nil
	}
	return latest.PER
}
