package analytics

import "github.com/komsit37/screener/pkg/screener/types"

// FindRiseStartIndex scans the most-recent-first history for the first index
// i where price[i] > price[i+1] and returns i+1, the last period before the
// most recent upward move. Without such an index it returns the last index
// (-1 for an empty row).
func FindRiseStartIndex(r types.TickerRow) int {
	s := r.Snapshots
	for i := 0; i+1 < len(s); i++ {
		if s[i].Price > s[i+1].Price {
			return i + 1
		}
	}
	return len(s) - 1
}

// RiseContext is the three-point view around a rise boundary.
type RiseContext struct {
	Symbol      string         `json:"symbol"`
	StartIndex  int            `json:"startIndex"`
	BeforeStart types.Snapshot `json:"beforeStart"`
	Start       types.Snapshot `json:"start"`
	Latest      types.Snapshot `json:"latest"`
}

// Series returns the three points oldest-first.
func (c RiseContext) Series() types.Snapshots {
	return types.Snapshots{c.BeforeStart, c.Start, c.Latest}
}

// RiseContextOf locates the rise start and its preceding reference point at
// min(start+1, last). ok is false for rows without snapshots.
func RiseContextOf(r types.TickerRow) (RiseContext, bool) {
	last := len(r.Snapshots) - 1
	if last < 0 {
		return RiseContext{}, false
	}
	start := FindRiseStartIndex(r)
	before := min(start+1, last)
	return RiseContext{
		Symbol:      r.Symbol,
		StartIndex:  start,
		BeforeStart: r.Snapshots[before].Clone(),
		Start:       r.Snapshots[start].Clone(),
		Latest:      r.Snapshots[0].Clone(),
	}, true
}
