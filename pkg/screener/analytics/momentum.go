package analytics

import (
	"sort"

	"github.com/komsit37/screener/pkg/screener/filter"
	"github.com/komsit37/screener/pkg/screener/types"
)

// PctChange returns (a-b)/b; ok is false when b is zero.
func PctChange(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	return (a - b) / b, true
}

// Rise is the percent price change between the two most recent snapshots.
// A single snapshot is compared with itself. ok is false for rows without
// snapshots or with a zero previous price.
func Rise(r types.TickerRow) (float64, bool) {
	latest, ok := r.Snapshots.Latest()
	if !ok {
		return 0, false
	}
	prev, _ := r.Snapshots.Previous()
	return PctChange(latest.Price, prev.Price)
}

// MatchSearch reports whether the row's symbol or name contains needle,
// case-insensitively. An empty needle matches everything.
func MatchSearch(r types.TickerRow, needle string) bool {
	f := filter.Substr(needle)
	return f.Match(r.Symbol) || f.Match(r.Name)
}

// RankRisingTickers ranks rows by Rise, descending. Undefined rises rank as 0
// and ties keep input order. Rows without snapshots are left out. search
// narrows the ranking to matching symbols or names.
func RankRisingTickers(rows []types.TickerRow, search string) []types.RankedTicker {
	out := make([]types.RankedTicker, 0, len(rows))
	for _, r := range rows {
		if !MatchSearch(r, search) {
			continue
		}
		latest, ok := r.Snapshots.Latest()
		if !ok {
			continue
		}
		prev, _ := r.Snapshots.Previous()
		rise, _ := Rise(r)
		out = append(out, types.RankedTicker{
			Symbol: r.Symbol,
			Name:   r.Name,
			Sector: r.Sector,
			Rise:   rise,
			Latest: latest.Clone(),
			Prev:   prev.Clone(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rise > out[j].Rise })
	return out
}

// RankRisingSectors averages the defined rises of each sector's rows and
// ranks sectors descending. A sector with no defined rise averages 0.
func RankRisingSectors(rows []types.TickerRow) []types.SectorRise {
	order, groups := GroupBySector(rows)
	out := make([]types.SectorRise, 0, len(order))
	for _, sec := range order {
		var sum float64
		var n int
		for _, r := range groups[sec] {
			if v, ok := Rise(r); ok {
				sum += v
				n++
			}
		}
		sr := types.SectorRise{Sector: sec}
		if n > 0 {
			sr.AvgRise = sum / float64(n)
		}
		out = append(out, sr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgRise > out[j].AvgRise })
	return out
}
