package analytics

import (
	"sort"

	"github.com/komsit37/screener/pkg/screener/types"
)

// GroupBySector groups rows by sector, keeping sectors in first-occurrence order.
func GroupBySector(rows []types.TickerRow) ([]types.Sector, map[types.Sector][]types.TickerRow) {
	var order []types.Sector
	groups := make(map[types.Sector][]types.TickerRow)
	for _, r := range rows {
		if _, ok := groups[r.Sector]; !ok {
			order = append(order, r.Sector)
		}
		groups[r.Sector] = append(groups[r.Sector], r)
	}
	return order, groups
}

// AggregateSectorPER computes average, lowest and highest latest-snapshot PER
// per sector. Count includes rows without a computable PER.
func AggregateSectorPER(rows []types.TickerRow) []types.SectorAggregate {
	order, groups := GroupBySector(rows)
	out := make([]types.SectorAggregate, 0, len(order))
	for _, sec := range order {
		members := groups[sec]
		agg := types.SectorAggregate{Sector: sec, Count: len(members)}

		pers := make([]float64, 0, len(members))
		for _, r := range members {
			if p := LatestPER(r); p != nil {
				pers = append(pers, *p)
			}
		}
		if len(pers) > 0 {
			var sum float64
			for _, p := range pers {
				sum += p
			}
			sort.Float64s(pers)
			agg.AvgPER = types.Float(sum / float64(len(pers)))
			agg.LowPER = types.Float(pers[0])
			agg.HighPER = types.Float(pers[len(pers)-1])
		}
		out = append(out, agg)
	}
	return out
}
