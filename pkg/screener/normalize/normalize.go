// Package normalize converts raw provider payloads into ordered TickerRows.
package normalize

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/types"
)

// ErrMissingEPS marks a period record dropped because its EPS is null.
var ErrMissingEPS = errors.New("missing eps")

// ErrUnorderedPeriod marks a period record dropped because its label has no year.
var ErrUnorderedPeriod = errors.New("period has no year")

// PartialDataError reports a ticker payload that could not be normalised.
// The row is omitted; the rest of the batch is unaffected.
type PartialDataError struct {
	Symbol string
	Reason string
}

func (e *PartialDataError) Error() string {
	if e.Symbol == "" {
		return "partial data: " + e.Reason
	}
	return fmt.Sprintf("partial data for %s: %s", e.Symbol, e.Reason)
}

// Normalize converts a batch of raw payloads. Malformed payloads are skipped,
// so the result may be shorter than the input; it is never nil.
func Normalize(raw []types.RawTicker) []types.TickerRow {
	rows := make([]types.TickerRow, 0, len(raw))
	for _, r := range raw {
		row, err := Ticker(r)
		if err != nil {
			log.Warn().Err(err).Str("symbol", r.Symbol).Msg("skip ticker")
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Ticker converts one raw payload into a quarterly row.
func Ticker(raw types.RawTicker) (types.TickerRow, error) {
	sym := strings.TrimSpace(raw.Symbol)
	if sym == "" {
		return types.TickerRow{}, &PartialDataError{Reason: "empty symbol"}
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = sym
	}

	snaps := make(types.Snapshots, 0, len(raw.Snapshots))
	for _, rs := range raw.Snapshots {
		s, err := snapshot(rs)
		if err != nil {
			log.Debug().Err(err).Str("symbol", sym).Str("period", rs.Period).Msg("drop period")
			continue
		}
		snaps = append(snaps, s)
	}

	return types.TickerRow{
		Symbol:      sym,
		Name:        name,
		Sector:      types.ParseSector(strings.TrimSpace(raw.Sector)),
		Periodicity: types.Quarterly,
		Snapshots:   order(snaps),
	}, nil
}

// Row re-applies label canonicalisation, ordering and sector mapping to a
// pre-built row such as seeded sample data. Periodicity is preserved and any
// stored PER is dropped.
func Row(row types.TickerRow) types.TickerRow {
	out := row.Clone()
	out.Sector = types.ParseSector(string(row.Sector))
	if out.Periodicity == "" {
		out.Periodicity = types.Quarterly
	}
	snaps := make(types.Snapshots, 0, len(out.Snapshots))
	for _, s := range out.Snapshots {
		p, ok := types.ParsePeriod(s.Period)
		if !ok {
			continue
		}
		s.Period = p.Label()
		s.PER = nil
		snaps = append(snaps, s)
	}
	out.Snapshots = order(snaps)
	return out
}

func snapshot(rs types.RawSnapshot) (types.Snapshot, error) {
	if rs.EPS == nil {
		return types.Snapshot{}, ErrMissingEPS
	}
	p, ok := types.ParsePeriod(rs.Period)
	if !ok {
		return types.Snapshot{}, ErrUnorderedPeriod
	}
	s := types.Snapshot{
		Period:     p.Label(),
		EPS:        *rs.EPS,
		Revenue:    copyFloat(rs.Revenue),
		ROE:        copyFloat(rs.ROE),
		DebtEquity: copyFloat(rs.DebtEquity),
	}
	if rs.Price != nil {
		s.Price = *rs.Price
	}
	return s, nil
}

// order sorts chronologically ascending, removes duplicate periods (first
// occurrence wins) and reverses into most-recent-first order.
func order(snaps types.Snapshots) types.Snapshots {
	seen := make(map[types.Period]struct{}, len(snaps))
	uniq := make(types.Snapshots, 0, len(snaps))
	for _, s := range snaps {
		p := types.PeriodOf(s)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, s)
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		return types.PeriodOf(uniq[i]).Less(types.PeriodOf(uniq[j]))
	})
	for i, j := 0, len(uniq)-1; i < j; i, j = i+1, j-1 {
		uniq[i], uniq[j] = uniq[j], uniq[i]
	}
	return uniq
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
