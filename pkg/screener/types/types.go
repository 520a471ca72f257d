package types

// Sector is the provider-assigned industry classification of a ticker.
type Sector string

// Sectors is the closed, provider-defined enumeration. Order matters: the first
// entry is the fallback for unrecognised raw values.
var Sectors = []Sector{
	"Industrials",
	"Healthcare",
	"Technology",
	"Utilities",
	"Financial Services",
	"Basic Materials",
	"Consumer Cyclical",
	"Real Estate",
	"Communication Services",
	"Consumer Defensive",
	"Energy",
}

// DefaultSector is assigned when a raw sector string is not in Sectors.
var DefaultSector = Sectors[0]

// ParseSector maps a raw provider string onto the enumeration by exact match.
func ParseSector(raw string) Sector {
	for _, s := range Sectors {
		if string(s) == raw {
			return s
		}
	}
	return DefaultSector
}

// AllSectors selects every sector in a SectorFilter.
const AllSectors = "all"

// SectorFilter is either a Sector name or "all".
type SectorFilter string

// Match reports whether s passes the filter.
func (f SectorFilter) Match(s Sector) bool {
	if f == "" || f == AllSectors {
		return true
	}
	return Sector(f) == s
}

// Periodicity is the reporting cadence of a row's snapshots.
type Periodicity string

const (
	Quarterly Periodicity = "quarterly"
	Annual    Periodicity = "annual"
)

// Snapshot is one reporting period for one ticker.
type Snapshot struct {
	Period     string   `json:"period" yaml:"period"`
	EPS        float64  `json:"eps" yaml:"eps"`
	Price      float64  `json:"price" yaml:"price"`
	PER        *float64 `json:"per,omitempty" yaml:"per,omitempty"`
	Revenue    *float64 `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	ROE        *float64 `json:"roe,omitempty" yaml:"roe,omitempty"` // fraction, e.g. 0.15 for 15%
	DebtEquity *float64 `json:"debtEquity,omitempty" yaml:"debtEquity,omitempty"`
}

// TickerRow is one instrument with its snapshot history.
// Snapshots are ordered most-recent-first.
type TickerRow struct {
	Symbol      string      `json:"symbol" yaml:"symbol"`
	Name        string      `json:"name" yaml:"name"`
	Sector      Sector      `json:"sector" yaml:"sector"`
	Periodicity Periodicity `json:"periodicity" yaml:"periodicity"`
	Snapshots   Snapshots   `json:"snapshots" yaml:"snapshots"`
}

// Clone returns a copy that shares no snapshot storage with r.
func (r TickerRow) Clone() TickerRow {
	out := r
	out.Snapshots = r.Snapshots.Clone()
	return out
}

// SectorAggregate holds PER statistics for one sector. The PER fields are nil
// when no row in the sector has a computable PER.
type SectorAggregate struct {
	Sector  Sector   `json:"sector"`
	AvgPER  *float64 `json:"avgPER,omitempty"`
	LowPER  *float64 `json:"lowPER,omitempty"`
	HighPER *float64 `json:"highPER,omitempty"`
	Count   int      `json:"count"`
}

// SectorRise is the average momentum of a sector.
type SectorRise struct {
	Sector  Sector  `json:"sector"`
	AvgRise float64 `json:"avgRise"`
}

// RankedTicker is one entry of the rising-tickers ranking.
type RankedTicker struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Sector Sector   `json:"sector"`
	Rise   float64  `json:"rise"`
	Latest Snapshot `json:"latest"`
	Prev   Snapshot `json:"prev"`
}

// RawSnapshot is one period record as delivered by the provider. Any numeric
// field may be null.
type RawSnapshot struct {
	Period     string   `json:"period"`
	EPS        *float64 `json:"eps"`
	Price      *float64 `json:"price"`
	PER        *float64 `json:"per"`
	Revenue    *float64 `json:"revenue,omitempty"`
	ROE        *float64 `json:"roe,omitempty"`
	DebtEquity *float64 `json:"debtEquity,omitempty"`
}

// RawTicker is the provider payload for one symbol.
type RawTicker struct {
	Symbol    string        `json:"symbol"`
	Name      string        `json:"name"`
	Sector    string        `json:"sector"`
	Price     *float64      `json:"price"`
	EPS       *float64      `json:"eps"`
	PER       *float64      `json:"per"`
	Snapshots []RawSnapshot `json:"snapshots"`
}

// Quote is the live price view of a symbol.
type Quote struct {
	Price *float64
	Name  string
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
