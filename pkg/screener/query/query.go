// Package query is the screener query engine: it selects, filters, sorts and
// pages the canonical row list and hands the filtered rows to the analytics
// package for the derived views.
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/komsit37/screener/pkg/screener/analytics"
	"github.com/komsit37/screener/pkg/screener/types"
)

// SortKey selects the table sort column.
type SortKey string

const (
	SortSymbol SortKey = "symbol"
	SortPER    SortKey = "per"
	SortEPS    SortKey = "eps"
	SortPrice  SortKey = "price"
	SortRise   SortKey = "rise"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// DefaultPageSize matches the table's fixed page length.
const DefaultPageSize = 10

// Filters are the threshold filters applied to the periodicity-selected rows.
type Filters struct {
	Sector types.SectorFilter
	PERMax *float64 // rows with undefined PER are excluded when set
	EPSMin *float64
}

// Query is an immutable description of one screener view.
type Query struct {
	Periodicity types.Periodicity  `json:"periodicity" validate:"omitempty,oneof=quarterly annual"`
	Sector      types.SectorFilter `json:"sector" validate:"omitempty,sectorfilter"`
	PERMax      *float64           `json:"perMax,omitempty"`
	EPSMin      *float64           `json:"epsMin,omitempty"`
	Search      string             `json:"search,omitempty" validate:"max=64"`
	Sort        SortKey            `json:"sort" validate:"omitempty,oneof=symbol per eps price rise"`
	Order       SortOrder          `json:"order" validate:"omitempty,oneof=asc desc"`
	Page        int                `json:"page" validate:"gte=0"`
	PageSize    int                `json:"pageSize" validate:"gte=0,lte=500"`
	Limit       int                `json:"limit" validate:"gte=0"` // rising lists; 0 = all
}

// Default returns the initial screener state: quarterly, all sectors,
// sorted by rise descending, first page.
func Default() Query {
	return Query{
		Periodicity: types.Quarterly,
		Sector:      types.AllSectors,
		Sort:        SortRise,
		Order:       Desc,
		Page:        1,
		PageSize:    DefaultPageSize,
	}
}

// Filters extracts the threshold filters.
func (q Query) Filters() Filters {
	return Filters{Sector: q.Sector, PERMax: q.PERMax, EPSMin: q.EPSMin}
}

// withDefaults fills zero fields from Default.
func (q Query) withDefaults() Query {
	d := Default()
	if q.Periodicity == "" {
		q.Periodicity = d.Periodicity
	}
	if q.Sector == "" {
		q.Sector = d.Sector
	}
	if q.Sort == "" {
		q.Sort = d.Sort
	}
	if q.Order == "" {
		q.Order = d.Order
	}
	if q.Page <= 0 {
		q.Page = d.Page
	}
	if q.PageSize <= 0 {
		q.PageSize = d.PageSize
	}
	return q
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sectorfilter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == types.AllSectors {
			return true
		}
		for _, sec := range types.Sectors {
			if string(sec) == s {
				return true
			}
		}
		return false
	})
	return v
}

// Validate checks enumerated fields and bounds.
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	if q.PERMax != nil && math.IsNaN(*q.PERMax) {
		return fmt.Errorf("invalid query: perMax is NaN")
	}
	if q.EPSMin != nil && math.IsNaN(*q.EPSMin) {
		return fmt.Errorf("invalid query: epsMin is NaN")
	}
	return nil
}

// FilterByPeriodicity returns copies of the rows with periodicity p.
func FilterByPeriodicity(rows []types.TickerRow, p types.Periodicity) []types.TickerRow {
	out := make([]types.TickerRow, 0, len(rows))
	for _, r := range rows {
		if r.Periodicity == p {
			out = append(out, r.Clone())
		}
	}
	return out
}

// ApplyScreenerFilters applies the sector and threshold filters to the latest
// snapshot of each row. A row without snapshots fails any numeric threshold.
func ApplyScreenerFilters(rows []types.TickerRow, f Filters) []types.TickerRow {
	out := make([]types.TickerRow, 0, len(rows))
	for _, r := range rows {
		if keep(r, f) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func keep(r types.TickerRow, f Filters) bool {
	if !f.Sector.Match(r.Sector) {
		return false
	}
	if f.PERMax == nil && f.EPSMin == nil {
		return true
	}
	latest, ok := r.Snapshots.Latest()
	if !ok {
		return false
	}
	if f.PERMax != nil {
		per := math.Inf(1)
		if latest.PER != nil {
			per = *latest.PER
		}
		if per > *f.PERMax {
			return false
		}
	}
	if f.EPSMin != nil && latest.EPS < *f.EPSMin {
		return false
	}
	return true
}

// SortRows returns a copy of rows sorted for the table view. Undefined PER
// sorts as 0 and undefined rise as 0; ties keep input order.
func SortRows(rows []types.TickerRow, key SortKey, order SortOrder) []types.TickerRow {
	out := make([]types.TickerRow, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	if key == SortSymbol {
		sort.SliceStable(out, func(i, j int) bool {
			c := strings.Compare(out[i].Symbol, out[j].Symbol)
			if order == Asc {
				return c < 0
			}
			return c > 0
		})
		return out
	}
	// Values are keyed by position: seed files may repeat a symbol.
	idx := make([]int, len(out))
	vals := make([]float64, len(out))
	for i, r := range out {
		idx[i] = i
		vals[i] = sortValue(r, key)
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := vals[idx[i]], vals[idx[j]]
		if order == Asc {
			return a < b
		}
		return a > b
	})
	sorted := make([]types.TickerRow, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}

func sortValue(r types.TickerRow, key SortKey) float64 {
	latest, _ := r.Snapshots.Latest()
	switch key {
	case SortPER:
		if latest.PER != nil {
			return *latest.PER
		}
		return 0
	case SortEPS:
		return latest.EPS
	case SortPrice:
		return latest.Price
	default:
		v, _ := analytics.Rise(r)
		return v
	}
}

// Page is one page of the table view.
type Page struct {
	Rows     []types.TickerRow `json:"rows"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int               `json:"total"`
	HasPrev  bool              `json:"hasPrev"`
	HasNext  bool              `json:"hasNext"`
}

// Paginate slices rows into 1-based pages. Out-of-range pages are empty.
func Paginate(rows []types.TickerRow, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	start := len(rows)
	if page-1 <= len(rows)/size {
		start = min((page-1)*size, len(rows))
	}
	end := min(start+size, len(rows))
	return Page{
		Rows:     rows[start:end],
		Page:     page,
		PageSize: size,
		Total:    len(rows),
		HasPrev:  page > 1,
		HasNext:  end < len(rows),
	}
}
