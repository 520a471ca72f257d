package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/analytics"
	"github.com/komsit37/screener/pkg/screener/normalize"
	"github.com/komsit37/screener/pkg/screener/provider"
	"github.com/komsit37/screener/pkg/screener/query"
	"github.com/komsit37/screener/pkg/screener/render"
	"github.com/komsit37/screener/pkg/screener/types"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/sp500-data
func (s *Server) sp500Data(w http.ResponseWriter, r *http.Request) {
	if s.backend == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeExternalAPIError, "No provider configured", nil)
		return
	}
	raw, err := s.backend.Batch(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, ErrCodeExternalAPIError, "Failed to fetch data", err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// GET /api/quote/{symbol}
func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "Symbol is required", nil)
		return
	}
	if s.backend == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeExternalAPIError, "No provider configured", nil)
		return
	}
	raw, err := s.backend.Ticker(r.Context(), symbol)
	switch {
	case errors.Is(err, provider.ErrSymbolNotFound):
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "Unknown symbol "+symbol, err)
	case err != nil:
		writeError(w, r, http.StatusBadGateway, ErrCodeExternalAPIError, "Failed to fetch "+symbol, err)
	default:
		writeJSON(w, http.StatusOK, raw)
	}
}

// GET /api/screener
func (s *Server) screener(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "Invalid query parameter", err)
		return
	}
	engine, ok := s.engine(w, r)
	if !ok {
		return
	}
	view, err := engine.Run(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "Invalid query parameter", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type sectorDetail struct {
	Sector      types.Sector           `json:"sector"`
	Periodicity types.Periodicity      `json:"periodicity"`
	Aggregate   *types.SectorAggregate `json:"aggregate,omitempty"`
	Rows        []types.TickerRow      `json:"rows"`
}

// GET /api/sectors/{sector}?periodicity=
func (s *Server) sectorDetail(w http.ResponseWriter, r *http.Request) {
	sector, ok := knownSector(chi.URLParam(r, "sector"))
	if !ok {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "Unknown sector", nil)
		return
	}
	p, err := periodicity(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "Invalid query parameter", err)
		return
	}
	engine, ok := s.engine(w, r)
	if !ok {
		return
	}
	rows := engine.SectorDetail(sector, p)
	out := sectorDetail{Sector: sector, Periodicity: p, Rows: rows}
	if aggs := analytics.AggregateSectorPER(rows); len(aggs) == 1 {
		out.Aggregate = &aggs[0]
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/tickers/{symbol}/rise?periodicity=
func (s *Server) rise(w http.ResponseWriter, r *http.Request) {
	row, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rc, ok := analytics.RiseContextOf(row)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, ErrCodeInsufficientData, "No snapshots for "+row.Symbol, nil)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// GET /api/chart/{symbol}.png?periodicity=
func (s *Server) chart(w http.ResponseWriter, r *http.Request) {
	row, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.RenderChart(&buf, row); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, ErrCodeInsufficientData, "Cannot chart "+row.Symbol, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Debug().Err(err).Msg("write chart")
	}
}

// lookup resolves {symbol} and the periodicity parameter to an enriched row,
// writing the error response itself when it fails.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (types.TickerRow, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	p, err := periodicity(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, "Invalid query parameter", err)
		return types.TickerRow{}, false
	}
	engine, ok := s.engine(w, r)
	if !ok {
		return types.TickerRow{}, false
	}
	row, found := engine.Lookup(symbol, p)
	if !found {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("No %s data for %s", p, symbol), nil)
		return types.TickerRow{}, false
	}
	return row, true
}

// engine builds a query engine over the current rows: the backend batch,
// normalized, plus seed rows for (symbol, periodicity) pairs it lacks.
func (s *Server) engine(w http.ResponseWriter, r *http.Request) (*query.Engine, bool) {
	var rows []types.TickerRow
	if s.backend != nil {
		raw, err := s.backend.Batch(r.Context())
		if err != nil {
			writeError(w, r, http.StatusBadGateway, ErrCodeExternalAPIError, "Failed to fetch data", err)
			return nil, false
		}
		rows = normalize.Normalize(raw)
	}
	rows = mergeSeed(rows, s.seed)
	return query.NewEngine(rows), true
}

func mergeSeed(live, seed []types.TickerRow) []types.TickerRow {
	type key struct {
		sym string
		p   types.Periodicity
	}
	seen := make(map[key]struct{}, len(live))
	for _, r := range live {
		seen[key{r.Symbol, r.Periodicity}] = struct{}{}
	}
	out := append(make([]types.TickerRow, 0, len(live)+len(seed)), live...)
	for _, r := range seed {
		if _, dup := seen[key{r.Symbol, r.Periodicity}]; dup {
			continue
		}
		out = append(out, r)
	}
	return out
}

func knownSector(raw string) (types.Sector, bool) {
	raw, err := url.PathUnescape(raw)
	if err != nil {
		return "", false
	}
	for _, s := range types.Sectors {
		if strings.EqualFold(string(s), raw) {
			return s, true
		}
	}
	return "", false
}

func periodicity(v url.Values) (types.Periodicity, error) {
	switch p := types.Periodicity(strings.ToLower(v.Get("periodicity"))); p {
	case "":
		return types.Quarterly, nil
	case types.Quarterly, types.Annual:
		return p, nil
	default:
		return "", fmt.Errorf("periodicity: unknown value %q", p)
	}
}

// parseQuery maps URL parameters onto a query. Enumerated values are checked
// later by Query.Validate.
func parseQuery(v url.Values) (query.Query, error) {
	q := query.Query{
		Periodicity: types.Periodicity(strings.ToLower(v.Get("periodicity"))),
		Sector:      types.SectorFilter(v.Get("sector")),
		Search:      v.Get("search"),
		Sort:        query.SortKey(strings.ToLower(v.Get("sort"))),
		Order:       query.SortOrder(strings.ToLower(v.Get("order"))),
	}
	if strings.EqualFold(string(q.Sector), types.AllSectors) {
		q.Sector = types.AllSectors
	}
	var err error
	if q.PERMax, err = optFloat(v, "perMax"); err != nil {
		return q, err
	}
	if q.EPSMin, err = optFloat(v, "epsMin"); err != nil {
		return q, err
	}
	if q.Page, err = optInt(v, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = optInt(v, "pageSize"); err != nil {
		return q, err
	}
	if q.Limit, err = optInt(v, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func optFloat(v url.Values, name string) (*float64, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q", name, s)
	}
	return &f, nil
}

func optInt(v url.Values, name string) (int, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", name, s)
	}
	return n, nil
}
