package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/types"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestYAMLSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.yaml")
	write(t, path, `periodicity: annual
rows:
  - symbol: AAPL
    name: Apple Inc.
    sector: Technology
    snapshots:
      - {period: "2023", eps: 5.0, price: 180, per: 99}
      - {period: "2025", eps: 5.5, price: 225}
      - {period: "2024", eps: 5.1, price: 190}
  - symbol: CAT
    sector: Information Technology
    periodicity: quarterly
    snapshots:
      - {period: 2025Q1, eps: 5.8, price: 330}
      - {period: 2025 q2, eps: 6.0, price: 345}
`)
	rows, err := YAMLSource{}.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	aapl := rows[0]
	assert.Equal(t, types.Annual, aapl.Periodicity)
	assert.Equal(t, "2025", aapl.Snapshots[0].Period)
	assert.Equal(t, "2023", aapl.Snapshots[2].Period)
	assert.Nil(t, aapl.Snapshots[2].PER, "stored PER is re-derived later")

	cat := rows[1]
	assert.Equal(t, types.Quarterly, cat.Periodicity)
	assert.Equal(t, types.DefaultSector, cat.Sector)
	assert.Equal(t, "2025-Q2", cat.Snapshots[0].Period)
}

func TestYAMLSourceDirAndList(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b", "annual.yml"), `- symbol: MSFT
  periodicity: annual
  snapshots: [{period: "2024", eps: 10.6, price: 410}]
`)
	write(t, filepath.Join(dir, "a.yaml"), `rows:
  - symbol: JPM
    sector: Financial Services
    snapshots: [{period: 2025Q2, eps: 4.25, price: 215}]
`)
	write(t, filepath.Join(dir, "notes.txt"), "ignored")

	rows, err := YAMLSource{}.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "JPM", rows[0].Symbol, "files load in path order")
	assert.Equal(t, types.Quarterly, rows[0].Periodicity)
	assert.Equal(t, "MSFT", rows[1].Symbol)
	assert.Equal(t, types.Annual, rows[1].Periodicity)
}

func TestYAMLSourceErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := YAMLSource{}.Load(context.Background(), 42)
	assert.Error(t, err)

	_, err = YAMLSource{}.Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	write(t, bad, "- symbol: X\n  periodicity: monthly\n")
	_, err = YAMLSource{}.Load(context.Background(), bad)
	assert.ErrorContains(t, err, "unknown periodicity")

	nosym := filepath.Join(dir, "nosym.yaml")
	write(t, nosym, "- name: nothing\n")
	_, err = YAMLSource{}.Load(context.Background(), nosym)
	assert.ErrorContains(t, err, "missing symbol")
}

func TestSampleData(t *testing.T) {
	rows, err := YAMLSource{}.Load(context.Background(), filepath.Join("..", "..", "..", "data", "samples"))
	require.NoError(t, err)
	var annual, quarterly int
	for _, r := range rows {
		assert.True(t, r.Snapshots.Ordered(), r.Symbol)
		switch r.Periodicity {
		case types.Annual:
			annual++
		case types.Quarterly:
			quarterly++
		}
	}
	assert.Equal(t, 2, annual)
	assert.Equal(t, 6, quarterly)
}

type stubFetcher struct {
	raw []types.RawTicker
	err error
}

func (s stubFetcher) FetchBatch(context.Context, []string) ([]types.RawTicker, error) {
	return s.raw, s.err
}

func TestProviderSource(t *testing.T) {
	eps := 2.0
	src := ProviderSource{Fetcher: stubFetcher{raw: []types.RawTicker{
		{Symbol: "XYZ", Sector: "Energy", Snapshots: []types.RawSnapshot{{Period: "2025-Q1", EPS: &eps, Price: types.Float(40)}}},
		{Symbol: ""},
	}}}
	rows, err := src.Load(context.Background(), []string{"XYZ", "BAD"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.Sector("Energy"), rows[0].Sector)

	_, err = src.Load(context.Background(), "XYZ")
	assert.Error(t, err)

	boom := errors.New("down")
	_, err = ProviderSource{Fetcher: stubFetcher{err: boom}}.Load(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, boom)
}

func TestHTTPSource(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/sp500-data":
			_, _ = w.Write([]byte(`[{"symbol":"XYZ","name":"XYZ Corp","sector":"Technology","price":50,"eps":null,"per":null,
				"snapshots":[{"period":"2024-Q4","eps":1.8,"price":36,"per":null},{"period":"2025-Q1","eps":2.0,"price":40,"per":null},{"period":"2025-Q2","eps":null,"price":50,"per":null}]}]`))
		case "/api/quote/XYZ":
			_, _ = w.Write([]byte(`{"symbol":"XYZ","name":"XYZ Corp","sector":"Technology","snapshots":[{"period":"2025-Q1","eps":2.0,"price":40}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"unknown symbol"}}`))
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", cache.New(cache.NewMemoryStore(0, 0)))
	for i := 0; i < 2; i++ {
		rows, err := src.Load(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Len(t, rows[0].Snapshots, 2)
		assert.Equal(t, "2025-Q1", rows[0].Snapshots[0].Period)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "batch served from cache")

	row, err := src.Ticker(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, "XYZ Corp", row.Name)

	_, err = src.Ticker(context.Background(), "NOPE")
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusNotFound, be.StatusCode)
	assert.Equal(t, "NOT_FOUND", be.Code)
	assert.Equal(t, "unknown symbol", be.Message)
}

func TestStoreSource(t *testing.T) {
	store := cache.NewMemoryStore(0, 0)
	src := StoreSource{Store: store}
	_, err := src.Load(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoBatch)

	c := cache.New(store)
	_, err = c.ReadThrough(context.Background(), cache.BatchKey, cache.BatchTTL, func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(`[{"symbol":"XYZ","sector":"Energy","snapshots":[{"period":"2025-Q1","eps":2,"price":40},{"period":"2025-Q2","eps":2.2,"price":44}]}]`), nil
	})
	require.NoError(t, err)

	rows, err := src.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-Q2", rows[0].Snapshots[0].Period)
	assert.Equal(t, types.Sector("Energy"), rows[0].Sector)

	require.NoError(t, store.Set(context.Background(), cache.BatchKey, cache.Entry{Data: json.RawMessage(`{}`)}))
	_, err = src.Load(context.Background(), nil)
	assert.ErrorContains(t, err, "decode sp500-data")
}
