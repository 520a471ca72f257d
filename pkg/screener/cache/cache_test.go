package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (Entry, error) { return Entry{}, errors.New("disk gone") }
func (brokenStore) Set(context.Context, string, Entry) error   { return errors.New("disk gone") }

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func counter(n *int32, payload string) Loader {
	return func(context.Context) (json.RawMessage, error) {
		atomic.AddInt32(n, 1)
		return json.RawMessage(payload), nil
	}
}

func TestReadThroughFreshness(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	c := New(NewMemoryStore(0, 0), WithClock(clk.now))
	var loads int32

	got, err := c.ReadThrough(ctx, BatchKey, BatchTTL, counter(&loads, `[1]`))
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(got))

	clk.advance(59 * time.Minute)
	_, err = c.ReadThrough(ctx, BatchKey, BatchTTL, counter(&loads, `[2]`))
	require.NoError(t, err)
	assert.EqualValues(t, 1, loads, "fresh hit")

	clk.advance(time.Minute)
	got, err = c.ReadThrough(ctx, BatchKey, BatchTTL, counter(&loads, `[3]`))
	require.NoError(t, err)
	assert.EqualValues(t, 2, loads, "stale at exactly maxAge")
	assert.JSONEq(t, `[3]`, string(got))
}

func TestReadThroughSwallowsStoreErrors(t *testing.T) {
	c := New(brokenStore{})
	var loads int32
	got, err := c.ReadThrough(context.Background(), TickerKey("AAPL"), TickerTTL, counter(&loads, `{"symbol":"AAPL"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"AAPL"}`, string(got))
	assert.EqualValues(t, 1, loads)
}

func TestReadThroughLoadError(t *testing.T) {
	store := NewMemoryStore(0, 0)
	c := New(store)
	boom := errors.New("upstream down")
	_, err := c.ReadThrough(context.Background(), "k", time.Minute, func(context.Context) (json.RawMessage, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Len(), "failures are not cached")
}

func TestReadThroughCollapsesConcurrentLoads(t *testing.T) {
	c := New(NewMemoryStore(0, 0))
	release := make(chan struct{})
	var loads int32
	load := func(context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return json.RawMessage(`"ok"`), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.ReadThrough(context.Background(), "k", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, `"ok"`, string(got))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&loads), int32(8))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&loads), int32(1))
}

func TestZeroMaxAgeAlwaysLoads(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore(0, 0))
	var loads int32
	_, _ = c.ReadThrough(ctx, "k", time.Hour, counter(&loads, `1`))
	got, err := c.ReadThrough(ctx, "k", 0, counter(&loads, `2`))
	require.NoError(t, err)
	assert.Equal(t, `2`, string(got))
	assert.EqualValues(t, 2, loads)

	got, err = c.ReadThrough(ctx, "k", time.Hour, counter(&loads, `3`))
	require.NoError(t, err)
	assert.Equal(t, `2`, string(got), "reload replaced the entry")
}

func TestFetchTyped(t *testing.T) {
	type payload struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	c := New(NewMemoryStore(0, 0))
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Symbol: "MSFT", Price: 410.5}, nil
	}
	for i := 0; i < 2; i++ {
		got, err := Fetch(ctx, c, TickerKey("MSFT"), TickerTTL, load)
		require.NoError(t, err)
		assert.Equal(t, payload{Symbol: "MSFT", Price: 410.5}, got)
	}
	assert.Equal(t, 1, calls)
}

func TestFetchReloadsUndecodableEntry(t *testing.T) {
	type payload struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	ctx := context.Background()
	store := NewMemoryStore(0, 0)
	key := TickerKey("AAPL")
	require.NoError(t, store.Set(ctx, key, Entry{Timestamp: time.Now(), Data: json.RawMessage(`{"symbol":"AAPL","price":"high"}`)}))

	c := New(store)
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Symbol: "AAPL", Price: 225}, nil
	}
	got, err := Fetch(ctx, c, key, TickerTTL, load)
	require.NoError(t, err)
	assert.Equal(t, payload{Symbol: "AAPL", Price: 225}, got)
	assert.Equal(t, 1, calls)

	e, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"AAPL","price":225}`, string(e.Data))

	got, err = Fetch(ctx, c, key, TickerTTL, load)
	require.NoError(t, err)
	assert.Equal(t, 225.0, got.Price)
	assert.Equal(t, 1, calls, "rewritten entry is served from cache")

	_, err = Fetch(ctx, New(NewMemoryStore(0, 0)), key, TickerTTL, func(context.Context) (payload, error) {
		return payload{}, errors.New("upstream down")
	})
	assert.EqualError(t, err, "upstream down")
}

func TestMemoryStoreTTLAndLRU(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	m := NewMemoryStore(time.Minute, 2)
	m.now = clk.now

	require.NoError(t, m.Set(ctx, "a", Entry{Data: json.RawMessage(`1`)}))
	require.NoError(t, m.Set(ctx, "b", Entry{Data: json.RawMessage(`2`)}))
	_, err := m.Get(ctx, "a") // a becomes most recent
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, "c", Entry{Data: json.RawMessage(`3`)}))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss, "least recently used evicted")
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)

	clk.advance(2 * time.Minute)
	_, err = m.Get(ctx, "c")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestBadgerStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBadger("", time.Hour)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	ts := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set(ctx, BatchKey, Entry{Timestamp: ts, Data: json.RawMessage(`[{"symbol":"A"}]`)}))
	e, err := s.Get(ctx, BatchKey)
	require.NoError(t, err)
	assert.True(t, ts.Equal(e.Timestamp))
	assert.JSONEq(t, `[{"symbol":"A"}]`, string(e.Data))

	c := New(s, WithClock(func() time.Time { return ts.Add(time.Minute) }))
	got, err := c.ReadThrough(ctx, BatchKey, BatchTTL, func(context.Context) (json.RawMessage, error) {
		t.Fatal("should be served from badger")
		return nil, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"symbol":"A"}]`, string(got))
}
