// Package cache is a short-lived read-through cache in front of the provider
// fetch boundary. Stores are opaque key/value backends holding timestamped
// JSON payloads; freshness is decided by the caller's maxAge, not the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Well-known keys and freshness windows.
const (
	BatchKey  = "sp500-data"
	BatchTTL  = time.Hour
	TickerTTL = 10 * time.Minute
)

// TickerKey is the cache key of a single-symbol payload.
func TickerKey(symbol string) string { return "ticker-" + symbol }

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Entry is a stored payload and the time it was produced.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Fresh reports whether e is younger than maxAge at now.
func (e Entry) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.Timestamp) < maxAge
}

// Store is a key/value backend. Any error other than ErrMiss is treated as
// the store being unavailable.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, e Entry) error
}

// Cache reads through a Store, collapsing concurrent loads of one key.
type Cache struct {
	store Store
	now   func() time.Time
	sf    singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New wraps store. A nil store disables caching.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{store: store, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Loader produces a fresh JSON payload.
type Loader func(ctx context.Context) (json.RawMessage, error)

// ReadThrough returns the cached payload for key when it is younger than
// maxAge, otherwise calls load and stores the result. Store failures are
// logged and behave as a miss; load errors are returned and nothing is stored.
func (c *Cache) ReadThrough(ctx context.Context, key string, maxAge time.Duration, load Loader) (json.RawMessage, error) {
	if e, ok := c.lookup(ctx, key); ok && e.Fresh(c.now(), maxAge) {
		log.Debug().Str("key", key).Msg("cache hit")
		return e.Data, nil
	}
	v, err, shared := c.sf.Do(key, func() (interface{}, error) {
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.save(ctx, key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("key", key).Bool("shared", shared).Msg("cache load")
	return v.(json.RawMessage), nil
}

func (c *Cache) lookup(ctx context.Context, key string) (Entry, bool) {
	if c.store == nil {
		return Entry{}, false
	}
	e, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		return e, true
	case errors.Is(err, ErrMiss):
	default:
		log.Warn().Err(err).Str("key", key).Msg("cache unavailable")
	}
	return Entry{}, false
}

func (c *Cache) save(ctx context.Context, key string, data json.RawMessage) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, key, Entry{Timestamp: c.now(), Data: data}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache unavailable")
	}
}

// Fetch is ReadThrough for typed values encoded as JSON. A cached entry that
// does not decode into T is reloaded.
func Fetch[T any](ctx context.Context, c *Cache, key string, maxAge time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	data, err := c.ReadThrough(ctx, key, maxAge, func(ctx context.Context) (json.RawMessage, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	if err == nil {
		return out, nil
	}

	// An entry of the wrong shape is a miss; reload and overwrite it.
	log.Warn().Err(err).Str("key", key).Msg("cached entry undecodable, reloading")
	var zero T
	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	fresh, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", key, err)
	}
	c.save(ctx, key, fresh)
	return v, nil
}
