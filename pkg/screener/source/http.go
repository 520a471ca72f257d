package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/komsit37/screener/pkg/screener/cache"
	"github.com/komsit37/screener/pkg/screener/normalize"
	"github.com/komsit37/screener/pkg/screener/types"
)

// HTTPSource reads raw payloads from a running screener backend, keeping the
// batch for an hour and single tickers for ten minutes.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	Cache   *cache.Cache
}

// NewHTTPSource returns a source for baseURL. A nil cache disables caching.
func NewHTTPSource(baseURL string, c *cache.Cache) *HTTPSource {
	if c == nil {
		c = cache.New(nil)
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 2 * time.Minute},
		Cache:   c,
	}
}

// Load fetches the backend batch. spec is ignored.
func (s *HTTPSource) Load(ctx context.Context, _ any) ([]types.TickerRow, error) {
	raw, err := cache.Fetch(ctx, s.Cache, cache.BatchKey, cache.BatchTTL, func(ctx context.Context) ([]types.RawTicker, error) {
		var out []types.RawTicker
		err := s.get(ctx, "/api/sp500-data", &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return normalize.Normalize(raw), nil
}

// Ticker fetches one symbol from the backend.
func (s *HTTPSource) Ticker(ctx context.Context, symbol string) (types.TickerRow, error) {
	raw, err := cache.Fetch(ctx, s.Cache, cache.TickerKey(symbol), cache.TickerTTL, func(ctx context.Context) (types.RawTicker, error) {
		var out types.RawTicker
		err := s.get(ctx, "/api/quote/"+url.PathEscape(symbol), &out)
		return out, err
	})
	if err != nil {
		return types.TickerRow{}, err
	}
	return normalize.Ticker(raw)
}

// BackendError is a non-200 reply from the backend.
type BackendError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

func (s *HTTPSource) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		be := &BackendError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
			be.Code, be.Message = env.Error.Code, env.Error.Message
		}
		return be
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
