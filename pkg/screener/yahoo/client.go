// Package yahoo is a small rate-limited client for the Yahoo Finance JSON
// endpoints the screener backend needs: quoteSummary modules and daily chart
// closes.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5 // requests per second
	userAgent        = "Mozilla/5.0 (compatible; screener/1.0)"
)

// Value is Yahoo's {raw, fmt} number wrapper. Some endpoints send a bare
// number instead; both decode.
type Value struct {
	Raw *float64 `json:"raw,omitempty"`
	Fmt string   `json:"fmt,omitempty"`
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		v.Raw = &num
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			v.Raw = &f
		}
		v.Fmt = s
		return nil
	}
	type plain Value
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("cannot unmarshal %s into yahoo value", string(data))
	}
	*v = Value(p)
	return nil
}

// Client talks to Yahoo Finance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client with default limits.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-200 response or an error object in the payload.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("yahoo API error: %s: %s (status: %d, endpoint: %s)", e.Code, e.Message, e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// NotFound reports whether the provider does not know the symbol.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == "Not Found"
}

type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// get performs a rate-limited GET request and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("url", c.baseURL+path).Msg("yahoo request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
