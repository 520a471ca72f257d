package yahoo

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// DefaultPriceWindow is how far either side of a quarter end a close may be.
const DefaultPriceWindow = 7 * 24 * time.Hour

// Bar is one daily close.
type Bar struct {
	Time  time.Time
	Close float64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *errorBody `json:"error"`
	} `json:"chart"`
}

// Chart returns daily closes between from and to. Days without a close are
// skipped.
func (c *Client) Chart(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	path := "/v8/finance/chart/" + url.PathEscape(symbol)
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	params.Set("period2", strconv.FormatInt(to.Unix(), 10))
	params.Set("interval", "1d")

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, &APIError{StatusCode: 200, Code: e.Code, Message: e.Description, Endpoint: path}
	}
	var bars []Bar
	for _, res := range resp.Chart.Result {
		if len(res.Indicators.Quote) == 0 {
			continue
		}
		closes := res.Indicators.Quote[0].Close
		for i, ts := range res.Timestamp {
			if i >= len(closes) || closes[i] == nil {
				continue
			}
			bars = append(bars, Bar{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
		}
	}
	return bars, nil
}

// QuarterEndPrice returns the close nearest to at within +/- window.
// ok is false when the provider has no close in the window.
func (c *Client) QuarterEndPrice(ctx context.Context, symbol string, at time.Time, window time.Duration) (price float64, ok bool, err error) {
	if window <= 0 {
		window = DefaultPriceWindow
	}
	bars, err := c.Chart(ctx, symbol, at.Add(-window), at.Add(window))
	if err != nil {
		return 0, false, err
	}
	bar, ok := Nearest(bars, at)
	return bar.Close, ok, nil
}

// Nearest picks the bar closest in time to at; the first one wins ties.
func Nearest(bars []Bar, at time.Time) (Bar, bool) {
	if len(bars) == 0 {
		return Bar{}, false
	}
	best := bars[0]
	bestDiff := absDuration(best.Time.Sub(at))
	for _, b := range bars[1:] {
		if d := absDuration(b.Time.Sub(at)); d < bestDiff {
			best, bestDiff = b, d
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
