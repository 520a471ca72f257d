package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Modules requested for every symbol.
var Modules = []string{"price", "summaryProfile", "defaultKeyStatistics", "earningsHistory", "financialData"}

// Summary is the subset of quoteSummary modules the screener reads.
// Absent modules stay nil.
type Summary struct {
	Price                *PriceModule           `json:"price,omitempty"`
	SummaryProfile       *ProfileModule         `json:"summaryProfile,omitempty"`
	DefaultKeyStatistics *KeyStatisticsModule   `json:"defaultKeyStatistics,omitempty"`
	EarningsHistory      *EarningsHistoryModule `json:"earningsHistory,omitempty"`
	FinancialData        *FinancialDataModule   `json:"financialData,omitempty"`
}

type PriceModule struct {
	RegularMarketPrice         Value  `json:"regularMarketPrice"`
	RegularMarketChangePercent Value  `json:"regularMarketChangePercent"`
	ShortName                  string `json:"shortName,omitempty"`
	LongName                   string `json:"longName,omitempty"`
	Currency                   string `json:"currency,omitempty"`
}

type ProfileModule struct {
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
}

type KeyStatisticsModule struct {
	TrailingEPS Value `json:"trailingEps"`
}

type EarningsHistoryModule struct {
	History []EarningsEntry `json:"history"`
}

// EarningsEntry is one reported quarter. Quarter.Raw is the quarter end as
// Unix seconds; Period is Yahoo's relative label ("-1q").
type EarningsEntry struct {
	EPSActual   Value  `json:"epsActual"`
	EPSEstimate Value  `json:"epsEstimate"`
	Quarter     Value  `json:"quarter"`
	Period      string `json:"period,omitempty"`
}

// QuarterEnd returns the quarter end date in UTC.
func (e EarningsEntry) QuarterEnd() (time.Time, bool) {
	if e.Quarter.Raw == nil || *e.Quarter.Raw <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(*e.Quarter.Raw), 0).UTC(), true
}

// Label is "YYYY-QN" from the quarter end date, or the relative period
// label when no date is reported.
func (e EarningsEntry) Label() string {
	t, ok := e.QuarterEnd()
	if !ok {
		return e.Period
	}
	return QuarterLabel(t)
}

// QuarterLabel formats t as "YYYY-QN".
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}

type FinancialDataModule struct {
	TotalRevenue   Value `json:"totalRevenue"`
	ReturnOnEquity Value `json:"returnOnEquity"`
	DebtToEquity   Value `json:"debtToEquity"` // percent
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []Summary  `json:"result"`
		Error  *errorBody `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummary fetches the screener modules for symbol.
func (c *Client) QuoteSummary(ctx context.Context, symbol string) (*Summary, error) {
	path := "/v10/finance/quoteSummary/" + url.PathEscape(symbol)
	params := url.Values{}
	params.Set("modules", strings.Join(Modules, ","))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, &APIError{StatusCode: 200, Code: e.Code, Message: e.Description, Endpoint: path}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &APIError{StatusCode: 200, Code: "Not Found", Message: "empty result for " + symbol, Endpoint: path}
	}
	return &resp.QuoteSummary.Result[0], nil
}
