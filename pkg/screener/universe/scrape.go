package universe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// DefaultSourceURL lists the S&P 500 constituents.
const DefaultSourceURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Scrape downloads the constituents page and parses it.
func Scrape(ctx context.Context, hc *http.Client, url string) (*Universe, error) {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "screener/1.0 (universe refresh)")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch constituents: status %d", resp.StatusCode)
	}
	members, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(members)).Str("url", url).Msg("scraped constituents")
	return &Universe{Source: url, UpdatedAt: time.Now().UTC(), Symbols: members}, nil
}

// Parse extracts constituents from the "#constituents" table: ticker, name
// and GICS sector are the first three cells of each body row.
func Parse(r io.Reader) ([]Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse constituents HTML: %w", err)
	}
	table := doc.Find("#constituents")
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}
	var out []Constituent
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		sym := strings.TrimSpace(row.Find("td:nth-child(1)").Text())
		if sym == "" {
			return
		}
		out = append(out, Constituent{
			Symbol: sym,
			Name:   strings.TrimSpace(row.Find("td:nth-child(2)").Text()),
			Sector: strings.TrimSpace(row.Find("td:nth-child(3)").Text()),
		})
	})
	return clean(out), nil
}
