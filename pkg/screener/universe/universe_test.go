package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/screener/pkg/screener/filter"
)

const page = `<html><body>
<table id="constituents" class="wikitable sortable">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">MMM</a></td><td>3M</td><td>Industrials</td></tr>
<tr><td><a href="#">BRK.B</a>
</td><td>Berkshire Hathaway</td><td>Financials</td></tr>
<tr><td>AAPL</td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td>MMM</td><td>3M duplicate</td><td>Industrials</td></tr>
</tbody>
</table>
<table id="changes"><tbody><tr><td>XXX</td></tr></tbody></table>
</body></html>`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, []Constituent{
		{Symbol: "MMM", Name: "3M", Sector: "Industrials"},
		{Symbol: "BRK-B", Name: "Berkshire Hathaway", Sector: "Financials"},
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
	}, got)

	_, err = Parse(strings.NewReader("<html></html>"))
	assert.Error(t, err)
}

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	u, err := Scrape(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, u.Symbols, 3)
	assert.Equal(t, srv.URL, u.Source)
	assert.False(t, u.UpdatedAt.IsZero())
}

func TestLoadForms(t *testing.T) {
	dir := t.TempDir()
	bare := filepath.Join(dir, "bare.yaml")
	require.NoError(t, os.WriteFile(bare, []byte("- AAPL\n- brk.b\n- AAPL\n"), 0o644))
	u, err := Load(bare)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "BRK-B"}, u.Select(0, nil))

	full := filepath.Join(dir, "full.yaml")
	require.NoError(t, os.WriteFile(full, []byte(`source: test
symbols:
  - symbol: MSFT
    name: Microsoft
  - AMZN
`), 0o644))
	u, err = Load(full)
	require.NoError(t, err)
	assert.Equal(t, "test", u.Source)
	assert.Equal(t, "Microsoft", u.Symbols[0].Name)
	assert.Equal(t, "AMZN", u.Symbols[1].Symbol)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("just a string"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "universe.yaml")
	in := &Universe{
		Source:    DefaultSourceURL,
		UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Symbols:   []Constituent{{Symbol: "AAPL", Name: "Apple Inc."}},
	}
	require.NoError(t, Save(path, in))
	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in.Symbols, out.Symbols)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))
}

func TestSelect(t *testing.T) {
	u := &Universe{Symbols: []Constituent{{Symbol: "AAPL"}, {Symbol: "AMZN"}, {Symbol: "MSFT"}, {Symbol: "ABT"}}}
	assert.Equal(t, []string{"AAPL", "AMZN"}, u.Select(2, nil))

	f, err := filter.Parse("A*")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "AMZN", "ABT"}, u.Select(0, f))
	assert.Equal(t, []string{"AAPL"}, u.Select(1, f))
}
