package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/screener/pkg/screener/analytics"
	"github.com/komsit37/screener/pkg/screener/types"
)

func f(v float64) *float64 { return &v }

func TestNormalizeEndToEnd(t *testing.T) {
	raw := []types.RawTicker{{
		Symbol: "XYZ",
		Name:   "XYZ Corp",
		Sector: "Technology",
		Snapshots: []types.RawSnapshot{
			{Period: "2025 -2q", EPS: nil, Price: f(50)},
			{Period: "2024-Q4", EPS: f(1.8), Price: f(36)},
			{Period: "2025Q1", EPS: f(2.0), Price: f(40), PER: f(999)},
		},
	}}

	rows := analytics.EnrichWithPER(Normalize(raw))
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, types.Quarterly, row.Periodicity)
	assert.Equal(t, types.Sector("Technology"), row.Sector)
	require.Len(t, row.Snapshots, 2)
	assert.Equal(t, "2025-Q1", row.Snapshots[0].Period)
	assert.Equal(t, "2024-Q4", row.Snapshots[1].Period)
	require.NotNil(t, row.Snapshots[0].PER)
	require.NotNil(t, row.Snapshots[1].PER)
	assert.InDelta(t, 20.0, *row.Snapshots[0].PER, 1e-9)
	assert.InDelta(t, 20.0, *row.Snapshots[1].PER, 1e-9)
	assert.True(t, row.Snapshots.Ordered())
}

func TestNormalizeDiscardsRawPER(t *testing.T) {
	row, err := Ticker(types.RawTicker{
		Symbol:    "ABC",
		Snapshots: []types.RawSnapshot{{Period: "2025-Q1", EPS: f(2), Price: f(30), PER: f(1)}},
	})
	require.NoError(t, err)
	assert.Nil(t, row.Snapshots[0].PER)
	assert.Equal(t, "ABC", row.Name)
}

func TestNormalizeCoercesNullPrice(t *testing.T) {
	row, err := Ticker(types.RawTicker{
		Symbol:    "ABC",
		Snapshots: []types.RawSnapshot{{Period: "2025-Q1", EPS: f(2)}},
	})
	require.NoError(t, err)
	require.Len(t, row.Snapshots, 1)
	assert.Equal(t, 0.0, row.Snapshots[0].Price)
}

func TestNormalizeKeepsOptionalFundamentalsAbsent(t *testing.T) {
	row, err := Ticker(types.RawTicker{
		Symbol: "ABC",
		Snapshots: []types.RawSnapshot{
			{Period: "2025-Q1", EPS: f(2), Price: f(30), ROE: f(0.15)},
		},
	})
	require.NoError(t, err)
	s := row.Snapshots[0]
	assert.Nil(t, s.Revenue)
	assert.Nil(t, s.DebtEquity)
	require.NotNil(t, s.ROE)
	assert.Equal(t, 0.15, *s.ROE)
}

func TestNormalizeSectorFallback(t *testing.T) {
	row, err := Ticker(types.RawTicker{Symbol: "ABC", Sector: "Unknown"})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSector, row.Sector)
	assert.Empty(t, row.Snapshots)
}

func TestNormalizeSkipsMalformed(t *testing.T) {
	rows := Normalize([]types.RawTicker{
		{Symbol: ""},
		{Symbol: "  "},
		{Symbol: "OK", Snapshots: []types.RawSnapshot{{Period: "2025-Q1", EPS: f(1), Price: f(10)}}},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "OK", rows[0].Symbol)

	_, err := Ticker(types.RawTicker{})
	var pde *PartialDataError
	assert.ErrorAs(t, err, &pde)
}

func TestNormalizeEmptyBatch(t *testing.T) {
	rows := Normalize(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestNormalizeOrderingAndDuplicates(t *testing.T) {
	row, err := Ticker(types.RawTicker{
		Symbol: "ABC",
		Snapshots: []types.RawSnapshot{
			{Period: "2024-Q2", EPS: f(1), Price: f(10)},
			{Period: "2023", EPS: f(4), Price: f(8)},
			{Period: "2024 -4q", EPS: f(1), Price: f(12)},
			{Period: "2024q2", EPS: f(9), Price: f(99)},
			{Period: "-1q", EPS: f(1), Price: f(1)},
			{Period: "2023-Q4", EPS: f(1), Price: f(9)},
		},
	})
	require.NoError(t, err)
	var labels []string
	for _, s := range row.Snapshots {
		labels = append(labels, s.Period)
	}
	assert.Equal(t, []string{"2024-Q4", "2024-Q2", "2023-Q4", "2023"}, labels)
	assert.Equal(t, 10.0, row.Snapshots[1].Price, "first occurrence of a duplicate period wins")
	assert.True(t, row.Snapshots.Ordered())
}

func TestNormalizeQuarterFirstLabels(t *testing.T) {
	row, err := Ticker(types.RawTicker{
		Symbol: "ABC",
		Snapshots: []types.RawSnapshot{
			{Period: "Q1 2025", EPS: f(1), Price: f(10)},
			{Period: "2Q2025", EPS: f(1), Price: f(11)},
			{Period: "q3-2025", EPS: f(1), Price: f(12)},
		},
	})
	require.NoError(t, err)
	var labels []string
	for _, s := range row.Snapshots {
		labels = append(labels, s.Period)
	}
	assert.Equal(t, []string{"2025-Q3", "2025-Q2", "2025-Q1"}, labels)
}

func TestRowKeepsPeriodicity(t *testing.T) {
	in := types.TickerRow{
		Symbol:      "AAPL",
		Sector:      "Technology",
		Periodicity: types.Annual,
		Snapshots: types.Snapshots{
			{Period: "2023", EPS: 5, Price: 180, PER: f(1)},
			{Period: "2025", EPS: 5.5, Price: 225},
			{Period: "2024", EPS: 5.1, Price: 190},
		},
	}
	out := Row(in)
	assert.Equal(t, types.Annual, out.Periodicity)
	assert.Equal(t, "2025", out.Snapshots[0].Period)
	assert.Equal(t, "2023", out.Snapshots[2].Period)
	assert.Nil(t, out.Snapshots[2].PER)
	assert.NotNil(t, in.Snapshots[0].PER, "input is not mutated")
	assert.Equal(t, "2023", in.Snapshots[0].Period)
}
