package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSector(t *testing.T) {
	assert.Equal(t, Sector("Technology"), ParseSector("Technology"))
	assert.Equal(t, DefaultSector, ParseSector("technology"))
	assert.Equal(t, DefaultSector, ParseSector("Information Technology"))
	assert.Equal(t, Sector("Industrials"), DefaultSector)
}

func TestSectorFilterMatch(t *testing.T) {
	assert.True(t, SectorFilter("all").Match("Energy"))
	assert.True(t, SectorFilter("").Match("Energy"))
	assert.True(t, SectorFilter("Energy").Match("Energy"))
	assert.False(t, SectorFilter("Energy").Match("Utilities"))
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in    string
		want  Period
		label string
		ok    bool
	}{
		{"2025-Q2", Period{2025, 2}, "2025-Q2", true},
		{"2025Q2", Period{2025, 2}, "2025-Q2", true},
		{"2025 -2q", Period{2025, 2}, "2025-Q2", true},
		{"2025--4q", Period{2025, 4}, "2025-Q4", true},
		{" 2024 q3 ", Period{2024, 3}, "2024-Q3", true},
		{"2024", Period{2024, 0}, "2024", true},
		{"FY2023", Period{2023, 0}, "2023", true},
		{"Q2 2025", Period{2025, 2}, "2025-Q2", true},
		{"2Q2025", Period{2025, 2}, "2025-Q2", true},
		{"q3-2024", Period{2024, 3}, "2024-Q3", true},
		{"Q4 FY2023", Period{2023, 4}, "2023-Q4", true},
		{"-4q", Period{}, "", false},
		{"", Period{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePeriod(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.label, got.Label())
			}
		})
	}
}

func TestPeriodLess(t *testing.T) {
	assert.True(t, Period{2024, 4}.Less(Period{2025, 1}))
	assert.True(t, Period{2025, 0}.Less(Period{2025, 1}))
	assert.False(t, Period{2025, 2}.Less(Period{2025, 2}))
	assert.False(t, Period{2025, 3}.Less(Period{2025, 2}))
}

func TestSnapshotsAccessors(t *testing.T) {
	var empty Snapshots
	_, ok := empty.Latest()
	assert.False(t, ok)
	_, ok = empty.Previous()
	assert.False(t, ok)

	one := Snapshots{{Period: "2025-Q1", Price: 10}}
	prev, ok := one.Previous()
	assert.True(t, ok)
	assert.Equal(t, "2025-Q1", prev.Period)

	two := Snapshots{{Period: "2025-Q2", Price: 12}, {Period: "2025-Q1", Price: 10}}
	latest, _ := two.Latest()
	prev, _ = two.Previous()
	assert.Equal(t, "2025-Q2", latest.Period)
	assert.Equal(t, "2025-Q1", prev.Period)
}

func TestSnapshotsOrdered(t *testing.T) {
	assert.True(t, Snapshots{{Period: "2025-Q2"}, {Period: "2025-Q1"}, {Period: "2024-Q4"}}.Ordered())
	assert.False(t, Snapshots{{Period: "2025-Q1"}, {Period: "2025-Q2"}}.Ordered())
	assert.False(t, Snapshots{{Period: "2025-Q1"}, {Period: "2025-Q1"}}.Ordered())
	assert.True(t, Snapshots{{Period: "2025-Q1"}, {Period: "2025"}}.Ordered())
}

func TestCloneIsDeep(t *testing.T) {
	row := TickerRow{Symbol: "AAPL", Snapshots: Snapshots{{Period: "2025-Q1", PER: Float(20)}}}
	cp := row.Clone()
	*cp.Snapshots[0].PER = 99
	cp.Snapshots[0].Price = 1
	assert.Equal(t, 20.0, *row.Snapshots[0].PER)
	assert.Equal(t, 0.0, row.Snapshots[0].Price)
}

func TestChronological(t *testing.T) {
	s := Snapshots{{Period: "2025-Q2"}, {Period: "2025-Q1"}, {Period: "2024-Q4"}}
	c := s.Chronological()
	assert.Equal(t, []string{"2024-Q4", "2025-Q1", "2025-Q2"}, []string{c[0].Period, c[1].Period, c[2].Period})
	assert.Equal(t, "2025-Q2", s[0].Period)
}
