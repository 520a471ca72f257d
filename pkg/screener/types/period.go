package types

import (
	"regexp"
	"strconv"
	"strings"
)

// Period is a parsed reporting period. Quarter is 0 for annual labels.
type Period struct {
	Year    int
	Quarter int
}

var (
	quarterRe      = regexp.MustCompile(`(?i)(\d{4})\D*?(?:q\s*([1-4])|([1-4])\s*q)`)
	quarterFirstRe = regexp.MustCompile(`(?i)(?:q\s*([1-4])|([1-4])\s*q)\D*?(\d{4})`)
	yearRe         = regexp.MustCompile(`\d{4}`)
)

// ParsePeriod extracts year and quarter from a loosely formatted label such as
// "2025-Q2", "2025 -2q", "2025q2", "Q2 2025", "2Q2025" or "FY2024". ok is false
// when no year is found.
func ParsePeriod(label string) (p Period, ok bool) {
	if m := quarterRe.FindStringSubmatch(label); m != nil {
		p.Year, _ = strconv.Atoi(m[1])
		q := m[2]
		if q == "" {
			q = m[3]
		}
		p.Quarter, _ = strconv.Atoi(q)
		return p, true
	}
	if m := quarterFirstRe.FindStringSubmatch(label); m != nil {
		p.Year, _ = strconv.Atoi(m[3])
		q := m[1]
		if q == "" {
			q = m[2]
		}
		p.Quarter, _ = strconv.Atoi(q)
		return p, true
	}
	if y := yearRe.FindString(label); y != "" {
		p.Year, _ = strconv.Atoi(y)
		return p, true
	}
	return Period{}, false
}

// Label renders the canonical "YYYY-QN" or "YYYY" form.
func (p Period) Label() string {
	if p.Quarter == 0 {
		return strconv.Itoa(p.Year)
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(p.Year))
	b.WriteString("-Q")
	b.WriteString(strconv.Itoa(p.Quarter))
	return b.String()
}

// Less orders by year, then quarter. Quarter 0 sorts before Q1 of the same year.
func (p Period) Less(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Quarter < o.Quarter
}

// PeriodOf parses a snapshot's period label, returning the zero Period for
// labels without a year.
func PeriodOf(s Snapshot) Period {
	p, _ := ParsePeriod(s.Period)
	return p
}
