package types

// Snapshots is a most-recent-first sequence: index 0 is the latest period.
// Every derived metric (latest, previous, rise) relies on this order; the
// normalizer establishes it and Ordered checks it.
type Snapshots []Snapshot

// Latest returns the most recent snapshot.
func (s Snapshots) Latest() (Snapshot, bool) {
	if len(s) == 0 {
		return Snapshot{}, false
	}
	return s[0], true
}

// Previous returns the snapshot before the latest one, or the latest itself
// when the row holds a single period.
func (s Snapshots) Previous() (Snapshot, bool) {
	switch len(s) {
	case 0:
		return Snapshot{}, false
	case 1:
		return s[0], true
	default:
		return s[1], true
	}
}

// Ordered reports whether periods are strictly descending by (year, quarter).
func (s Snapshots) Ordered() bool {
	for i := 0; i+1 < len(s); i++ {
		if !PeriodOf(s[i+1]).Less(PeriodOf(s[i])) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (s Snapshots) Clone() Snapshots {
	if s == nil {
		return nil
	}
	out := make(Snapshots, len(s))
	for i, snap := range s {
		out[i] = snap.Clone()
	}
	return out
}

// Chronological returns a copy ordered oldest-first, for charting.
func (s Snapshots) Chronological() Snapshots {
	out := make(Snapshots, len(s))
	for i, snap := range s {
		out[len(s)-1-i] = snap.Clone()
	}
	return out
}

// Clone copies the snapshot including its optional fields.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.PER = clonePtr(s.PER)
	out.Revenue = clonePtr(s.Revenue)
	out.ROE = clonePtr(s.ROE)
	out.DebtEquity = clonePtr(s.DebtEquity)
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
