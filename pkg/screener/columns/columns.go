package columns

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/komsit37/screener/pkg/screener/analytics"
	"github.com/komsit37/screener/pkg/screener/types"
)

// Def describes one table column.
type Def struct {
	Key     string
	Header  string
	Numeric bool // right-aligned
	Value   func(r types.TickerRow) string
}

// Registry maps canonical column keys to definitions.
var Registry = map[string]Def{}

// aliases map user-facing spellings onto canonical keys.
var aliases = map[string]string{
	"symbol":     "sym",
	"chg%":       "rise",
	"rise%":      "rise",
	"pe":         "per",
	"roe%":       "roe",
	"d/e":        "de",
	"debtequity": "de",
	"prev_price": "prev",
}

func register(d Def) {
	if d.Header == "" {
		d.Header = strings.ToUpper(d.Key)
	}
	Registry[d.Key] = d
}

func init() {
	register(Def{Key: "sym", Value: func(r types.TickerRow) string { return r.Symbol }})
	register(Def{Key: "name", Value: func(r types.TickerRow) string { return r.Name }})
	register(Def{Key: "sector", Value: func(r types.TickerRow) string { return string(r.Sector) }})
	register(Def{Key: "period", Value: func(r types.TickerRow) string {
		s, _ := r.Snapshots.Latest()
		return s.Period
	}})
	register(Def{Key: "price", Numeric: true, Value: func(r types.TickerRow) string {
		s, ok := r.Snapshots.Latest()
		if !ok {
			return ""
		}
		return FormatFloat(s.Price, 2)
	}})
	// prev: price of the period before the latest
	register(Def{Key: "prev", Numeric: true, Value: func(r types.TickerRow) string {
		s, ok := r.Snapshots.Previous()
		if !ok {
			return ""
		}
		return FormatFloat(s.Price, 2)
	}})
	register(Def{Key: "eps", Numeric: true, Value: func(r types.TickerRow) string {
		s, ok := r.Snapshots.Latest()
		if !ok {
			return ""
		}
		return FormatFloat(s.EPS, 2)
	}})
	register(Def{Key: "per", Numeric: true, Value: func(r types.TickerRow) string {
		s, ok := r.Snapshots.Latest()
		if !ok || s.PER == nil {
			return "-"
		}
		return FormatFloat(*s.PER, 1)
	}})
	register(Def{Key: "rise", Header: "RISE%", Numeric: true, Value: func(r types.TickerRow) string {
		v, ok := analytics.Rise(r)
		if !ok {
			return "-"
		}
		return FormatPercent(v)
	}})
	// revenue in millions
	register(Def{Key: "revenue", Header: "REVENUE(M)", Numeric: true, Value: func(r types.TickerRow) string {
		s, ok := r.Snapshots.Latest()
		if !ok || s.Revenue == nil {
			return ""
		}
		return formatIntComma(int(math.Round(*s.Revenue / 1e6)))
	}})
	register(Def{Key: "roe", Header: "ROE%", Numeric: true, Value: func(r types.TickerRow) string {
		s, ok := r.Snapshots.Latest()
		if !ok || s.ROE == nil {
			return ""
		}
		return FormatFloat(*s.ROE*100, 1)
	}})
	register(Def{Key: "de", Header: "D/E", Numeric: true, Value: func(r types.TickerRow) string {
		s, ok := r.Snapshots.Latest()
		if !ok || s.DebtEquity == nil {
			return ""
		}
		return FormatFloat(*s.DebtEquity, 2)
	}})
	register(Def{Key: "periods", Numeric: true, Value: func(r types.TickerRow) string {
		return strconv.Itoa(len(r.Snapshots))
	}})
}

// Canonical resolves an alias or key to its canonical key.
func Canonical(col string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(col))
	if a, ok := aliases[k]; ok {
		k = a
	}
	_, ok := Registry[k]
	return k, ok
}

// GetDef returns the definition for col or one of its aliases.
func GetDef(col string) (Def, bool) {
	k, ok := Canonical(col)
	if !ok {
		return Def{}, false
	}
	return Registry[k], true
}

// UnknownColumnError reports a column name with no definition.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + e.Name
}

// Compute determines the final column order. Explicit columns are honored in
// order, canonicalized and de-duplicated; with none, the default set is used.
func Compute(explicit []string) ([]string, error) {
	if len(explicit) == 0 {
		return append([]string(nil), Sets["default"]...), nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(explicit))
	for _, c := range explicit {
		if strings.TrimSpace(c) == "" {
			continue
		}
		k, ok := Canonical(c)
		if !ok {
			return nil, &UnknownColumnError{Name: c}
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}

// RenderValue formats col for r. Unknown columns render empty.
func RenderValue(col string, r types.TickerRow) string {
	if d, ok := GetDef(col); ok {
		return d.Value(r)
	}
	return ""
}

// FormatPercent renders a fraction as a signed percentage, e.g. "+12.50%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// FormatFloat formats with fixed decimals and comma separators.
func FormatFloat(v float64, decimals int) string {
	return formatFloatComma(v, decimals)
}

// formatIntComma formats an integer with comma thousand separators.
func formatIntComma(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	out = append(out, s[:rem]...)
	for i := rem; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// formatFloatComma formats a float with a fixed number of decimals and comma separators.
func formatFloatComma(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n, err := strconv.Atoi(intPart)
	if err != nil {
		return s
	}
	return sign + formatIntComma(n) + fracPart
}
