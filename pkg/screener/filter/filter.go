package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Filter matches a symbol or display name.
type Filter interface {
	Match(s string) bool
}

// Parse builds a symbol filter from an expression:
// - Comma-separated exact symbols: "AAPL,MSFT"
// - Glob: "BRK-*"
// - Regex: "/^A/"
// - Anything else: case-insensitive substring
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("symbol filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.ToUpper(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?") {
		return Glob{pattern: expr}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// Keep returns the items of in accepted by f, preserving order.
func Keep(f Filter, in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

type Always bool

func (a Always) Match(string) bool { return bool(a) }

// ExactSet matches symbols case-insensitively against a fixed set.
type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(s string) bool {
	_, ok := e.set[strings.ToUpper(s)]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(s string) bool {
	ok, _ := filepath.Match(g.pattern, s)
	return ok
}

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(s string) bool { return r.re.MatchString(s) }

// SubstrCI matches if s contains needle, case-insensitively.
type SubstrCI struct{ needle string }

// Substr returns a case-insensitive substring filter.
func Substr(needle string) SubstrCI { return SubstrCI{needle: needle} }

func (s SubstrCI) Match(v string) bool {
	if s.needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(v), strings.ToLower(s.needle))
}
