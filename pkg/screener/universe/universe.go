// Package universe manages the list of symbols the backend screens: a YAML
// file refreshed from the Wikipedia S&P 500 constituents table.
package universe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/screener/pkg/screener/filter"
)

// DefaultLimit caps the symbols fetched per batch.
const DefaultLimit = 50

// Constituent is one universe member. Sector is the index's own (GICS)
// classification and is informational only.
type Constituent struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Sector string `yaml:"sector,omitempty" json:"sector,omitempty"`
}

// UnmarshalYAML accepts a bare ticker scalar as well as a mapping.
func (c *Constituent) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		c.Symbol = value.Value
		return nil
	}
	type plain Constituent
	return value.Decode((*plain)(c))
}

// Universe is the on-disk universe file.
type Universe struct {
	Source    string        `yaml:"source,omitempty"`
	UpdatedAt time.Time     `yaml:"updated_at,omitempty"`
	Symbols   []Constituent `yaml:"symbols"`
}

// Load reads a universe file. A top-level sequence of tickers is accepted
// as well as the full mapping form.
func Load(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	u := &Universe{}
	if len(root.Content) == 0 {
		return u, nil
	}
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		err = doc.Decode(&u.Symbols)
	case yaml.MappingNode:
		err = doc.Decode(u)
	default:
		err = fmt.Errorf("invalid universe: expected list or map with 'symbols'")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	u.Symbols = clean(u.Symbols)
	return u, nil
}

// Save writes u atomically.
func Save(path string, u *Universe) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(u); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Select returns the symbols passing f, in file order, capped at limit.
// limit <= 0 means no cap.
func (u *Universe) Select(limit int, f filter.Filter) []string {
	if f == nil {
		f = filter.Always(true)
	}
	syms := make([]string, len(u.Symbols))
	for i, c := range u.Symbols {
		syms[i] = c.Symbol
	}
	out := filter.Keep(f, syms)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NormalizeSymbol maps index notation onto the provider's ("BRK.B" -> "BRK-B").
func NormalizeSymbol(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ".", "-")
}

// clean normalizes symbols and drops blanks and duplicates.
func clean(in []Constituent) []Constituent {
	seen := make(map[string]struct{}, len(in))
	out := make([]Constituent, 0, len(in))
	for _, c := range in {
		c.Symbol = NormalizeSymbol(c.Symbol)
		if c.Symbol == "" {
			continue
		}
		if _, dup := seen[c.Symbol]; dup {
			continue
		}
		seen[c.Symbol] = struct{}{}
		out = append(out, c)
	}
	return out
}
