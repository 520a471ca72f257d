package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/screener/pkg/screener/normalize"
	"github.com/komsit37/screener/pkg/screener/types"
)

// YAMLSource loads seeded rows from a YAML file or a directory of them.
type YAMLSource struct{}

// seedFile is either a bare list of rows or a mapping with a default
// periodicity for rows that do not set one.
type seedFile struct {
	Periodicity types.Periodicity `yaml:"periodicity"`
	Rows        []types.TickerRow `yaml:"rows"`
}

// Load expects spec to be a string filepath.
func (YAMLSource) Load(ctx context.Context, spec any) ([]types.TickerRow, error) { //nolint:revive // ctx reserved for future use
	path, ok := spec.(string)
	if !ok {
		return nil, fmt.Errorf("yaml source expects filepath string spec")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	// Recursively load all YAML files in the directory and combine.
	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []types.TickerRow
	for _, full := range files {
		rows, err := loadFile(full)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

func loadFile(path string) ([]types.TickerRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// parseYAML decodes a seed file and normalizes every row.
func parseYAML(data []byte) ([]types.TickerRow, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	var f seedFile
	switch doc := root.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&f.Rows); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := doc.Decode(&f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid yaml: expected list of rows or map with 'rows'")
	}

	out := make([]types.TickerRow, 0, len(f.Rows))
	for i, r := range f.Rows {
		if strings.TrimSpace(r.Symbol) == "" {
			return nil, fmt.Errorf("row %d: missing symbol", i+1)
		}
		if r.Periodicity == "" {
			r.Periodicity = f.Periodicity
		}
		switch r.Periodicity {
		case "", types.Quarterly, types.Annual:
		default:
			return nil, fmt.Errorf("row %d (%s): unknown periodicity %q", i+1, r.Symbol, r.Periodicity)
		}
		out = append(out, normalize.Row(r))
	}
	return out, nil
}
