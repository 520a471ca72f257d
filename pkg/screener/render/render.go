// Package render writes screener views to terminals, pipes and images.
package render

import (
	"io"

	"github.com/komsit37/screener/pkg/screener/query"
)

// Renderer renders a screener view to an output writer.
type Renderer interface {
	Render(w io.Writer, view query.View, opts RenderOptions) error
}

type RenderOptions struct {
	Columns     []string
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
	// Summary adds the sector PER and rising sections after the table.
	Summary bool
}
