package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/screener/pkg/screener/columns"
	"github.com/komsit37/screener/pkg/screener/query"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Columns []string `json:"columns"`
	query.View
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, view query.View, opts RenderOptions) error {
	cols, err := columns.Compute(opts.Columns)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(jsonModel{Columns: cols, View: view})
}
