package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/komsit37/screener/pkg/screener/query"
)

// symsRenderer prints every filtered symbol, in table order, on one
// comma-separated line. Paging is ignored.
type symsRenderer struct{}

func NewSymsRenderer() Renderer {
	return symsRenderer{}
}

func (symsRenderer) Render(w io.Writer, view query.View, _ RenderOptions) error {
	rows := query.SortRows(view.Rows, view.Query.Sort, view.Query.Order)
	symbols := make([]string, 0, len(rows))
	for _, r := range rows {
		sym := strings.TrimSpace(r.Symbol)
		if sym == "" {
			continue
		}
		symbols = append(symbols, sym)
	}
	_, err := fmt.Fprintln(w, strings.Join(symbols, ","))
	return err
}
