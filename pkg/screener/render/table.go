package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/screener/pkg/screener/analytics"
	"github.com/komsit37/screener/pkg/screener/columns"
	"github.com/komsit37/screener/pkg/screener/query"
	"github.com/komsit37/screener/pkg/screener/types"
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, view query.View, opts RenderOptions) error {
	cols, err := columns.Compute(opts.Columns)
	if err != nil {
		return err
	}

	tw := newWriter(w)
	hdr := make(table.Row, len(cols))
	numeric := make([]bool, len(cols))
	for i, c := range cols {
		def, _ := columns.GetDef(c)
		hdr[i] = def.Header
		numeric[i] = def.Numeric
	}
	tw.AppendHeader(hdr)
	setColumnConfigs(tw, numeric, opts.MaxColWidth)

	for _, it := range view.Table.Rows {
		row := make(table.Row, len(cols))
		rise, hasRise := analytics.Rise(it)
		for i, c := range cols {
			row[i] = columns.RenderValue(c, it)
			if opts.Color && hasRise && (c == "price" || c == "rise") {
				row[i] = colorBySign(rise, row[i].(string))
			}
		}
		tw.AppendRow(row)
	}
	tw.Render()
	fmt.Fprintln(w, pageFooter(view.Table))

	if !opts.Summary {
		return nil
	}
	fmt.Fprintln(w)
	renderSectorPER(w, view.SectorPER)
	fmt.Fprintln(w)
	renderRisingSectors(w, view.RisingSectors, opts.Color)
	fmt.Fprintln(w)
	renderRisingTickers(w, view.RisingTickers, opts)
	return nil
}

// RenderRise prints the three reference points around a ticker's most recent
// upward move, oldest first.
func RenderRise(w io.Writer, rc analytics.RiseContext, color bool) {
	fmt.Fprintln(w, text.Bold.Sprint(rc.Symbol))
	tw := newWriter(w)
	tw.AppendHeader(table.Row{"POINT", "PERIOD", "PRICE", "EPS", "PER"})
	setColumnConfigs(tw, []bool{false, false, true, true, true}, 0)
	labels := []string{"before", "start", "latest"}
	for i, s := range rc.Series() {
		per := "-"
		if s.PER != nil {
			per = columns.FormatFloat(*s.PER, 1)
		}
		tw.AppendRow(table.Row{labels[i], s.Period, columns.FormatFloat(s.Price, 2), columns.FormatFloat(s.EPS, 2), per})
	}
	tw.Render()
	if v, ok := analytics.PctChange(rc.Latest.Price, rc.Start.Price); ok {
		s := "since start " + columns.FormatPercent(v)
		if color {
			s = colorBySign(v, s)
		}
		fmt.Fprintln(w, s)
	}
}

func renderSectorPER(w io.Writer, aggs []types.SectorAggregate) {
	fmt.Fprintln(w, text.Bold.Sprint("SECTOR PER"))
	tw := newWriter(w)
	tw.AppendHeader(table.Row{"SECTOR", "AVG", "LOW", "HIGH", "COUNT"})
	setColumnConfigs(tw, []bool{false, true, true, true, true}, 0)
	for _, a := range aggs {
		tw.AppendRow(table.Row{string(a.Sector), optFloat(a.AvgPER), optFloat(a.LowPER), optFloat(a.HighPER), a.Count})
	}
	tw.Render()
}

func renderRisingSectors(w io.Writer, rs []types.SectorRise, color bool) {
	fmt.Fprintln(w, text.Bold.Sprint("RISING SECTORS"))
	tw := newWriter(w)
	tw.AppendHeader(table.Row{"SECTOR", "AVG RISE%"})
	setColumnConfigs(tw, []bool{false, true}, 0)
	for _, s := range rs {
		v := columns.FormatPercent(s.AvgRise)
		if color {
			v = colorBySign(s.AvgRise, v)
		}
		tw.AppendRow(table.Row{string(s.Sector), v})
	}
	tw.Render()
}

func renderRisingTickers(w io.Writer, rt []types.RankedTicker, opts RenderOptions) {
	fmt.Fprintln(w, text.Bold.Sprint("RISING TICKERS"))
	tw := newWriter(w)
	tw.AppendHeader(table.Row{"SYM", "NAME", "SECTOR", "PREV", "PRICE", "RISE%"})
	setColumnConfigs(tw, []bool{false, false, false, true, true, true}, opts.MaxColWidth)
	for _, t := range rt {
		v := columns.FormatPercent(t.Rise)
		if opts.Color {
			v = colorBySign(t.Rise, v)
		}
		tw.AppendRow(table.Row{t.Symbol, t.Name, string(t.Sector), columns.FormatFloat(t.Prev.Price, 2), columns.FormatFloat(t.Latest.Price, 2), v})
	}
	tw.Render()
}

func newWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleColoredDark)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

// setColumnConfigs wraps text to maxWidth (default 40) and right-aligns
// numeric columns.
func setColumnConfigs(tw table.Writer, numeric []bool, maxWidth int) {
	if maxWidth <= 0 {
		maxWidth = 40
	}
	cfgs := make([]table.ColumnConfig, 0, len(numeric))
	for i, n := range numeric {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
		if n {
			cfg.Align = text.AlignRight
			cfg.AlignHeader = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	if len(cfgs) > 0 {
		tw.SetColumnConfigs(cfgs)
	}
}

func colorBySign(v float64, s string) string {
	switch {
	case v < 0:
		return text.Colors{text.FgRed}.Sprint(s)
	case v > 0:
		return text.Colors{text.FgGreen}.Sprint(s)
	}
	return s
}

func optFloat(p *float64) string {
	if p == nil {
		return "-"
	}
	return columns.FormatFloat(*p, 1)
}

func pageFooter(p query.Page) string {
	pages := 1
	if p.PageSize > 0 && p.Total > 0 {
		pages = (p.Total + p.PageSize - 1) / p.PageSize
	}
	var b strings.Builder
	fmt.Fprintf(&b, "page %d/%d, %d rows", p.Page, pages, p.Total)
	if p.HasPrev {
		b.WriteString(", prev")
	}
	if p.HasNext {
		b.WriteString(", next")
	}
	return b.String()
}
