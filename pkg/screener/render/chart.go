package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/komsit37/screener/pkg/screener/types"
)

// RenderChart writes a PNG line chart of a ticker's history: price on the
// left axis and EPS on the right, oldest period first.
func RenderChart(w io.Writer, row types.TickerRow) error {
	hist := row.Snapshots.Chronological()
	if len(hist) < 2 {
		return fmt.Errorf("need at least 2 snapshots, got %d", len(hist))
	}

	xValues := make([]float64, len(hist))
	priceY := make([]float64, len(hist))
	epsY := make([]float64, len(hist))
	ticks := make([]chart.Tick, len(hist))
	for i, s := range hist {
		xValues[i] = float64(i)
		priceY[i] = s.Price
		epsY[i] = s.EPS
		ticks[i] = chart.Tick{Value: float64(i), Label: s.Period}
	}

	priceSeries := chart.ContinuousSeries{
		Name: "Price",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: priceY,
	}

	epsSeries := chart.ContinuousSeries{
		Name:  "EPS",
		YAxis: chart.YAxisSecondary,
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("16a34a"), // green-600
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: epsY,
	}

	title := row.Symbol
	if row.Name != "" {
		title += " " + row.Name
	}
	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		YAxisSecondary: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			priceSeries,
			epsSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}
