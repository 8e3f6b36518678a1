package brief

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"aplus/internal/models"
)

// RenderLevelsChart renders a PNG of a symbol's price levels from one message:
// trigger lines colored by category, targets dashed gray, bias and flip dashed
// purple. Returns raw PNG bytes.
func (s *Service) RenderLevelsChart(msg *models.TradeSetupMessage, symbol string) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("message is required")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	setup := msg.Setup(symbol)
	if setup == nil {
		return nil, fmt.Errorf("no setup for '%s' in message '%s'", symbol, msg.ID)
	}
	return renderLevelsChart(setup, fmt.Sprintf("%s Setup Levels (%s)", symbol, msg.DateKey()))
}

func renderLevelsChart(setup *models.TickerSetup, title string) ([]byte, error) {
	levels := setup.Levels()
	if len(levels) == 0 {
		return nil, fmt.Errorf("setup for '%s' has no price levels", setup.Symbol)
	}

	var series []chart.Series
	for _, sig := range setup.Signals {
		for _, lv := range sig.Trigger.Levels() {
			series = append(series, levelSeries(
				fmt.Sprintf("%s %s", sig.Category, formatPrice(lv)), lv,
				chart.Style{
					StrokeColor: categoryColor(sig.Category),
					StrokeWidth: 2.5,
				}))
		}
		for _, tg := range sig.Targets {
			series = append(series, levelSeries(
				fmt.Sprintf("target %s", formatPrice(tg)), tg,
				chart.Style{
					StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5.0, 3.0},
				}))
		}
	}
	if setup.Bias != nil {
		series = append(series, levelSeries(
			fmt.Sprintf("bias %s %s", setup.Bias.Direction, formatPrice(setup.Bias.Price)), setup.Bias.Price,
			chart.Style{
				StrokeColor:     drawing.ColorFromHex("9333ea"), // purple-600
				StrokeWidth:     2.0,
				StrokeDashArray: []float64{5.0, 3.0},
			}))
		if setup.Bias.Flip != nil {
			series = append(series, levelSeries(
				fmt.Sprintf("flip %s %s", setup.Bias.Flip.Direction, formatPrice(setup.Bias.Flip.Price)), setup.Bias.Flip.Price,
				chart.Style{
					StrokeColor:     drawing.ColorFromHex("c084fc"), // purple-400
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5.0, 3.0},
				}))
		}
	}

	min, max := levels[0], levels[0]
	for _, lv := range levels {
		if lv < min {
			min = lv
		}
		if lv > max {
			max = lv
		}
	}
	// Pad the Y range so single-level charts still have a nonzero span.
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = max * 0.01
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Style: chart.Hidden(),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: min - pad, Max: max + pad},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// levelSeries draws one horizontal line across the chart at a price level.
func levelSeries(name string, level float64, style chart.Style) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		Style:   style,
		XValues: []float64{0, 1},
		YValues: []float64{level, level},
	}
}

func categoryColor(cat models.SignalCategory) drawing.Color {
	switch cat {
	case models.CategoryBreakout:
		return drawing.ColorFromHex("16a34a") // green-600
	case models.CategoryBreakdown:
		return drawing.ColorFromHex("dc2626") // red-600
	case models.CategoryRejection:
		return drawing.ColorFromHex("ea580c") // orange-600
	default:
		return drawing.ColorFromHex("2563eb") // blue-600
	}
}
