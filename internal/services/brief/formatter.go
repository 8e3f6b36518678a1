package brief

import (
	"fmt"
	"strconv"
	"strings"

	"aplus/internal/models"
)

// formatBriefSummary generates the summary markdown for a daily brief.
func formatBriefSummary(brief *models.DailyBrief) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# A+ Setups: %s\n\n", brief.Date.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n", brief.MessageCount))
	sb.WriteString(fmt.Sprintf("**Tickers:** %d\n\n", len(brief.Tickers)))

	if len(brief.Tickers) == 0 {
		sb.WriteString("No setups extracted for this date.\n")
		return sb.String()
	}

	sb.WriteString("| Symbol | Setups | Breakout | Breakdown | Rejection | Bounce | Bias | Key Levels |\n")
	sb.WriteString("|--------|--------|----------|-----------|-----------|--------|------|------------|\n")
	for _, tb := range brief.Tickers {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %s | %s |\n",
			tb.Symbol, tb.SetupCount,
			tb.SignalCounts[models.CategoryBreakout],
			tb.SignalCounts[models.CategoryBreakdown],
			tb.SignalCounts[models.CategoryRejection],
			tb.SignalCounts[models.CategoryBounce],
			formatBias(tb.Bias),
			formatLevels(tb.KeyLevels),
		))
	}

	return sb.String()
}

// buildBriefPrompt creates the commentary prompt for the insight client.
func buildBriefPrompt(brief *models.DailyBrief) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`Review the trade setups extracted from alert messages for %s and provide:
1. The overall directional lean of the day
2. The tickers with the most actionable setups and why
3. Any conflicting or flipped biases worth flagging

Use only the price levels listed below. Do not invent levels.

`, brief.Date.Format("January 2, 2006")))

	for _, tb := range brief.Tickers {
		sb.WriteString(fmt.Sprintf("%s: %d setups", tb.Symbol, tb.SetupCount))
		for _, cat := range []models.SignalCategory{
			models.CategoryBreakout, models.CategoryBreakdown,
			models.CategoryRejection, models.CategoryBounce,
		} {
			if n := tb.SignalCounts[cat]; n > 0 {
				sb.WriteString(fmt.Sprintf(", %d %s", n, cat))
			}
		}
		sb.WriteString("\n")
		if tb.Bias != nil {
			sb.WriteString(fmt.Sprintf("  Bias: %s\n", formatBias(tb.Bias)))
		}
		if len(tb.KeyLevels) > 0 {
			sb.WriteString(fmt.Sprintf("  Levels: %s\n", formatLevels(tb.KeyLevels)))
		}
	}

	sb.WriteString("\nProvide your commentary in 2-3 concise paragraphs.")

	return sb.String()
}

func formatBias(b *models.Bias) string {
	if b == nil {
		return "-"
	}
	s := fmt.Sprintf("%s %s %s", b.Direction, b.Condition, formatPrice(b.Price))
	if b.Flip != nil {
		s += fmt.Sprintf(", flips %s at %s", b.Flip.Direction, formatPrice(b.Flip.Price))
	}
	if b.FlipConflict {
		s += " (flip conflict)"
	}
	return s
}

func formatLevels(levels []float64) string {
	if len(levels) == 0 {
		return "-"
	}
	parts := make([]string, len(levels))
	for i, lv := range levels {
		parts[i] = formatPrice(lv)
	}
	return strings.Join(parts, ", ")
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
