package setups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"up_button", "🔼 Above 505.10", "[BREAKOUT] Above 505.10"},
		{"up_triangle", "🔺 Above 505.10", "[BREAKOUT] Above 505.10"},
		{"down_button", "🔽 Below 583.92", "[BREAKDOWN] Below 583.92"},
		{"down_triangle", "🔻 Below 583.92", "[BREAKDOWN] Below 583.92"},
		{"prohibited", "🚫 Near 584.26", "[REJECTION] Near 584.26"},
		{"no_entry", "⛔ Near 584.26", "[REJECTION] Near 584.26"},
		{"cycle_arrows", "🔄 From 578.00", "[BOUNCE] From 578.00"},
		{"warning_with_selector", "⚠️ Bullish above 584.50", "[WARNING] Bullish above 584.50"},
		{"warning_bare", "⚠ Bullish above 584.50", "[WARNING] Bullish above 584.50"},
		{"multiple_glyphs", "🔼 505 then 🔻 500", "[BREAKOUT] 505 then [BREAKDOWN] 500"},
		{"unknown_emoji_passthrough", "🚀 SPY to the moon", "🚀 SPY to the moon"},
		{"no_glyphs", "SPY: Breakout Above 505.10", "SPY: Breakout Above 505.10"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"🔼 Above 505.10",
		"⚠️ ⚠ 🔼 🔺 🔽 🔻 🚫 ⛔ 🔄",
		"[BREAKOUT] already normalized",
		"plain text with no glyphs",
		"",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", input)
	}
}
