package server

import (
	"net/http"
	"time"

	"aplus/internal/models"
)

// handleGlossary returns the alert vocabulary the extractor understands.
func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, buildGlossary())
}

// buildGlossary constructs the glossary from the extraction vocabulary.
func buildGlossary() *models.GlossaryResponse {
	return &models.GlossaryResponse{
		GeneratedAt: time.Now(),
		Categories: []models.GlossaryCategory{
			buildSignalCategory(),
			buildPictographCategory(),
			buildTargetCategory(),
			buildBiasCategory(),
			buildQualifierCategory(),
		},
	}
}

func buildSignalCategory() models.GlossaryCategory {
	return models.GlossaryCategory{
		Name: "Signal Categories",
		Terms: []models.GlossaryTerm{
			{
				Term:       "breakout",
				Definition: "Long entry when price clears a level. Accepts 'above' or 'over'.",
				Example:    "SPY: Breakout above 505.10",
			},
			{
				Term:       "breakdown",
				Definition: "Short entry when price loses a level. Accepts 'below' or 'under'.",
				Example:    "TSLA: Breakdown below 242.00",
			},
			{
				Term:       "rejection",
				Definition: "Fade at resistance. Accepts 'near', 'at', or 'around'.",
				Example:    "QQQ: Rejection near 480.00",
			},
			{
				Term:       "bounce",
				Definition: "Long entry off support. Accepts 'from', 'near', or 'at'. A bounce zone carries a low-high range instead of a single level.",
				Example:    "NVDA: Bounce Zone 571.00-573.00",
			},
		},
	}
}

func buildPictographCategory() models.GlossaryCategory {
	return models.GlossaryCategory{
		Name: "Pictographs",
		Terms: []models.GlossaryTerm{
			{
				Term:       "\U0001F53C / \U0001F53A",
				Definition: "Breakout. Stands in for the keyword on a signal line.",
				Example:    "\U0001F53C Above 505.10",
			},
			{
				Term:       "\U0001F53D / \U0001F53B",
				Definition: "Breakdown.",
				Example:    "\U0001F53D Below 242.00",
			},
			{
				Term:       "\U0001F6AB / ⛔",
				Definition: "Rejection.",
				Example:    "\U0001F6AB Near 480.00",
			},
			{
				Term:       "\U0001F504",
				Definition: "Bounce.",
				Example:    "\U0001F504 From 503.00",
			},
			{
				Term:       "⚠️",
				Definition: "Caution note. When the line carries a direction and level, it is read as a bias.",
				Example:    "⚠️ Only bullish above 505.10",
			},
		},
	}
}

func buildTargetCategory() models.GlossaryCategory {
	return models.GlossaryCategory{
		Name: "Targets",
		Terms: []models.GlossaryTerm{
			{
				Term:       "ladder",
				Definition: "Price targets in parentheses after the trigger, comma or slash separated, taken in order.",
				Example:    "Breakout above 505.10 (506.50, 508.00)",
			},
			{
				Term:       "enumerated",
				Definition: "Numbered target lines. The number fixes the ladder position.",
				Example:    "Target 1: 506.50",
			},
			{
				Term:       "list",
				Definition: "A bare 'Target:' or 'Targets:' line followed by comma-separated prices.",
				Example:    "Targets: 506.50, 508.00",
			},
		},
	}
}

func buildBiasCategory() models.GlossaryCategory {
	return models.GlossaryCategory{
		Name: "Bias",
		Terms: []models.GlossaryTerm{
			{
				Term:       "bias",
				Definition: "Directional lean conditioned on a level: bullish above it or bearish below it. 'Bullish bias above 505.10' and the shortened 'bullish above 505.10' both count.",
				Example:    "Bullish bias above 505.10",
			},
			{
				Term:       "flip",
				Definition: "The level where the lean reverses. A flip that contradicts its own bias direction is kept but flagged as a conflict.",
				Example:    "Flips bearish below 503.00",
			},
		},
	}
}

func buildQualifierCategory() models.GlossaryCategory {
	return models.GlossaryCategory{
		Name: "Qualifiers",
		Terms: []models.GlossaryTerm{
			{
				Term:       "aggressive",
				Definition: "Early entry, wider risk. Scanned on the signal's own line.",
				Example:    "Aggressive breakout above 505.10",
			},
			{
				Term:       "conservative",
				Definition: "Confirmation entry, tighter risk.",
				Example:    "Conservative bounce from 503.00",
			},
			{
				Term:       "risk level",
				Definition: "Risk wording is kept as its own scale: 'low risk', 'medium risk', and 'high risk' qualify the signal as low, medium, or high.",
				Example:    "High risk breakdown below 242.00",
			},
		},
	}
}
