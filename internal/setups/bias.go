package setups

import (
	"strings"

	"aplus/internal/models"
)

// ExtractBias finds the directional stance for a section, trying the
// canonical, simplified, and warning-flagged forms before inferring from the
// section's signals. The flip clause is parsed independently and attached to
// whichever bias was found. A flip that fails to oppose the bias direction is
// kept but flagged, never silently accepted.
func ExtractBias(body string, signals []models.Signal) *models.Bias {
	flipSpans := flipRe.FindAllStringSubmatchIndex(body, -1)

	bias := canonicalBias(body)
	if bias == nil {
		bias = simplifiedBias(body, flipSpans)
	}
	if bias == nil {
		bias = warningBias(body, flipSpans)
	}
	if bias == nil {
		bias = inferredBias(signals)
	}
	if bias == nil {
		return nil
	}

	if flip := parseFlip(body, flipSpans); flip != nil {
		bias.Flip = flip
		if flip.Direction == bias.Direction {
			bias.FlipConflict = true
		}
	}
	return bias
}

func canonicalBias(body string) *models.Bias {
	for _, m := range canonicalBiasRe.FindAllStringSubmatchIndex(body, -1) {
		if b := biasFromMatch(body, m); b != nil {
			return b
		}
	}
	return nil
}

// simplifiedBias skips candidates inside a flip clause so that "flip bearish
// below 578" on its own never reads as a bearish bias.
func simplifiedBias(body string, flipSpans [][]int) *models.Bias {
	for _, m := range simplifiedBiasRe.FindAllStringSubmatchIndex(body, -1) {
		if insideAny(flipSpans, m[0]) {
			continue
		}
		if b := biasFromMatch(body, m); b != nil {
			return b
		}
	}
	return nil
}

func warningBias(body string, flipSpans [][]int) *models.Bias {
	for _, m := range warningBiasRe.FindAllStringSubmatchIndex(body, -1) {
		if insideAny(flipSpans, m[2]) {
			continue
		}
		if b := biasFromMatch(body, m); b != nil {
			return b
		}
	}
	return nil
}

// inferredBias derives a stance from the section's signals when the text
// states none: an upward breakout reads bullish, else a downward breakdown
// reads bearish.
func inferredBias(signals []models.Signal) *models.Bias {
	for _, s := range signals {
		if s.Category == models.CategoryBreakout && s.Comparison == models.ComparisonAbove {
			return &models.Bias{Direction: models.BiasBullish, Condition: models.ComparisonAbove, Price: s.Trigger.Value()}
		}
	}
	for _, s := range signals {
		if s.Category == models.CategoryBreakdown && s.Comparison == models.ComparisonBelow {
			return &models.Bias{Direction: models.BiasBearish, Condition: models.ComparisonBelow, Price: s.Trigger.Value()}
		}
	}
	return nil
}

// biasFromMatch builds a bias from a (direction, relation, price) submatch
// index triple. Returns nil when the price token does not parse.
func biasFromMatch(body string, m []int) *models.Bias {
	price, ok := parsePrice(body[m[6]:m[7]])
	if !ok {
		return nil
	}
	return &models.Bias{
		Direction: directionFor(body[m[2]:m[3]]),
		Condition: comparisonFor(body[m[4]:m[5]]),
		Price:     price,
	}
}

func parseFlip(body string, flipSpans [][]int) *models.BiasFlip {
	for _, m := range flipSpans {
		price, ok := parsePrice(body[m[6]:m[7]])
		if !ok {
			continue
		}
		return &models.BiasFlip{
			Direction: directionFor(body[m[2]:m[3]]),
			Price:     price,
		}
	}
	return nil
}

func directionFor(word string) models.BiasDirection {
	if strings.EqualFold(word, "bullish") {
		return models.BiasBullish
	}
	return models.BiasBearish
}

func insideAny(spans [][]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}
