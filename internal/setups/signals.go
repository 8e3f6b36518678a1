package setups

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"aplus/internal/models"
)

// lineSignal pairs an extracted signal with the line it came from, so the
// assembler can resolve signal-local targets before broadcasting the
// section-wide ladder.
type lineSignal struct {
	signal models.Signal
	line   string
}

// inlinePatterns drive the free-text pass. Keyword and token forms of the
// same category are mutually exclusive on any given line, so both can be
// scanned without double-counting.
var inlinePatterns = []struct {
	re       *regexp.Regexp
	category models.SignalCategory
}{
	{breakoutSignalRe, models.CategoryBreakout},
	{breakoutTokenRe, models.CategoryBreakout},
	{breakdownSignalRe, models.CategoryBreakdown},
	{breakdownTokenRe, models.CategoryBreakdown},
	{rejectionSignalRe, models.CategoryRejection},
	{rejectionTokenRe, models.CategoryRejection},
	{bounceSignalRe, models.CategoryBounce},
	{bounceTokenRe, models.CategoryBounce},
}

// ExtractSignals parses every trading signal in a section body, in the order
// the text states them.
func ExtractSignals(body string) []models.Signal {
	found := extractLineSignals(body)
	if len(found) == 0 {
		return nil
	}
	signals := make([]models.Signal, 0, len(found))
	for _, f := range found {
		signals = append(signals, f.signal)
	}
	return signals
}

func extractLineSignals(body string) []lineSignal {
	lines := strings.Split(body, "\n")

	var out []lineSignal
	headerEnd := -1
	if len(lines) > 0 {
		if sig, end, ok := headerSignal(lines[0]); ok {
			out = append(out, lineSignal{signal: sig, line: lines[0]})
			headerEnd = end
		}
	}

	for i, line := range lines {
		minStart := -1
		if i == 0 {
			minStart = headerEnd
		}
		out = append(out, lineSignals(line, minStart)...)
	}
	return out
}

// categoryVocab lists the relation words each category accepts, mirroring the
// inline patterns. The header-form regexp matches the union of all relations,
// so the match is validated here.
var categoryVocab = map[models.SignalCategory]map[string]bool{
	models.CategoryBreakout:  {"above": true, "over": true},
	models.CategoryBreakdown: {"below": true, "under": true},
	models.CategoryRejection: {"near": true, "at": true, "around": true},
	models.CategoryBounce:    {"from": true, "near": true, "at": true},
}

// headerSignal matches the structured first line of a section
// ("SPY: Breakout Above 505.10"). Returns the end offset of the match so the
// inline pass does not re-count it. A relation word outside the category's
// vocabulary ("Breakout Below") is not a signal.
func headerSignal(line string) (models.Signal, int, bool) {
	m := headerSignalRe.FindStringSubmatchIndex(line)
	if m == nil {
		return models.Signal{}, 0, false
	}
	category := categoryFor(line[m[2]:m[3]])
	relation := strings.ToLower(line[m[4]:m[5]])
	if !categoryVocab[category][relation] {
		return models.Signal{}, 0, false
	}
	price, ok := parsePrice(line[m[6]:m[7]])
	if !ok {
		return models.Signal{}, 0, false
	}
	sig := models.Signal{
		Category:       category,
		Comparison:     comparisonFor(relation),
		Trigger:        models.SingleTrigger(price),
		Aggressiveness: aggressivenessFor(line),
	}
	return sig, m[1], true
}

// lineSignals scans one line for inline signals. Matches starting before
// minStart are skipped (already consumed by the header form). Zone matches
// are collected first and suppress plain bounce matches they overlap.
func lineSignals(line string, minStart int) []lineSignal {
	type candidate struct {
		start int
		sig   models.Signal
	}
	var candidates []candidate

	aggr := aggressivenessFor(line)

	zones := bounceZoneRe.FindAllStringSubmatchIndex(line, -1)
	for _, m := range zones {
		if m[0] < minStart {
			continue
		}
		low, okLow := parsePrice(line[m[2]:m[3]])
		high, okHigh := parsePrice(line[m[4]:m[5]])
		if !okLow || !okHigh {
			continue
		}
		candidates = append(candidates, candidate{start: m[0], sig: models.Signal{
			Category:       models.CategoryBounce,
			Comparison:     models.ComparisonRange,
			Trigger:        models.RangeTrigger(low, high),
			Aggressiveness: aggr,
		}})
	}

	for _, p := range inlinePatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(line, -1) {
			if m[0] < minStart {
				continue
			}
			if p.category == models.CategoryBounce && overlapsAny(zones, m[0], m[1]) {
				continue
			}
			price, ok := parsePrice(line[m[4]:m[5]])
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{start: m[0], sig: models.Signal{
				Category:       p.category,
				Comparison:     comparisonFor(line[m[2]:m[3]]),
				Trigger:        models.SingleTrigger(price),
				Aggressiveness: aggr,
			}})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].start < candidates[j].start })

	out := make([]lineSignal, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, lineSignal{signal: c.sig, line: line})
	}
	return out
}

func overlapsAny(spans [][]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

// parsePrice converts a matched price token, rejecting non-positive values.
func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func categoryFor(keyword string) models.SignalCategory {
	switch strings.ToLower(keyword) {
	case "breakout":
		return models.CategoryBreakout
	case "breakdown":
		return models.CategoryBreakdown
	case "rejection":
		return models.CategoryRejection
	default:
		return models.CategoryBounce
	}
}

// comparisonFor maps a relation word to its comparison. From/Near/At/Around
// all read as proximity.
func comparisonFor(relation string) models.Comparison {
	switch strings.ToLower(relation) {
	case "above", "over":
		return models.ComparisonAbove
	case "below", "under":
		return models.ComparisonBelow
	default:
		return models.ComparisonNear
	}
}

func aggressivenessFor(line string) models.Aggressiveness {
	if m := aggrWordRe.FindStringSubmatch(line); m != nil {
		return models.Aggressiveness(strings.ToLower(m[1]))
	}
	if m := aggrLevelRe.FindStringSubmatch(line); m != nil {
		return models.Aggressiveness(strings.ToLower(m[1]))
	}
	return models.AggressivenessNone
}
