package setups

import "strings"

// Section is one ticker-scoped slice of a message.
type Section struct {
	Symbol string
	Body   string
}

// splitStrategy is a single segmentation rule. Strategies are tried in
// priority order and the first one producing at least one section wins for
// the whole message; later strategies are never attempted.
type splitStrategy struct {
	name  string
	split func(text string) []Section
}

var splitStrategies = []splitStrategy{
	{name: "numbered_paren", split: splitNumberedParen},
	{name: "numbered_period", split: splitNumberedPeriod},
	{name: "standalone_ticker", split: splitStandaloneTicker},
	{name: "inline_ticker", split: splitInlineTicker},
	{name: "divider", split: splitDividers},
}

// SplitSections segments normalized text into an ordered sequence of ticker
// sections. Returns nil when no strategy produces a match.
func SplitSections(text string) []Section {
	sections, _ := splitWithStrategy(text)
	return sections
}

// splitWithStrategy also reports the name of the winning strategy.
func splitWithStrategy(text string) ([]Section, string) {
	if strings.TrimSpace(text) == "" {
		return nil, ""
	}
	for _, s := range splitStrategies {
		if sections := s.split(text); len(sections) > 0 {
			return sections, s.name
		}
	}
	return nil, ""
}

func splitNumberedParen(text string) []Section {
	return headerSections(text, numberedParenHeaderRe.FindAllStringSubmatchIndex(text, -1), 1, false)
}

func splitNumberedPeriod(text string) []Section {
	return headerSections(text, numberedPeriodHeaderRe.FindAllStringSubmatchIndex(text, -1), 1, false)
}

func splitStandaloneTicker(text string) []Section {
	return headerSections(text, standaloneTickerRe.FindAllStringSubmatchIndex(text, -1), 1, false)
}

func splitInlineTicker(text string) []Section {
	// Group 1 is the left boundary character; group 2 is the ticker. Sections
	// start at the ticker itself, not the boundary.
	return headerSections(text, inlineTickerRe.FindAllStringSubmatchIndex(text, -1), 2, true)
}

// headerSections cuts text at each header match. Each section runs from its
// header to the character before the next header (or end of text). symGroup
// names the submatch holding the ticker; fromSymbol starts the section at the
// ticker token instead of the full match.
func headerSections(text string, matches [][]int, symGroup int, fromSymbol bool) []Section {
	if len(matches) == 0 {
		return nil
	}

	starts := make([]int, len(matches))
	symbols := make([]string, len(matches))
	for i, m := range matches {
		lo, hi := m[2*symGroup], m[2*symGroup+1]
		if lo < 0 || hi < 0 {
			return nil
		}
		symbols[i] = text[lo:hi]
		if fromSymbol {
			starts[i] = lo
		} else {
			starts[i] = m[0]
		}
	}

	sections := make([]Section, 0, len(matches))
	for i := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = starts[i+1]
		}
		body := strings.TrimSpace(text[starts[i]:end])
		if body == "" {
			continue
		}
		sections = append(sections, Section{Symbol: symbols[i], Body: body})
	}
	return sections
}

// splitDividers segments on horizontal-rule lines. The first uppercase token
// in each segment names the section; segments without one are skipped. The
// strategy only applies when at least one divider is present.
func splitDividers(text string) []Section {
	dividers := dividerRe.FindAllStringIndex(text, -1)
	if len(dividers) == 0 {
		return nil
	}

	var sections []Section
	prev := 0
	bounds := make([][2]int, 0, len(dividers)+1)
	for _, d := range dividers {
		bounds = append(bounds, [2]int{prev, d[0]})
		prev = d[1]
	}
	bounds = append(bounds, [2]int{prev, len(text)})

	for _, b := range bounds {
		segment := strings.TrimSpace(text[b[0]:b[1]])
		if segment == "" {
			continue
		}
		symbol := ""
		for _, m := range segmentTickerRe.FindAllStringSubmatchIndex(segment, -1) {
			tok := segment[m[2]:m[3]]
			// A single letter followed by '+' is a grade ("A+ Trade
			// Setups"), not a ticker.
			if len(tok) == 1 && m[3] < len(segment) && segment[m[3]] == '+' {
				continue
			}
			symbol = tok
			break
		}
		if symbol == "" {
			continue
		}
		sections = append(sections, Section{Symbol: symbol, Body: segment})
	}
	return sections
}
