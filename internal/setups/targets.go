package setups

import (
	"sort"
	"strconv"
)

// ExtractTargets resolves a target ladder. The cascade runs over body first;
// when it finds nothing and signalLine is non-empty, the same cascade is
// retried against just that line. Returns nil when no form matches; never
// fails.
func ExtractTargets(body, signalLine string) []float64 {
	if targets := targetCascade(body); len(targets) > 0 {
		return targets
	}
	if signalLine != "" {
		return targetCascade(signalLine)
	}
	return nil
}

func targetCascade(text string) []float64 {
	if t := parenTargets(text); len(t) > 0 {
		return t
	}
	if t := enumeratedTargets(text); len(t) > 0 {
		return t
	}
	return listTargets(text)
}

// parenTargets reads the first trailing-parenthesis ladder after a price:
// "505.10 (508, 510.5, 515)". The parenthesized content must be a pure price
// list; prose in parentheses is not a ladder.
func parenTargets(text string) []float64 {
	for _, m := range parenLadderRe.FindAllStringSubmatch(text, -1) {
		if !ladderContentRe.MatchString(m[1]) {
			continue
		}
		if targets := pricesIn(m[1]); len(targets) > 0 {
			return targets
		}
	}
	return nil
}

// enumeratedTargets collects "Target 1: 508 ... Target 2: 510.5" pairs and
// orders them by N, regardless of the order the text states them.
func enumeratedTargets(text string) []float64 {
	type entry struct {
		n     int
		price float64
	}
	var entries []entry
	for _, m := range enumeratedTargetRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		price, ok := parsePrice(m[2])
		if !ok {
			continue
		}
		entries = append(entries, entry{n: n, price: price})
	}
	if len(entries) == 0 {
		return nil
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].n < entries[j].n })

	targets := make([]float64, 0, len(entries))
	for _, e := range entries {
		targets = append(targets, e.price)
	}
	return targets
}

// listTargets reads "Target: 508" and the comma-list variant
// "Targets: 581, 579.5, 575".
func listTargets(text string) []float64 {
	m := listTargetRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return pricesIn(m[1])
}

func pricesIn(list string) []float64 {
	var prices []float64
	for _, tok := range ladderPriceRe.FindAllString(list, -1) {
		if v, ok := parsePrice(tok); ok {
			prices = append(prices, v)
		}
	}
	return prices
}
