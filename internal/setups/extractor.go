// Package setups extracts structured trade setups from alert text
package setups

import (
	"time"

	"github.com/google/uuid"

	"aplus/internal/models"
)

// DefaultSource labels messages whose ingest channel is unknown.
const DefaultSource = "unknown"

// Extractor turns raw alert text into structured setup messages. It holds no
// state; the compiled patterns are package-level and read-only, so a single
// Extractor is safe for arbitrary concurrent use.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses one alert message. It never fails: malformed fragments
// degrade to fewer results and completely unusable input yields a message
// with no setups. refDate anchors messages whose text carries no date; pass
// the zero time for today.
func (e *Extractor) Extract(raw, source string, refDate time.Time) *models.TradeSetupMessage {
	normalized := Normalize(raw)
	sections, _ := splitWithStrategy(normalized)

	setups := make([]models.TickerSetup, 0, len(sections))
	for _, sec := range sections {
		if setup := extractSection(sec); setup != nil {
			setups = append(setups, *setup)
		}
	}

	if source == "" {
		source = DefaultSource
	}

	return &models.TradeSetupMessage{
		ID:        uuid.New().String(),
		Date:      DetectDate(normalized, refDate),
		Source:    source,
		RawText:   raw,
		Setups:    setups,
		CreatedAt: time.Now().UTC(),
	}
}

// extractSection runs the per-section extractors and assembles their output.
// Sections yielding zero signals produce nil and are dropped before assembly.
func extractSection(sec Section) *models.TickerSetup {
	found := extractLineSignals(sec.Body)
	if len(found) == 0 {
		return nil
	}

	sectionTargets := targetCascade(sec.Body)

	signals := make([]models.Signal, 0, len(found))
	for _, f := range found {
		sig := f.signal
		// Targets on the signal's own line win; the section-wide ladder is
		// broadcast to signals without one.
		if local := targetCascade(f.line); len(local) > 0 {
			sig.Targets = local
		} else if len(sectionTargets) > 0 {
			sig.Targets = append([]float64(nil), sectionTargets...)
		}
		signals = append(signals, sig)
	}

	return &models.TickerSetup{
		Symbol:  sec.Symbol,
		Signals: signals,
		Bias:    ExtractBias(sec.Body, signals),
		RawText: sec.Body,
	}
}
