// Package models defines data structures for Aplus
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SignalCategory classifies the kind of price action a signal describes.
type SignalCategory string

const (
	CategoryBreakout  SignalCategory = "breakout"
	CategoryBreakdown SignalCategory = "breakdown"
	CategoryRejection SignalCategory = "rejection"
	CategoryBounce    SignalCategory = "bounce"
)

// Comparison relates the current price to a trigger level.
type Comparison string

const (
	ComparisonAbove Comparison = "above"
	ComparisonBelow Comparison = "below"
	ComparisonNear  Comparison = "near"
	ComparisonRange Comparison = "range"
)

// Aggressiveness qualifies how aggressive a signal entry is.
type Aggressiveness string

const (
	AggressivenessNone         Aggressiveness = "none"
	AggressivenessLow          Aggressiveness = "low"
	AggressivenessMedium       Aggressiveness = "medium"
	AggressivenessHigh         Aggressiveness = "high"
	AggressivenessAggressive   Aggressiveness = "aggressive"
	AggressivenessConservative Aggressiveness = "conservative"
)

// BiasDirection is the directional stance for a ticker.
type BiasDirection string

const (
	BiasBullish BiasDirection = "bullish"
	BiasBearish BiasDirection = "bearish"
)

// Opposite returns the opposing direction.
func (d BiasDirection) Opposite() BiasDirection {
	if d == BiasBullish {
		return BiasBearish
	}
	return BiasBullish
}

// Trigger is a price trigger: either a single level or an inclusive low-high zone.
// It serializes as a bare number for a single level and a two-element array for a zone.
type Trigger struct {
	Low     float64
	High    float64
	IsRange bool
}

// SingleTrigger builds a single-level trigger.
func SingleTrigger(price float64) Trigger {
	return Trigger{Low: price, High: price}
}

// RangeTrigger builds a zone trigger. Bounds are reordered so Low <= High.
func RangeTrigger(low, high float64) Trigger {
	if low > high {
		low, high = high, low
	}
	return Trigger{Low: low, High: high, IsRange: true}
}

// Value returns the price of a single-level trigger (the lower bound for zones).
func (t Trigger) Value() float64 {
	return t.Low
}

// Levels returns the distinct price levels the trigger spans.
func (t Trigger) Levels() []float64 {
	if t.IsRange && t.High != t.Low {
		return []float64{t.Low, t.High}
	}
	return []float64{t.Low}
}

// MarshalJSON emits a number for single levels and [low, high] for zones.
func (t Trigger) MarshalJSON() ([]byte, error) {
	if t.IsRange {
		return json.Marshal([2]float64{t.Low, t.High})
	}
	return json.Marshal(t.Low)
}

// UnmarshalJSON accepts a number or a two-element array.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var single float64
	if err := json.Unmarshal(data, &single); err == nil {
		*t = SingleTrigger(single)
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("trigger must be a number or [low, high]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("trigger array must have exactly 2 elements, got %d", len(pair))
	}
	*t = RangeTrigger(pair[0], pair[1])
	return nil
}

// Signal is one actionable trade signal extracted from a ticker section.
type Signal struct {
	Category       SignalCategory `json:"category"`
	Comparison     Comparison     `json:"comparison"`
	Trigger        Trigger        `json:"trigger"`
	Targets        []float64      `json:"targets,omitempty"`
	Aggressiveness Aggressiveness `json:"aggressiveness"`
}

// Bias captures the directional stance for a ticker and its flip level.
type Bias struct {
	Direction    BiasDirection `json:"direction"`
	Condition    Comparison    `json:"condition"` // "above" or "below"
	Price        float64       `json:"price"`
	Flip         *BiasFlip     `json:"flip,omitempty"`
	FlipConflict bool          `json:"flip_conflict,omitempty"` // flip direction does not oppose the bias
}

// BiasFlip marks the level at which the directional stance inverts.
type BiasFlip struct {
	Direction BiasDirection `json:"direction"`
	Price     float64       `json:"price"`
}

// TickerSetup is the complete extracted setup for one symbol.
type TickerSetup struct {
	Symbol  string   `json:"symbol"`
	Signals []Signal `json:"signals"`
	Bias    *Bias    `json:"bias,omitempty"`
	RawText string   `json:"raw_text,omitempty"`
}

// Levels returns every distinct price level in the setup, in first-seen order:
// signal triggers and targets, then bias and flip prices.
func (ts *TickerSetup) Levels() []float64 {
	seen := make(map[float64]bool)
	var levels []float64
	add := func(p float64) {
		if p > 0 && !seen[p] {
			seen[p] = true
			levels = append(levels, p)
		}
	}
	for _, sig := range ts.Signals {
		for _, l := range sig.Trigger.Levels() {
			add(l)
		}
		for _, t := range sig.Targets {
			add(t)
		}
	}
	if ts.Bias != nil {
		add(ts.Bias.Price)
		if ts.Bias.Flip != nil {
			add(ts.Bias.Flip.Price)
		}
	}
	return levels
}

// TradeSetupMessage is the structured result of extracting one alert message.
type TradeSetupMessage struct {
	ID        string        `json:"id"`
	Date      time.Time     `json:"date"`
	Source    string        `json:"source"`
	RawText   string        `json:"raw_text"`
	Setups    []TickerSetup `json:"setups"`
	CreatedAt time.Time     `json:"created_at"`
}

// DateKey returns the message date formatted for storage keys and API paths.
func (m *TradeSetupMessage) DateKey() string {
	return m.Date.Format("2006-01-02")
}

// Tickers returns the setup symbols in message order.
func (m *TradeSetupMessage) Tickers() []string {
	tickers := make([]string, 0, len(m.Setups))
	for _, s := range m.Setups {
		tickers = append(tickers, s.Symbol)
	}
	return tickers
}

// Setup returns the setup for a symbol, or nil when the message has none.
func (m *TradeSetupMessage) Setup(symbol string) *TickerSetup {
	for i := range m.Setups {
		if m.Setups[i].Symbol == symbol {
			return &m.Setups[i]
		}
	}
	return nil
}

// SetupEvent is pushed to websocket subscribers when a message is processed.
type SetupEvent struct {
	Type      string             `json:"type"`
	Message   *TradeSetupMessage `json:"message,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// SetupEventIngested is emitted after a message is extracted and persisted.
const SetupEventIngested = "message_ingested"
