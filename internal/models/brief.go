package models

import "time"

// DailyBrief aggregates every setup extracted for one trading day.
type DailyBrief struct {
	Date         time.Time     `json:"date"`
	MessageCount int           `json:"message_count"`
	Tickers      []TickerBrief `json:"tickers"`
	Summary      string        `json:"summary"`
	Commentary   string        `json:"commentary,omitempty"` // model-generated, optional
	GeneratedAt  time.Time     `json:"generated_at"`
}

// TickerBrief summarizes the setups seen for one symbol on a day.
type TickerBrief struct {
	Symbol       string                 `json:"symbol"`
	SetupCount   int                    `json:"setup_count"`
	SignalCounts map[SignalCategory]int `json:"signal_counts"`
	Bias         *Bias                  `json:"bias,omitempty"` // most recent bias of the day
	KeyLevels    []float64              `json:"key_levels"`
}
