package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerMarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    string
	}{
		{"single_integer", SingleTrigger(505), "505"},
		{"single_decimal", SingleTrigger(584.26), "584.26"},
		{"range", RangeTrigger(571, 573), "[571,573]"},
		{"range_reordered", RangeTrigger(573, 571), "[571,573]"},
		{"range_equal_bounds", RangeTrigger(571, 571), "[571,571]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestTriggerUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Trigger
		wantErr bool
	}{
		{"number", "584.26", SingleTrigger(584.26), false},
		{"pair", "[571, 573]", RangeTrigger(571, 573), false},
		{"pair_unordered", "[573, 571]", RangeTrigger(571, 573), false},
		{"one_element", "[571]", Trigger{}, true},
		{"three_elements", "[1, 2, 3]", Trigger{}, true},
		{"string", `"571"`, Trigger{}, true},
		{"object", `{"low": 571}`, Trigger{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Trigger
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTriggerLevels(t *testing.T) {
	assert.Equal(t, []float64{505.1}, SingleTrigger(505.1).Levels())
	assert.Equal(t, []float64{571, 573}, RangeTrigger(571, 573).Levels())
	assert.Equal(t, []float64{571}, RangeTrigger(571, 571).Levels(), "degenerate zone collapses to one level")
}

func TestSignalJSONUsesLowercaseEnums(t *testing.T) {
	sig := Signal{
		Category:       CategoryBreakout,
		Comparison:     ComparisonAbove,
		Trigger:        SingleTrigger(586.19),
		Targets:        []float64{587.66, 589.00, 590.12},
		Aggressiveness: AggressivenessNone,
	}

	data, err := json.Marshal(sig)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"category":"breakout"`)
	assert.Contains(t, string(data), `"comparison":"above"`)
	assert.Contains(t, string(data), `"trigger":586.19`)
	assert.Contains(t, string(data), `"aggressiveness":"none"`)
}

func TestBiasDirectionOpposite(t *testing.T) {
	assert.Equal(t, BiasBearish, BiasBullish.Opposite())
	assert.Equal(t, BiasBullish, BiasBearish.Opposite())
}

func TestTickerSetupLevels(t *testing.T) {
	setup := TickerSetup{
		Symbol: "SPY",
		Signals: []Signal{
			{Category: CategoryBreakdown, Comparison: ComparisonBelow, Trigger: SingleTrigger(583.92), Targets: []float64{582.50, 581.00}},
			{Category: CategoryBounce, Comparison: ComparisonRange, Trigger: RangeTrigger(578, 579)},
		},
		Bias: &Bias{
			Direction: BiasBullish,
			Condition: ComparisonAbove,
			Price:     584.50,
			Flip:      &BiasFlip{Direction: BiasBearish, Price: 578.00},
		},
	}

	levels := setup.Levels()
	assert.Equal(t, []float64{583.92, 582.50, 581.00, 578, 579, 584.50}, levels,
		"levels keep first-seen order and drop duplicates")
}

func TestTradeSetupMessageHelpers(t *testing.T) {
	msg := TradeSetupMessage{
		ID:   "m-1",
		Date: time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		Setups: []TickerSetup{
			{Symbol: "SPY", Signals: []Signal{{Category: CategoryBreakout}}},
			{Symbol: "TSLA", Signals: []Signal{{Category: CategoryBounce}}},
		},
	}

	assert.Equal(t, "2025-10-15", msg.DateKey())
	assert.Equal(t, []string{"SPY", "TSLA"}, msg.Tickers())
	require.NotNil(t, msg.Setup("TSLA"))
	assert.Equal(t, CategoryBounce, msg.Setup("TSLA").Signals[0].Category)
	assert.Nil(t, msg.Setup("NVDA"))
}

func TestTradeSetupMessageRoundTrip(t *testing.T) {
	original := TradeSetupMessage{
		ID:      "b2a7c7d0-0000-0000-0000-000000000000",
		Date:    time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		Source:  "discord",
		RawText: "SPY: Breakout Over 586.19 (587.66, 589.00)",
		Setups: []TickerSetup{
			{
				Symbol: "SPY",
				Signals: []Signal{
					{
						Category:       CategoryBreakout,
						Comparison:     ComparisonAbove,
						Trigger:        SingleTrigger(586.19),
						Targets:        []float64{587.66, 589.00},
						Aggressiveness: AggressivenessNone,
					},
					{
						Category:       CategoryBounce,
						Comparison:     ComparisonRange,
						Trigger:        RangeTrigger(578, 579),
						Aggressiveness: AggressivenessAggressive,
					},
				},
				Bias: &Bias{
					Direction: BiasBullish,
					Condition: ComparisonAbove,
					Price:     584.50,
					Flip:      &BiasFlip{Direction: BiasBearish, Price: 578.00},
				},
				RawText: "SPY: Breakout Over 586.19 (587.66, 589.00)",
			},
		},
		CreatedAt: time.Date(2025, 10, 15, 14, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded TradeSetupMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded, "serialize then deserialize must yield an equivalent message")
}
