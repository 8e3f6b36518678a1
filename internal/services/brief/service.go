// Package brief aggregates a day's extracted setups into reports and charts.
package brief

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aplus/internal/common"
	"aplus/internal/interfaces"
	"aplus/internal/models"
)

// dailyMessageLimit caps how many of a day's messages a brief scans.
const dailyMessageLimit = 200

// Service implements BriefService
type Service struct {
	storage interfaces.StorageManager
	insight interfaces.InsightClient
	logger  *common.Logger
}

// NewService creates a new brief service. insight may be nil; briefs then
// carry no commentary.
func NewService(storage interfaces.StorageManager, insight interfaces.InsightClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		insight: insight,
		logger:  logger,
	}
}

// DailyBrief summarizes all messages stored for a calendar date.
func (s *Service) DailyBrief(ctx context.Context, date time.Time, withInsight bool) (*models.DailyBrief, error) {
	messages, err := s.storage.SetupStore().ListMessages(ctx, interfaces.MessageFilter{
		Date:  date,
		Limit: dailyMessageLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	brief := &models.DailyBrief{
		Date:         date,
		MessageCount: len(messages),
		Tickers:      aggregateTickers(messages),
		GeneratedAt:  time.Now().UTC(),
	}
	brief.Summary = formatBriefSummary(brief)

	if withInsight && s.insight != nil {
		commentary, err := s.insight.GenerateInsight(ctx, buildBriefPrompt(brief))
		if err != nil {
			s.logger.Warn().Err(err).Str("date", brief.Date.Format("2006-01-02")).Msg("Insight generation failed (continuing without commentary)")
		} else {
			brief.Commentary = commentary
		}
	}

	s.logger.Info().
		Str("date", brief.Date.Format("2006-01-02")).
		Int("messages", brief.MessageCount).
		Int("tickers", len(brief.Tickers)).
		Msg("Daily brief generated")

	return brief, nil
}

// aggregateTickers folds the day's messages into per-symbol briefs, sorted
// alphabetically. Messages arrive newest first, so the first bias seen for a
// symbol is the day's latest.
func aggregateTickers(messages []*models.TradeSetupMessage) []models.TickerBrief {
	briefs := make(map[string]*models.TickerBrief)
	seenLevels := make(map[string]map[float64]bool)

	for _, msg := range messages {
		for i := range msg.Setups {
			setup := &msg.Setups[i]
			tb, ok := briefs[setup.Symbol]
			if !ok {
				tb = &models.TickerBrief{
					Symbol:       setup.Symbol,
					SignalCounts: make(map[models.SignalCategory]int),
				}
				briefs[setup.Symbol] = tb
				seenLevels[setup.Symbol] = make(map[float64]bool)
			}

			tb.SetupCount++
			for _, sig := range setup.Signals {
				tb.SignalCounts[sig.Category]++
			}
			if tb.Bias == nil && setup.Bias != nil {
				tb.Bias = setup.Bias
			}
			for _, lv := range setup.Levels() {
				if !seenLevels[setup.Symbol][lv] {
					seenLevels[setup.Symbol][lv] = true
					tb.KeyLevels = append(tb.KeyLevels, lv)
				}
			}
		}
	}

	symbols := make([]string, 0, len(briefs))
	for sym := range briefs {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	out := make([]models.TickerBrief, 0, len(symbols))
	for _, sym := range symbols {
		tb := briefs[sym]
		sort.Float64s(tb.KeyLevels)
		out = append(out, *tb)
	}
	return out
}

// Ensure Service implements BriefService
var _ interfaces.BriefService = (*Service)(nil)
