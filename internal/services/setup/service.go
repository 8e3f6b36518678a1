// Package setup orchestrates extraction, persistence, and distribution of
// alert messages.
package setup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aplus/internal/common"
	"aplus/internal/interfaces"
	"aplus/internal/models"
	"aplus/internal/setups"
)

// Service implements SetupService.
type Service struct {
	storage   interfaces.StorageManager
	extractor *setups.Extractor
	hub       interfaces.Broadcaster
	logger    *common.Logger
}

// NewService creates a new setup service. hub may be nil when no live
// distribution is wired.
func NewService(storage interfaces.StorageManager, hub interfaces.Broadcaster, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		extractor: setups.NewExtractor(),
		hub:       hub,
		logger:    logger,
	}
}

// Ingest extracts a raw alert, persists the result, and broadcasts it.
// Extraction never fails; only storage errors propagate.
func (s *Service) Ingest(ctx context.Context, raw, source string, date time.Time) (*models.TradeSetupMessage, error) {
	msg := s.extractor.Extract(raw, source, date)

	if err := s.storage.SetupStore().SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	s.logger.Info().
		Str("id", msg.ID).
		Str("source", msg.Source).
		Str("date", msg.DateKey()).
		Int("setups", len(msg.Setups)).
		Msg("Alert ingested")

	if s.hub != nil {
		s.hub.Broadcast(&models.SetupEvent{
			Type:      models.SetupEventIngested,
			Message:   msg,
			Timestamp: time.Now().UTC(),
		})
	}

	return msg, nil
}

// Parse extracts without persisting.
func (s *Service) Parse(raw, source string, date time.Time) *models.TradeSetupMessage {
	return s.extractor.Extract(raw, source, date)
}

func (s *Service) GetMessage(ctx context.Context, id string) (*models.TradeSetupMessage, error) {
	return s.storage.SetupStore().GetMessage(ctx, id)
}

func (s *Service) ListMessages(ctx context.Context, filter interfaces.MessageFilter) ([]*models.TradeSetupMessage, error) {
	return s.storage.SetupStore().ListMessages(ctx, filter)
}

// ListByTicker returns recent messages carrying a setup for the symbol.
// Symbols are matched uppercase, the form the extractor emits.
func (s *Service) ListByTicker(ctx context.Context, symbol string, limit int) ([]*models.TradeSetupMessage, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	return s.storage.SetupStore().ListByTicker(ctx, symbol, limit)
}

// Ensure Service implements SetupService
var _ interfaces.SetupService = (*Service)(nil)
