// Package interfaces defines service contracts for Aplus
package interfaces

import (
	"context"
	"time"

	"aplus/internal/models"
)

// SetupService orchestrates extraction, persistence, and distribution of
// setup messages.
type SetupService interface {
	// Ingest extracts a raw alert, persists the result, and broadcasts it.
	// Extraction itself cannot fail; only storage errors propagate.
	Ingest(ctx context.Context, raw, source string, date time.Time) (*models.TradeSetupMessage, error)

	// Parse extracts without persisting (dry run).
	Parse(raw, source string, date time.Time) *models.TradeSetupMessage

	// GetMessage retrieves a stored message by ID.
	GetMessage(ctx context.Context, id string) (*models.TradeSetupMessage, error)

	// ListMessages returns stored messages matching the filter, newest first.
	ListMessages(ctx context.Context, filter MessageFilter) ([]*models.TradeSetupMessage, error)

	// ListByTicker returns recent messages carrying a setup for the symbol.
	ListByTicker(ctx context.Context, symbol string, limit int) ([]*models.TradeSetupMessage, error)
}

// BriefService aggregates a day's setups into a report.
type BriefService interface {
	// DailyBrief summarizes all messages for a calendar date. When withInsight
	// is set and an insight client is configured, model commentary is appended;
	// an absent client yields a brief without commentary, not an error.
	DailyBrief(ctx context.Context, date time.Time, withInsight bool) (*models.DailyBrief, error)

	// RenderLevelsChart renders a PNG of the symbol's levels from one message.
	RenderLevelsChart(msg *models.TradeSetupMessage, symbol string) ([]byte, error)
}

// Broadcaster pushes setup events to live subscribers. Implementations must
// tolerate slow or absent consumers without blocking the caller.
type Broadcaster interface {
	Broadcast(event *models.SetupEvent)
}
