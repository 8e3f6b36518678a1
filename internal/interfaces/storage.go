// Package interfaces defines service contracts for Aplus
package interfaces

import (
	"context"
	"time"

	"aplus/internal/models"
)

// StorageManager coordinates the configured storage backend.
type StorageManager interface {
	// SetupStore accesses persisted setup messages.
	SetupStore() SetupStorage

	// KV accesses the system key-value store (API keys, operational flags).
	KV() KeyValueStorage

	// Lifecycle
	Close() error
}

// SetupStorage persists extracted setup messages.
type SetupStorage interface {
	// SaveMessage upserts a message by ID.
	SaveMessage(ctx context.Context, msg *models.TradeSetupMessage) error

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id string) (*models.TradeSetupMessage, error)

	// ListMessages returns messages matching the filter, newest first.
	ListMessages(ctx context.Context, filter MessageFilter) ([]*models.TradeSetupMessage, error)

	// ListByTicker returns messages containing a setup for the symbol, newest first.
	ListByTicker(ctx context.Context, symbol string, limit int) ([]*models.TradeSetupMessage, error)
}

// MessageFilter narrows ListMessages results. Zero values mean "any".
type MessageFilter struct {
	Date   time.Time // match messages for this calendar date
	Source string    // match messages from this source
	Limit  int       // max results, 0 = backend default
}

// KeyValueStorage holds system-level configuration values set at runtime.
type KeyValueStorage interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
}
