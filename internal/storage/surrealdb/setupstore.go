package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aplus/internal/common"
	"aplus/internal/interfaces"
	"aplus/internal/models"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// messageSelectFields lists the fields to select from setup_message,
// aliasing message_id to id for struct mapping (SurrealDB reserves id
// for the record pointer).
const messageSelectFields = "message_id as id, date, source, raw_text, setups, created_at"

// defaultListLimit caps list results when the caller does not set one.
const defaultListLimit = 100

// setupRecord is the stored form of a setup message. date_key and tickers
// are denormalized from the message so list queries can filter on them.
type setupRecord struct {
	MessageID string               `json:"message_id"`
	Date      time.Time            `json:"date"`
	DateKey   string               `json:"date_key"`
	Source    string               `json:"source"`
	RawText   string               `json:"raw_text"`
	Setups    []models.TickerSetup `json:"setups"`
	Tickers   []string             `json:"tickers"`
	CreatedAt time.Time            `json:"created_at"`
}

func newSetupRecord(msg *models.TradeSetupMessage) setupRecord {
	return setupRecord{
		MessageID: msg.ID,
		Date:      msg.Date,
		DateKey:   msg.DateKey(),
		Source:    msg.Source,
		RawText:   msg.RawText,
		Setups:    msg.Setups,
		Tickers:   msg.Tickers(),
		CreatedAt: msg.CreatedAt,
	}
}

// SetupStore implements interfaces.SetupStorage using SurrealDB.
type SetupStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewSetupStore creates a new SetupStore.
func NewSetupStore(db *surrealdb.DB, logger *common.Logger) *SetupStore {
	return &SetupStore{db: db, logger: logger}
}

func (s *SetupStore) SaveMessage(ctx context.Context, msg *models.TradeSetupMessage) error {
	if msg.ID == "" {
		return fmt.Errorf("message ID is required")
	}

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID("setup_message", msg.ID),
		"record": newSetupRecord(msg),
	}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save message after retries: %w", err)
		}
	}
	return nil
}

func (s *SetupStore) GetMessage(ctx context.Context, id string) (*models.TradeSetupMessage, error) {
	sql := "SELECT " + messageSelectFields + " FROM $rid"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("setup_message", id),
	}

	results, err := surrealdb.Query[[]models.TradeSetupMessage](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("'%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("'%s' not found", id)
	}
	return &(*results)[0].Result[0], nil
}

func (s *SetupStore) ListMessages(ctx context.Context, filter interfaces.MessageFilter) ([]*models.TradeSetupMessage, error) {
	// Build WHERE clauses
	where := ""
	vars := map[string]any{}

	if !filter.Date.IsZero() {
		where += " AND date_key = $date_key"
		vars["date_key"] = filter.Date.Format("2006-01-02")
	}
	if filter.Source != "" {
		where += " AND source = $source"
		vars["source"] = filter.Source
	}

	// Strip leading " AND "
	whereClause := ""
	if where != "" {
		whereClause = " WHERE " + where[5:]
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	vars["limit"] = limit

	// message_id as tiebreaker for deterministic ordering when timestamps are equal
	sql := "SELECT " + messageSelectFields + " FROM setup_message" + whereClause +
		" ORDER BY created_at DESC, message_id DESC LIMIT $limit"

	results, err := surrealdb.Query[[]models.TradeSetupMessage](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	items := make([]*models.TradeSetupMessage, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			items = append(items, &(*results)[0].Result[i])
		}
	}
	return items, nil
}

func (s *SetupStore) ListByTicker(ctx context.Context, symbol string, limit int) ([]*models.TradeSetupMessage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	sql := "SELECT " + messageSelectFields + " FROM setup_message WHERE $symbol IN tickers" +
		" ORDER BY created_at DESC, message_id DESC LIMIT $limit"
	vars := map[string]any{
		"symbol": symbol,
		"limit":  limit,
	}

	results, err := surrealdb.Query[[]models.TradeSetupMessage](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages by ticker: %w", err)
	}

	items := make([]*models.TradeSetupMessage, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			items = append(items, &(*results)[0].Result[i])
		}
	}
	return items, nil
}

// isNotFoundError reports whether err indicates a missing record rather than
// a query failure.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no row")
}

// Compile-time check
var _ interfaces.SetupStorage = (*SetupStore)(nil)
