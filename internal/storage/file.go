package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"aplus/internal/common"
	"aplus/internal/interfaces"
	"aplus/internal/models"
)

// FileManager implements interfaces.StorageManager on plain JSON files.
// Messages live under messages/ (one file per message ID) and system
// key-values under kv/ (one file per key).
type FileManager struct {
	basePath string
	logger   *common.Logger
}

// subdirectories defines the directory layout under basePath.
var subdirectories = []string{"messages", "kv"}

// NewFileManager creates a FileManager and ensures the directory layout exists.
func NewFileManager(logger *common.Logger, config *common.StorageConfig) (*FileManager, error) {
	m := &FileManager{
		basePath: config.Path,
		logger:   logger,
	}

	for _, sub := range subdirectories {
		dir := filepath.Join(m.basePath, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	logger.Debug().Str("path", config.Path).Msg("File storage opened")
	return m, nil
}

func (m *FileManager) SetupStore() interfaces.SetupStorage { return m }
func (m *FileManager) KV() interfaces.KeyValueStorage      { return m }

func (m *FileManager) Close() error { return nil }

func (m *FileManager) messagesDir() string { return filepath.Join(m.basePath, "messages") }
func (m *FileManager) kvDir() string       { return filepath.Join(m.basePath, "kv") }

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

// filePath returns the full path for a key in a directory.
func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

// readJSON reads and unmarshals a JSON file.
func readJSON(dir, key string, dest any) error {
	path := filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON marshals data to indented JSON and writes it atomically:
// temp file in the same directory, then rename.
func writeJSON(dir, key string, data any) error {
	target := filePath(dir, key)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// listKeys returns all keys in a directory (excluding temp files).
func listKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}

// --- SetupStorage ---

func (m *FileManager) SaveMessage(ctx context.Context, msg *models.TradeSetupMessage) error {
	if msg.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if err := writeJSON(m.messagesDir(), msg.ID, msg); err != nil {
		return fmt.Errorf("failed to save message %s: %w", msg.ID, err)
	}
	m.logger.Debug().Str("id", msg.ID).Int("setups", len(msg.Setups)).Msg("Message saved")
	return nil
}

func (m *FileManager) GetMessage(ctx context.Context, id string) (*models.TradeSetupMessage, error) {
	var msg models.TradeSetupMessage
	if err := readJSON(m.messagesDir(), id, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *FileManager) ListMessages(ctx context.Context, filter interfaces.MessageFilter) ([]*models.TradeSetupMessage, error) {
	msgs, err := m.scanMessages()
	if err != nil {
		return nil, err
	}

	dateKey := ""
	if !filter.Date.IsZero() {
		dateKey = filter.Date.Format("2006-01-02")
	}

	matched := make([]*models.TradeSetupMessage, 0, len(msgs))
	for _, msg := range msgs {
		if dateKey != "" && msg.DateKey() != dateKey {
			continue
		}
		if filter.Source != "" && msg.Source != filter.Source {
			continue
		}
		matched = append(matched, msg)
	}

	sortMessagesDesc(matched)
	return clipMessages(matched, filter.Limit), nil
}

func (m *FileManager) ListByTicker(ctx context.Context, symbol string, limit int) ([]*models.TradeSetupMessage, error) {
	msgs, err := m.scanMessages()
	if err != nil {
		return nil, err
	}

	matched := make([]*models.TradeSetupMessage, 0)
	for _, msg := range msgs {
		if msg.Setup(symbol) != nil {
			matched = append(matched, msg)
		}
	}

	sortMessagesDesc(matched)
	return clipMessages(matched, limit), nil
}

// scanMessages loads every stored message. Unreadable files are skipped with a warning.
func (m *FileManager) scanMessages() ([]*models.TradeSetupMessage, error) {
	keys, err := listKeys(m.messagesDir())
	if err != nil {
		return nil, err
	}

	msgs := make([]*models.TradeSetupMessage, 0, len(keys))
	for _, key := range keys {
		var msg models.TradeSetupMessage
		if err := readJSON(m.messagesDir(), key, &msg); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Skipping unreadable message file")
			continue
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// defaultListLimit caps list results when the caller does not set one.
const defaultListLimit = 100

// sortMessagesDesc orders newest first, message ID as tiebreaker for
// deterministic ordering when timestamps are equal.
func sortMessagesDesc(msgs []*models.TradeSetupMessage) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID > msgs[j].ID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
}

func clipMessages(msgs []*models.TradeSetupMessage, limit int) []*models.TradeSetupMessage {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs
}

// --- KeyValueStorage ---

// systemKV is the stored form of a system key-value entry.
type systemKV struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *FileManager) GetSystemKV(ctx context.Context, key string) (string, error) {
	var kv systemKV
	if err := readJSON(m.kvDir(), key, &kv); err != nil {
		return "", err
	}
	return kv.Value, nil
}

func (m *FileManager) SetSystemKV(ctx context.Context, key, value string) error {
	kv := systemKV{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := writeJSON(m.kvDir(), key, kv); err != nil {
		return fmt.Errorf("failed to set system KV %s: %w", key, err)
	}
	return nil
}

// Compile-time checks
var (
	_ interfaces.StorageManager  = (*FileManager)(nil)
	_ interfaces.SetupStorage    = (*FileManager)(nil)
	_ interfaces.KeyValueStorage = (*FileManager)(nil)
)
