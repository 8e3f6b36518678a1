package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"aplus/internal/common"
	"aplus/internal/interfaces"
	"aplus/internal/models"
)

// --- Test helpers ---

// newTestFileManager creates a FileManager backed by a temp directory.
func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewLogger("error")
	m, err := NewFileManager(logger, &common.StorageConfig{Backend: BackendFile, Path: dir})
	if err != nil {
		t.Fatalf("NewFileManager failed: %v", err)
	}
	return m
}

// testMessage builds a message with one breakout setup per symbol.
// CreatedAt is set to the message date so ordering tests can steer it.
func testMessage(id string, date time.Time, source string, symbols ...string) *models.TradeSetupMessage {
	setups := make([]models.TickerSetup, 0, len(symbols))
	for i, sym := range symbols {
		setups = append(setups, models.TickerSetup{
			Symbol: sym,
			Signals: []models.Signal{{
				Category:       models.CategoryBreakout,
				Comparison:     models.ComparisonAbove,
				Trigger:        models.SingleTrigger(100 + float64(i)),
				Targets:        []float64{102 + float64(i), 104 + float64(i)},
				Aggressiveness: models.AggressivenessNone,
			}},
		})
	}
	return &models.TradeSetupMessage{
		ID:        id,
		Date:      date,
		Source:    source,
		RawText:   "raw text for " + id,
		Setups:    setups,
		CreatedAt: date,
	}
}

func day(dayOfMonth, hour int) time.Time {
	return time.Date(2025, 10, dayOfMonth, hour, 0, 0, 0, time.UTC)
}

// --- FileManager core tests ---

func TestFileManager_DirectoryLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "path")
	logger := common.NewLogger("error")
	if _, err := NewFileManager(logger, &common.StorageConfig{Path: dir}); err != nil {
		t.Fatalf("NewFileManager failed: %v", err)
	}

	for _, sub := range subdirectories {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil {
			t.Errorf("expected directory %s to exist: %v", sub, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", sub)
		}
	}
}

func TestFileManager_SaveGetRoundtrip(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	msg := testMessage("msg-1", day(15, 9), "discord", "SPY", "QQQ")
	msg.Setups[0].Bias = &models.Bias{
		Direction: models.BiasBullish,
		Condition: models.ComparisonAbove,
		Price:     505.5,
		Flip:      &models.BiasFlip{Direction: models.BiasBearish, Price: 503},
	}

	if err := m.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	got, err := m.GetMessage(ctx, "msg-1")
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if got.ID != "msg-1" || got.Source != "discord" {
		t.Errorf("unexpected identity fields: id=%q source=%q", got.ID, got.Source)
	}
	if got.DateKey() != "2025-10-15" {
		t.Errorf("expected date key 2025-10-15, got %q", got.DateKey())
	}
	if len(got.Setups) != 2 {
		t.Fatalf("expected 2 setups, got %d", len(got.Setups))
	}
	if got.Setups[0].Symbol != "SPY" || got.Setups[1].Symbol != "QQQ" {
		t.Errorf("setup symbols out of order: %v", got.Tickers())
	}
	if got.Setups[0].Signals[0].Trigger.Value() != 100 {
		t.Errorf("expected trigger 100, got %v", got.Setups[0].Signals[0].Trigger.Value())
	}
	bias := got.Setups[0].Bias
	if bias == nil || bias.Direction != models.BiasBullish || bias.Flip == nil || bias.Flip.Price != 503 {
		t.Errorf("bias did not survive roundtrip: %+v", bias)
	}
}

func TestFileManager_SaveMessageOverwrites(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	if err := m.SaveMessage(ctx, testMessage("msg-1", day(15, 9), "discord", "SPY")); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if err := m.SaveMessage(ctx, testMessage("msg-1", day(15, 9), "webhook", "TSLA")); err != nil {
		t.Fatalf("second SaveMessage failed: %v", err)
	}

	got, err := m.GetMessage(ctx, "msg-1")
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if got.Source != "webhook" || len(got.Setups) != 1 || got.Setups[0].Symbol != "TSLA" {
		t.Errorf("expected overwrite to win: source=%q tickers=%v", got.Source, got.Tickers())
	}

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("expected 1 message after overwrite, got %d", len(msgs))
	}
}

func TestFileManager_SaveMessageRequiresID(t *testing.T) {
	m := newTestFileManager(t)
	msg := testMessage("", day(15, 9), "discord", "SPY")
	if err := m.SaveMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for empty message ID")
	}
}

func TestFileManager_GetMessageNotFound(t *testing.T) {
	m := newTestFileManager(t)
	_, err := m.GetMessage(context.Background(), "does-not-exist")
	if err == nil {
		t.Fatal("expected error for missing message")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got: %v", err)
	}
}

func TestFileManager_SanitizedIDs(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	// IDs containing path separators must be stored and retrieved consistently.
	id := "2025-10-15/discord:morning"
	if err := m.SaveMessage(ctx, testMessage(id, day(15, 9), "discord", "SPY")); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	got, err := m.GetMessage(ctx, id)
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("expected stored ID %q, got %q", id, got.ID)
	}

	// Nothing may escape the messages directory.
	evil := "../escape"
	if err := m.SaveMessage(ctx, testMessage(evil, day(15, 9), "discord", "SPY")); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.basePath, "escape.json")); !os.IsNotExist(err) {
		t.Error("sanitization let a key escape the messages directory")
	}
}

func TestFileManager_NoTempFilesLeftBehind(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("msg-%d", i)
		if err := m.SaveMessage(ctx, testMessage(id, day(15, 9+i), "discord", "SPY")); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	entries, err := os.ReadDir(m.messagesDir())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

// --- Listing tests ---

func TestFileManager_ListMessagesDateFilter(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	seed := []*models.TradeSetupMessage{
		testMessage("a", day(15, 9), "discord", "SPY"),
		testMessage("b", day(15, 14), "discord", "QQQ"),
		testMessage("c", day(16, 9), "discord", "SPY"),
	}
	for _, msg := range seed {
		if err := m.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{Date: day(15, 0)})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages for 2025-10-15, got %d", len(msgs))
	}
	for _, msg := range msgs {
		if msg.DateKey() != "2025-10-15" {
			t.Errorf("message %s has wrong date key %s", msg.ID, msg.DateKey())
		}
	}
}

func TestFileManager_ListMessagesSourceFilter(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	if err := m.SaveMessage(ctx, testMessage("a", day(15, 9), "discord", "SPY")); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if err := m.SaveMessage(ctx, testMessage("b", day(15, 10), "webhook", "QQQ")); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{Source: "webhook"})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "b" {
		t.Errorf("expected only message b, got %d messages", len(msgs))
	}
}

func TestFileManager_ListMessagesNewestFirst(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	// Insert out of order.
	for _, msg := range []*models.TradeSetupMessage{
		testMessage("mid", day(15, 12), "discord", "SPY"),
		testMessage("old", day(15, 9), "discord", "SPY"),
		testMessage("new", day(15, 15), "discord", "SPY"),
	} {
		if err := m.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, msgs[i].ID)
		}
	}
}

func TestFileManager_ListMessagesTiebreakByID(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	// Identical CreatedAt: higher ID sorts first.
	ts := day(15, 9)
	for _, id := range []string{"a", "c", "b"} {
		if err := m.SaveMessage(ctx, testMessage(id, ts, "discord", "SPY")); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, msgs[i].ID)
		}
	}
}

func TestFileManager_ListMessagesLimit(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("msg-%d", i)
		if err := m.SaveMessage(ctx, testMessage(id, day(15, 9+i), "discord", "SPY")); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].ID != "msg-5" || msgs[1].ID != "msg-4" {
		t.Errorf("limit did not keep the newest: %s, %s", msgs[0].ID, msgs[1].ID)
	}
}

func TestFileManager_ListMessagesEmpty(t *testing.T) {
	m := newTestFileManager(t)
	msgs, err := m.ListMessages(context.Background(), interfaces.MessageFilter{})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if msgs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}

func TestFileManager_ListByTicker(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	for _, msg := range []*models.TradeSetupMessage{
		testMessage("a", day(15, 9), "discord", "SPY", "QQQ"),
		testMessage("b", day(15, 10), "discord", "TSLA"),
		testMessage("c", day(16, 9), "discord", "QQQ"),
	} {
		if err := m.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	msgs, err := m.ListByTicker(ctx, "QQQ", 0)
	if err != nil {
		t.Fatalf("ListByTicker failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages with QQQ, got %d", len(msgs))
	}
	if msgs[0].ID != "c" || msgs[1].ID != "a" {
		t.Errorf("expected [c a], got [%s %s]", msgs[0].ID, msgs[1].ID)
	}

	limited, err := m.ListByTicker(ctx, "QQQ", 1)
	if err != nil {
		t.Fatalf("ListByTicker failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "c" {
		t.Errorf("expected newest QQQ message only, got %d", len(limited))
	}

	none, err := m.ListByTicker(ctx, "NVDA", 0)
	if err != nil {
		t.Fatalf("ListByTicker failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no NVDA messages, got %d", len(none))
	}
}

func TestFileManager_ScanSkipsCorruptFiles(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	if err := m.SaveMessage(ctx, testMessage("good", day(15, 9), "discord", "SPY")); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	bad := filepath.Join(m.messagesDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing corrupt file failed: %v", err)
	}

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "good" {
		t.Errorf("expected only the readable message, got %d", len(msgs))
	}
}

func TestFileManager_ConcurrentSaves(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("msg-%02d", n)
			if err := m.SaveMessage(ctx, testMessage(id, day(15, 9), "discord", "SPY")); err != nil {
				t.Errorf("SaveMessage %s failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	msgs, err := m.ListMessages(ctx, interfaces.MessageFilter{})
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 10 {
		t.Errorf("expected 10 messages, got %d", len(msgs))
	}
}

// --- System KV tests ---

func TestFileManager_SystemKVRoundtrip(t *testing.T) {
	m := newTestFileManager(t)
	ctx := context.Background()

	if err := m.SetSystemKV(ctx, "gemini_api_key", "secret-1"); err != nil {
		t.Fatalf("SetSystemKV failed: %v", err)
	}
	got, err := m.GetSystemKV(ctx, "gemini_api_key")
	if err != nil {
		t.Fatalf("GetSystemKV failed: %v", err)
	}
	if got != "secret-1" {
		t.Errorf("expected secret-1, got %q", got)
	}

	// Overwrite wins.
	if err := m.SetSystemKV(ctx, "gemini_api_key", "secret-2"); err != nil {
		t.Fatalf("SetSystemKV failed: %v", err)
	}
	got, err = m.GetSystemKV(ctx, "gemini_api_key")
	if err != nil {
		t.Fatalf("GetSystemKV failed: %v", err)
	}
	if got != "secret-2" {
		t.Errorf("expected secret-2, got %q", got)
	}
}

func TestFileManager_SystemKVNotFound(t *testing.T) {
	m := newTestFileManager(t)
	_, err := m.GetSystemKV(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got: %v", err)
	}
}

// --- Factory tests ---

func TestNewStorageManager_FileBackend(t *testing.T) {
	logger := common.NewLogger("error")
	config := common.NewDefaultConfig()
	config.Storage.Backend = BackendFile
	config.Storage.Path = t.TempDir()

	mgr, err := NewStorageManager(logger, config)
	if err != nil {
		t.Fatalf("NewStorageManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	if _, ok := mgr.(*FileManager); !ok {
		t.Errorf("expected *FileManager, got %T", mgr)
	}
	if mgr.SetupStore() == nil || mgr.KV() == nil {
		t.Error("expected non-nil stores")
	}
}

func TestNewStorageManager_DefaultsToFile(t *testing.T) {
	logger := common.NewLogger("error")
	config := common.NewDefaultConfig()
	config.Storage.Backend = ""
	config.Storage.Path = t.TempDir()

	mgr, err := NewStorageManager(logger, config)
	if err != nil {
		t.Fatalf("NewStorageManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	if _, ok := mgr.(*FileManager); !ok {
		t.Errorf("expected *FileManager, got %T", mgr)
	}
}

func TestNewStorageManager_UnknownBackend(t *testing.T) {
	logger := common.NewLogger("error")
	config := common.NewDefaultConfig()
	config.Storage.Backend = "badger"

	if _, err := NewStorageManager(logger, config); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
