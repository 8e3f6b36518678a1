package surrealdb

import (
	"context"
	"fmt"
	"time"

	"aplus/internal/common"
	"aplus/internal/interfaces"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// KVStore implements interfaces.KeyValueStorage using SurrealDB.
type KVStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewKVStore creates a new KVStore.
func NewKVStore(db *surrealdb.DB, logger *common.Logger) *KVStore {
	return &KVStore{db: db, logger: logger}
}

// sysKV is the stored form of a system key-value entry.
type sysKV struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *KVStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	kv, err := surrealdb.Select[sysKV](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil || kv == nil {
		return "", fmt.Errorf("'%s' not found", key)
	}
	return kv.Value, nil
}

func (s *KVStore) SetSystemKV(ctx context.Context, key, value string) error {
	kv := sysKV{Key: key, Value: value, UpdatedAt: time.Now().UTC()}

	sql := "UPSERT type::record('system_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": kv}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]sysKV](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to set system KV after retries: %w", err)
		}
	}
	return nil
}

// Compile-time check
var _ interfaces.KeyValueStorage = (*KVStore)(nil)
