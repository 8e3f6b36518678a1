package surrealdb

import (
	"context"
	"testing"

	"aplus/internal/common"
	"aplus/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_TablesQueryable(t *testing.T) {
	mgr := testManager(t)
	ctx := context.Background()

	// Tables are defined up front, so listing from empty tables must not error.
	msgs, err := mgr.SetupStore().ListMessages(ctx, interfaces.MessageFilter{})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = mgr.KV().GetSystemKV(ctx, "anything")
	assert.Error(t, err, "missing key should report not found, not a table error")
}

func TestNewManager_Accessors(t *testing.T) {
	mgr := testManager(t)

	assert.NotNil(t, mgr.SetupStore())
	assert.NotNil(t, mgr.KV())
}

func TestNewManager_BadAddress(t *testing.T) {
	startSurrealDB(t)

	_, err := NewManager(testLogger(), &common.SurrealConfig{
		URL:       "ws://127.0.0.1:1/rpc",
		Namespace: "aplus_test",
		Database:  "bad_address",
		Username:  "root",
		Password:  "root",
	})
	require.Error(t, err)
}
