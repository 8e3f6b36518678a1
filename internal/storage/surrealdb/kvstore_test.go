package surrealdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_SystemKVRoundtrip(t *testing.T) {
	mgr := testManager(t)
	kv := mgr.KV()
	ctx := context.Background()

	require.NoError(t, kv.SetSystemKV(ctx, "gemini_api_key", "secret-1"))

	got, err := kv.GetSystemKV(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret-1", got)

	// Overwrite wins.
	require.NoError(t, kv.SetSystemKV(ctx, "gemini_api_key", "secret-2"))
	got, err = kv.GetSystemKV(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret-2", got)
}

func TestKVStore_SystemKVNotFound(t *testing.T) {
	mgr := testManager(t)

	_, err := mgr.KV().GetSystemKV(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestKVStore_KeysAreIndependent(t *testing.T) {
	mgr := testManager(t)
	kv := mgr.KV()
	ctx := context.Background()

	require.NoError(t, kv.SetSystemKV(ctx, "key_one", "one"))
	require.NoError(t, kv.SetSystemKV(ctx, "key_two", "two"))

	one, err := kv.GetSystemKV(ctx, "key_one")
	require.NoError(t, err)
	two, err := kv.GetSystemKV(ctx, "key_two")
	require.NoError(t, err)
	assert.Equal(t, "one", one)
	assert.Equal(t, "two", two)
}
