// Package storage provides persistence for extracted setup messages with pluggable backends.
package storage

import (
	"fmt"

	"aplus/internal/common"
	"aplus/internal/interfaces"
	"aplus/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendFile    = "file"
	BackendSurreal = "surrealdb"
)

// NewStorageManager creates the storage manager for the configured backend.
// Supported backends: "file" (default), "surrealdb".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		return NewFileManager(logger, &config.Storage)

	case BackendSurreal:
		return surrealdb.NewManager(logger, &config.Storage.Surreal)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, surrealdb)", backend)
	}
}
