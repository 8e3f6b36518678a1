// Package app wires configuration, storage, clients, and services together.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aplus/internal/clients/gemini"
	"aplus/internal/common"
	"aplus/internal/interfaces"
	"aplus/internal/services/brief"
	"aplus/internal/services/setup"
	"aplus/internal/services/stream"
	"aplus/internal/storage"
)

// App holds all initialized services, clients, and shared state.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Storage       interfaces.StorageManager
	InsightClient interfaces.InsightClient
	Hub           *stream.Hub
	SetupService  interfaces.SetupService
	BriefService  interfaces.BriefService
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, APLUS_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("APLUS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "aplus.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/aplus.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	if missing := config.ValidateRequired(); len(missing) > 0 {
		logger.Warn().Strs("keys", missing).Msg("Configuration incomplete")
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Resolve the Gemini key: environment, then system KV, then config file.
	ctx := context.Background()
	geminiKey, err := common.ResolveAPIKey(ctx, storageManager.KV(), "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - brief commentary will be unavailable")
	}

	// The interface field stays nil unless a client was actually built, so
	// nil checks downstream behave.
	var insight interfaces.InsightClient
	if geminiKey != "" {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			insight = client
		}
	}

	hub := stream.NewHub(logger)
	setupService := setup.NewService(storageManager, hub, logger)
	briefService := brief.NewService(storageManager, insight, logger)

	a := &App{
		Config:        config,
		Logger:        logger,
		Storage:       storageManager,
		InsightClient: insight,
		Hub:           hub,
		SetupService:  setupService,
		BriefService:  briefService,
		StartupTime:   startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartStream launches the websocket hub loop.
func (a *App) StartStream() {
	go a.Hub.Run()
}

// Close releases all resources held by the App.
// Shutdown order: stop the hub, then close storage.
func (a *App) Close() {
	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
