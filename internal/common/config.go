// Package common provides shared utilities for Aplus
package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"aplus/internal/interfaces"
)

// DefaultJWTSecret is the development fallback; ValidateRequired rejects it
// when token auth is enabled.
const DefaultJWTSecret = "dev-jwt-secret-change-in-production"

// Config holds all configuration for Aplus
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Auth        AuthConfig    `toml:"auth"`
	Ingest      IngestConfig  `toml:"ingest"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend string        `toml:"backend"` // "file" or "surrealdb"
	Path    string        `toml:"path"`    // file backend data directory
	Surreal SurrealConfig `toml:"surrealdb"`
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string `toml:"url"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// AuthConfig holds token auth configuration. Client secrets are stored as
// bcrypt hashes, never plaintext.
type AuthConfig struct {
	RequireToken bool               `toml:"require_token"`
	JWTSecret    string             `toml:"jwt_secret"`
	TokenExpiry  string             `toml:"token_expiry"` // duration string, default "24h"
	Clients      []ClientCredential `toml:"clients"`
}

// ClientCredential identifies one API client allowed to request tokens.
type ClientCredential struct {
	ID         string `toml:"id"`
	SecretHash string `toml:"secret_hash"` // bcrypt hash of the client secret
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// Client returns the credential for a client id, or nil.
func (c *AuthConfig) Client(id string) *ClientCredential {
	for i := range c.Clients {
		if c.Clients[i].ID == id {
			return &c.Clients[i]
		}
	}
	return nil
}

// IngestConfig holds message ingestion configuration.
type IngestConfig struct {
	DefaultSource string           `toml:"default_source"` // source label when a request has none
	RateLimit     float64          `toml:"rate_limit"`     // ingest requests per second
	RateBurst     int              `toml:"rate_burst"`
	Webhooks      []WebhookMapping `toml:"webhooks"`
}

// WebhookMapping describes how to pull alert text out of one webhook source's
// JSON payload.
type WebhookMapping struct {
	Source      string `toml:"source"`
	ContentPath string `toml:"content_path"` // gjson path to the message text
	DatePath    string `toml:"date_path"`    // optional gjson path to a date string
}

// Webhook returns the mapping for a source, or nil when none is configured.
func (c *IngestConfig) Webhook(source string) *WebhookMapping {
	for i := range c.Webhooks {
		if c.Webhooks[i].Source == source {
			return &c.Webhooks[i]
		}
	}
	return nil
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "data",
			Surreal: SurrealConfig{
				URL:       "ws://localhost:8000/rpc",
				Namespace: "aplus",
				Database:  "setups",
				Username:  "root",
				Password:  "root",
			},
		},
		Auth: AuthConfig{
			RequireToken: false,
			JWTSecret:    DefaultJWTSecret,
			TokenExpiry:  "24h",
		},
		Ingest: IngestConfig{
			DefaultSource: "discord",
			RateLimit:     10,
			RateBurst:     20,
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "30s",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalizeStorageBackend(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("APLUS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("APLUS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("APLUS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("APLUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage overrides
	if backend := os.Getenv("APLUS_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if path := os.Getenv("APLUS_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}
	if v := os.Getenv("APLUS_SURREAL_URL"); v != "" {
		config.Storage.Surreal.URL = v
	}
	if v := os.Getenv("APLUS_SURREAL_NAMESPACE"); v != "" {
		config.Storage.Surreal.Namespace = v
	}
	if v := os.Getenv("APLUS_SURREAL_DATABASE"); v != "" {
		config.Storage.Surreal.Database = v
	}
	if v := os.Getenv("APLUS_SURREAL_USERNAME"); v != "" {
		config.Storage.Surreal.Username = v
	}
	if v := os.Getenv("APLUS_SURREAL_PASSWORD"); v != "" {
		config.Storage.Surreal.Password = v
	}

	// Auth overrides
	if v := os.Getenv("APLUS_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("APLUS_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
	if v := os.Getenv("APLUS_AUTH_REQUIRE_TOKEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Auth.RequireToken = b
		}
	}

	// Ingest overrides
	if v := os.Getenv("APLUS_INGEST_DEFAULT_SOURCE"); v != "" {
		config.Ingest.DefaultSource = v
	}

	// Gemini key: unprefixed names take priority so shared CI secrets work
	for _, name := range []string{"GEMINI_API_KEY", "APLUS_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}
}

// ValidateRequired reports config keys that are missing or unusable. An empty
// result means the config can run as-is.
func (c *Config) ValidateRequired() []string {
	var missing []string

	switch c.Storage.Backend {
	case "file":
		if c.Storage.Path == "" {
			missing = append(missing, "storage.path")
		}
	case "surrealdb":
		if c.Storage.Surreal.URL == "" {
			missing = append(missing, "storage.surrealdb.url")
		}
		if c.Storage.Surreal.Namespace == "" {
			missing = append(missing, "storage.surrealdb.namespace")
		}
		if c.Storage.Surreal.Database == "" {
			missing = append(missing, "storage.surrealdb.database")
		}
	default:
		missing = append(missing, "storage.backend")
	}

	if c.Auth.RequireToken {
		if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == DefaultJWTSecret {
			missing = append(missing, "auth.jwt_secret")
		}
		if len(c.Auth.Clients) == 0 {
			missing = append(missing, "auth.clients")
		}
	}

	return missing
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, system KV, or fallback
func ResolveAPIKey(ctx context.Context, store interfaces.KeyValueStorage, name string, fallback string) (string, error) {
	// Environment variable mapping
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "APLUS_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Check environment variables first (highest priority)
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try system KV (medium priority)
	if store != nil {
		apiKey, err := store.GetSystemKV(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback (lowest priority)
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}

// normalizeStorageBackend lowercases the backend name so config and env forms
// agree with the factory's expectations.
func normalizeStorageBackend(config *Config) {
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))
}
