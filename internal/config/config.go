// Package config provides centralized configuration management for the
// service. It loads settings from environment variables with defaults and
// validates everything on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Google  GoogleConfig
	Sheets  SheetsConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the per-request middleware timeout (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StoreConfig holds embedded store settings.
type StoreConfig struct {
	// Path is the directory holding the store environment (default: ./data/store)
	Path string `env:"STORE_PATH" default:"./data/store"`

	// MapSize is the initial mmap size in bytes (default: 1 GiB)
	MapSize int `env:"STORE_MAP_SIZE" default:"1073741824"`
}

// GoogleConfig holds the service-account identity used against the Sheets
// API. The signing key is always injected, as PEM text or a file path.
type GoogleConfig struct {
	// ClientEmail is the service account email (required when sync is enabled)
	ClientEmail string `env:"GOOGLE_CLIENT_EMAIL"`

	// PrivateKey is the PEM-encoded RSA signing key
	PrivateKey string `env:"GOOGLE_PRIVATE_KEY"`

	// PrivateKeyFile is a path to the PEM key; used when PrivateKey is unset
	PrivateKeyFile string `env:"GOOGLE_PRIVATE_KEY_FILE"`

	// TokenURL overrides the OAuth token endpoint (default: Google's)
	TokenURL string `env:"GOOGLE_TOKEN_URL"`
}

// SheetsConfig locates the return sheet and controls the sync job.
type SheetsConfig struct {
	// SyncEnabled turns the background sheet sync on (default: true)
	SyncEnabled bool `env:"SHEETS_SYNC_ENABLED" default:"true"`

	// SpreadsheetID is the sheet document id (required when sync is enabled)
	SpreadsheetID string `env:"SHEETS_SPREADSHEET_ID" envAlt:"SPREADSHEET_ID"`

	// SheetName is the tab holding return data (default: Sheet1)
	SheetName string `env:"SHEETS_SHEET_NAME" default:"Sheet1"`

	// MarketplaceColumn is the marketplace column letter (default: B)
	MarketplaceColumn string `env:"SHEETS_MARKETPLACE_COLUMN" default:"B"`

	// OrderIDColumn is the order-id column letter (default: F)
	OrderIDColumn string `env:"SHEETS_ORDER_ID_COLUMN" default:"F"`

	// HasHeader indicates row 0 is a header row to skip (default: true)
	HasHeader bool `env:"SHEETS_HAS_HEADER" default:"true"`

	// SyncInterval is how often the sync job runs (default: 1h)
	SyncInterval time.Duration `env:"SHEETS_SYNC_INTERVAL" default:"1h"`

	// BaseURL overrides the Sheets API endpoint (default: Google's)
	BaseURL string `env:"SHEETS_BASE_URL"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// SigningKey returns the PEM key material, reading PrivateKeyFile when the
// inline value is unset.
func (c *GoogleConfig) SigningKey() ([]byte, error) {
	if c.PrivateKey != "" {
		return []byte(c.PrivateKey), nil
	}
	if c.PrivateKeyFile != "" {
		pem, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read GOOGLE_PRIVATE_KEY_FILE: %w", err)
		}
		return pem, nil
	}
	return nil, fmt.Errorf("no signing key configured")
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Store.Path == "" {
		errs = append(errs, "STORE_PATH is required")
	}
	if c.Store.MapSize <= 0 {
		errs = append(errs, "STORE_MAP_SIZE must be positive")
	}

	// Google and Sheets settings only matter when the sync job is on.
	if c.Sheets.SyncEnabled {
		if c.Sheets.SpreadsheetID == "" {
			errs = append(errs, "SHEETS_SPREADSHEET_ID is required when sync is enabled")
		}
		if c.Google.ClientEmail == "" {
			errs = append(errs, "GOOGLE_CLIENT_EMAIL is required when sync is enabled")
		}
		if c.Google.PrivateKey == "" && c.Google.PrivateKeyFile == "" {
			errs = append(errs, "GOOGLE_PRIVATE_KEY or GOOGLE_PRIVATE_KEY_FILE is required when sync is enabled")
		}
		if c.Sheets.SyncInterval <= 0 {
			errs = append(errs, "SHEETS_SYNC_INTERVAL must be positive")
		}
		if c.Sheets.MarketplaceColumn == "" || c.Sheets.OrderIDColumn == "" {
			errs = append(errs, "sheet column letters must not be empty")
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be debug, info, warn, or error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
