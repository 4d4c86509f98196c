// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Datasets DatasetConfig
	View     ViewConfig
	Logging  LoggingConfig
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

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs or IPs whose
	// X-Real-IP / X-Forwarded-For headers are honoured (default: none)
	TrustedProxies string `env:"SERVER_TRUSTED_PROXIES"`
}

// TrustedProxyList splits TrustedProxies into its entries.
func (c *ServerConfig) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DatasetConfig holds settings for locating and fetching category datasets.
type DatasetConfig struct {
	// Base is the URL or directory every category path is resolved against (required).
	// Supports both DATASET_BASE and DATA_BASE_URL.
	Base string `env:"DATASET_BASE" envAlt:"DATA_BASE_URL" required:"true"`

	// CategoriesFile is an optional YAML file replacing the built-in category set.
	CategoriesFile string `env:"DATASET_CATEGORIES_FILE"`

	// MaxSize is the largest dataset body accepted, in bytes (default: 32MiB)
	MaxSize int64 `env:"DATASET_MAX_SIZE" default:"33554432"`

	// FetchTimeout bounds a single fetch; 0 leaves the transport default (default: 0s)
	FetchTimeout time.Duration `env:"DATASET_FETCH_TIMEOUT" default:"0s"`

	// RetryAttempts is the number of fetch attempts for transient failures (default: 1)
	RetryAttempts int `env:"DATASET_RETRY_ATTEMPTS" default:"1"`

	// RetryDelay is the initial back-off between attempts (default: 500ms)
	RetryDelay time.Duration `env:"DATASET_RETRY_DELAY" default:"500ms"`

	// MaxConcurrent caps parallel fetches during a bulk load (default: 4)
	MaxConcurrent int `env:"DATASET_MAX_CONCURRENT" default:"4"`

	// Preload loads every category at startup (default: false)
	Preload bool `env:"DATASET_PRELOAD" default:"false"`
}

// ViewConfig holds per-session view behaviour.
type ViewConfig struct {
	// DefaultCategory is selected when a session starts (default: restaurants)
	DefaultCategory string `env:"VIEW_DEFAULT_CATEGORY" default:"restaurants"`

	// ToggleClearsQuery makes "show all" reset the search text (default: true)
	ToggleClearsQuery bool `env:"VIEW_TOGGLE_CLEARS_QUERY" default:"true"`

	// SessionIdle is how long an unused session is kept (default: 30m)
	SessionIdle time.Duration `env:"VIEW_SESSION_IDLE" default:"30m"`
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
