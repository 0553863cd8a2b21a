// Package container provides dependency injection and lifecycle management
// for the order intake service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Lark messaging configuration
	Lark LarkConfig

	// Server configuration
	Server ServerConfig

	// Draft cleanup configuration
	Drafts DraftsConfig

	// Metrics configuration
	Metrics MetricsConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long a statement waits on a locked database
	BusyTimeout time.Duration

	// MigrationsDir replaces the embedded migrations when set
	MigrationsDir string
}

// LarkConfig holds Lark messaging settings.
type LarkConfig struct {
	Enabled bool

	// AppID is the Lark application ID
	AppID string

	// AppSecret is the Lark application secret
	AppSecret string

	ReceiveIDType string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string
	Port int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DraftsConfig holds stale draft cleanup settings.
type DraftsConfig struct {
	Retention       time.Duration
	CleanupInterval time.Duration
	CleanupTimeout  time.Duration
}

// MetricsConfig holds prometheus settings.
type MetricsConfig struct {
	Enabled   bool
	Namespace string
	// Runtime adds Go runtime and process collectors
	Runtime bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/orders.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Lark: LarkConfig{
			ReceiveIDType: "user_id",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Drafts: DraftsConfig{
			Retention:       30 * 24 * time.Hour,
			CleanupInterval: time.Hour,
			CleanupTimeout:  time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "order_intake",
			Runtime:   true,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Validate Lark configuration
	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required")
		}
	}

	if c.Drafts.CleanupInterval <= 0 {
		return fmt.Errorf("drafts.cleanup_interval must be positive")
	}
	if c.Drafts.Retention <= 0 {
		return fmt.Errorf("drafts.retention must be positive")
	}

	return nil
}
