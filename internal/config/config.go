package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	TLS     TLSConfig
	Storage StorageConfig
	App     AppConfig
	Metrics MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if err := validatePort(c.Port); err != nil {
		return err
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// TLSConfig holds HTTPS configuration. HTTPS is served only when the key
// pair can be loaded; the plain port then redirects to it.
type TLSConfig struct {
	HTTPSPort int    `envconfig:"HTTPS_PORT" default:"3443"`
	KeyPath   string `envconfig:"SSL_KEY_PATH" default:"localhost-key.pem"`
	CertPath  string `envconfig:"SSL_CERT_PATH" default:"localhost.pem"`
	Host      string `envconfig:"SSL_HOST" default:"localhost"` // only used in log output
}

// Validate validates the TLS configuration.
func (c *TLSConfig) Validate() error {
	if err := validatePort(c.HTTPSPort); err != nil {
		return fmt.Errorf("https %w", err)
	}
	if c.KeyPath == "" {
		return fmt.Errorf("key path cannot be empty")
	}
	if c.CertPath == "" {
		return fmt.Errorf("cert path cannot be empty")
	}
	return nil
}

// StorageConfig holds the location of the links document.
type StorageConfig struct {
	DataFile string `envconfig:"DATA_FILE" default:"data.json"`
	Reload   bool   `envconfig:"STORAGE_RELOAD" default:"false"` // re-read the file on every request
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data file cannot be empty")
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"` // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// MetricsConfig holds configuration for the metrics and health listener.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"false"`
	Port    int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	// Only check the port when the listener will be started.
	if c.Enabled {
		if err := validatePort(c.Port); err != nil {
			return fmt.Errorf("metrics %w", err)
		}
	}
	return nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// Load loads configuration from environment variables only.
// (.env loading happens in app.New for non-production environments.)
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.TLS); err != nil {
		return nil, fmt.Errorf("failed to load TLS config: %w", err)
	}
	if err := cfg.TLS.Validate(); err != nil {
		return nil, fmt.Errorf("invalid TLS config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Storage); err != nil {
		return nil, fmt.Errorf("failed to load Storage config: %w", err)
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Storage config: %w", err)
	}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid App config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Metrics); err != nil {
		return nil, fmt.Errorf("failed to load Metrics config: %w", err)
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Metrics config: %w", err)
	}

	if err := cfg.validatePorts(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validatePorts rejects listeners that would collide.
func (c *Config) validatePorts() error {
	if c.Server.Port == c.TLS.HTTPSPort {
		return fmt.Errorf("PORT and HTTPS_PORT must differ, both are %d", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port == c.Server.Port || c.Metrics.Port == c.TLS.HTTPSPort) {
		return fmt.Errorf("METRICS_PORT %d collides with an application port", c.Metrics.Port)
	}
	return nil
}
