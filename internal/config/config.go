package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Events   EventsConfig   `mapstructure:"events"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort        int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig represents where dataset metadata lives
type CatalogConfig struct {
	// MetadataDir is a local directory or an s3/http location holding
	// <name>.roly files
	MetadataDir string `mapstructure:"metadata_dir"`
	CacheSize   int    `mapstructure:"cache_size"` // Decoded datasets kept in memory
}

// DeliveryConfig represents column read configuration
type DeliveryConfig struct {
	Concurrency     int   `mapstructure:"concurrency"`      // Baskets fetched at once per read
	UseMmap         bool  `mapstructure:"use_mmap"`         // Map local data files instead of pread
	VerifyChecksums bool  `mapstructure:"verify_checksums"` // Check lz4 page checksums
	MaxEntries      int64 `mapstructure:"max_entries"`      // Largest range one request may read
}

// SourcesConfig represents remote byte source configuration
type SourcesConfig struct {
	S3   S3Config         `mapstructure:"s3"`
	HTTP HTTPSourceConfig `mapstructure:"http"`
}

// S3Config represents the s3:// engine
type S3Config struct {
	Enabled        bool   `mapstructure:"enabled"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`         // Custom endpoint for S3-compatible stores
	ForcePathStyle bool   `mapstructure:"force_path_style"` // Required by most S3-compatible stores
}

// HTTPSourceConfig represents the http:// and https:// engines
type HTTPSourceConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EventsConfig represents the catalog change event bus
type EventsConfig struct {
	Type         string   `mapstructure:"type"`          // none, memory, nats, redis, kafka
	URL          string   `mapstructure:"url"`           // NATS or Redis URL
	Subject      string   `mapstructure:"subject"`       // Subject, channel or topic
	Password     string   `mapstructure:"password"`      // Redis password
	RedisDB      int      `mapstructure:"redis_db"`      // Redis database number
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog config: %w", err)
	}

	if err := c.Delivery.Validate(); err != nil {
		return fmt.Errorf("delivery config: %w", err)
	}

	if err := c.Sources.Validate(); err != nil {
		return fmt.Errorf("sources config: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	return nil
}

// Validate validates catalog configuration
func (c *CatalogConfig) Validate() error {
	if c.MetadataDir == "" {
		return fmt.Errorf("metadata_dir is required")
	}

	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}

	return nil
}

// Validate validates delivery configuration
func (c *DeliveryConfig) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}

	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries cannot be negative")
	}

	return nil
}

// Validate validates source configuration
func (c *SourcesConfig) Validate() error {
	if c.S3.Enabled && c.S3.Region == "" {
		return fmt.Errorf("s3.region is required when s3 is enabled")
	}

	if c.HTTP.Enabled && c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive when http is enabled")
	}

	return nil
}

// Validate validates event bus configuration
func (c *EventsConfig) Validate() error {
	switch c.Type {
	case "", "none", "memory":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("url is required for %s events", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka_brokers is required for kafka events")
		}
	default:
		return fmt.Errorf("unsupported events type: %s (supported: none, memory, nats, redis, kafka)", c.Type)
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
