package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file. Every key can be overridden by an
// environment variable such as ROLY_SERVER_HTTP_PORT.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/roly")
	}

	setDefaults(v)

	v.SetEnvPrefix("ROLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("catalog.metadata_dir", d.Catalog.MetadataDir)
	v.SetDefault("catalog.cache_size", d.Catalog.CacheSize)

	v.SetDefault("delivery.concurrency", d.Delivery.Concurrency)
	v.SetDefault("delivery.use_mmap", d.Delivery.UseMmap)
	v.SetDefault("delivery.verify_checksums", d.Delivery.VerifyChecksums)
	v.SetDefault("delivery.max_entries", d.Delivery.MaxEntries)

	v.SetDefault("sources.s3.enabled", d.Sources.S3.Enabled)
	v.SetDefault("sources.s3.region", d.Sources.S3.Region)
	v.SetDefault("sources.s3.endpoint", d.Sources.S3.Endpoint)
	v.SetDefault("sources.s3.force_path_style", d.Sources.S3.ForcePathStyle)
	v.SetDefault("sources.http.enabled", d.Sources.HTTP.Enabled)
	v.SetDefault("sources.http.timeout", d.Sources.HTTP.Timeout)

	v.SetDefault("events.type", d.Events.Type)
	v.SetDefault("events.url", d.Events.URL)
	v.SetDefault("events.subject", d.Events.Subject)
	v.SetDefault("events.password", d.Events.Password)
	v.SetDefault("events.redis_db", d.Events.RedisDB)
	v.SetDefault("events.kafka_brokers", d.Events.KafkaBrokers)

	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.api_keys", d.Auth.APIKeys)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        5580,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			MetadataDir: "./datasets",
			CacheSize:   64,
		},
		Delivery: DeliveryConfig{
			Concurrency: 8,
			MaxEntries:  10_000_000,
		},
		Sources: SourcesConfig{
			S3: S3Config{
				Region: "us-east-1",
			},
			HTTP: HTTPSourceConfig{
				Enabled: true,
				Timeout: 30 * time.Second,
			},
		},
		Events: EventsConfig{
			Type:         "none",
			Subject:      "roly.catalog",
			KafkaBrokers: []string{},
		},
		Auth: AuthConfig{
			APIKeys: []string{},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
