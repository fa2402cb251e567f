package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/soltixdb/roly/internal/source"
)

// EnsureDirectories creates the metadata directory when it is local
func (c *Config) EnsureDirectories() error {
	u, err := source.ParseURI(c.Catalog.MetadataDir)
	if err != nil {
		return err
	}
	if u.Scheme() != source.FileScheme {
		return nil
	}
	return os.MkdirAll(u.Filepath(), 0o755)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// S3Options returns the options of the s3 engine
func (c *SourcesConfig) S3Options() source.S3Options {
	return source.S3Options{
		Region:         c.S3.Region,
		Endpoint:       c.S3.Endpoint,
		ForcePathStyle: c.S3.ForcePathStyle,
	}
}

// SourceRouter builds the byte source router for the enabled engines.
// Local files are always served.
func (c *Config) SourceRouter() (*source.Router, error) {
	router := source.NewLocalRouter(c.Delivery.UseMmap)
	if c.Sources.S3.Enabled {
		engine, err := source.NewS3Engine(c.Sources.S3Options())
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 engine: %w", err)
		}
		router.Enable(source.S3Scheme, engine)
	}
	if c.Sources.HTTP.Enabled {
		engine := source.NewHTTPEngine(c.Sources.HTTP.Timeout)
		router.Enable(source.HTTPScheme, engine)
		router.Enable(source.HTTPSScheme, engine)
	}
	return router, nil
}
