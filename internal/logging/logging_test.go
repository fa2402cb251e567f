package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/config"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	logger.Debug("hidden")
	logger.With("dataset", "events").Info("Loaded dataset",
		"files", 3,
		"error", errors.New("boom"),
		"duration", 1500*time.Millisecond,
		"dangling")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "info", e["level"])
	assert.Equal(t, "Loaded dataset", e["message"])
	assert.Equal(t, "events", e["dataset"])
	assert.Equal(t, float64(3), e["files"])
	assert.Equal(t, "boom", e["error"])
	assert.Equal(t, "1.5s", e["duration"])
	assert.NotContains(t, e, "dangling")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.DebugLevel)

	assert.Same(t, Global(), FromContext(context.Background()))

	ctx := WithRequestID(WithLogger(context.Background(), logger), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	FromContext(ctx).Warn("slow basket")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Equal(t, "warn", entries[0]["level"])
}

func TestFiberMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.DebugLevel)

	app := fiber.New()
	app.Use(FiberMiddleware(logger, "/health"))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/ok", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, RequestID(c.UserContext()))
		return c.SendString("ok")
	})
	app.Get("/bad", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadRequest) })

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(RequestIDHeader, "given")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "given", resp.Header.Get(RequestIDHeader))

	_, err = app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "/ok", entries[0]["path"])
	assert.Equal(t, "given", entries[0]["request_id"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, float64(400), entries[1]["status"])
	assert.Equal(t, "warn", entries[1]["level"])
}

func TestNewFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "roly.log")
	logger, err := NewFromConfig(config.LoggingConfig{Level: "WARN", Format: "json", OutputPath: path})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.Level())

	logger.Info("dropped")
	logger.Error("kept")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")

	logger, err = NewFromConfig(config.LoggingConfig{Level: "verbose", Format: "console"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.Level())

	assert.Equal(t, time.Kitchen, timeFormat("Kitchen"))
	assert.Equal(t, time.RFC3339, timeFormat(""))
}
