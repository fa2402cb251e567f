package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func redisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if client.Ping(ctx).Err() != nil {
		t.Skip("Redis not available, skipping test")
	}
	return url
}

func TestRedisBus(t *testing.T) {
	url := redisURL(t)
	opts := RedisOptions{URL: url, Channel: "roly-test-" + time.Now().Format("150405.000")}

	a, err := NewRedis(opts, nil)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	b, err := NewRedis(opts, nil)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	var r recorder
	require.NoError(t, b.Subscribe(r.handle))
	require.NoError(t, a.Publish(context.Background(), DatasetUpdated, "events"))

	got := r.waitFor(t, 1)
	require.Equal(t, "events", got[0].Dataset)
	require.Equal(t, a.ID(), got[0].Origin)
}
