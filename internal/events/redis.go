package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soltixdb/roly/internal/logging"
)

// RedisOptions configures the Redis pub/sub transport
type RedisOptions struct {
	URL      string // redis://host:port/db, or a bare host:port
	Password string
	DB       int
	Channel  string
}

type redisTransport struct {
	client  *redis.Client
	channel string
	ps      *redis.PubSub
}

// NewRedis connects to Redis and checks the connection
func NewRedis(opts RedisOptions, logger *logging.Logger) (*Bus, error) {
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		ropts = &redis.Options{Addr: opts.URL}
	}
	if opts.Password != "" {
		ropts.Password = opts.Password
	}
	if opts.DB != 0 {
		ropts.DB = opts.DB
	}
	client := redis.NewClient(ropts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	channel := opts.Channel
	if channel == "" {
		channel = DefaultSubject
	}
	return newBus(&redisTransport{client: client, channel: channel}, logger), nil
}

func (r *redisTransport) publish(ctx context.Context, data []byte) error {
	return r.client.Publish(ctx, r.channel, data).Err()
}

func (r *redisTransport) subscribe(deliver func([]byte)) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := r.client.Subscribe(ctx, r.channel)
	// wait for the subscription confirmation
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("failed to subscribe to channel %s: %w", r.channel, err)
	}
	r.ps = ps

	go func() {
		for msg := range ps.Channel() {
			deliver([]byte(msg.Payload))
		}
	}()
	return nil
}

func (r *redisTransport) close() error {
	if r.ps != nil {
		_ = r.ps.Close()
	}
	return r.client.Close()
}
