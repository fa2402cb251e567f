package events

import (
	"fmt"
	"strings"

	"github.com/soltixdb/roly/internal/config"
	"github.com/soltixdb/roly/internal/logging"
)

// New creates a bus for cfg. The none type, and an empty type, give a
// bus that drops everything.
func New(cfg config.EventsConfig, logger *logging.Logger) (*Bus, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "none":
		return NewNoop(), nil
	case "memory":
		return NewMemoryHub().Bus(logger), nil
	case "nats":
		return NewNATS(cfg.URL, cfg.Subject, logger)
	case "redis":
		return NewRedis(RedisOptions{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Channel:  cfg.Subject,
		}, logger)
	case "kafka":
		return NewKafka(KafkaOptions{Brokers: cfg.KafkaBrokers, Topic: cfg.Subject}, logger)
	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: none, memory, nats, redis, kafka)", cfg.Type)
	}
}
