package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/soltixdb/roly/internal/logging"
)

// KafkaOptions configures the Kafka transport
type KafkaOptions struct {
	Brokers []string
	Topic   string
}

// kafkaTransport gives every bus its own consumer group, so each replica
// reads every event published after it subscribed
type kafkaTransport struct {
	opts   KafkaOptions
	writer *kafka.Writer
	reader *kafka.Reader
	cancel context.CancelFunc
	done   chan struct{}
}

// NewKafka creates a Kafka bus. Brokers are contacted lazily.
func NewKafka(opts KafkaOptions, logger *logging.Logger) (*Bus, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	if opts.Topic == "" {
		opts.Topic = DefaultSubject
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(opts.Brokers...),
		Topic:                  opts.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newBus(&kafkaTransport{opts: opts, writer: writer}, logger), nil
}

func (k *kafkaTransport) publish(ctx context.Context, data []byte) error {
	return k.writer.WriteMessages(ctx, kafka.Message{Value: data, Time: time.Now()})
}

func (k *kafkaTransport) subscribe(deliver func([]byte)) error {
	k.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     k.opts.Brokers,
		Topic:       k.opts.Topic,
		GroupID:     "roly-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
		MaxWait:     time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel
	k.done = make(chan struct{})

	go func() {
		defer close(k.done)
		for {
			msg, err := k.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				time.Sleep(100 * time.Millisecond)
				continue
			}
			deliver(msg.Value)
		}
	}()
	return nil
}

func (k *kafkaTransport) close() error {
	var errs []error
	if k.reader != nil {
		k.cancel()
		<-k.done
		if err := k.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close reader: %w", err))
		}
	}
	if err := k.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}
	return errors.Join(errs...)
}
