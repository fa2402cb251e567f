// Package events carries catalog change notifications between catalog
// service replicas and the tools that write dataset metadata.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/roly/internal/logging"
)

// EventType names what happened to a dataset
type EventType string

const (
	// DatasetUpdated is sent after a dataset's metadata was written
	DatasetUpdated EventType = "dataset.updated"
	// DatasetRemoved is sent after a dataset's metadata was deleted
	DatasetRemoved EventType = "dataset.removed"
)

// DefaultSubject is the subject, channel or topic events travel on
const DefaultSubject = "roly.catalog"

// ErrAlreadySubscribed is returned by a second Subscribe on one bus
var ErrAlreadySubscribed = errors.New("events: already subscribed")

// Event is one catalog change
type Event struct {
	Type    EventType `json:"type"`
	Dataset string    `json:"dataset"`
	Origin  string    `json:"origin"`
	Time    time.Time `json:"time"`
}

// Handler receives decoded events. It runs on the transport's delivery
// goroutine and must not block for long.
type Handler func(Event)

// transport moves opaque payloads
type transport interface {
	publish(ctx context.Context, data []byte) error
	subscribe(deliver func([]byte)) error
	close() error
}

// Bus publishes and receives events over one transport
type Bus struct {
	t      transport
	id     string
	logger *logging.Logger

	mu         sync.Mutex
	subscribed bool
	closed     bool
}

func newBus(t transport, logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.Global()
	}
	return &Bus{t: t, id: uuid.NewString(), logger: logger}
}

// ID identifies this bus as the origin of the events it publishes
func (b *Bus) ID() string {
	return b.id
}

// Publish sends an event of type typ for dataset
func (b *Bus) Publish(ctx context.Context, typ EventType, dataset string) error {
	data, err := json.Marshal(Event{Type: typ, Dataset: dataset, Origin: b.id, Time: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := b.t.publish(ctx, data); err != nil {
		return fmt.Errorf("failed to publish %s for %q: %w", typ, dataset, err)
	}
	b.logger.Debug("Event published", "type", typ, "dataset", dataset)
	return nil
}

// Subscribe delivers every event, including this bus's own, to handler.
// Undecodable messages are logged and dropped.
func (b *Bus) Subscribe(handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribed {
		return ErrAlreadySubscribed
	}
	err := b.t.subscribe(func(data []byte) {
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Dataset == "" {
			b.logger.Warn("Dropping malformed event", "size", len(data), "error", err)
			return
		}
		handler(ev)
	})
	if err != nil {
		return err
	}
	b.subscribed = true
	return nil
}

// Close stops delivery and releases the transport
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.t.close()
}

// noop drops every event
type noop struct{}

func (noop) publish(context.Context, []byte) error { return nil }
func (noop) subscribe(func([]byte)) error          { return nil }
func (noop) close() error                          { return nil }

// NewNoop returns a bus that publishes nowhere and receives nothing
func NewNoop() *Bus {
	return newBus(noop{}, nil)
}
