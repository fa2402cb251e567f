package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/soltixdb/roly/internal/logging"
)

const flushTimeout = 5 * time.Second

// natsTransport uses core NATS subjects. Every subscribed replica gets
// every event, and events published while a replica is down are not
// replayed.
type natsTransport struct {
	conn    *nats.Conn
	subject string
	sub     *nats.Subscription
}

// NewNATS connects to the NATS server at url
func NewNATS(url, subject string, logger *logging.Logger) (*Bus, error) {
	conn, err := nats.Connect(url, nats.Name("roly-catalog"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSWithConn(conn, subject, logger), nil
}

// NewNATSWithConn creates a bus over an existing connection, which the
// bus closes on Close
func NewNATSWithConn(conn *nats.Conn, subject string, logger *logging.Logger) *Bus {
	if subject == "" {
		subject = DefaultSubject
	}
	return newBus(&natsTransport{conn: conn, subject: subject}, logger)
}

func (n *natsTransport) publish(ctx context.Context, data []byte) error {
	if err := n.conn.Publish(n.subject, data); err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); ok {
		return n.conn.FlushWithContext(ctx)
	}
	return n.conn.FlushTimeout(flushTimeout)
}

func (n *natsTransport) subscribe(deliver func([]byte)) error {
	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		deliver(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", n.subject, err)
	}
	// the subscription must be known to the server before publishes count
	if err := n.conn.FlushTimeout(flushTimeout); err != nil {
		_ = sub.Unsubscribe()
		return err
	}
	n.sub = sub
	return nil
}

func (n *natsTransport) close() error {
	if n.sub != nil {
		_ = n.sub.Unsubscribe()
	}
	n.conn.Close()
	return nil
}
