package events

import (
	"context"
	"errors"
	"sync"

	"github.com/soltixdb/roly/internal/logging"
)

var errHubClosed = errors.New("events: memory hub closed")

// memoryBuffer is the number of messages a subscriber can queue
const memoryBuffer = 1024

// MemoryHub connects in-process buses. Every bus of a hub receives what
// any of them publishes.
type MemoryHub struct {
	mu     sync.RWMutex
	subs   map[*memoryTransport]memorySub
	closed bool
}

type memorySub struct {
	ch   chan []byte
	done chan struct{}
}

// NewMemoryHub creates an empty hub
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[*memoryTransport]memorySub)}
}

// Bus returns a new bus attached to h
func (h *MemoryHub) Bus(logger *logging.Logger) *Bus {
	return newBus(&memoryTransport{hub: h}, logger)
}

type memoryTransport struct {
	hub  *MemoryHub
	done chan struct{}
}

// publish sends to a snapshot of the subscribers taken under the hub
// lock, so a full queue blocks only this publisher. A subscriber closed
// meanwhile is skipped.
func (m *memoryTransport) publish(ctx context.Context, data []byte) error {
	m.hub.mu.RLock()
	if m.hub.closed {
		m.hub.mu.RUnlock()
		return errHubClosed
	}
	subs := make([]memorySub, 0, len(m.hub.subs))
	for _, sub := range m.hub.subs {
		subs = append(subs, sub)
	}
	m.hub.mu.RUnlock()

	for _, sub := range subs {
		msg := append([]byte(nil), data...)
		select {
		case sub.ch <- msg:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *memoryTransport) subscribe(deliver func([]byte)) error {
	sub := memorySub{ch: make(chan []byte, memoryBuffer), done: make(chan struct{})}

	m.hub.mu.Lock()
	if m.hub.closed {
		m.hub.mu.Unlock()
		return errHubClosed
	}
	m.hub.subs[m] = sub
	m.hub.mu.Unlock()
	m.done = sub.done

	go func() {
		for {
			select {
			case data := <-sub.ch:
				deliver(data)
			case <-sub.done:
				return
			}
		}
	}()
	return nil
}

func (m *memoryTransport) close() error {
	m.hub.mu.Lock()
	delete(m.hub.subs, m)
	m.hub.mu.Unlock()
	if m.done != nil {
		close(m.done)
	}
	return nil
}

// Close detaches every bus of the hub
func (h *MemoryHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.subs = make(map[*memoryTransport]memorySub)
}
