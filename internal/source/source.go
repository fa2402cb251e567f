// Package source opens the byte ranges of data and metadata files behind
// local paths, S3 objects and HTTP URLs.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrEmptyLocation is returned for an empty location string
	ErrEmptyLocation = errors.New("source: empty location")
	// ErrNotFound is returned when the object does not exist
	ErrNotFound = errors.New("source: not found")
	// ErrUnsupportedScheme is returned when no engine serves a scheme
	ErrUnsupportedScheme = errors.New("source: unsupported scheme")
)

// Reader is a random-access handle on one file
type Reader interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Info describes one entry of a listing
type Info struct {
	Name string
	Size int64
}

// Engine serves the URIs of one or more schemes
type Engine interface {
	Open(ctx context.Context, u *URI) (Reader, error)
	List(ctx context.Context, u *URI) ([]Info, error)
}

// Opener opens a location string. Each call returns an independent handle.
type Opener interface {
	Open(ctx context.Context, location string) (Reader, error)
}

// Router dispatches to an engine by URI scheme
type Router struct {
	mu      sync.RWMutex
	engines map[Scheme]Engine
}

var _ Opener = (*Router)(nil)

// NewRouter returns a router with no engines enabled
func NewRouter() *Router {
	return &Router{engines: make(map[Scheme]Engine)}
}

// NewLocalRouter returns a router serving local files only
func NewLocalRouter(useMmap bool) *Router {
	r := NewRouter()
	r.Enable(FileScheme, NewFileEngine(useMmap))
	return r
}

// Enable serves scheme with engine
func (r *Router) Enable(scheme Scheme, engine Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[scheme] = engine
}

func (r *Router) lookup(u *URI) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.engines[u.Scheme()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme())
	}
	return engine, nil
}

// Open parses location and opens it with the matching engine
func (r *Router) Open(ctx context.Context, location string) (Reader, error) {
	u, err := ParseURI(location)
	if err != nil {
		return nil, err
	}
	return r.OpenURI(ctx, u)
}

// OpenURI opens u with the matching engine
func (r *Router) OpenURI(ctx context.Context, u *URI) (Reader, error) {
	engine, err := r.lookup(u)
	if err != nil {
		return nil, err
	}
	return engine.Open(ctx, u)
}

// List lists the entries under u
func (r *Router) List(ctx context.Context, u *URI) ([]Info, error) {
	engine, err := r.lookup(u)
	if err != nil {
		return nil, err
	}
	return engine.List(ctx, u)
}

// ReadAll reads a whole file
func ReadAll(ctx context.Context, o Opener, location string) ([]byte, error) {
	r, err := o.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := make([]byte, r.Size())
	n, err := r.ReadAt(buf, 0)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}
