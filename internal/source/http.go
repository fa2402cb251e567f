package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEngine serves http and https URLs with Range requests
type HTTPEngine struct {
	client *http.Client
}

var _ Engine = (*HTTPEngine)(nil)

// NewHTTPEngine creates an engine whose requests time out after timeout
func NewHTTPEngine(timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{client: &http.Client{Timeout: timeout}}
}

func (e *HTTPEngine) Open(ctx context.Context, u *URI) (Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	if err := checkStatus(u, resp, http.StatusOK); err != nil {
		return nil, err
	}
	if resp.ContentLength < 0 {
		return nil, fmt.Errorf("%s: server did not report a content length", u)
	}
	return &httpReader{ctx: ctx, client: e.client, uri: u, size: resp.ContentLength}, nil
}

// List is not supported over plain HTTP
func (e *HTTPEngine) List(context.Context, *URI) ([]Info, error) {
	return nil, fmt.Errorf("%w: listing %q", ErrUnsupportedScheme, HTTPScheme)
}

func checkStatus(u *URI, resp *http.Response, want int) error {
	switch resp.StatusCode {
	case want:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	default:
		return fmt.Errorf("%s: %s", u, resp.Status)
	}
}

type httpReader struct {
	ctx    context.Context
	client *http.Client
	uri    *URI
	size   int64
}

func (r *httpReader) Size() int64 { return r.size }

func (r *httpReader) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := min(off+int64(len(p)), r.size)

	req, err := http.NewRequestWithContext(r.ctx, http.MethodGet, r.uri.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end-1))
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if err := checkStatus(r.uri, resp, http.StatusPartialContent); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(resp.Body, p[:end-off])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *httpReader) Close() error { return nil }
