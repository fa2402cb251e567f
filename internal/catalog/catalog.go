// Package catalog serves datasets stored as metadata buffers under one
// root location, keeping recently used ones decoded in memory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/soltixdb/roly/internal/codec"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/source"
)

// Ext is the file extension of stored datasets
const Ext = ".roly"

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrInvalidName     = errors.New("invalid dataset name")
	ErrReadOnly        = errors.New("catalog root is not writable")
)

// Stats reports cache activity
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Catalog loads datasets by name from a root location
type Catalog struct {
	root   *source.URI
	router *source.Router
	cache  *lru.Cache[string, *layout.Dataset]
	loads  singleflight.Group
	logger *logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a catalog over root, caching up to size decoded datasets
func New(root string, router *source.Router, size int, logger *logging.Logger) (*Catalog, error) {
	u, err := source.ParseURI(root)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog root: %w", err)
	}
	cache, err := lru.New[string, *layout.Dataset](size)
	if err != nil {
		return nil, fmt.Errorf("create dataset cache: %w", err)
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Catalog{root: u, router: router, cache: cache, logger: logger}, nil
}

// Root returns the root location
func (c *Catalog) Root() string {
	return c.root.String()
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (c *Catalog) location(name string) *source.URI {
	return c.root.Join(name + Ext)
}

// Get returns the named dataset, loading it on a cache miss. Concurrent
// misses for one name share a single load, which outlives the caller that
// started it; each caller stops waiting when its own ctx is done.
func (c *Catalog) Get(ctx context.Context, name string) (*layout.Dataset, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if ds, ok := c.cache.Get(name); ok {
		c.hits.Add(1)
		return ds, nil
	}
	c.misses.Add(1)

	loadCtx := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(name, func() (any, error) {
		if ds, ok := c.cache.Get(name); ok {
			return ds, nil
		}
		ds, err := c.load(loadCtx, name)
		if err != nil {
			return nil, err
		}
		c.cache.Add(name, ds)
		return ds, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*layout.Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Catalog) load(ctx context.Context, name string) (*layout.Dataset, error) {
	location := c.location(name).String()
	data, err := source.ReadAll(ctx, c.router, location)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, fmt.Errorf("failed to read dataset %s: %w", name, err)
	}
	ds, err := codec.DecodeDataset(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", name, err)
	}

	c.logger.Info("Loaded dataset",
		"name", name,
		"location", location,
		"bytes", len(data),
		"files", ds.NumFiles(),
		"entries", ds.NumEntries())
	return ds, nil
}

// List returns the names of the stored datasets in order
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	infos, err := c.router.List(ctx, c.root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if name, ok := strings.CutSuffix(path.Base(info.Name), Ext); ok && name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Save stores ds under name and replaces any cached copy. Only local
// roots are writable.
func (c *Catalog) Save(name string, ds *layout.Dataset) error {
	if err := checkName(name); err != nil {
		return err
	}
	if c.root.Scheme() != source.FileScheme {
		return fmt.Errorf("%w: %s", ErrReadOnly, c.root)
	}
	if err := codec.WriteFile(c.location(name).Filepath(), ds); err != nil {
		return err
	}
	c.cache.Add(name, ds)
	c.logger.Info("Saved dataset", "name", name, "files", ds.NumFiles(), "entries", ds.NumEntries())
	return nil
}

// Invalidate drops the cached copy of name. It reports whether a copy
// was cached.
func (c *Catalog) Invalidate(name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	return c.cache.Remove(name), nil
}

// Stats returns cache statistics
func (c *Catalog) Stats() Stats {
	return Stats{Entries: c.cache.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
