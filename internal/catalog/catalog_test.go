package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/codec"
	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/interp"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/source"
)

func testDataset(t *testing.T, name string, entries uint64) *layout.Dataset {
	t.Helper()
	branch, err := layout.NewBranch(layout.BranchArrays{
		LocalOffsets:      []uint64{0, entries},
		PageSeeks:         []uint64{100},
		Compression:       compression.None,
		UncompressedBytes: []uint32{uint32(entries * 8)},
		BasketPageOffsets: []uint32{0, 1},
	})
	require.NoError(t, err)
	file, err := layout.NewFile("data.root", "uuid-1", []*layout.Branch{branch})
	require.NoError(t, err)
	ds, err := layout.NewDataset(layout.DatasetSpec{
		Name:          name,
		TreePath:      "Events",
		ColNames:      []string{"x"},
		Columns:       []layout.Column{{Interpretation: interp.NewFlat(interp.Primitive{DType: interp.Float64, BigEndian: true})}},
		Files:         []*layout.File{file},
		GlobalOffsets: []uint64{0, entries},
	})
	require.NoError(t, err)
	return ds
}

func newTestCatalog(t *testing.T, size int) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := New(dir, source.NewLocalRouter(false), size, nil)
	require.NoError(t, err)
	return c, dir
}

func TestSaveGetList(t *testing.T) {
	c, dir := newTestCatalog(t, 4)
	ctx := context.Background()

	require.NoError(t, c.Save("events", testDataset(t, "events", 10)))
	require.NoError(t, c.Save("muons", testDataset(t, "muons", 20)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.roly"), 0o755))

	names, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "muons"}, names)

	// a fresh catalog has to decode from disk
	fresh, err := New(dir, source.NewLocalRouter(true), 4, nil)
	require.NoError(t, err)
	ds, err := fresh.Get(ctx, "muons")
	require.NoError(t, err)
	assert.Equal(t, "muons", ds.Name())
	assert.Equal(t, uint64(20), ds.NumEntries())
	assert.True(t, ds.Equal(testDataset(t, "muons", 20)))

	again, err := fresh.Get(ctx, "muons")
	require.NoError(t, err)
	assert.Same(t, ds, again)

	stats := fresh.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestGetErrors(t *testing.T) {
	c, dir := newTestCatalog(t, 4)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		_, err := c.Get(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.roly"), []byte("not a dataset"), 0o644))
	_, err = c.Get(ctx, "junk")
	assert.ErrorIs(t, err, codec.ErrBadMagic)
}

func TestEviction(t *testing.T) {
	c, _ := newTestCatalog(t, 1)
	ctx := context.Background()
	require.NoError(t, c.Save("a", testDataset(t, "a", 1)))
	require.NoError(t, c.Save("b", testDataset(t, "b", 2)))
	assert.Equal(t, 1, c.Stats().Entries)

	ds, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", ds.Name())
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestInvalidate(t *testing.T) {
	c, dir := newTestCatalog(t, 4)
	ctx := context.Background()
	require.NoError(t, c.Save("a", testDataset(t, "a", 1)))

	// replaced behind the catalog's back
	require.NoError(t, codec.WriteFile(filepath.Join(dir, "a.roly"), testDataset(t, "a", 5)))
	ds, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ds.NumEntries())

	cached, err := c.Invalidate("a")
	require.NoError(t, err)
	assert.True(t, cached)
	ds, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), ds.NumEntries())

	cached, err = c.Invalidate("never-loaded")
	require.NoError(t, err)
	assert.False(t, cached)
	_, err = c.Invalidate("../a")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestConcurrentGet(t *testing.T) {
	c, dir := newTestCatalog(t, 4)
	require.NoError(t, codec.WriteFile(filepath.Join(dir, "events.roly"), testDataset(t, "events", 10)))

	var wg sync.WaitGroup
	results := make([]*layout.Dataset, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), "events")
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "events", results[i].Name())
	}
	assert.Equal(t, 1, c.Stats().Entries)
}

// gatedEngine serves local files once release is closed, failing with
// ctx.Err() if the opening context ends first
type gatedEngine struct {
	*source.FileEngine
	entered chan struct{}
	release chan struct{}
}

func (e *gatedEngine) Open(ctx context.Context, u *source.URI) (source.Reader, error) {
	select {
	case e.entered <- struct{}{}:
	default:
	}
	select {
	case <-e.release:
		return e.FileEngine.Open(ctx, u)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestGetSharedLoadSurvivesCancel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, codec.WriteFile(filepath.Join(dir, "events.roly"), testDataset(t, "events", 10)))
	engine := &gatedEngine{
		FileEngine: source.NewFileEngine(false),
		entered:    make(chan struct{}, 1),
		release:    make(chan struct{}),
	}
	router := source.NewRouter()
	router.Enable(source.FileScheme, engine)
	c, err := New(dir, router, 4, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "events")
		firstErr <- err
	}()
	<-engine.entered

	type result struct {
		ds  *layout.Dataset
		err error
	}
	second := make(chan result, 1)
	go func() {
		ds, err := c.Get(context.Background(), "events")
		second <- result{ds, err}
	}()
	require.Eventually(t, func() bool { return c.Stats().Misses == 2 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(engine.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "events", res.ds.Name())
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestSaveReadOnlyRoot(t *testing.T) {
	c, err := New("s3://bucket/datasets", source.NewRouter(), 4, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/datasets", c.Root())
	assert.ErrorIs(t, c.Save("a", testDataset(t, "a", 1)), ErrReadOnly)
}

func TestNewInvalid(t *testing.T) {
	_, err := New("", source.NewRouter(), 4, nil)
	assert.Error(t, err)

	_, err = New(t.TempDir(), source.NewRouter(), 0, nil)
	assert.Error(t, err)
}
