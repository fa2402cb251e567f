package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/analyze"
	"github.com/soltixdb/roly/internal/codec"
	"github.com/soltixdb/roly/internal/events"
	"github.com/soltixdb/roly/internal/testutil"
)

func roly(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestUsage(t *testing.T) {
	_, err := roly(t)
	assert.ErrorIs(t, err, errUsage)
	_, err = roly(t, "frobnicate")
	assert.ErrorIs(t, err, errUsage)
	_, err = roly(t, "read", "-column", "x")
	assert.ErrorIs(t, err, errUsage)
	_, err = roly(t, "merge", "a.roly")
	assert.ErrorIs(t, err, errUsage)

	out, err := roly(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDataset(t, dir, "a", 5, 7)

	out, err := roly(t, "inspect", "-baskets", filepath.Join(dir, "a.roly"))
	require.NoError(t, err)
	assert.Contains(t, out, "entries:   12")
	assert.Contains(t, out, "asdtype(>f8,<f8)")
	assert.Contains(t, out, "n/I")
	assert.Contains(t, out, "a-1.root")
	assert.Contains(t, out, "[5, 12)")
	assert.Contains(t, out, "1,1")

	_, err = roly(t, "inspect", filepath.Join(dir, "missing.roly"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDataset(t, dir, "a", 5, 7)
	testutil.WriteDataset(t, dir, "big", 30)
	path := filepath.Join(dir, "a.roly")

	out, err := roly(t, "read", "-column", "x", "-start", "3", "-stop", "6", path)
	require.NoError(t, err)
	assert.Contains(t, out, "entries [3, 6) of 3 selected")
	assert.Contains(t, out, `"dtype": "f8"`)

	out, err = roly(t, "read", "-column", "n", "-summary", path)
	require.NoError(t, err)
	assert.Contains(t, out, "count=12 min=0 max=22 mean=11")

	out, err = roly(t, "read", "-column", "x", "-start", "-2", "-concurrency", "1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "entries [10, 12) of 2 selected")

	out, err = roly(t, "read", "-column", "x", filepath.Join(dir, "big.roly"))
	require.NoError(t, err)
	assert.Contains(t, out, "entries [0, 20) of 30 selected")

	out, err = roly(t, "read", "-column", "x", "-all", filepath.Join(dir, "big.roly"))
	require.NoError(t, err)
	assert.Contains(t, out, "entries [0, 30) of 30 selected")

	_, err = roly(t, "read", "-column", "y", path)
	assert.Error(t, err)
	_, err = roly(t, "read", "-column", "x", "-stop", "13", path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDataset(t, dir, "a", 5, 7)
	data, err := os.ReadFile(filepath.Join(dir, "a.roly"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "copy.roly"), data, 0o644))

	merged := filepath.Join(dir, "merged.roly")
	out, err := roly(t, "merge", "-out", merged, filepath.Join(dir, "a.roly"), filepath.Join(dir, "copy.roly"))
	require.NoError(t, err)
	assert.Contains(t, out, "2 columns, 4 files, 24 entries")

	out, err = roly(t, "read", "-column", "n", "-start", "11", "-stop", "14", "-summary", merged)
	require.NoError(t, err)
	assert.Contains(t, out, "count=3 min=0 max=22")
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	want := testutil.WriteDataset(t, dir, "a", 5, 7)

	key := func(seek uint64, payload uint32) analyze.BasketKey {
		return analyze.BasketKey{SeekKey: seek, Keylen: 16, Nbytes: 16 + payload, Objlen: payload, Border: payload}
	}
	m := &analyze.Manifest{Name: "a", TreePath: "Events", LocationPrefix: filepath.Join(dir, "data") + "/"}
	for i, n := range []uint32{5, 7} {
		m.Files = append(m.Files, analyze.ManifestFile{
			Location: []string{"a-0.root", "a-1.root"}[i],
			UUID:     []string{"a-uuid-0", "a-uuid-1"}[i],
			Branches: []analyze.ManifestBranch{
				{
					Column:         "x",
					Title:          "x/D",
					Interpretation: analyze.InterpretationSpec{Kind: analyze.KindFlat, From: &analyze.PrimitiveSpec{Type: ">f8"}},
					LocalOffsets:   []uint64{0, uint64(n)},
					Keys:           []analyze.BasketKey{key(0, 8*n)},
				},
				{
					Column:         "n",
					Title:          "n/I",
					Interpretation: analyze.InterpretationSpec{Kind: analyze.KindFlat, From: &analyze.PrimitiveSpec{Type: ">i4"}},
					LocalOffsets:   []uint64{0, uint64(n)},
					Keys:           []analyze.BasketKey{key(uint64(16+8*n), 4*n)},
				},
			},
		})
	}
	manifestPath := filepath.Join(dir, "manifest.json")
	f, err := os.Create(manifestPath)
	require.NoError(t, err)
	require.NoError(t, analyze.WriteManifest(f, m))
	require.NoError(t, f.Close())

	built := filepath.Join(dir, "built.roly")
	out, err := roly(t, "build", "-manifest", manifestPath, "-out", built)
	require.NoError(t, err)
	assert.Contains(t, out, "2 columns, 2 files, 12 entries")

	got, err := codec.ReadFile(built)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = roly(t, "build", "-manifest", manifestPath)
	assert.ErrorIs(t, err, errUsage)
}

func TestBench(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteDataset(t, dir, "a", 50, 50)

	out, err := roly(t, "bench", "-column", "x", "-size", "10", "-workers", "2", "-reads", "5", filepath.Join(dir, "a.roly"))
	require.NoError(t, err)
	assert.Contains(t, out, "Reads:       10 (0 errors)")
	assert.Contains(t, out, "P99:")

	_, err = roly(t, "bench", "-column", "nope", filepath.Join(dir, "a.roly"))
	assert.Error(t, err)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, 5.0, percentile(sorted, 50))
	assert.Equal(t, 10.0, percentile(sorted, 99))
	assert.Equal(t, 1.0, percentile(sorted, 0))
	assert.Equal(t, 0.0, percentile(nil, 50))
}

func TestMergePublish(t *testing.T) {
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)
	go ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second))
	defer ns.Shutdown()

	listener, err := events.NewNATS(ns.ClientURL(), "", nil)
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()
	got := make(chan events.Event, 1)
	require.NoError(t, listener.Subscribe(func(ev events.Event) { got <- ev }))

	dir := t.TempDir()
	testutil.WriteDataset(t, dir, "a", 5)
	configPath := filepath.Join(dir, "roly.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("events:\n  type: nats\n  url: "+ns.ClientURL()+"\n"), 0o644))

	out := filepath.Join(dir, "merged.roly")
	_, err = roly(t, "-config", configPath, "merge", "-publish", "-out", out, filepath.Join(dir, "a.roly"))
	require.NoError(t, err)

	select {
	case ev := <-got:
		assert.Equal(t, events.DatasetUpdated, ev.Type)
		assert.Equal(t, "merged", ev.Dataset)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}
