package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/catalog"
	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/deliver"
	"github.com/soltixdb/roly/internal/events"
	"github.com/soltixdb/roly/internal/interp"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/models"
	"github.com/soltixdb/roly/internal/source"
	"github.com/soltixdb/roly/internal/testutil"
)

func newTestService(t *testing.T, maxEntries int64) (*DatasetService, string) {
	t.Helper()
	dir := t.TempDir()
	router := source.NewLocalRouter(false)
	logger := logging.Global()
	cat, err := catalog.New(dir, router, 8, logger)
	require.NoError(t, err)
	engine := deliver.NewEngine(router, nil, logger, deliver.DefaultOptions())
	return NewDatasetService(logger, cat, engine, maxEntries), dir
}

func ptr(v int64) *int64 { return &v }

func TestDatasetServiceList(t *testing.T) {
	svc, dir := newTestService(t, 0)
	ctx := context.Background()

	resp, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, resp.Datasets)

	testutil.WriteDataset(t, dir, "events", 10)
	testutil.WriteDataset(t, dir, "cosmics", 5)
	resp, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cosmics", "events"}, resp.Datasets)
	assert.Equal(t, 2, resp.Count)
}

func TestDatasetServiceDescribe(t *testing.T) {
	svc, dir := newTestService(t, 0)
	testutil.WriteDataset(t, dir, "events", 10, 15)

	resp, err := svc.Describe(context.Background(), "events")
	require.NoError(t, err)
	assert.Equal(t, "events", resp.Name)
	assert.Equal(t, "Events", resp.TreePath)
	assert.Equal(t, uint64(25), resp.NumEntries)
	require.Len(t, resp.Columns, 2)
	assert.Equal(t, "x", resp.Columns[0].Name)
	assert.Equal(t, "x/D", resp.Columns[0].Title)
	assert.Equal(t, interp.NewFlat(interp.Primitive{DType: interp.Float64, BigEndian: true}).Identifier(), resp.Columns[0].Interpretation)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, models.FileResponse{Location: "events-1.root", UUID: "events-uuid-1", EntryStart: 10, EntryStop: 25}, resp.Files[1])

	_, err = svc.Describe(context.Background(), "missing")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeDatasetNotFound, svcErr.Code)
	assert.ErrorIs(t, err, catalog.ErrDatasetNotFound)
}

func TestDatasetServiceReadColumn(t *testing.T) {
	svc, dir := newTestService(t, 0)
	testutil.WriteDataset(t, dir, "events", 10, 15)
	ctx := context.Background()

	resp, err := svc.ReadColumn(ctx, "events", "x", models.ColumnRangeRequest{Start: ptr(8), Stop: ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), resp.Start)
	assert.Equal(t, uint64(12), resp.Stop)
	assert.Equal(t, uint64(4), resp.Count)
	assert.Equal(t, 2, resp.Files)
	assert.Equal(t, 2, resp.Baskets)
	assert.Equal(t, []float64{8, 9, 10, 11}, resp.Values.(*interp.Array).Values)

	resp, err = svc.ReadColumn(ctx, "events", "n", models.ColumnRangeRequest{})
	require.NoError(t, err)
	assert.Equal(t, uint64(25), resp.Count)
	values := resp.Values.(*interp.Array).Values.([]int32)
	assert.Equal(t, int32(48), values[24])

	resp, err = svc.ReadColumn(ctx, "events", "n", models.ColumnRangeRequest{Start: ptr(-3)})
	require.NoError(t, err)
	assert.Equal(t, []int32{44, 46, 48}, resp.Values.(*interp.Array).Values)
}

func TestDatasetServiceReadColumnSummary(t *testing.T) {
	svc, dir := newTestService(t, 0)
	testutil.WriteDataset(t, dir, "events", 10, 15)

	resp, err := svc.ReadColumn(context.Background(), "events", "n",
		models.ColumnRangeRequest{Stop: ptr(10), Summary: true})
	require.NoError(t, err)
	assert.Nil(t, resp.Values)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, models.SummaryResponse{Count: 10, Min: 0, Max: 18, Mean: 9}, *resp.Summary)
	assert.Equal(t, uint64(10), resp.Count)
}

func TestDatasetServiceReadColumnErrors(t *testing.T) {
	svc, dir := newTestService(t, 5)
	testutil.WriteDataset(t, dir, "events", 10)
	ctx := context.Background()

	tests := []struct {
		name    string
		dataset string
		column  string
		req     models.ColumnRangeRequest
		code    string
	}{
		{"unknown dataset", "missing", "x", models.ColumnRangeRequest{}, CodeDatasetNotFound},
		{"invalid name", "../etc", "x", models.ColumnRangeRequest{}, CodeInvalidName},
		{"unknown column", "events", "y", models.ColumnRangeRequest{Stop: ptr(1)}, CodeColumnNotFound},
		{"stop past end", "events", "x", models.ColumnRangeRequest{Stop: ptr(11)}, CodeInvalidRange},
		{"stop before start", "events", "x", models.ColumnRangeRequest{Start: ptr(4), Stop: ptr(2)}, CodeInvalidRange},
		{"too many entries", "events", "x", models.ColumnRangeRequest{}, CodeRangeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReadColumn(ctx, tt.dataset, tt.column, tt.req)
			var svcErr *ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.code, svcErr.Code)
		})
	}
}

func TestDatasetServiceMissingDataFile(t *testing.T) {
	svc, dir := newTestService(t, 0)
	testutil.WriteDataset(t, dir, "events", 10)
	require.NoError(t, os.Remove(filepath.Join(dir, "data", "events-0.root")))

	_, err := svc.ReadColumn(context.Background(), "events", "x", models.ColumnRangeRequest{})
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeDataFileNotFound, svcErr.Code)
}

func TestDatasetServiceStats(t *testing.T) {
	svc, dir := newTestService(t, 0)
	testutil.WriteDataset(t, dir, "events", 10)

	_, err := svc.Describe(context.Background(), "events")
	require.NoError(t, err)
	_, err = svc.Describe(context.Background(), "events")
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{&deliver.CorruptBasketError{Location: "f", Basket: 2}, CodeCorruptBasket},
		{&deliver.InconsistentCompressionError{Expected: compression.Zlib, Found: compression.LZ4}, CodeInconsistentCompression},
		{&deliver.MissingBranchDataError{Column: "x"}, CodeMissingBranchData},
		{&compression.UnsupportedCompressionError{Algorithm: compression.Old}, CodeUnsupportedCompression},
		{&interp.UnknownQualnameError{Qualname: "TFoo"}, CodeUnknownQualname},
		{fmt.Errorf("decode: %w", &layout.LayoutError{Entity: "branch", Reason: "bad"}), CodeInvalidLayout},
		{context.DeadlineExceeded, CodeTimeout},
		{errors.New("boom"), CodeInternal},
		{NewServiceError(CodeRangeTooLarge, "too large"), CodeRangeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, classify(tt.err).Code)
		})
	}
}

func TestDatasetServiceInvalidate(t *testing.T) {
	hub := events.NewMemoryHub()
	defer hub.Close()

	svc, dir := newTestService(t, 0)
	require.NoError(t, svc.AttachEvents(hub.Bus(nil)))
	replica, _ := newTestService(t, 0)
	require.NoError(t, replica.AttachEvents(hub.Bus(nil)))
	ctx := context.Background()

	testutil.WriteDataset(t, dir, "events", 10)
	_, err := svc.Describe(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Stats().Entries)

	// a replica's invalidation reaches this service
	resp, err := replica.Invalidate(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, "events", resp.Dataset)
	assert.False(t, resp.WasCached)
	require.Eventually(t, func() bool { return svc.Stats().Entries == 0 }, 5*time.Second, 10*time.Millisecond)

	resp, err = svc.Invalidate(ctx, "events")
	require.NoError(t, err)
	assert.False(t, resp.WasCached)

	_, err = svc.Invalidate(ctx, "../events")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeInvalidName, svcErr.Code)
}

func TestDatasetServiceInvalidateBusDown(t *testing.T) {
	hub := events.NewMemoryHub()
	svc, _ := newTestService(t, 0)
	require.NoError(t, svc.AttachEvents(hub.Bus(nil)))
	hub.Close()

	_, err := svc.Invalidate(context.Background(), "events")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeEventsUnavailable, svcErr.Code)
}
