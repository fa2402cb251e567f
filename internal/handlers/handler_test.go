package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/catalog"
	"github.com/soltixdb/roly/internal/deliver"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/models"
	"github.com/soltixdb/roly/internal/services"
	"github.com/soltixdb/roly/internal/source"
	"github.com/soltixdb/roly/internal/testutil"
)

// setupApp serves the handlers over a catalog rooted at a temp directory
func setupApp(t *testing.T, maxEntries int64) (*fiber.App, string) {
	t.Helper()
	dir := t.TempDir()
	logger := logging.Global()
	router := source.NewLocalRouter(false)
	cat, err := catalog.New(dir, router, 8, logger)
	require.NoError(t, err)
	engine := deliver.NewEngine(router, nil, logger, deliver.DefaultOptions())
	h := New(logger, services.NewDatasetService(logger, cat, engine, maxEntries), "1.2.3")

	app := fiber.New()
	app.Get("/health", h.Health)
	app.Get("/datasets", h.ListDatasets)
	app.Get("/datasets/:dataset", h.GetDataset)
	app.Get("/datasets/:dataset/columns/:column", h.ReadColumn)
	app.Get("/stats", h.CatalogStats)
	app.Post("/invalidate/:dataset", h.InvalidateDataset)
	app.Use(h.NotFound)
	return app, dir
}

func get(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	app, _ := setupApp(t, 0)

	var resp models.HealthResponse
	require.Equal(t, fiber.StatusOK, get(t, app, "/health", &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Zero(t, resp.CachedDatasets)
	assert.Nil(t, resp.Datasets)
}

func TestHealthDeep(t *testing.T) {
	app, dir := setupApp(t, 0)
	testutil.WriteDataset(t, dir, "a", 3)
	testutil.WriteDataset(t, dir, "b", 3)
	require.Equal(t, fiber.StatusOK, get(t, app, "/datasets/a", nil))

	var resp models.HealthResponse
	require.Equal(t, fiber.StatusOK, get(t, app, "/health?deep=true", &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.CachedDatasets)
	require.NotNil(t, resp.Datasets)
	assert.Equal(t, 2, *resp.Datasets)

	require.NoError(t, os.RemoveAll(dir))
	resp = models.HealthResponse{}
	assert.Equal(t, fiber.StatusServiceUnavailable, get(t, app, "/health?deep=true", &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestNotFound(t *testing.T) {
	app, _ := setupApp(t, 0)

	var resp models.ErrorResponse
	require.Equal(t, fiber.StatusNotFound, get(t, app, "/nowhere", &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "/nowhere", resp.Error.Path)
}

func TestListAndGetDataset(t *testing.T) {
	app, dir := setupApp(t, 0)
	testutil.WriteDataset(t, dir, "events", 4, 6)
	testutil.WriteDataset(t, dir, "calib", 3)

	var list models.DatasetListResponse
	require.Equal(t, fiber.StatusOK, get(t, app, "/datasets", &list))
	assert.Equal(t, []string{"calib", "events"}, list.Datasets)
	assert.Equal(t, 2, list.Count)

	var ds models.DatasetResponse
	require.Equal(t, fiber.StatusOK, get(t, app, "/datasets/events", &ds))
	assert.Equal(t, uint64(10), ds.NumEntries)
	require.Len(t, ds.Columns, 2)
	assert.Equal(t, "n", ds.Columns[1].Name)
	require.Len(t, ds.Files, 2)
	assert.Equal(t, uint64(4), ds.Files[1].EntryStart)

	var stats models.CatalogStatsResponse
	require.Equal(t, fiber.StatusOK, get(t, app, "/stats", &stats))
	assert.Contains(t, stats.Root, filepath.Base(dir))
	assert.Equal(t, 1, stats.Entries)
}

func TestReadColumn(t *testing.T) {
	app, dir := setupApp(t, 0)
	testutil.WriteDataset(t, dir, "events", 4, 6)

	var resp struct {
		Count  uint64 `json:"count"`
		Files  int    `json:"files"`
		Values struct {
			DType  string    `json:"dtype"`
			Shape  []int     `json:"shape"`
			Values []float64 `json:"values"`
		} `json:"values"`
	}
	require.Equal(t, fiber.StatusOK, get(t, app, "/datasets/events/columns/x?start=2&stop=7", &resp))
	assert.Equal(t, uint64(5), resp.Count)
	assert.Equal(t, 2, resp.Files)
	assert.Equal(t, "f8", resp.Values.DType)
	assert.Equal(t, []float64{2, 3, 4, 5, 6}, resp.Values.Values)

	require.Equal(t, fiber.StatusOK, get(t, app, "/datasets/events/columns/n?start=-2", &resp))
	assert.Equal(t, "i4", resp.Values.DType)
	assert.Equal(t, []float64{16, 18}, resp.Values.Values)
}

func TestReadColumnSummary(t *testing.T) {
	app, dir := setupApp(t, 0)
	testutil.WriteDataset(t, dir, "events", 4, 6)

	var resp models.ColumnDataResponse
	require.Equal(t, fiber.StatusOK, get(t, app, "/datasets/events/columns/x?start=2&stop=7&summary=true", &resp))
	assert.Nil(t, resp.Values)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, models.SummaryResponse{Count: 5, Min: 2, Max: 6, Mean: 4}, *resp.Summary)

	var errResp models.ErrorResponse
	assert.Equal(t, fiber.StatusBadRequest, get(t, app, "/datasets/events/columns/x?summary=maybe", &errResp))
	assert.Equal(t, "INVALID_REQUEST", errResp.Error.Code)
}

func TestReadColumnErrors(t *testing.T) {
	app, dir := setupApp(t, 8)
	testutil.WriteDataset(t, dir, "events", 4, 6)
	testutil.WriteDataset(t, dir, "broken", 4)
	require.NoError(t, os.Remove(filepath.Join(dir, "data", "broken-0.root")))

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"unknown dataset", "/datasets/missing/columns/x?stop=1", fiber.StatusNotFound, services.CodeDatasetNotFound},
		{"unknown column", "/datasets/events/columns/y?stop=1", fiber.StatusNotFound, services.CodeColumnNotFound},
		{"bad start", "/datasets/events/columns/x?start=abc", fiber.StatusBadRequest, "INVALID_REQUEST"},
		{"stop past end", "/datasets/events/columns/x?stop=11", fiber.StatusBadRequest, services.CodeInvalidRange},
		{"too many entries", "/datasets/events/columns/x", fiber.StatusRequestEntityTooLarge, services.CodeRangeTooLarge},
		{"missing data file", "/datasets/broken/columns/x", fiber.StatusBadGateway, services.CodeDataFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp models.ErrorResponse
			assert.Equal(t, tt.status, get(t, app, tt.path, &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestInvalidateDataset(t *testing.T) {
	app, dir := setupApp(t, 0)
	testutil.WriteDataset(t, dir, "events", 4)
	require.Equal(t, fiber.StatusOK, get(t, app, "/datasets/events", nil))

	post := func(path string, out any) int {
		resp, err := app.Test(httptest.NewRequest("POST", path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
		return resp.StatusCode
	}

	var resp models.InvalidateResponse
	require.Equal(t, fiber.StatusOK, post("/invalidate/events", &resp))
	assert.Equal(t, "events", resp.Dataset)
	assert.True(t, resp.WasCached)

	var stats models.CatalogStatsResponse
	require.Equal(t, fiber.StatusOK, get(t, app, "/stats", &stats))
	assert.Equal(t, 0, stats.Entries)

	require.Equal(t, fiber.StatusOK, post("/invalidate/events", &resp))
	assert.False(t, resp.WasCached)
}
