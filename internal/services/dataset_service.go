package services

import (
	"context"
	"fmt"
	"time"

	"github.com/soltixdb/roly/internal/catalog"
	"github.com/soltixdb/roly/internal/deliver"
	"github.com/soltixdb/roly/internal/events"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/models"
	"github.com/soltixdb/roly/internal/utils"
)

// DatasetService answers dataset and column requests
type DatasetService struct {
	logger     *logging.Logger
	catalog    *catalog.Catalog
	engine     *deliver.Engine
	maxEntries int64
	bus        *events.Bus
}

// NewDatasetService creates a new DatasetService. maxEntries bounds the
// entries one read may return; zero means no bound.
func NewDatasetService(logger *logging.Logger, cat *catalog.Catalog, engine *deliver.Engine, maxEntries int64) *DatasetService {
	return &DatasetService{
		logger:     logger,
		catalog:    cat,
		engine:     engine,
		maxEntries: maxEntries,
		bus:        events.NewNoop(),
	}
}

// AttachEvents publishes invalidations on bus and drops cached datasets
// when any bus member reports a change
func (s *DatasetService) AttachEvents(bus *events.Bus) error {
	err := bus.Subscribe(func(ev events.Event) {
		cached, err := s.catalog.Invalidate(ev.Dataset)
		if err != nil {
			s.logger.Warn("Ignoring catalog event", "type", ev.Type, "dataset", ev.Dataset, "error", err)
			return
		}
		s.logger.Debug("Catalog event applied",
			"type", ev.Type,
			"dataset", ev.Dataset,
			"origin", ev.Origin,
			"was_cached", cached)
	})
	if err != nil {
		return err
	}
	s.bus = bus
	return nil
}

// Invalidate drops the cached copy of a dataset here and on every
// replica sharing the event bus
func (s *DatasetService) Invalidate(ctx context.Context, name string) (*models.InvalidateResponse, error) {
	cached, err := s.catalog.Invalidate(name)
	if err != nil {
		return nil, classify(err)
	}
	if err := s.bus.Publish(ctx, events.DatasetUpdated, name); err != nil {
		s.logger.Warn("Failed to publish invalidation", "dataset", name, "error", err)
		return nil, NewServiceError(CodeEventsUnavailable, err.Error())
	}
	return &models.InvalidateResponse{Dataset: name, WasCached: cached}, nil
}

// List returns the names of all datasets
func (s *DatasetService) List(ctx context.Context) (*models.DatasetListResponse, error) {
	names, err := s.catalog.List(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if names == nil {
		names = []string{}
	}
	return &models.DatasetListResponse{Datasets: names, Count: len(names)}, nil
}

// Describe returns the columns and files of a dataset
func (s *DatasetService) Describe(ctx context.Context, name string) (*models.DatasetResponse, error) {
	ds, err := s.catalog.Get(ctx, name)
	if err != nil {
		return nil, classify(err)
	}

	columns, err := ds.Columns()
	if err != nil {
		return nil, classify(err)
	}
	files, err := ds.Files()
	if err != nil {
		return nil, classify(err)
	}

	resp := &models.DatasetResponse{
		Name:           ds.Name(),
		TreePath:       ds.TreePath(),
		LocationPrefix: ds.LocationPrefix(),
		NumEntries:     ds.NumEntries(),
		Columns:        make([]models.ColumnResponse, len(columns)),
		Files:          make([]models.FileResponse, len(files)),
	}
	for i, name := range ds.ColNames() {
		resp.Columns[i] = models.ColumnResponse{
			Name:           name,
			Title:          columns[i].Title,
			Interpretation: columns[i].Interpretation.Identifier(),
		}
	}
	for i, f := range files {
		start, stop := ds.FileRange(i)
		resp.Files[i] = models.FileResponse{Location: f.Location(), UUID: f.UUID(), EntryStart: start, EntryStop: stop}
	}
	return resp, nil
}

// ReadColumn returns the values of a column over an entry range
func (s *DatasetService) ReadColumn(ctx context.Context, dataset, column string, req models.ColumnRangeRequest) (*models.ColumnDataResponse, error) {
	began := time.Now()
	ds, err := s.catalog.Get(ctx, dataset)
	if err != nil {
		return nil, classify(err)
	}

	start, stop := int64(0), int64(ds.NumEntries())
	if req.Start != nil {
		start = *req.Start
	}
	if req.Stop != nil {
		stop = *req.Stop
	}

	plan, err := deliver.Resolve(ds, column, start, stop)
	if err != nil {
		return nil, classify(err)
	}
	if s.maxEntries > 0 && plan.NumEntries() > uint64(s.maxEntries) {
		return nil, NewServiceErrorWithDetails(CodeRangeTooLarge,
			fmt.Sprintf("range of %d entries exceeds the limit of %d", plan.NumEntries(), s.maxEntries),
			map[string]any{"max_entries": s.maxEntries})
	}

	col, err := ds.Column(plan.ColumnIndex)
	if err != nil {
		return nil, classify(err)
	}
	values, err := s.engine.Execute(ctx, plan, col)
	if err != nil {
		s.logger.Warn("Column read failed",
			"dataset", dataset,
			"column", column,
			"start", plan.Start,
			"stop", plan.Stop,
			"error", err)
		return nil, classify(err)
	}

	resp := &models.ColumnDataResponse{
		Dataset: dataset,
		Column:  column,
		Start:   plan.Start,
		Stop:    plan.Stop,
		Count:   plan.NumEntries(),
		Files:   len(plan.Files),
		Baskets: plan.NumBaskets(),
	}
	if req.Summary {
		sum, ok := utils.Summarize(values)
		if !ok {
			return nil, NewServiceErrorWithDetails(CodeNotNumeric,
				fmt.Sprintf("column %q has no numeric values to summarize", column),
				map[string]any{"interpretation": col.Interpretation.Identifier()})
		}
		resp.Summary = &models.SummaryResponse{Count: sum.Count, Min: sum.Min, Max: sum.Max, Mean: sum.Mean}
	} else {
		resp.Values = utils.JSONValues(values)
	}
	resp.Duration = time.Since(began).String()
	return resp, nil
}

// Stats returns catalog cache statistics
func (s *DatasetService) Stats() *models.CatalogStatsResponse {
	st := s.catalog.Stats()
	return &models.CatalogStatsResponse{Root: s.catalog.Root(), Entries: st.Entries, Hits: st.Hits, Misses: st.Misses}
}
