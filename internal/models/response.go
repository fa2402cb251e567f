package models

// HealthResponse represents health check response. Datasets is only set
// by a deep check.
type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	Version        string `json:"version"`
	CatalogRoot    string `json:"catalog_root"`
	CachedDatasets int    `json:"cached_datasets"`
	Datasets       *int   `json:"datasets,omitempty"`
	Error          string `json:"error,omitempty"`
}

// DatasetListResponse represents list datasets response
type DatasetListResponse struct {
	Datasets []string `json:"datasets"`
	Count    int      `json:"count"`
}

// ColumnResponse describes one column of a dataset
type ColumnResponse struct {
	Name           string `json:"name"`
	Title          string `json:"title,omitempty"`
	Interpretation string `json:"interpretation"`
}

// FileResponse describes one data file of a dataset and the global entry
// range it holds
type FileResponse struct {
	Location   string `json:"location"`
	UUID       string `json:"uuid,omitempty"`
	EntryStart uint64 `json:"entry_start"`
	EntryStop  uint64 `json:"entry_stop"`
}

// DatasetResponse represents dataset metadata response
type DatasetResponse struct {
	Name           string           `json:"name"`
	TreePath       string           `json:"treepath"`
	LocationPrefix string           `json:"location_prefix,omitempty"`
	NumEntries     uint64           `json:"num_entries"`
	Columns        []ColumnResponse `json:"columns"`
	Files          []FileResponse   `json:"files"`
}

// ColumnDataResponse represents the values of one column range
type ColumnDataResponse struct {
	Dataset  string `json:"dataset"`
	Column   string `json:"column"`
	Start    uint64 `json:"start"`
	Stop     uint64 `json:"stop"`
	Count    uint64 `json:"count"`
	Files    int    `json:"files"`
	Baskets  int    `json:"baskets"`
	Values   any              `json:"values,omitempty"`
	Summary  *SummaryResponse `json:"summary,omitempty"`
	Duration string           `json:"duration"`
}

// SummaryResponse holds statistics over the numeric values of a column
// range. NaN values are not counted.
type SummaryResponse struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// CatalogStatsResponse represents dataset cache statistics
type CatalogStatsResponse struct {
	Root    string `json:"root"`
	Entries int    `json:"entries"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
}

// InvalidateResponse represents a cache invalidation result
type InvalidateResponse struct {
	Dataset   string `json:"dataset"`
	WasCached bool   `json:"was_cached"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Path    string         `json:"path,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
