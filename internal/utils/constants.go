package utils

import "time"

// HTTP handler timeouts
const (
	// DefaultRequestTimeout bounds metadata requests
	DefaultRequestTimeout = 30 * time.Second

	// ColumnReadTimeout bounds one column read, including its data file
	// fetches
	ColumnReadTimeout = 2 * time.Minute

	// HealthCheckTimeout bounds the catalog listing of a deep health check
	HealthCheckTimeout = 5 * time.Second
)

// CLI defaults
const (
	// DefaultPreviewEntries is the number of values the read command
	// prints unless asked for all of them
	DefaultPreviewEntries = 20
)
