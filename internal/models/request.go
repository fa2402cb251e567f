package models

// ColumnRangeRequest represents the query parameters of a column read.
// Missing bounds mean the whole dataset; negative bounds count from the
// end.
type ColumnRangeRequest struct {
	Start *int64
	Stop  *int64

	// Summary asks for count, min, max and mean instead of the values
	Summary bool
}
