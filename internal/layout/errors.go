package layout

import "fmt"

// LayoutError reports geometry that violates an invariant. It is returned
// by every constructor in this package, so malformed geometry never
// enters the model.
type LayoutError struct {
	Entity string
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
}

func layoutErrorf(entity, format string, args ...any) error {
	return &LayoutError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// IncompatibleDatasetError is returned when two datasets cannot be unioned
type IncompatibleDatasetError struct {
	Field string
	Left  string
	Right string
}

func (e *IncompatibleDatasetError) Error() string {
	return fmt.Sprintf("incompatible datasets: %s differs (%q vs %q)", e.Field, e.Left, e.Right)
}
