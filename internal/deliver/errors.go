package deliver

import (
	"fmt"

	"github.com/soltixdb/roly/internal/compression"
)

// UnknownColumnError is returned for a column the dataset does not have
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Column)
}

// RangeError is returned when an entry range is out of bounds
type RangeError struct {
	Start, Stop int64
	NumEntries  uint64
	Reason      string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("entry range [%d, %d) of %d entries: %s", e.Start, e.Stop, e.NumEntries, e.Reason)
}

// CorruptBasketError is returned when a data file disagrees with the
// geometry recorded for it
type CorruptBasketError struct {
	Location string
	Basket   int
	Reason   string
}

func (e *CorruptBasketError) Error() string {
	return fmt.Sprintf("corrupt basket %d in %s: %s", e.Basket, e.Location, e.Reason)
}

// InconsistentCompressionError is returned when one read meets two
// different codecs
type InconsistentCompressionError struct {
	Location string
	Expected compression.Algorithm
	Found    compression.Algorithm
}

func (e *InconsistentCompressionError) Error() string {
	return fmt.Sprintf("inconsistent compression in %s: expected %s, found %s", e.Location, e.Expected, e.Found)
}

// MissingBranchDataError is returned when a file's branch for a column
// holds fewer entries than the file's share of the dataset, as happens for
// the empty branches a union pads files with.
type MissingBranchDataError struct {
	Column   string
	Location string
	Have     uint64
	Need     uint64
}

func (e *MissingBranchDataError) Error() string {
	return fmt.Sprintf("column %q has %d entries in %s, need %d", e.Column, e.Have, e.Location, e.Need)
}
