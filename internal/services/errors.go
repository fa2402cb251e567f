// Package services provides the logic between HTTP handlers and the
// catalog and delivery engine.
package services

import (
	"context"
	"errors"

	"github.com/soltixdb/roly/internal/catalog"
	"github.com/soltixdb/roly/internal/codec"
	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/deliver"
	"github.com/soltixdb/roly/internal/interp"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/source"
)

// Error codes reported by the service layer
const (
	CodeDatasetNotFound         = "DATASET_NOT_FOUND"
	CodeColumnNotFound          = "COLUMN_NOT_FOUND"
	CodeInvalidName             = "INVALID_NAME"
	CodeInvalidRange            = "INVALID_RANGE"
	CodeRangeTooLarge           = "RANGE_TOO_LARGE"
	CodeNotNumeric              = "NOT_NUMERIC"
	CodeCorruptBasket           = "CORRUPT_BASKET"
	CodeInconsistentCompression = "INCONSISTENT_COMPRESSION"
	CodeMissingBranchData       = "MISSING_BRANCH_DATA"
	CodeUnsupportedCompression  = "UNSUPPORTED_COMPRESSION"
	CodeUnknownQualname         = "UNKNOWN_QUALNAME"
	CodeInvalidLayout           = "INVALID_LAYOUT"
	CodeDataFileNotFound        = "DATA_FILE_NOT_FOUND"
	CodeEventsUnavailable       = "EVENTS_UNAVAILABLE"
	CodeTimeout                 = "TIMEOUT"
	CodeInternal                = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]any) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// classify wraps err in a ServiceError whose code names its kind
func classify(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	out := &ServiceError{Code: CodeInternal, Message: err.Error(), cause: err}

	var (
		unknownColumn *deliver.UnknownColumnError
		rangeErr      *deliver.RangeError
		corrupt       *deliver.CorruptBasketError
		inconsistent  *deliver.InconsistentCompressionError
		missing       *deliver.MissingBranchDataError
		unsupported   *compression.UnsupportedCompressionError
		qualname      *interp.UnknownQualnameError
		layoutErr     *layout.LayoutError
	)
	switch {
	case errors.Is(err, catalog.ErrDatasetNotFound):
		out.Code = CodeDatasetNotFound
	case errors.Is(err, catalog.ErrInvalidName):
		out.Code = CodeInvalidName
	case errors.As(err, &unknownColumn):
		out.Code = CodeColumnNotFound
		out.Details = map[string]any{"column": unknownColumn.Column}
	case errors.As(err, &rangeErr):
		out.Code = CodeInvalidRange
		out.Details = map[string]any{"start": rangeErr.Start, "stop": rangeErr.Stop, "num_entries": rangeErr.NumEntries}
	case errors.As(err, &corrupt):
		out.Code = CodeCorruptBasket
		out.Details = map[string]any{"location": corrupt.Location, "basket": corrupt.Basket}
	case errors.As(err, &inconsistent):
		out.Code = CodeInconsistentCompression
		out.Details = map[string]any{"location": inconsistent.Location}
	case errors.As(err, &missing):
		out.Code = CodeMissingBranchData
		out.Details = map[string]any{"column": missing.Column, "location": missing.Location}
	case errors.As(err, &unsupported):
		out.Code = CodeUnsupportedCompression
	case errors.As(err, &qualname):
		out.Code = CodeUnknownQualname
	case errors.As(err, &layoutErr), errors.Is(err, codec.ErrBadMagic):
		out.Code = CodeInvalidLayout
	case errors.Is(err, source.ErrNotFound):
		out.Code = CodeDataFileNotFound
	case errors.Is(err, context.DeadlineExceeded):
		out.Code = CodeTimeout
	}
	return out
}
