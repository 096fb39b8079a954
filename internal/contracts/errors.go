package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the pipeline. Transport maps the
// validation ones to client errors; everything else is internal.
var (
	// ErrInvalidRange means start comes after end, or a date failed to parse.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUnknownProduct means a name or id outside the fitted catalog.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrInsufficientData means an empty historical slice where a
	// baseline requires at least one record.
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrDataLoad means the source dataset was malformed.
	ErrDataLoad = errors.New("dataset load failed")

	// ErrInvalidArgument means a caller-supplied parameter is out of range.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ModelInferenceError wraps a predictor failure for one product.
type ModelInferenceError struct {
	Model   string
	Product string
	Err     error
}

func (e *ModelInferenceError) Error() string {
	return fmt.Sprintf("model %s inference failed for %s: %v", e.Model, e.Product, e.Err)
}

func (e *ModelInferenceError) Unwrap() error {
	return e.Err
}
