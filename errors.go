package termcluster

import (
	"errors"
	"fmt"

	"github.com/hupe1980/termcluster/aggregate"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/source"
)

var (
	// ErrCentroidLoad is returned when the centroid table could not be
	// materialized. It is fatal: the worker never retries the load.
	ErrCentroidLoad = errors.New("centroid table unavailable")

	// ErrFinalized is returned when an accumulator is used after it has
	// produced its result.
	ErrFinalized = errors.New("accumulator finalized")

	// ErrCorruptPartial is returned when a transferred partial state fails to
	// decode.
	ErrCorruptPartial = errors.New("corrupt partial state")

	// ErrNilProvider is returned by New when no centroid provider is given.
	ErrNilProvider = errors.New("centroid provider is nil")
)

// ErrShapeMismatch indicates a merge of partial states built against
// different centroid tables.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrShapeMismatch struct {
	Field string
	Want  uint64
	Got   uint64
	cause error
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch on %s: expected %d, got %d", e.Field, e.Want, e.Got)
}

func (e *ErrShapeMismatch) Unwrap() error { return e.cause }

// ErrMalformedSource indicates a bad record in a centroid file.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrMalformedSource struct {
	Line  int
	cause error
}

func (e *ErrMalformedSource) Error() string {
	return e.cause.Error()
}

func (e *ErrMalformedSource) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Load failures are fatal and take precedence over their causes.
	if errors.Is(err, centroid.ErrLoad) {
		var pe *source.ParseError
		if errors.As(err, &pe) {
			err = &ErrMalformedSource{Line: pe.Line, cause: err}
		}
		return fmt.Errorf("%w: %w", ErrCentroidLoad, err)
	}

	var sm *aggregate.ShapeMismatchError
	if errors.As(err, &sm) {
		return &ErrShapeMismatch{Field: sm.Field, Want: sm.Want, Got: sm.Got, cause: err}
	}
	if errors.Is(err, aggregate.ErrFinalized) {
		return fmt.Errorf("%w: %w", ErrFinalized, err)
	}
	if errors.Is(err, aggregate.ErrCorruptPartial) {
		return fmt.Errorf("%w: %w", ErrCorruptPartial, err)
	}

	return err
}
