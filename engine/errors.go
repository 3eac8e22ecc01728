package engine

import "errors"

var (
	// ErrTooManyRows is returned when a run exceeds the 32-bit row id space.
	ErrTooManyRows = errors.New("engine: too many rows")

	// ErrPartitionTooLarge is returned when one partition's accumulators can
	// never fit the controller's memory limit.
	ErrPartitionTooLarge = errors.New("engine: partition exceeds memory limit")
)
