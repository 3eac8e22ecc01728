package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrFinalized is returned when an accumulator is used after Finalize
	// without an intervening Reset.
	ErrFinalized = errors.New("accumulator already finalized")

	// ErrSelfMerge is returned when an accumulator is merged with itself.
	ErrSelfMerge = errors.New("accumulator merged with itself")

	// ErrNilState is returned when Merge or MergePartial is given a nil state.
	ErrNilState = errors.New("merge of nil state")

	// ErrCorruptPartial is returned when a serialized partial cannot be decoded.
	ErrCorruptPartial = errors.New("corrupt partial state")
)

// ShapeMismatchError is returned when two states built against different
// centroid tables are merged. Merging them would silently mix unrelated
// cluster indices.
type ShapeMismatchError struct {
	// Field is "clusters" for a K mismatch or "fingerprint" for a centroid
	// version mismatch.
	Field string
	Want  uint64
	Got   uint64
}

func (e *ShapeMismatchError) Error() string {
	if e.Field == "fingerprint" {
		return fmt.Sprintf("merge shape mismatch: centroid fingerprint %08x, got %08x", e.Want, e.Got)
	}
	return fmt.Sprintf("merge shape mismatch: %s expected %d, got %d", e.Field, e.Want, e.Got)
}
