package centroid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when the configured cluster count is not positive.
	ErrInvalidK = errors.New("cluster count must be positive")

	// ErrEmptyTerm is returned when a term normalizes to the empty string.
	ErrEmptyTerm = errors.New("empty term")

	// ErrBuilt is returned when a Builder is used after Build.
	ErrBuilt = errors.New("builder already built")
)

// ErrClusterOutOfRange indicates a cluster index outside [0, K).
type ErrClusterOutOfRange struct {
	Cluster int
	K       int
}

func (e *ErrClusterOutOfRange) Error() string {
	return fmt.Sprintf("cluster %d out of range [0,%d)", e.Cluster, e.K)
}

// ErrInvalidWeight indicates a NaN or infinite centroid weight.
type ErrInvalidWeight struct {
	Cluster int
	Term    string
	Weight  float64
}

func (e *ErrInvalidWeight) Error() string {
	return fmt.Sprintf("invalid weight %v for term %q in cluster %d", e.Weight, e.Term, e.Cluster)
}

// ErrIncomplete indicates that strict coverage was requested and some
// clusters received no records.
type ErrIncomplete struct {
	Missing []int
	K       int
}

func (e *ErrIncomplete) Error() string {
	const show = 8
	if len(e.Missing) > show {
		return fmt.Sprintf("incomplete centroids: %d of %d clusters empty (first: %v)", len(e.Missing), e.K, e.Missing[:show])
	}
	return fmt.Sprintf("incomplete centroids: clusters %v of %d are empty", e.Missing, e.K)
}
