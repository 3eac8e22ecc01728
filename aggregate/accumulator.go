package aggregate

import (
	"database/sql"

	"github.com/hupe1980/termcluster/centroid"
)

// State is the lifecycle position of an Accumulator.
type State uint8

const (
	// Empty is the state right after New or Reset.
	Empty State = iota
	// Accumulating is entered by the first Update or Merge.
	Accumulating
	// Finalized is terminal until the next Reset.
	Finalized
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Accumulating:
		return "accumulating"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Accumulator holds one running similarity total per cluster for a single
// group. It is owned by one goroutine at a time; the centroid table it reads
// is shared and immutable.
type Accumulator struct {
	table      *centroid.Table
	similarity []float64
	state      State
}

// New returns an accumulator for table with all totals at 0.0.
func New(table *centroid.Table) *Accumulator {
	return &Accumulator{
		table:      table,
		similarity: make([]float64, table.K()),
	}
}

// Reset discards all accumulated totals so the accumulator can be reused for
// another group. Afterwards it is indistinguishable from New(table).
func (a *Accumulator) Reset() {
	clear(a.similarity)
	a.state = Empty
}

// K returns the number of clusters.
func (a *Accumulator) K() int { return len(a.similarity) }

// State returns the lifecycle state.
func (a *Accumulator) State() State { return a.state }

// Table returns the centroid table the accumulator scores against.
func (a *Accumulator) Table() *centroid.Table { return a.table }

// Update adds one observation. A null term or null weight contributes nothing.
//
// The term is normalized with the table's normalizer, then weight times the
// centroid weight is added to every cluster whose centroid contains the term.
// Terms found in no centroid are accepted and change nothing. Weights are
// used as given, including NaN and infinities.
func (a *Accumulator) Update(term sql.NullString, weight sql.NullFloat64) error {
	if a.state == Finalized {
		return ErrFinalized
	}
	a.state = Accumulating
	if !term.Valid || !weight.Valid {
		return nil
	}
	a.add(term.String, weight.Float64)
	return nil
}

// UpdateValue is Update for a non-null observation.
func (a *Accumulator) UpdateValue(term string, weight float64) error {
	return a.Update(sql.NullString{String: term, Valid: true}, sql.NullFloat64{Float64: weight, Valid: true})
}

func (a *Accumulator) add(term string, weight float64) {
	for _, p := range a.table.Postings(a.table.Normalize(term)) {
		a.similarity[p.Cluster] += weight * p.Weight
	}
}

// Merge adds other's totals into a. other is only read.
//
// Both accumulators must be built against the same centroid table (same K and
// fingerprint); otherwise a *ShapeMismatchError is returned and a is unchanged.
func (a *Accumulator) Merge(other *Accumulator) error {
	if other == nil {
		return ErrNilState
	}
	if other == a {
		return ErrSelfMerge
	}
	if other.state == Finalized {
		return ErrFinalized
	}
	return a.merge(uint64(len(other.similarity)), other.table.Fingerprint(), other.similarity)
}

// MergePartial adds a detached partial state into a.
func (a *Accumulator) MergePartial(p *Partial) error {
	if p == nil {
		return ErrNilState
	}
	if len(p.Similarity) != p.K {
		return &ShapeMismatchError{Field: "partial length", Want: uint64(p.K), Got: uint64(len(p.Similarity))}
	}
	return a.merge(uint64(p.K), p.Fingerprint, p.Similarity)
}

func (a *Accumulator) merge(k uint64, fingerprint uint32, totals []float64) error {
	if a.state == Finalized {
		return ErrFinalized
	}
	if k != uint64(len(a.similarity)) {
		return &ShapeMismatchError{Field: "clusters", Want: uint64(len(a.similarity)), Got: k}
	}
	if fp := a.table.Fingerprint(); fingerprint != fp {
		return &ShapeMismatchError{Field: "fingerprint", Want: uint64(fp), Got: uint64(fingerprint)}
	}

	for c, s := range totals {
		a.similarity[c] += s
	}
	a.state = Accumulating
	return nil
}

// Totals returns a copy of the running totals.
func (a *Accumulator) Totals() []float64 {
	out := make([]float64, len(a.similarity))
	copy(out, a.similarity)
	return out
}

// Partial returns the detached state of the accumulator for transfer to
// another stage. The accumulator stays usable.
func (a *Accumulator) Partial() *Partial {
	return &Partial{
		K:           len(a.similarity),
		Fingerprint: a.table.Fingerprint(),
		Similarity:  a.Totals(),
	}
}

// Finalize selects the winning cluster and ends the accumulator's lifetime.
// Further calls other than Reset return ErrFinalized.
func (a *Accumulator) Finalize() (int, error) {
	if a.state == Finalized {
		return 0, ErrFinalized
	}
	a.state = Finalized
	return Select(a.similarity), nil
}
