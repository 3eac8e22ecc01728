package centroid

import (
	"math"
)

// Posting is one nonzero centroid weight for a term.
type Posting struct {
	Cluster int
	Weight  float64
}

// Vector is a read-only sparse term->weight view of a single centroid.
type Vector struct {
	weights map[string]float64
}

// Get returns the weight for an already normalized term, or 0 if absent.
func (v Vector) Get(term string) float64 {
	return v.weights[term]
}

// Len returns the number of nonzero entries.
func (v Vector) Len() int {
	return len(v.weights)
}

// Range calls fn for each entry until fn returns false. Order is unspecified.
func (v Vector) Range(fn func(term string, weight float64) bool) {
	for t, w := range v.weights {
		if !fn(t, w) {
			return
		}
	}
}

// Table is an immutable set of K sparse centroids.
//
// All methods are safe for concurrent use. The zero value is not usable; build
// a Table with NewBuilder.
type Table struct {
	k           int
	vectors     []map[string]float64
	postings    map[string][]Posting
	normalize   Normalizer
	fingerprint uint32
	entries     int
}

// K returns the configured cluster count.
func (t *Table) K() int { return t.k }

// ClusterCount is an alias for K.
func (t *Table) ClusterCount() int { return t.k }

// Lookup returns the sparse vector of cluster c.
func (t *Table) Lookup(c int) (Vector, error) {
	if c < 0 || c >= t.k {
		return Vector{}, &ErrClusterOutOfRange{Cluster: c, K: t.k}
	}
	return Vector{weights: t.vectors[c]}, nil
}

// Weight returns the weight of an already normalized term in cluster c.
// Out-of-range clusters and unknown terms yield 0.
func (t *Table) Weight(c int, term string) float64 {
	if c < 0 || c >= t.k {
		return 0
	}
	return t.vectors[c][term]
}

// Normalize applies the table's normalizer to a raw term.
func (t *Table) Normalize(term string) string {
	return t.normalize(term)
}

// Postings returns the clusters with a nonzero weight for an already
// normalized term, ordered by cluster index. The slice must not be modified.
func (t *Table) Postings(term string) []Posting {
	return t.postings[term]
}

// Terms returns the number of distinct terms across all centroids.
func (t *Table) Terms() int { return len(t.postings) }

// Entries returns the number of nonzero (cluster, term) weights.
func (t *Table) Entries() int { return t.entries }

// Fingerprint identifies the table content. Two tables built from the same
// records with the same K share a fingerprint.
func (t *Table) Fingerprint() uint32 { return t.fingerprint }

func validWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0)
}
