package centroid

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/termcluster/internal/hash"
)

type builderOptions struct {
	normalize      Normalizer
	strictCoverage bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*builderOptions)

// WithNormalizer binds the term normalizer for the table being built.
// A nil normalizer selects DefaultNormalizer.
func WithNormalizer(n Normalizer) BuilderOption {
	return func(o *builderOptions) {
		o.normalize = n
	}
}

// WithStrictCoverage makes Build fail with *ErrIncomplete when any cluster
// received no records. By default an empty centroid is legal and simply never
// contributes similarity.
func WithStrictCoverage() BuilderOption {
	return func(o *builderOptions) {
		o.strictCoverage = true
	}
}

// Builder assembles a Table from (cluster, term, weight) records.
// A Builder is not safe for concurrent use.
type Builder struct {
	k       int
	opts    builderOptions
	vectors []map[string]float64
	covered *bitset.BitSet
	built   bool
	err     error
}

// NewBuilder creates a Builder for k clusters.
func NewBuilder(k int, optFns ...BuilderOption) *Builder {
	opts := builderOptions{normalize: DefaultNormalizer}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.normalize == nil {
		opts.normalize = DefaultNormalizer
	}

	b := &Builder{k: k, opts: opts}
	if k < 1 {
		b.err = ErrInvalidK
		return b
	}

	b.vectors = make([]map[string]float64, k)
	for i := range b.vectors {
		b.vectors[i] = make(map[string]float64)
	}
	b.covered = bitset.New(uint(k))
	return b
}

// Add records the weight of term in cluster. A later record for the same
// (cluster, term) replaces an earlier one. Zero weights are not stored since
// an absent term already means weight zero.
func (b *Builder) Add(cluster int, term string, weight float64) error {
	if b.err != nil {
		return b.err
	}
	if b.built {
		return ErrBuilt
	}
	if cluster < 0 || cluster >= b.k {
		return &ErrClusterOutOfRange{Cluster: cluster, K: b.k}
	}

	key := b.opts.normalize(term)
	if key == "" {
		return ErrEmptyTerm
	}
	if !validWeight(weight) {
		return &ErrInvalidWeight{Cluster: cluster, Term: term, Weight: weight}
	}

	b.covered.Set(uint(cluster))
	if weight == 0 {
		delete(b.vectors[cluster], key)
		return nil
	}
	b.vectors[cluster][key] = weight
	return nil
}

// Build freezes the records into a Table. The Builder cannot be used afterwards.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, ErrBuilt
	}

	if b.opts.strictCoverage && b.covered.Count() != uint(b.k) {
		var missing []int
		for c := 0; c < b.k; c++ {
			if !b.covered.Test(uint(c)) {
				missing = append(missing, c)
			}
		}
		return nil, &ErrIncomplete{Missing: missing, K: b.k}
	}
	b.built = true

	t := &Table{
		k:         b.k,
		vectors:   b.vectors,
		postings:  make(map[string][]Posting),
		normalize: b.opts.normalize,
	}

	fp := hash.NewFingerprint()
	fp.Uint64(uint64(b.k))

	// Clusters are visited in index order, so every posting list ends up
	// sorted by cluster without an extra sort.
	for c, vec := range b.vectors {
		terms := make([]string, 0, len(vec))
		for term := range vec {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		for _, term := range terms {
			w := vec[term]
			t.postings[term] = append(t.postings[term], Posting{Cluster: c, Weight: w})
			fp.Uint64(uint64(c))
			fp.Text(term)
			fp.Float64(w)
		}
		t.entries += len(terms)
	}
	t.fingerprint = fp.Sum32()

	b.vectors = nil
	return t, nil
}

// FromMaps builds a Table from one term->weight map per cluster. It is meant
// for fixtures and small, in-process tables.
func FromMaps(vectors []map[string]float64, optFns ...BuilderOption) (*Table, error) {
	b := NewBuilder(len(vectors), optFns...)
	for c, vec := range vectors {
		for term, w := range vec {
			if err := b.Add(c, term, w); err != nil {
				return nil, err
			}
		}
	}
	return b.Build()
}
