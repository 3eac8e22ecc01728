package testutil

import (
	"database/sql"
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/termcluster/aggregate"
	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/engine"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Term returns the i-th vocabulary term.
func Term(i int) string {
	return fmt.Sprintf("t%04d", i)
}

// Table generates a table with k clusters over a vocabulary of vocab terms.
// Each (cluster, term) pair is present with probability density. Weights are
// multiples of 0.25 in [0.25, 4], so sums of their products with Rows weights
// are exact and independent of addition order.
func (r *RNG) Table(k, vocab int, density float64) *centroid.Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := centroid.NewBuilder(k, centroid.WithNormalizer(centroid.Identity))
	for c := 0; c < k; c++ {
		for t := 0; t < vocab; t++ {
			if r.rand.Float64() >= density {
				continue
			}
			w := float64(1+r.rand.Intn(16)) / 4
			if err := b.Add(c, Term(t), w); err != nil {
				panic(err)
			}
		}
	}

	table, err := b.Build()
	if err != nil {
		panic(err)
	}
	return table
}

// Rows generates n rows spread over groups groups. Terms are drawn from a
// vocabulary slightly larger than vocab so that some miss every centroid.
// Weights are integers in [-3, 6]. Each of term and weight is null with
// probability nullRate.
func (r *RNG) Rows(n, groups, vocab int, nullRate float64) []engine.Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]engine.Row, n)
	for i := range rows {
		row := engine.Row{
			Group: fmt.Sprintf("g%03d", r.rand.Intn(groups)),
		}
		if r.rand.Float64() >= nullRate {
			row.Term = sql.NullString{String: Term(r.rand.Intn(vocab + vocab/10 + 1)), Valid: true}
		}
		if r.rand.Float64() >= nullRate {
			row.Weight = sql.NullFloat64{Float64: float64(r.rand.Intn(10) - 3), Valid: true}
		}
		rows[i] = row
	}
	return rows
}

// Sequential computes the assignment of every group with one accumulator per
// group and no partitioning.
func Sequential(table *centroid.Table, rows []engine.Row) (map[string]int, error) {
	accs := make(map[string]*aggregate.Accumulator)
	for _, row := range rows {
		acc, ok := accs[row.Group]
		if !ok {
			acc = aggregate.New(table)
			accs[row.Group] = acc
		}
		if err := acc.Update(row.Term, row.Weight); err != nil {
			return nil, err
		}
	}

	out := make(map[string]int, len(accs))
	for group, acc := range accs {
		cluster, err := acc.Finalize()
		if err != nil {
			return nil, err
		}
		out[group] = cluster
	}
	return out, nil
}

// Observation builds a non-null row.
func Observation(group, term string, weight float64) engine.Row {
	return engine.Row{
		Group:  group,
		Term:   sql.NullString{String: term, Valid: true},
		Weight: sql.NullFloat64{Float64: weight, Valid: true},
	}
}
