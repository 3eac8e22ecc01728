package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/hupe1980/termcluster/aggregate"
)

var errNothingToReduce = errors.New("engine: no states to reduce")

// Reduce merges states into a single accumulator following shape and returns
// it. The input slice is reordered; the states other than the returned one
// must not be used afterwards. rng is only consulted for Random and may be
// nil otherwise.
func Reduce(states []*aggregate.Accumulator, shape MergeShape, rng *rand.Rand) (*aggregate.Accumulator, error) {
	if len(states) == 0 {
		return nil, errNothingToReduce
	}

	switch shape {
	case LeftDeep:
		root := states[0]
		for _, s := range states[1:] {
			if err := root.Merge(s); err != nil {
				return nil, err
			}
		}
		return root, nil

	case Balanced:
		for len(states) > 1 {
			next := states[:0]
			for i := 0; i < len(states); i += 2 {
				if i+1 < len(states) {
					if err := states[i].Merge(states[i+1]); err != nil {
						return nil, err
					}
				}
				next = append(next, states[i])
			}
			states = next
		}
		return states[0], nil

	case Random:
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		for len(states) > 1 {
			last := len(states) - 1
			i := rng.Intn(len(states))
			j := rng.Intn(last)
			if j >= i {
				j++
			}
			if err := states[i].Merge(states[j]); err != nil {
				return nil, err
			}
			states[j] = states[last]
			states = states[:last]
		}
		return states[0], nil

	default:
		return nil, fmt.Errorf("engine: unknown merge shape %v", shape)
	}
}
