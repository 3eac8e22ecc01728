package engine

import (
	"fmt"

	"github.com/hupe1980/termcluster/codec"
	"github.com/hupe1980/termcluster/resource"
)

// MergeShape selects how the partial states of one group are combined.
type MergeShape int

const (
	// LeftDeep folds partials into the first one in partition order.
	LeftDeep MergeShape = iota
	// Balanced merges neighbours pairwise until one state remains.
	Balanced
	// Random merges randomly chosen pairs in random direction.
	Random
)

func (s MergeShape) String() string {
	switch s {
	case LeftDeep:
		return "left-deep"
	case Balanced:
		return "balanced"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("MergeShape(%d)", int(s))
	}
}

// ParseMergeShape parses the name returned by MergeShape.String.
func ParseMergeShape(name string) (MergeShape, error) {
	switch name {
	case "", "left-deep", "leftdeep":
		return LeftDeep, nil
	case "balanced":
		return Balanced, nil
	case "random":
		return Random, nil
	default:
		return 0, fmt.Errorf("engine: unknown merge shape %q", name)
	}
}

// Plan describes how Run distributes and recombines work.
type Plan struct {
	// Partitions is the number of update partitions. Values below 1 mean 1.
	Partitions int

	// Shape is the merge-tree shape used per group.
	Shape MergeShape

	// Seed drives row dealing and the Random shape. Rows are dealt
	// round-robin when Seed is 0.
	Seed int64

	// Codec encodes partial states between the update and merge stages.
	// Defaults to codec.Default.
	Codec codec.Codec

	// Controller bounds concurrent partitions and accumulator memory.
	// A nil controller runs every partition concurrently without limits.
	Controller *resource.Controller
}

func (p Plan) partitions() int {
	if p.Partitions < 1 {
		return 1
	}
	return p.Partitions
}

func (p Plan) codec() codec.Codec {
	if p.Codec == nil {
		return codec.Default
	}
	return p.Codec
}
