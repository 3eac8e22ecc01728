package engine

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/termcluster/aggregate"
	"github.com/hupe1980/termcluster/centroid"
)

// Row is one input row: the grouping key and one nullable observation.
type Row struct {
	Group  string
	Term   sql.NullString
	Weight sql.NullFloat64
}

// accumulatorOverhead approximates per-group bookkeeping beyond the K totals.
const accumulatorOverhead = 64

// cancelCheckInterval is how many rows a partition processes between
// context checks.
const cancelCheckInterval = 1024

// frame is the encoded partial state of one group from one partition.
type frame struct {
	group string
	data  []byte
}

// Run aggregates rows per group against table and returns the chosen cluster
// of every group that has at least one row.
//
// Rows are dealt to plan.Partitions partitions which run concurrently, bounded
// by plan.Controller. Every partial state is encoded with plan.Codec before it
// reaches the merge stage, where the partials of a group are combined in the
// shape given by plan.Shape and finalized once.
func Run(ctx context.Context, table *centroid.Table, rows []Row, plan Plan) (map[string]int, error) {
	if uint64(len(rows)) > math.MaxUint32 {
		return nil, ErrTooManyRows
	}

	parts := deal(len(rows), plan)

	frames, err := update(ctx, table, rows, parts, plan)
	if err != nil {
		return nil, err
	}
	return combine(ctx, table, frames, plan)
}

// deal distributes row ids over the plan's partitions.
func deal(n int, plan Plan) []*roaring.Bitmap {
	parts := make([]*roaring.Bitmap, plan.partitions())
	for i := range parts {
		parts[i] = roaring.New()
	}

	if plan.Seed == 0 {
		for i := 0; i < n; i++ {
			parts[i%len(parts)].Add(uint32(i))
		}
		return parts
	}

	rng := rand.New(rand.NewSource(plan.Seed))
	for i := 0; i < n; i++ {
		parts[rng.Intn(len(parts))].Add(uint32(i))
	}
	return parts
}

func update(ctx context.Context, table *centroid.Table, rows []Row, parts []*roaring.Bitmap, plan Plan) ([][]frame, error) {
	out := make([][]frame, len(parts))

	g, gctx := errgroup.WithContext(ctx)

	var scheduleErr error
	for i, part := range parts {
		// Stop scheduling once the run is canceled or a partition failed.
		if err := plan.Controller.AcquireWorker(gctx); err != nil {
			scheduleErr = err
			break
		}
		g.Go(func() error {
			defer plan.Controller.ReleaseWorker()

			frames, err := runPartition(gctx, table, rows, part, plan)
			if err != nil {
				return fmt.Errorf("engine: partition %d: %w", i, err)
			}
			out[i] = frames
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if scheduleErr != nil {
		return nil, scheduleErr
	}
	return out, nil
}

func runPartition(ctx context.Context, table *centroid.Table, rows []Row, part *roaring.Bitmap, plan Plan) ([]frame, error) {
	// Group discovery pass, so the partition's memory is reserved up front
	// in a single request.
	index := make(map[string]int)
	var groups []string
	it := part.Iterator()
	for it.HasNext() {
		g := rows[it.Next()].Group
		if _, ok := index[g]; !ok {
			index[g] = len(groups)
			groups = append(groups, g)
		}
	}
	if len(groups) == 0 {
		return nil, nil
	}

	need := int64(len(groups)) * (int64(table.K())*8 + accumulatorOverhead)
	if limit := plan.Controller.Config().MemoryLimitBytes; limit > 0 && need > limit {
		return nil, fmt.Errorf("%w: %d groups need %d bytes, limit %d", ErrPartitionTooLarge, len(groups), need, limit)
	}
	if err := plan.Controller.AcquireMemory(ctx, need); err != nil {
		return nil, err
	}
	defer plan.Controller.ReleaseMemory(need)

	accs := make([]*aggregate.Accumulator, len(groups))
	for i := range accs {
		accs[i] = aggregate.New(table)
	}

	n := 0
	it = part.Iterator()
	for it.HasNext() {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		n++

		row := rows[it.Next()]
		if err := accs[index[row.Group]].Update(row.Term, row.Weight); err != nil {
			return nil, err
		}
	}

	c := plan.codec()
	frames := make([]frame, len(groups))
	for i, acc := range accs {
		data, err := c.Marshal(acc.Partial())
		if err != nil {
			return nil, fmt.Errorf("encode group %q: %w", groups[i], err)
		}
		frames[i] = frame{group: groups[i], data: data}
	}
	return frames, nil
}

// combine decodes the frames of every group, merges them along the plan's
// tree shape and finalizes each group once. Frames are visited in partition
// order, so LeftDeep and Balanced trees are deterministic.
func combine(ctx context.Context, table *centroid.Table, parts [][]frame, plan Plan) (map[string]int, error) {
	byGroup := make(map[string][][]byte)
	var groups []string
	for _, frames := range parts {
		for _, f := range frames {
			if _, ok := byGroup[f.group]; !ok {
				groups = append(groups, f.group)
			}
			byGroup[f.group] = append(byGroup[f.group], f.data)
		}
	}

	c := plan.codec()
	rng := rand.New(rand.NewSource(plan.Seed))
	result := make(map[string]int, len(groups))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		states := make([]*aggregate.Accumulator, 0, len(byGroup[group]))
		for _, data := range byGroup[group] {
			var p aggregate.Partial
			if err := c.Unmarshal(data, &p); err != nil {
				return nil, fmt.Errorf("engine: decode group %q: %w", group, err)
			}
			acc := aggregate.New(table)
			if err := acc.MergePartial(&p); err != nil {
				return nil, fmt.Errorf("engine: group %q: %w", group, err)
			}
			states = append(states, acc)
		}

		root, err := Reduce(states, plan.Shape, rng)
		if err != nil {
			return nil, fmt.Errorf("engine: group %q: %w", group, err)
		}
		cluster, err := root.Finalize()
		if err != nil {
			return nil, fmt.Errorf("engine: group %q: %w", group, err)
		}
		result[group] = cluster
	}
	return result, nil
}
