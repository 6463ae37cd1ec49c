package matcher

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when a Runner is built with a non-positive count.
const DefaultWorkers = 8

// Runner executes work over round-robin partitions of a slice with a fixed
// number of workers. A Runner with one worker is the sequential path.
type Runner struct {
	workers int
}

func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{workers: workers}
}

// Sequential returns a single-worker runner.
func Sequential() *Runner { return &Runner{workers: 1} }

func (r *Runner) Workers() int { return r.workers }

// Partition assigns items[i] to part i mod workers. It always returns
// exactly workers parts; some may be empty.
func Partition[T any](items []T, workers int) [][]T {
	if workers <= 0 {
		workers = 1
	}
	parts := make([][]T, workers)
	for i, it := range items {
		w := i % workers
		parts[w] = append(parts[w], it)
	}
	return parts
}

// Run calls fn once per non-empty partition, each in its own goroutine,
// and returns after every call has finished. The first error cancels the
// context passed to the other calls and is returned. Results are in
// worker order; empty partitions contribute nothing.
func Run[T, R any](ctx context.Context, r *Runner, items []T, fn func(ctx context.Context, part []T) (R, error)) ([]R, error) {
	parts := Partition(items, r.workers)
	results := make([]R, len(parts))
	ran := make([]bool, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		ran[i] = true
		g.Go(func() error {
			res, err := fn(gctx, part)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]R, 0, len(parts))
	for i, res := range results {
		if ran[i] {
			out = append(out, res)
		}
	}
	return out, nil
}
