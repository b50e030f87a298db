package sufrindex

import (
	"context"

	"github.com/shenwei356/sufrindex/internal/batch"
	"github.com/shenwei356/sufrindex/internal/intwidth"
	"github.com/shenwei356/sufrindex/internal/search"
)

// runBatch is the shared dispatch loop behind Count/Locate/Extract: it
// fans out over opts.Queries via internal/batch, builds one search.Kernel
// per query, runs FindRange, and hands the resulting range to fn to turn
// into the caller's result type. A query longer than the threshold a
// compressed resident SA was subsampled for is searched against the full
// SA on disk instead, since the subsample cannot tell apart suffixes that
// differ only beyond that threshold.
func runBatch[W intwidth.Uint, R any](ctx context.Context, idx *Index[W], opts SearchOptions, fn func(k *search.Kernel[W], i int, query []byte, left, right int) (R, error)) ([]R, error) {
	return batch.Run(ctx, opts.Queries, opts.workers(), func(ctx context.Context, i int, query []byte) (R, error) {
		var zero R
		lowMemory := opts.LowMemory
		if !lowMemory {
			idx.mu.Lock()
			lowMemory = len(idx.resident.Ranks) > 0 && len(query) > idx.residentQ
			idx.mu.Unlock()
		}
		k, closeFn, err := idx.newKernel(lowMemory)
		if err != nil {
			return zero, err
		}
		defer closeFn()

		left, right, err := k.FindRange(query)
		if err != nil {
			return zero, err
		}
		return fn(k, i, query, left, right)
	})
}
