// Package batch implements the parallel batch dispatcher (C6): run a
// worker function over a slice of queries concurrently, fail fast on the
// first error, and restore the caller's submission order in the result
// slice regardless of completion order.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run applies fn to every element of queries concurrently (bounded by
// workers, or GOMAXPROCS-like unboundedness if workers <= 0), and returns
// the results in the same order as queries. fn receives each query's
// submission index so callers can tag results (e.g. SearchResult.QueryNum)
// without threading their own counter through a closure. If fn returns an
// error for any query, Run cancels the remaining work via ctx and returns
// that error; the first error encountered wins, matching errgroup.Group's
// semantics.
func Run[Q, R any](ctx context.Context, queries []Q, workers int, fn func(ctx context.Context, i int, q Q) (R, error)) ([]R, error) {
	results := make([]R, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			r, err := fn(gctx, i, q)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
