package match

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/ssdc/internal/signature"
)

// CompareManyAgainstKnown runs CompareAgainstKnown for every query
// concurrently, bounded by maxConcurrency, implementing the optional
// reader discipline spec.md §5 describes: many concurrent
// compare_against_known calls are allowed while no add is in flight.
// Callers must not call Add on the same Engine while this is running.
//
// handler is invoked from whichever goroutine finishes scoring a given
// query; per-query match order still follows spec.md §4.3 (window-major,
// then bucket order), but the interleaving of matches across different
// queries is no longer the call order, since queries now run in
// parallel. Serial callers needing the full cross-query ordering
// guarantee should use CompareAgainstKnown in a loop instead.
//
// maxConcurrency <= 0 is treated as 1 (fully serial, but still via this
// codepath, for callers that want one call site regardless of mode).
func (e *Engine) CompareManyAgainstKnown(ctx context.Context, queries []*signature.Signature, maxConcurrency int, handler Handler) error {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for _, query := range queries {
		query := query
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.CompareAgainstKnown(query, handler)
			return nil
		})
	}

	return g.Wait()
}
