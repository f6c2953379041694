package compiler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CompileAll compiles every text with at most limit compiles in flight.
// Results are returned in input order. limit <= 0 means unbounded.
//
// Compile itself never fails, so the only error is ctx's: once ctx is done
// no further compiles are started.
func CompileAll(ctx context.Context, texts []string, opts Options, limit int) ([]Result, error) {
	results := make([]Result, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Compile(text, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
