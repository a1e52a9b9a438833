package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ExecuteAll runs the pipeline for every scene path with at most parallel
// scenes in flight (DefaultParallelism when parallel <= 0). Results are
// returned in the order of paths. The first failure cancels the remaining
// scenes and is returned with the path that caused it.
func (r *Runner) ExecuteAll(ctx context.Context, paths []string, opts Options, parallel int) ([]*Result, error) {
	if parallel <= 0 {
		parallel = DefaultParallelism
	}
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, path := range paths {
		g.Go(func() error {
			o := opts
			o.ScenePath = path
			o.Source = nil
			o.Formats = append([]string(nil), opts.Formats...)
			res, err := r.Execute(ctx, o)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
