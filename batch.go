package routeplanner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PlanBatch plans every query concurrently on up to NumberOfWorkers goroutines.
//
// Results are returned in query order. The first failing query cancels the rest and its
// error is returned. Exhausted searches are not failures. Paths are not written back to
// the model; graph.NeighborsOf must be safe for concurrent use.
func PlanBatch[NodeType comparable](
	contextObject context.Context,
	graph GraphModel[NodeType],
	queries []Query,
	options ...Option,
) ([]Result[NodeType], error) {
	if graph == nil {
		return nil, ErrNilModel
	}
	searchOptions, err := applyOptions(options)
	if err != nil {
		return nil, err
	}

	results := make([]Result[NodeType], len(queries))
	group, groupContext := errgroup.WithContext(contextObject)
	group.SetLimit(searchOptions.NumberOfWorkers)
	for i, query := range queries {
		group.Go(func() error {
			result, err := plan(groupContext, graph, query, searchOptions, false)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
