package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPool runs independent capability queries with bounded
// parallelism. A semaphore limits outstanding queries; results are
// collected as they complete.
type WorkerPool struct {
	maxConcurrent int
	logger        *zap.Logger
}

// NewWorkerPool creates a pool. maxConcurrent below 1 falls back to 4.
func NewWorkerPool(maxConcurrent int, logger *zap.Logger) *WorkerPool {
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &WorkerPool{
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("query-pool"),
	}
}

// workItem is one unit of work keyed for tracking.
type workItem[T any] struct {
	ID      string
	Execute func(ctx context.Context) (T, error)
}

// workResult pairs a work item's ID with its outcome.
type workResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// runAll executes all items with bounded parallelism and returns
// results in completion order. One item's failure never cancels its
// siblings; context cancellation surfaces as that item's error.
func runAll[T any](ctx context.Context, pool *WorkerPool, items []workItem[T]) []workResult[T] {
	if len(items) == 0 {
		return nil
	}

	resultsChan := make(chan workResult[T], len(items))
	sem := make(chan struct{}, pool.maxConcurrent)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item workItem[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- workResult[T]{ID: item.ID, Result: zero, Err: ctx.Err()}
				return
			}

			result, err := item.Execute(ctx)
			resultsChan <- workResult[T]{ID: item.ID, Result: result, Err: err}
		}(item)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]workResult[T], 0, len(items))
	for result := range resultsChan {
		results = append(results, result)
	}
	return results
}
