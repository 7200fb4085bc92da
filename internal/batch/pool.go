package batch

import (
	"context"
	"sync"
	"time"
)

type workFunc func(ctx context.Context, item WorkItem) ItemResult

// dispatch runs fn over items on a fixed pool of workers. Results arrive in
// completion order; the channel closes after the last one. Items picked up
// after ctx is done fail with the context error without running fn.
func dispatch(ctx context.Context, items []WorkItem, workers int, fn workFunc) <-chan ItemResult {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan WorkItem)
	results := make(chan ItemResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if err := ctx.Err(); err != nil {
					results <- ItemResult{
						ClipID:  item.ClipID,
						Status:  StatusFailed,
						Message: err.Error(),
						Err:     err,
					}
					continue
				}
				started := time.Now()
				res := fn(ctx, item)
				res.ClipID = item.ClipID
				res.Duration = time.Since(started)
				results <- res
			}
		}()
	}

	go func() {
		for _, item := range items {
			jobs <- item
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()
	return results
}
