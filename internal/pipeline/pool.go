// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"sync"
)

// forEachPage runs fn for pages 1..total across a bounded pool of
// workers. Page work is independent, so ordering between pages is
// unconstrained; the first error wins, in-flight pages run to
// completion, and no further page starts after a failure or a context
// cancellation. onDone receives the count of completed pages, which is
// monotone even when pages finish out of order.
func (p *Pipeline) forEachPage(ctx context.Context, total int, fn func(page int) error, onDone func(done int)) error {
	workers := p.cfg.Workers
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	jobs := make(chan int)
	results := make(chan error)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				results <- fn(page)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for page := 1; page <= total; page++ {
			select {
			case jobs <- page:
			case <-dispatchCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	done := 0
	var firstErr error
	for err := range results {
		if err != nil {
			if firstErr == nil {
				firstErr = err
				stopDispatch()
			}
			continue
		}
		done++
		onDone(done)
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
