// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"context"
	"sync"
)

// workerPool runs submitted jobs on a fixed set of goroutines.
// Submission blocks until a worker is free, so no job waits in a queue
// after its batch has given up.
type workerPool struct {
	jobs      chan func()
	wg        sync.WaitGroup
	size      int
	closeOnce sync.Once
}

func newWorkerPool(size int) *workerPool {
	p := &workerPool{
		jobs: make(chan func()),
		size: size,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// submit hands job to an idle worker, or returns ctx.Err() if ctx ends first.
// It must not be called after close.
func (p *workerPool) submit(ctx context.Context, job func()) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting jobs and waits for running jobs to finish.
func (p *workerPool) close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
