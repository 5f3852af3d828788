// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	const size = 3
	p := newWorkerPool(size)
	defer p.close()

	var running, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := p.submit(context.Background(), func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		})
		if err != nil {
			t.Fatalf("submit() error = %v", err)
		}
	}
	wg.Wait()

	if got := peak.Load(); got > size {
		t.Errorf("peak concurrency = %d, want <= %d", got, size)
	}
}

func TestWorkerPool_SubmitHonorsContext(t *testing.T) {
	p := newWorkerPool(1)

	release := make(chan struct{})
	if err := p.submit(context.Background(), func() { <-release }); err != nil {
		t.Fatalf("submit() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.submit(ctx, func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("submit() error = %v, want DeadlineExceeded", err)
	}

	close(release)
	p.close()
	p.close()
}
