package core

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs data-parallel passes over an index range. Every call to
// ParallelFor is a full barrier: it returns only after all work items finished.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// ParallelFor calls fn for every chunk [begin, end) of [0, n). Chunks never overlap,
// so fn may write to per-index slots of shared slices without locking.
func (wp *WorkerPool) ParallelFor(n, chunk int, fn func(begin, end int)) {
	if n <= 0 {
		return
	}
	if chunk <= 0 {
		chunk = 1
	}

	if wp.numWorkers == 1 || n <= chunk {
		fn(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(wp.numWorkers)
	for begin := 0; begin < n; begin += chunk {
		begin := begin
		end := min(begin+chunk, n)
		g.Go(func() error {
			fn(begin, end)
			return nil
		})
	}
	_ = g.Wait() // work items cannot fail
}
