package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"spectra/pkg/platform/sentinel"
)

// ConcurrentResult tallies outcomes of RunConcurrent.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	Stale     int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.Stale
}

// RunConcurrent runs fn on n goroutines and buckets the returned errors.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, stale atomic.Int32

	for i := range n {
		wg.Go(func() {
			err := fn(i)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrStaleVersion):
				stale.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			default:
				errs.Add(1)
			}
		})
	}
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		Stale:     stale.Load(),
	}
}
