// Package semaphore provides the counting semaphore the framework lock is
// built from. Acquire blocks until a permit is free or ctx is done.
package semaphore

import (
	"context"

	xsem "golang.org/x/sync/semaphore"
)

// Semaphore is a counting semaphore with a fixed number of permits.
type Semaphore struct {
	w       *xsem.Weighted
	permits int64
}

// New returns a semaphore holding permits free permits. permits below one is
// treated as one, so New(1) and New(0) both yield a binary semaphore.
func New(permits int64) *Semaphore {
	if permits < 1 {
		permits = 1
	}
	return &Semaphore{w: xsem.NewWeighted(permits), permits: permits}
}

// Acquire takes one permit, blocking until one is available. It returns
// ctx.Err() if ctx is done first; no permit is held in that case.
func (s *Semaphore) Acquire(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}

// TryAcquire takes one permit without blocking.
func (s *Semaphore) TryAcquire() bool {
	return s.w.TryAcquire(1)
}

// Release returns one permit. Releasing more permits than were acquired
// panics.
func (s *Semaphore) Release() {
	s.w.Release(1)
}

// Permits returns the capacity the semaphore was created with.
func (s *Semaphore) Permits() int64 { return s.permits }
