package primitive

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Semaphore is a counting semaphore. Waiters are granted permits in FIFO
// order.
type Semaphore struct {
	sem     *semaphore.Weighted
	permits int
}

// NewSemaphore returns a semaphore with all permits available.
func NewSemaphore(permits int) (*Semaphore, error) {
	if permits < 1 {
		return nil, fmt.Errorf("semaphore permits must be >= 1, got %d", permits)
	}

	return &Semaphore{
		sem:     semaphore.NewWeighted(int64(permits)),
		permits: permits,
	}, nil
}

// Acquire blocks until a permit is available. If ctx is done first, no
// permit is taken and the returned error wraps ErrInterrupted and the
// context's error.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	return nil
}

// Release returns a permit.
func (s *Semaphore) Release() {
	s.sem.Release(1)
}

// Permits returns the semaphore's capacity.
func (s *Semaphore) Permits() int {
	return s.permits
}

// Kind returns KindSemaphore.
func (s *Semaphore) Kind() Kind { return KindSemaphore }

// Exclusive reports whether the semaphore has a single permit.
func (s *Semaphore) Exclusive() bool { return s.permits == 1 }
