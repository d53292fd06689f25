package primitive

import (
	"context"
	"sync"
)

// ExclusiveLock is binary mutual exclusion backed by sync.Mutex.
type ExclusiveLock struct {
	mu sync.Mutex
}

// NewExclusiveLock returns an unlocked ExclusiveLock.
func NewExclusiveLock() *ExclusiveLock {
	return &ExclusiveLock{}
}

// Acquire blocks until the lock is available. It never fails; the context
// is ignored.
func (l *ExclusiveLock) Acquire(context.Context) error {
	l.mu.Lock()

	return nil
}

// Release unlocks.
func (l *ExclusiveLock) Release() {
	l.mu.Unlock()
}

// Kind returns KindExclusiveLock.
func (l *ExclusiveLock) Kind() Kind { return KindExclusiveLock }

// Exclusive always reports true.
func (l *ExclusiveLock) Exclusive() bool { return true }
