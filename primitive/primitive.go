// Package primitive provides the synchronization primitives exercised by
// the lock-contention harness.
package primitive

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names a primitive variant.
type Kind string

const (
	KindExclusiveLock Kind = "exclusive-lock"
	KindSemaphore     Kind = "semaphore"
)

// ErrInterrupted is returned by Acquire when the caller was asked to stop
// before access was granted.
var ErrInterrupted = errors.New("acquire interrupted")

// Primitive guards the shared counter. Acquire establishes exclusive (or
// permit-limited) access and Release relinquishes it.
type Primitive interface {
	Acquire(ctx context.Context) error
	Release()
	Kind() Kind
	// Exclusive reports whether at most one holder can be inside the
	// critical section at a time.
	Exclusive() bool
}

// Kinds returns the supported primitive kinds in report order.
func Kinds() []Kind {
	return []Kind{KindExclusiveLock, KindSemaphore}
}

// ParseKind resolves a primitive name. The attribute names of the original
// locktest device (spinlock, sem) are accepted as aliases.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "exclusive-lock", "exclusive", "lock", "mutex", "spinlock":
		return KindExclusiveLock, nil
	case "semaphore", "sem":
		return KindSemaphore, nil
	default:
		return "", fmt.Errorf("unknown primitive %q", name)
	}
}

// New returns a fully available primitive of the given kind. Permits is
// only meaningful for KindSemaphore and must be at least 1.
func New(kind Kind, permits int) (Primitive, error) {
	switch kind {
	case KindExclusiveLock:
		return NewExclusiveLock(), nil
	case KindSemaphore:
		sem, err := NewSemaphore(permits)
		if err != nil {
			return nil, err
		}

		return sem, nil
	default:
		return nil, fmt.Errorf("unknown primitive %q", kind)
	}
}
