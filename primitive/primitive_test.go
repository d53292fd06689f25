package primitive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"exclusive-lock", KindExclusiveLock, false},
		{"spinlock", KindExclusiveLock, false},
		{"  Mutex ", KindExclusiveLock, false},
		{"semaphore", KindSemaphore, false},
		{"sem", KindSemaphore, false},
		{"rwlock", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)

			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	lock, err := New(KindExclusiveLock, 0)
	if err != nil {
		t.Fatalf("New(exclusive-lock) failed: %v", err)
	}
	if lock.Kind() != KindExclusiveLock || !lock.Exclusive() {
		t.Errorf("lock kind = %q exclusive = %v", lock.Kind(), lock.Exclusive())
	}

	sem, err := New(KindSemaphore, 3)
	if err != nil {
		t.Fatalf("New(semaphore, 3) failed: %v", err)
	}
	if sem.Kind() != KindSemaphore {
		t.Errorf("kind = %q, want semaphore", sem.Kind())
	}
	if sem.Exclusive() {
		t.Error("semaphore with 3 permits reported exclusive")
	}

	if _, err := New(KindSemaphore, 0); err == nil {
		t.Error("expected error for zero permits")
	}
	if _, err := New("bogus", 1); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSemaphoreSinglePermitIsExclusive(t *testing.T) {
	sem, err := NewSemaphore(1)
	if err != nil {
		t.Fatalf("NewSemaphore failed: %v", err)
	}
	if !sem.Exclusive() {
		t.Error("semaphore with 1 permit should be exclusive")
	}
}

func TestSemaphoreBoundsHolders(t *testing.T) {
	const permits = 3

	sem, err := NewSemaphore(permits)
	if err != nil {
		t.Fatalf("NewSemaphore failed: %v", err)
	}

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := sem.Acquire(context.Background()); err != nil {
					t.Errorf("Acquire failed: %v", err)

					return
				}
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				sem.Release()
			}
		}()
	}
	wg.Wait()

	if maxSeen > permits {
		t.Errorf("observed %d concurrent holders, want <= %d", maxSeen, permits)
	}
}

func TestSemaphoreAcquireInterrupted(t *testing.T) {
	sem, err := NewSemaphore(1)
	if err != nil {
		t.Fatalf("NewSemaphore failed: %v", err)
	}

	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = sem.Acquire(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want wrapped DeadlineExceeded", err)
	}

	// The interrupted waiter must not have consumed the permit.
	sem.Release()
	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	sem.Release()
}

func TestSemaphoreCancelledBeforeAcquire(t *testing.T) {
	sem, err := NewSemaphore(2)
	if err != nil {
		t.Fatalf("NewSemaphore failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sem.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExclusiveLockIgnoresCancellation(t *testing.T) {
	lock := NewExclusiveLock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := lock.Acquire(ctx); err != nil {
		t.Fatalf("Acquire returned %v, want nil", err)
	}
	lock.Release()
}
