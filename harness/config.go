package harness

import (
	"fmt"
	"runtime"
	"time"
)

// DefaultIterations is the per-worker increment count used when none is
// configured.
const DefaultIterations = 100000

// Config holds the parameters of a single run. A run works on its own copy,
// so changing a Config after Run has started has no effect on that run.
type Config struct {
	Threads    int
	Iterations int
	// Permits is the semaphore capacity. Zero means 1. Ignored by the
	// exclusive lock.
	Permits int
	// Timeout bounds the whole run. Zero disables the deadline.
	Timeout time.Duration
}

// DefaultConfig returns one worker per logical CPU and DefaultIterations.
func DefaultConfig() Config {
	return Config{
		Threads:    runtime.NumCPU(),
		Iterations: DefaultIterations,
		Permits:    1,
	}
}

// Validate reports ErrInvalidConfig for non-positive counts.
func (c Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads must be >= 1, got %d",
			ErrInvalidConfig, c.Threads)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be >= 1, got %d",
			ErrInvalidConfig, c.Iterations)
	}
	if c.Permits < 0 {
		return fmt.Errorf("%w: permits must be >= 1, got %d",
			ErrInvalidConfig, c.Permits)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %s",
			ErrInvalidConfig, c.Timeout)
	}

	return nil
}

func (c Config) permits() int {
	if c.Permits == 0 {
		return 1
	}

	return c.Permits
}
