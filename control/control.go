// Package control is the configuration and trigger surface over the
// harness. It keeps the settings for the next run and the outcome of the
// last one.
package control

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/weiihann/locktest/harness"
	"github.com/weiihann/locktest/primitive"
	"github.com/weiihann/locktest/report"
)

// Basic-test parameters, fixed regardless of the configured values.
const (
	BasicThreads    = 10
	BasicIterations = 100000
)

// Controller holds the configuration applied to the next run.
type Controller struct {
	runner *harness.Runner
	logger *slog.Logger

	mu   sync.Mutex
	cfg  harness.Config
	last *harness.Result
}

// New creates a Controller with harness.DefaultConfig.
func New(runner *harness.Runner, logger *slog.Logger) *Controller {
	return &Controller{
		runner: runner,
		logger: logger,
		cfg:    harness.DefaultConfig(),
	}
}

// Config returns a copy of the current configuration.
func (c *Controller) Config() harness.Config {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cfg
}

// Threads returns the configured worker count.
func (c *Controller) Threads() int {
	return c.Config().Threads
}

// Iterations returns the configured per-worker increment count.
func (c *Controller) Iterations() int {
	return c.Config().Iterations
}

// Permits returns the configured semaphore capacity.
func (c *Controller) Permits() int {
	return c.Config().Permits
}

// SetThreads sets the worker count for the next run.
func (c *Controller) SetThreads(n int) error {
	return c.update(func(cfg *harness.Config) { cfg.Threads = n })
}

// SetIterations sets the per-worker increment count for the next run.
func (c *Controller) SetIterations(n int) error {
	return c.update(func(cfg *harness.Config) { cfg.Iterations = n })
}

// SetPermits sets the semaphore capacity for the next run.
func (c *Controller) SetPermits(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: permits must be >= 1, got %d",
			harness.ErrInvalidConfig, n)
	}

	return c.update(func(cfg *harness.Config) { cfg.Permits = n })
}

// SetTimeout sets the run deadline for the next run. Zero disables it.
func (c *Controller) SetTimeout(d time.Duration) error {
	return c.update(func(cfg *harness.Config) { cfg.Timeout = d })
}

// update applies fn to a copy of the config and keeps it only if the
// result validates.
func (c *Controller) update(fn func(*harness.Config)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cfg
	fn(&next)

	if err := next.Validate(); err != nil {
		return err
	}

	c.cfg = next

	c.logger.Info("configuration updated",
		slog.Int("threads", next.Threads),
		slog.Int("iterations", next.Iterations),
		slog.Int("permits", next.Permits),
		slog.Duration("timeout", next.Timeout),
	)

	return nil
}

// Run triggers a run for the named primitive and blocks until it
// completes. Started runs are recorded as the last result even when they
// return an error.
func (c *Controller) Run(ctx context.Context, name string) (*harness.Result, error) {
	kind, err := primitive.ParseKind(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", harness.ErrInvalidConfig, err)
	}

	cfg := c.Config()

	result, err := c.runner.Run(ctx, kind, cfg)
	if result != nil {
		c.mu.Lock()
		c.last = result
		c.mu.Unlock()
	}

	return result, err
}

// Last returns the last observed counter value and pass status. ok is
// false before the first run.
func (c *Controller) Last() (observed int64, passed bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return 0, false, false
	}

	return c.last.Observed, c.last.Passed, true
}

// LastResult returns a copy of the last run's result, or nil.
func (c *Controller) LastResult() *harness.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return nil
	}

	r := *c.last

	return &r
}

// Basic runs every primitive with BasicThreads workers of BasicIterations
// each and writes the text report to w. The configured values and the last
// result are left untouched.
func (c *Controller) Basic(ctx context.Context, w io.Writer) error {
	fmt.Fprintf(w, "Using %d bytes long variable for test\n", harness.CounterBytes)

	cfg := harness.Config{
		Threads:    BasicThreads,
		Iterations: BasicIterations,
		Permits:    1,
	}

	results := make([]harness.Result, 0, len(primitive.Kinds()))

	for _, kind := range primitive.Kinds() {
		result, err := c.runner.Run(ctx, kind, cfg)
		if result == nil {
			return fmt.Errorf("basic %s test: %w", kind, err)
		}

		results = append(results, *result)
	}

	return report.Text(w, results)
}
