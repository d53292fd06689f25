package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weiihann/locktest/primitive"
)

// JoinMode selects how the Runner waits for workers.
type JoinMode int

const (
	// JoinChannel blocks on each worker's done channel.
	JoinChannel JoinMode = iota
	// JoinPoll checks each worker's completion flag every PollInterval,
	// for hosts without a blocking join.
	JoinPoll
)

// State is the Runner's lifecycle position.
type State int32

const (
	// StateIdle is the state of a Runner that has never run.
	StateIdle State = iota
	// StateConfiguring covers validation, counter reset and worker creation.
	StateConfiguring
	// StateRunning lasts from the start gate opening until every worker joined.
	StateRunning
	// StateCompleted follows a finished run; a new run may begin.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Runner executes benchmark runs one at a time.
type Runner struct {
	Join         JoinMode
	PollInterval time.Duration
	// Pin binds each worker's thread to its assigned CPU.
	Pin      bool
	Launcher Launcher
	Logger   *slog.Logger

	state   atomic.Int32
	counter Counter
}

// NewRunner creates a Runner that joins through channels and pins workers.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		Join:         JoinChannel,
		PollInterval: time.Millisecond,
		Pin:          true,
		Launcher:     goLauncher{},
		Logger:       logger,
	}
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Run executes one benchmark with the given primitive and config.
//
// Invalid input returns ErrInvalidConfig and a concurrent call returns
// ErrBusy; neither creates a worker nor returns a Result. A run that
// started always returns a Result. If it ended early (spawn failure,
// interruption, timeout) the error is also returned and recorded in the
// Result.
func (r *Runner) Run(
	ctx context.Context,
	kind primitive.Kind,
	cfg Config,
) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prim, err := primitive.New(kind, cfg.permits())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if !r.begin() {
		return nil, ErrBusy
	}
	defer r.state.Store(int32(StateCompleted))

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logger := r.logger().With(slog.String("primitive", string(kind)))

	r.counter.Reset()

	var guard *sync.Mutex
	if !prim.Exclusive() {
		guard = new(sync.Mutex)
	}

	cpus := onlineCPUs()
	affinity := placement(cfg.Threads, cpus)

	logger.Info("starting run",
		slog.Int("threads", cfg.Threads),
		slog.Int("iterations", cfg.Iterations),
		slog.Int("permits", cfg.permits()),
		slog.Int("cpus", len(cpus)),
		slog.Bool("pin", r.Pin),
	)

	launcher := r.Launcher
	if launcher == nil {
		launcher = goLauncher{}
	}

	start := make(chan struct{})
	workers := make([]*Worker, 0, cfg.Threads)

	var spawnErr error

	for i := 0; i < cfg.Threads; i++ {
		w := &Worker{
			ID:         i,
			Affinity:   affinity[i],
			iterations: cfg.Iterations,
			prim:       prim,
			guard:      guard,
			counter:    &r.counter,
			pin:        r.Pin,
			logger:     logger,
			done:       make(chan struct{}),
		}

		if err := launcher.Launch(w, func() { w.run(ctx, start) }); err != nil {
			spawnErr = fmt.Errorf("%w after %d of %d workers: %w",
				ErrSpawnFailed, i, cfg.Threads, err)

			logger.Error("failed to create worker",
				slog.Int("worker", i),
				slog.Int("cpu", affinity[i]),
				slog.String("error", err.Error()),
			)

			break
		}

		workers = append(workers, w)
	}

	r.state.Store(int32(StateRunning))

	wallStart := time.Now()

	close(start)
	r.wait(workers)

	elapsed := time.Since(wallStart)

	result := r.verify(ctx, prim, cfg, workers, spawnErr)
	result.ElapsedMs = elapsed.Milliseconds()

	logger.Info("run finished",
		slog.Int64("observed", result.Observed),
		slog.Int64("expected", result.Expected),
		slog.Bool("passed", result.Passed),
		slog.Duration("wall_time", elapsed),
	)

	return result, result.Err
}

// begin moves the Runner into StateConfiguring unless a run is already in
// flight.
func (r *Runner) begin() bool {
	for {
		s := r.state.Load()
		if State(s) == StateConfiguring || State(s) == StateRunning {
			return false
		}

		if r.state.CompareAndSwap(s, int32(StateConfiguring)) {
			return true
		}
	}
}

// wait returns once every worker has signalled completion. Workers are
// joined in reverse creation order.
func (r *Runner) wait(workers []*Worker) {
	if r.Join == JoinPoll {
		interval := r.PollInterval
		if interval <= 0 {
			interval = time.Millisecond
		}

		for i := len(workers) - 1; i >= 0; i-- {
			for !workers[i].Completed() {
				time.Sleep(interval)
			}
		}

		return
	}

	for i := len(workers) - 1; i >= 0; i-- {
		<-workers[i].Done()
	}
}

func (r *Runner) verify(
	ctx context.Context,
	prim primitive.Primitive,
	cfg Config,
	workers []*Worker,
	spawnErr error,
) *Result {
	var (
		finished int64
		stopped  int
		firstErr error
	)

	for _, w := range workers {
		finished += int64(w.Finished())

		if err := w.Err(); err != nil {
			stopped++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	expected := int64(len(workers)) * int64(cfg.Iterations)
	if stopped > 0 {
		expected = finished
	}

	var stopErr error

	switch {
	case stopped == 0:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		stopErr = fmt.Errorf("%w: %d of %d workers stopped early",
			ErrTimeout, stopped, len(workers))
	default:
		stopErr = fmt.Errorf("%d of %d workers stopped early: %w",
			stopped, len(workers), firstErr)
	}

	permits := 1
	if sem, ok := prim.(*primitive.Semaphore); ok {
		permits = sem.Permits()
	}

	err := errors.Join(spawnErr, stopErr)
	observed := r.counter.Load()

	return &Result{
		Primitive:   string(prim.Kind()),
		Permits:     permits,
		Threads:     cfg.Threads,
		Started:     len(workers),
		Iterations:  cfg.Iterations,
		Observed:    observed,
		Expected:    expected,
		Consistent:  observed == expected,
		Passed:      observed == expected && err == nil,
		Interrupted: stopped,
		ErrorKind:   KindOf(err),
		Err:         err,
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return r.Logger
}
