package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/weiihann/locktest/primitive"
)

// NoAffinity marks a worker that is not bound to a CPU.
const NoAffinity = -1

// Worker performs the protected-increment loop of one run. Workers are
// created fresh per run and owned by the Runner.
type Worker struct {
	ID       int
	Affinity int

	iterations int
	prim       primitive.Primitive
	// guard protects the counter when prim admits more than one holder.
	guard   *sync.Mutex
	counter *Counter
	pin     bool
	logger  *slog.Logger

	completed atomic.Bool
	done      chan struct{}
	once      sync.Once

	// Written by the worker goroutine before completion is published and
	// read by the Runner only after observing it.
	finished int
	err      error
}

// Completed reports whether the worker has finished. A true result
// happens-after every counter mutation made by the worker.
func (w *Worker) Completed() bool {
	return w.completed.Load()
}

// Done is closed when the worker finishes.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Finished returns the number of increments the worker made. Only valid
// once Completed reports true.
func (w *Worker) Finished() int {
	return w.finished
}

// Err returns why the worker stopped early, if it did. Only valid once
// Completed reports true.
func (w *Worker) Err() error {
	return w.err
}

func (w *Worker) run(ctx context.Context, start <-chan struct{}) {
	defer w.signal()

	if w.pin && w.Affinity != NoAffinity {
		if err := pinThread(w.Affinity); err != nil {
			w.logger.Debug("failed to pin worker",
				slog.Int("worker", w.ID),
				slog.Int("cpu", w.Affinity),
				slog.String("error", err.Error()),
			)
		}
	}

	<-start

	stop := ctx.Done()

	for w.finished < w.iterations {
		select {
		case <-stop:
			w.err = fmt.Errorf("worker %d stopped after %d iterations: %w: %w",
				w.ID, w.finished, ErrInterrupted, ctx.Err())

			return
		default:
		}

		if err := w.prim.Acquire(ctx); err != nil {
			w.err = fmt.Errorf("worker %d after %d iterations: %w",
				w.ID, w.finished, err)

			return
		}

		if w.guard != nil {
			w.guard.Lock()
			w.counter.Inc()
			w.guard.Unlock()
		} else {
			w.counter.Inc()
		}

		w.prim.Release()
		w.finished++
	}
}

func (w *Worker) signal() {
	w.once.Do(func() {
		w.completed.Store(true)
		close(w.done)
	})
}

// Launcher starts the goroutine backing a worker. An error from Launch
// stands for the host refusing to create another thread; run must not have
// been started in that case.
type Launcher interface {
	Launch(w *Worker, run func()) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(w *Worker, run func()) error

// Launch calls f(w, run).
func (f LauncherFunc) Launch(w *Worker, run func()) error {
	return f(w, run)
}

type goLauncher struct{}

func (goLauncher) Launch(_ *Worker, run func()) error {
	go run()

	return nil
}
