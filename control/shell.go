package control

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/weiihann/locktest/harness"
	"github.com/weiihann/locktest/report"
)

const shellHelp = `commands:
  threads [N]        show or set the worker count
  iters [N]          show or set iterations per worker
  permits [N]        show or set semaphore permits
  timeout [DURATION] show or set the run deadline (0 disables)
  run_spinlock       run the exclusive-lock test
  run_semaphore      run the semaphore test
  run KIND           run the named primitive
  run_basic          run the fixed 10x100000 test for every primitive
  locktest_counter   show the counter value of the last run
  status             show the configuration and last verdict
  quit               end the session
`

// Shell reads one command per line from r and writes responses to w until
// r is exhausted, a quit command is read, or ctx is done. Command errors
// are written to w and do not end the session.
func (c *Controller) Shell(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}

		if err := c.exec(ctx, w, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}

	return nil
}

func (c *Controller) exec(ctx context.Context, w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "threads":
		return intAttr(w, args, c.Threads, c.SetThreads)
	case "iters", "iterations":
		return intAttr(w, args, c.Iterations, c.SetIterations)
	case "permits":
		return intAttr(w, args, c.Permits, c.SetPermits)
	case "timeout":
		if len(args) == 0 {
			fmt.Fprintln(w, c.Config().Timeout)

			return nil
		}

		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse <%s> into duration", args[0])
		}

		return c.SetTimeout(d)
	case "run_spinlock", "run_exclusive":
		return c.runAndReport(ctx, w, "exclusive-lock")
	case "run_semaphore":
		return c.runAndReport(ctx, w, "semaphore")
	case "run":
		if len(args) != 1 {
			return fmt.Errorf("usage: run KIND")
		}

		return c.runAndReport(ctx, w, args[0])
	case "run_basic":
		return c.Basic(ctx, w)
	case "locktest_counter", "counter":
		observed, _, _ := c.Last()
		fmt.Fprintln(w, observed)

		return nil
	case "status":
		c.status(w)

		return nil
	case "help":
		fmt.Fprint(w, shellHelp)

		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (c *Controller) runAndReport(ctx context.Context, w io.Writer, name string) error {
	result, err := c.Run(ctx, name)
	if result == nil {
		return err
	}

	return report.Text(w, []harness.Result{*result})
}

func (c *Controller) status(w io.Writer) {
	cfg := c.Config()
	fmt.Fprintf(w, "threads=%d iters=%d permits=%d timeout=%s state=%s\n",
		cfg.Threads, cfg.Iterations, cfg.Permits, cfg.Timeout, c.runner.State())

	if last := c.LastResult(); last != nil {
		fmt.Fprintf(w, "last: %s\n", report.Line(*last))
	} else {
		fmt.Fprintln(w, "last: none")
	}
}

func intAttr(w io.Writer, args []string, get func() int, set func(int) error) error {
	if len(args) == 0 {
		fmt.Fprintln(w, get())

		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse <%s> into integer", args[0])
	}

	return set(n)
}
