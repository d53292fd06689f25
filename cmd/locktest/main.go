// Package main provides the CLI entry point for locktest, a lock-contention
// benchmark that checks shared-counter increments for lost updates.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/locktest/control"
	"github.com/weiihann/locktest/harness"
	"github.com/weiihann/locktest/primitive"
	"github.com/weiihann/locktest/report"
)

// errFailed marks a run whose verdict was already printed.
var errFailed = errors.New("benchmark failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}

		stop()
		os.Exit(1)
	}
}

type globalFlags struct {
	verbose bool
	poll    bool
	noPin   bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "locktest",
		Short: "Lock-contention benchmark harness",
		Long: `Locktest spawns worker threads that increment a shared counter under
an exclusive lock or a counting semaphore, then verifies that no update
was lost under contention.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pflags := root.PersistentFlags()
	pflags.BoolVarP(&g.verbose, "verbose", "v", false,
		"Enable debug logging")
	pflags.BoolVar(&g.poll, "poll", false,
		"Join workers by polling completion flags every 1ms")
	pflags.BoolVar(&g.noPin, "no-pin", false,
		"Do not bind worker threads to CPUs")

	root.AddCommand(
		newRunCmd(&g),
		newBasicCmd(&g),
		newShellCmd(&g),
	)

	return root
}

func (g *globalFlags) logger() *slog.Logger {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func (g *globalFlags) runner(logger *slog.Logger) *harness.Runner {
	runner := harness.NewRunner(logger)
	runner.Pin = !g.noPin

	if g.poll {
		runner.Join = harness.JoinPoll
	}

	return runner
}

func newRunCmd(g *globalFlags) *cobra.Command {
	defaults := harness.DefaultConfig()

	var (
		threads    int
		iterations int
		permits    int
		timeout    time.Duration
		format     string
	)

	cmd := &cobra.Command{
		Use:   "run [exclusive-lock|semaphore]...",
		Short: "Run the contention test for one or more primitives",
		Long: `Run the contention test for each named primitive in turn. With no
arguments every primitive is tested.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd.Context(), g, args, harness.Config{
				Threads:    threads,
				Iterations: iterations,
				Permits:    permits,
				Timeout:    timeout,
			}, format)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&threads, "threads", "t", defaults.Threads,
		"Number of worker threads")
	flags.IntVarP(&iterations, "iters", "n", defaults.Iterations,
		"Increments performed by each worker")
	flags.IntVar(&permits, "permits", 1,
		"Semaphore permits")
	flags.DurationVar(&timeout, "timeout", 0,
		"Run deadline (0 = none)")
	flags.StringVar(&format, "format", "text",
		"Output format: text, table, json")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	g *globalFlags,
	names []string,
	cfg harness.Config,
	format string,
) error {
	if format != "text" && format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}

	kinds := primitive.Kinds()
	if len(names) > 0 {
		kinds = kinds[:0:0]

		for _, name := range names {
			kind, err := primitive.ParseKind(name)
			if err != nil {
				return err
			}

			kinds = append(kinds, kind)
		}
	}

	logger := g.logger()
	runner := g.runner(logger)

	results := make([]harness.Result, 0, len(kinds))
	failed := false

	for _, kind := range kinds {
		result, err := runner.Run(ctx, kind, cfg)
		if result == nil {
			return fmt.Errorf("run %s: %w", kind, err)
		}

		if !result.Passed {
			failed = true
		}

		results = append(results, *result)
	}

	var err error

	switch format {
	case "json":
		err = report.GenerateJSON(os.Stdout, results)
	case "table":
		err = report.Generate(os.Stdout, results)
	default:
		err = report.Text(os.Stdout, results)
	}

	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if failed {
		return errFailed
	}

	return nil
}

func newBasicCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "basic",
		Short: "Run the fixed 10x100000 test for every primitive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := g.logger()
			c := control.New(g.runner(logger), logger)

			return c.Basic(cmd.Context(), os.Stdout)
		},
	}
}

func newShellCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Read configuration and run commands from stdin",
		Long: `Start a command session on stdin. Settings persist between runs
within the session; type help for the command list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := g.logger()
			c := control.New(g.runner(logger), logger)

			logger.InfoContext(cmd.Context(), "initialized locktest",
				slog.Int("cpus", c.Threads()),
			)

			return c.Shell(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
