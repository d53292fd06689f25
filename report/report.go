// Package report formats lock-contention results as text lines, markdown
// tables, or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/weiihann/locktest/harness"
)

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed, color.Bold)
	errorColor = color.New(color.FgYellow)
)

// Line returns the one-line verdict for r. Consumers match on these exact
// shapes:
//
//	<primitive> test passed
//	<primitive> test failed: <observed> instead of <expected>
//
// The mismatch form is reserved for lost updates. A run that ended early
// without losing any update is reported as
//
//	<primitive> test aborted (<error kind>): <observed> of <requested> increments
func Line(r harness.Result) string {
	switch {
	case r.Passed:
		return fmt.Sprintf("%s test passed", r.Primitive)
	case !r.Consistent:
		return fmt.Sprintf("%s test failed: %d instead of %d",
			r.Primitive, r.Observed, r.Expected)
	default:
		return fmt.Sprintf("%s test aborted (%s): %d of %d increments",
			r.Primitive, r.ErrorKind, r.Observed,
			int64(r.Threads)*int64(r.Iterations))
	}
}

// Text writes one verdict line per result. A run that ended with an error
// gets an extra line describing it before the verdict.
func Text(w io.Writer, results []harness.Result) error {
	for _, r := range results {
		if r.Err != nil {
			if _, err := errorColor.Fprintf(w, "%s test error: %v\n",
				r.Primitive, r.Err); err != nil {
				return err
			}
		}

		c := passColor
		switch {
		case !r.Consistent:
			c = failColor
		case !r.Passed:
			c = errorColor
		}

		if _, err := c.Fprintln(w, Line(r)); err != nil {
			return err
		}
	}

	return nil
}

// Generate writes a markdown comparison table for the given results.
func Generate(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Lock Contention Results")
	fmt.Fprintln(w)

	if allPassed(results) {
		fmt.Fprintln(w, "Counters: **no lost updates**")
	} else {
		fmt.Fprintln(w, "Counters: **FAILED**")

		for _, r := range results {
			if !r.Passed {
				fmt.Fprintf(w, "  - %s\n", Line(r))
			}
		}
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Primitive | Permits | Threads | Iterations "+
		"| Observed | Expected | Elapsed | Throughput | Status |")
	fmt.Fprintln(w, "|-----------|---------|---------|------------"+
		"|----------|----------|---------|------------|--------|")

	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %s | %d | %d | %d | %s | %s | %s |\n",
			r.Primitive,
			r.Permits,
			formatThreads(r),
			r.Iterations,
			r.Observed,
			r.Expected,
			formatMs(r.ElapsedMs),
			formatRate(r.Observed, r.ElapsedMs),
			status(r),
		)
	}

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

func allPassed(results []harness.Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}

	return true
}

func status(r harness.Result) string {
	switch {
	case r.Passed:
		return "pass"
	case r.ErrorKind != harness.KindNone:
		return "FAIL (" + string(r.ErrorKind) + ")"
	default:
		return "FAIL"
	}
}

func formatThreads(r harness.Result) string {
	if r.Started != r.Threads {
		return fmt.Sprintf("%d/%d", r.Started, r.Threads)
	}

	return fmt.Sprintf("%d", r.Threads)
}

func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}

// formatRate renders increments per second.
func formatRate(ops, ms int64) string {
	if ops == 0 || ms <= 0 {
		return "-"
	}

	units := []string{"", "K", "M", "G"}
	rate := float64(ops) / (float64(ms) / 1000)
	unit := 0

	for rate >= 1000 && unit < len(units)-1 {
		rate /= 1000
		unit++
	}

	formatted := fmt.Sprintf("%.1f", rate)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit] + "ops/s"
}
