//go:build !linux

package harness

import "runtime"

func onlineCPUs() []int {
	return sequentialCPUs(runtime.NumCPU())
}

// pinThread is a no-op where thread affinity is unavailable. Placement is
// a hint, never a correctness requirement.
func pinThread(int) error {
	return nil
}
