//go:build linux

package harness

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// onlineCPUs returns the CPUs this process is allowed to run on, in
// ascending order.
func onlineCPUs() []int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return sequentialCPUs(runtime.NumCPU())
	}

	n := set.Count()
	if n == 0 {
		return sequentialCPUs(runtime.NumCPU())
	}

	cpus := make([]int, 0, n)
	for i := 0; len(cpus) < n; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}

	return cpus
}

// pinThread wires the calling goroutine to its OS thread and binds that
// thread to cpu. The thread is never unlocked, so the runtime discards it
// when the goroutine exits instead of reusing a thread with a narrowed
// affinity mask.
func pinThread(cpu int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Set(cpu)

	return unix.SchedSetaffinity(0, &set)
}
