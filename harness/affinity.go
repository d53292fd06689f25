package harness

func sequentialCPUs(n int) []int {
	cpus := make([]int, max(n, 1))
	for i := range cpus {
		cpus[i] = i
	}

	return cpus
}

// placement assigns worker i to cpus[i mod len(cpus)].
func placement(threads int, cpus []int) []int {
	out := make([]int, threads)
	if len(cpus) == 0 {
		for i := range out {
			out[i] = NoAffinity
		}

		return out
	}

	for i := range out {
		out[i] = cpus[i%len(cpus)]
	}

	return out
}
