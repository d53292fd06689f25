// Package harness runs lock-contention benchmarks: it spawns workers that
// increment a shared counter under a synchronization primitive and checks
// that no update was lost.
package harness

// Result holds the outcome of one run.
type Result struct {
	Primitive  string `json:"primitive"`
	Permits    int    `json:"permits"`
	Threads    int    `json:"threads"`
	Started    int    `json:"started"`
	Iterations int    `json:"iterations"`
	Observed   int64  `json:"observed_total"`
	Expected   int64  `json:"expected_total"`
	// Consistent is true if no update was lost among the increments that
	// were attempted, even when the run ended with an error.
	Consistent  bool      `json:"consistent"`
	Passed      bool      `json:"passed"`
	Interrupted int       `json:"interrupted_workers"`
	ErrorKind   ErrorKind `json:"error,omitempty"`
	ElapsedMs   int64     `json:"elapsed_ms"`

	Err error `json:"-"`
}
