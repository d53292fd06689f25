package harness

import "golang.org/x/sys/cpu"

// CounterBytes is the width of the shared counter's value.
const CounterBytes = 8

// Counter is the shared state under contention. Its value is a plain
// int64: every mutation must happen while the run's primitive is held, and
// it is read only after all workers have signalled completion.
type Counter struct {
	_     cpu.CacheLinePad
	value int64
	_     cpu.CacheLinePad
}

// Inc adds one. Callers must hold the primitive.
func (c *Counter) Inc() {
	c.value++
}

// Load returns the current value.
func (c *Counter) Load() int64 {
	return c.value
}

// Reset sets the value back to zero.
func (c *Counter) Reset() {
	c.value = 0
}
