package harness

import (
	"errors"

	"github.com/weiihann/locktest/primitive"
)

// ErrorKind classifies why a run did not produce a clean result.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindInvalidConfig ErrorKind = "invalid-config"
	KindSpawnFailed   ErrorKind = "spawn-failed"
	KindInterrupted   ErrorKind = "interrupted"
	KindBusy          ErrorKind = "busy"
	KindTimeout       ErrorKind = "timeout"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrSpawnFailed   = errors.New("worker spawn failed")
	// ErrInterrupted is shared with the primitive package so that an
	// interrupted semaphore acquire matches without re-wrapping.
	ErrInterrupted = primitive.ErrInterrupted
	ErrBusy        = errors.New("benchmark run already in progress")
	ErrTimeout     = errors.New("benchmark run timed out")
)

// KindOf maps err to its ErrorKind. When several causes are joined the
// most severe one wins: spawn failure, then timeout, then interruption.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrSpawnFailed):
		return KindSpawnFailed
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrInterrupted):
		return KindInterrupted
	default:
		return ErrorKind("unknown")
	}
}
