package monomem

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrChunkSizeTooSmall  = errors.New("chunk size too small")
	ErrUnknownMemoryType  = errors.New("unknown memory type")
	ErrMemoryKeyRequired  = errors.New("memory key required")
	ErrInvalidGrowth      = errors.New("chunk growth must be at least 100 percent")
	ErrOutOfMemory        = errors.New("heap exhausted")
	ErrUnknownBlock       = errors.New("block not owned by heap")
	ErrInvalidAlignment   = errors.New("alignment must be a power of two not above MaxAlignment")
	ErrStaleSnapshot      = errors.New("snapshot does not belong to the current chunk chain")
	ErrAllocatorClosed    = errors.New("allocator closed")
	ErrHostedReset        = errors.New("full reset of a self-contained allocator")
	ErrGlobalNotAcquired  = errors.New("global allocator used without acquiring its lock")
	ErrEmptyList          = errors.New("operation on empty list")
	ErrEndIterator        = errors.New("end iterator given")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrSelfContainedMoved = errors.New("self-contained object moved or closed")
	ErrGoPointers         = errors.New("type holds pointers the garbage collector cannot see in chunk memory")
	ErrPoolAlignment      = errors.New("alignment above PoolAlignment")
)

// violate panics with err marked as an assertion failure. Precondition violations
// are programming errors, never values returned to the caller.
func violate(err error, format string, args ...interface{}) {
	panic(errors.WithAssertionFailure(errors.Wrapf(err, format, args...)))
}
