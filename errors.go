package poolalloc

import "github.com/pkg/errors"

// Errors returned by the allocator. Callers match them with errors.Is; the
// returned values wrap these sentinels with the failing request's details.
var (
	// ErrInvalidRequest reports a request rejected before any pool was
	// touched: a negative count, a byte size that overflows, or an element
	// type that holds Go pointers.
	ErrInvalidRequest = errors.New("poolalloc: invalid request")

	// ErrOutOfMemory reports that backing storage for a new pool could not
	// be obtained. It is terminal: every later request on the same
	// allocator fails with it.
	ErrOutOfMemory = errors.New("poolalloc: out of memory")

	// ErrReleased reports use of an allocator, or of a handle it issued,
	// after Release.
	ErrReleased = errors.New("poolalloc: use after Release()")
)
