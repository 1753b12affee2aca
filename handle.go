package poolalloc

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Handle refers to count contiguous values of T inside one pool. It is
// only valid while the Allocator that issued it has not been released;
// every accessor except Len, Pool, Offset and Valid panics with an error
// wrapping ErrReleased afterwards. The zero Handle is empty and invalid.
type Handle[T any] struct {
	owner *Allocator
	pool  int
	off   uintptr
	n     int
	ptr   unsafe.Pointer
}

// Len returns the number of values the handle refers to.
func (h Handle[T]) Len() int { return h.n }

// Pool returns the id of the pool holding the values.
func (h Handle[T]) Pool() int { return h.pool }

// Offset returns the byte offset of the first value within its pool.
func (h Handle[T]) Offset() int { return int(h.off) }

// Valid reports whether the handle was issued by an allocator that is
// still alive.
func (h Handle[T]) Valid() bool {
	return h.owner != nil && !h.owner.released.Load()
}

// Slice returns the values as a slice backed by pool memory. Writes through
// it are writes to the pool. It returns nil for an empty handle.
func (h Handle[T]) Slice() []T {
	h.check()
	if h.n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(h.ptr), h.n)
}

// Ptr returns a pointer to the first value, or nil for an empty handle.
func (h Handle[T]) Ptr() *T {
	h.check()
	if h.n == 0 {
		return nil
	}
	return (*T)(h.ptr)
}

// At returns the i-th value.
func (h Handle[T]) At(i int) T {
	return h.Slice()[i]
}

// Set stores v as the i-th value.
func (h Handle[T]) Set(i int, v T) {
	h.Slice()[i] = v
}

// Bytes returns the raw bytes of the values, for handing to upload
// routines.
func (h Handle[T]) Bytes() []byte {
	h.check()
	if h.n == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(h.ptr), uintptr(h.n)*unsafe.Sizeof(zero))
}

func (h Handle[T]) check() {
	if h.owner == nil {
		panic(errors.Wrap(ErrReleased, "zero handle"))
	}
	if h.owner.released.Load() {
		panic(errors.WithStack(ErrReleased))
	}
}
