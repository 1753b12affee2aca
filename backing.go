package poolalloc

import (
	"unsafe"

	"github.com/pkg/errors"
)

// maxAlign is the largest alignment any Go type needs.
const maxAlign = 8

// Backing obtains and frees the raw buffer behind a pool. Acquire must
// return a buffer of exactly size bytes whose first byte is aligned to
// 8 bytes.
type Backing interface {
	Acquire(size int) ([]byte, error)
	Free(buf []byte) error
}

// HeapBacking allocates pool buffers on the Go heap.
type HeapBacking struct{}

// Acquire allocates a zeroed, 8-byte aligned buffer of size bytes. An
// impossible size is reported as an error instead of a runtime panic.
func (HeapBacking) Acquire(size int) (buf []byte, err error) {
	if size <= 0 {
		return nil, errors.Errorf("heap: invalid size %d", size)
	}
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, errors.Errorf("heap: allocate %d bytes: %v", size, r)
		}
	}()
	words := make([]uint64, (uint(size)+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size), nil
}

// Free is a no-op; the garbage collector reclaims the buffer once nothing
// references it.
func (HeapBacking) Free([]byte) error { return nil }

// BackingByName returns the backing registered under name: "heap" or
// "mmap". The empty name selects "heap".
func BackingByName(name string) (Backing, error) {
	switch name {
	case "", "heap":
		return HeapBacking{}, nil
	case "mmap":
		return NewMmapBacking()
	}
	return nil, errors.Errorf("poolalloc: unknown backing %q", name)
}
