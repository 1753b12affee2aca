//go:build linux

package poolalloc

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MmapBacking maps every pool as an anonymous private region outside the Go
// heap. Release unmaps the regions, so the memory goes back to the kernel
// at once instead of waiting for a collection.
type MmapBacking struct{}

// NewMmapBacking returns the mmap backing.
func NewMmapBacking() (Backing, error) {
	return MmapBacking{}, nil
}

// Acquire maps size bytes readable and writable. Mappings are page aligned.
func (MmapBacking) Acquire(size int) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap: map %d bytes", size)
	}
	return buf, nil
}

// Free unmaps a buffer returned by Acquire.
func (MmapBacking) Free(buf []byte) error {
	if err := unix.Munmap(buf); err != nil {
		return errors.Wrapf(err, "mmap: unmap %d bytes", len(buf))
	}
	return nil
}
