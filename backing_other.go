//go:build !linux

package poolalloc

import (
	"runtime"

	"github.com/pkg/errors"
)

// NewMmapBacking reports that mmap backed pools are only built on linux.
func NewMmapBacking() (Backing, error) {
	return nil, errors.Errorf("poolalloc: mmap backing not supported on %s", runtime.GOOS)
}
