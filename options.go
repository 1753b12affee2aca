package poolalloc

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Ordering selects how the allocator restores its available-space order
// after a pool serves a request.
type Ordering int

const (
	// OrderIncremental moves only the pool that changed to its new place.
	OrderIncremental Ordering = iota
	// OrderResort re-sorts the whole pool list after every mutation.
	OrderResort
)

// String returns the configuration name of o.
func (o Ordering) String() string {
	switch o {
	case OrderIncremental:
		return "incremental"
	case OrderResort:
		return "resort"
	}
	return "unknown"
}

// ParseOrdering returns the ordering named s. The empty string selects
// OrderIncremental.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "incremental":
		return OrderIncremental, nil
	case "resort":
		return OrderResort, nil
	}
	return 0, errors.Errorf("poolalloc: unknown ordering %q", s)
}

// Option customizes an Allocator at construction.
type Option func(*Allocator)

// WithLogger sets the logger used for pool lifecycle events.
// A nil logger keeps the default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithBacking sets where pool buffers come from. The default is HeapBacking.
func WithBacking(b Backing) Option {
	return func(a *Allocator) {
		if b != nil {
			a.backing = b
		}
	}
}

// WithOrdering sets the reordering strategy. The default is OrderIncremental.
func WithOrdering(o Ordering) Option {
	return func(a *Allocator) {
		a.ordering = o
	}
}
