package poolalloc

import (
	"log/slog"
	"math"
	"slices"
	"sort"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

// DefaultPoolSize is the default capacity of new pools (4 KiB).
const DefaultPoolSize = 1024 * 4

// Allocator hands out memory from a growing set of fixed-capacity pools.
// Pools are chosen best-fit by available space; a request no pool can hold
// creates a new one. Nothing is freed until Release.
//
// Allocator is not goroutine-safe. Use SafeAllocator for concurrent access,
// or give every goroutine its own Allocator.
type Allocator struct {
	pools    []*pool // by id
	order    []*pool // by available space, then id
	poolSize int
	backing  Backing
	ordering Ordering
	logger   *slog.Logger

	released atomic.Bool
	failed   error // sticky ErrOutOfMemory

	allocations uint64
}

// NewAllocator creates an Allocator whose pools hold poolSize bytes unless a
// request needs more. If poolSize <= 0, DefaultPoolSize is used. No pool is
// created until the first request.
func NewAllocator(poolSize int, opts ...Option) *Allocator {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	a := &Allocator{
		poolSize: poolSize,
		backing:  HeapBacking{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// region is a reserved byte range inside one pool of owner.
type region struct {
	owner *Allocator
	pool  int
	off   uintptr
	ptr   unsafe.Pointer
}

// Source is anything typed allocations can be drawn from: *Allocator and
// *SafeAllocator.
type Source interface {
	reserve(size, align uintptr) (region, error)
}

// reserve selects a pool for size bytes aligned to align, growing the pool
// set when no existing pool can hold the request.
func (a *Allocator) reserve(size, align uintptr) (region, error) {
	if a.released.Load() {
		return region{}, errors.WithStack(ErrReleased)
	}
	if a.failed != nil {
		return region{}, a.failed
	}
	if size > math.MaxInt {
		return region{}, errors.Wrapf(ErrInvalidRequest, "%d bytes exceeds the addressable size", size)
	}

	// Candidates from the best fit upward. One can still refuse when
	// alignment padding pushes the range past its end.
	for i := a.search(int(size)); i < len(a.order); i++ {
		p := a.order[i]
		if off, ok := p.Reserve(size, align); ok {
			a.reposition(i)
			return a.issue(p, off, size), nil
		}
	}

	i, err := a.grow(int(size))
	if err != nil {
		return region{}, err
	}
	p := a.order[i]
	off, ok := p.Reserve(size, align)
	if !ok {
		panic("poolalloc: new pool cannot hold the request it was sized for")
	}
	a.reposition(i)
	return a.issue(p, off, size), nil
}

func (a *Allocator) issue(p *pool, off, size uintptr) region {
	a.allocations++
	r := region{owner: a, pool: p.id, off: off, ptr: unsafe.Pointer(&zeroSized)}
	if size > 0 {
		r.ptr = p.at(off)
	}
	return r
}

// zeroSized is the address given to zero-byte reservations.
var zeroSized uintptr

// EnsureCapacity makes sure some pool has at least n bytes available,
// creating one if none does.
func (a *Allocator) EnsureCapacity(n int) error {
	if a.released.Load() {
		return errors.WithStack(ErrReleased)
	}
	if a.failed != nil {
		return a.failed
	}
	if n < 0 {
		return errors.Wrapf(ErrInvalidRequest, "negative capacity %d", n)
	}
	if a.search(n) < len(a.order) {
		return nil
	}
	_, err := a.grow(n)
	return err
}

// Release frees every pool at once and makes the allocator unusable.
// Handles issued by it become invalid; accessing them panics. Calling
// Release again is a no-op.
func (a *Allocator) Release() error {
	if !a.released.CompareAndSwap(false, true) {
		return nil
	}
	var (
		first    error
		failures int
		capacity int
	)
	for _, p := range a.pools {
		capacity += p.Capacity()
		if err := a.backing.Free(p.buf); err != nil {
			if first == nil {
				first = err
			}
			failures++
		}
		p.buf = nil
	}
	a.logger.Debug("poolalloc: released", "pools", len(a.pools), "bytes", capacity)
	a.pools = nil
	a.order = nil
	if first != nil {
		return errors.Wrapf(first, "poolalloc: %d of the pools failed to free", failures)
	}
	return nil
}

// search returns the index in order of the smallest pool with at least n
// bytes available, or len(order) if there is none.
func (a *Allocator) search(n int) int {
	return sort.Search(len(a.order), func(i int) bool {
		return a.order[i].AvailableSpace() >= n
	})
}

// grow creates a pool of at least min bytes and inserts it into order,
// returning its index there.
func (a *Allocator) grow(min int) (int, error) {
	size := max(a.poolSize, min)
	buf, err := a.backing.Acquire(size)
	if err == nil {
		switch {
		case len(buf) != size:
			err = errors.Errorf("backing returned %d bytes, asked for %d", len(buf), size)
		case uintptr(unsafe.Pointer(unsafe.SliceData(buf)))%maxAlign != 0:
			err = errors.New("backing returned a misaligned buffer")
		}
		if err != nil {
			_ = a.backing.Free(buf)
		}
	}
	if err != nil {
		a.failed = errors.Wrapf(ErrOutOfMemory, "pool %d of %d bytes: %v", len(a.pools), size, err)
		a.logger.Warn("poolalloc: backing storage unavailable", "size", size, "pools", len(a.pools), "err", err)
		return 0, a.failed
	}

	p := newPool(len(a.pools), buf)
	a.pools = append(a.pools, p)
	i, _ := slices.BinarySearchFunc(a.order, p, comparePools)
	a.order = slices.Insert(a.order, i, p)
	a.logger.Debug("poolalloc: pool created", "id", p.id, "size", size, "pools", len(a.pools))
	return i, nil
}

// reposition restores the order after the pool at index i lost space.
func (a *Allocator) reposition(i int) {
	if a.ordering == OrderResort {
		slices.SortStableFunc(a.order, comparePools)
		return
	}
	for ; i > 0 && comparePools(a.order[i], a.order[i-1]) < 0; i-- {
		a.order[i], a.order[i-1] = a.order[i-1], a.order[i]
	}
}

// comparePools orders by available space, then by insertion index.
func comparePools(x, y *pool) int {
	if d := x.AvailableSpace() - y.AvailableSpace(); d != 0 {
		return d
	}
	return x.id - y.id
}
