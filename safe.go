package poolalloc

import "sync"

// SafeAllocator is a mutex-protected wrapper around Allocator for concurrent
// access. The lock covers the whole select-then-reserve sequence of each
// request, so two goroutines never claim the same bytes.
//
// Handles it issues may be read and written from any goroutine; the ranges
// they cover never overlap.
type SafeAllocator struct {
	mu sync.Mutex
	a  *Allocator
}

// NewSafeAllocator creates a thread-safe allocator with the given pool size
// and options. If poolSize <= 0, DefaultPoolSize is used.
func NewSafeAllocator(poolSize int, opts ...Option) *SafeAllocator {
	return &SafeAllocator{a: NewAllocator(poolSize, opts...)}
}

func (s *SafeAllocator) reserve(size, align uintptr) (region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.reserve(size, align)
}

// EnsureCapacity thread-safely makes sure some pool has n bytes available.
func (s *SafeAllocator) EnsureCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.EnsureCapacity(n)
}

// Release thread-safely frees every pool and makes the allocator unusable.
func (s *SafeAllocator) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Release()
}

// Thread-safe metrics

// NumPools thread-safely returns the number of pools.
func (s *SafeAllocator) NumPools() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.NumPools()
}

// SizeInUse thread-safely returns the bytes consumed across all pools.
func (s *SafeAllocator) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// Capacity thread-safely returns the total capacity of all pools.
func (s *SafeAllocator) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

// Pools thread-safely returns a snapshot of every pool.
func (s *SafeAllocator) Pools() []PoolStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Pools()
}

// Metrics thread-safely returns a snapshot of allocator statistics.
func (s *SafeAllocator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
