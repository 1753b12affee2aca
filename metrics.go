package poolalloc

// NumPools returns the number of pools created so far.
func (a *Allocator) NumPools() int {
	return len(a.pools)
}

// SizeInUse returns the bytes consumed across all pools, alignment padding
// included.
func (a *Allocator) SizeInUse() int {
	sum := 0
	for _, p := range a.pools {
		sum += int(p.cursor)
	}
	return sum
}

// Capacity returns the total capacity in bytes of all pools.
func (a *Allocator) Capacity() int {
	sum := 0
	for _, p := range a.pools {
		sum += p.Capacity()
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the allocator has no pools.
func (a *Allocator) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// PoolSize returns the default capacity of new pools.
func (a *Allocator) PoolSize() int {
	return a.poolSize
}

// PoolStats describes one pool at the time of the call.
type PoolStats struct {
	ID        int // insertion index
	Capacity  int // bytes
	Available int // bytes not yet consumed
}

// Pools returns a snapshot of every pool in insertion order.
func (a *Allocator) Pools() []PoolStats {
	out := make([]PoolStats, len(a.pools))
	for i, p := range a.pools {
		out[i] = PoolStats{ID: p.id, Capacity: p.Capacity(), Available: p.AvailableSpace()}
	}
	return out
}

// Metrics returns a snapshot of allocator statistics.
func (a *Allocator) Metrics() Metrics {
	return Metrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumPools:    a.NumPools(),
		PoolSize:    a.PoolSize(),
		Allocations: a.allocations,
		Utilization: a.Utilization(),
		Released:    a.released.Load(),
	}
}

// Metrics contains statistical information about an allocator.
type Metrics struct {
	SizeInUse   int     // Bytes consumed, padding included
	Capacity    int     // Total capacity in bytes
	NumPools    int     // Number of pools
	PoolSize    int     // Default pool capacity
	Allocations uint64  // Successful requests served
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
	Released    bool    // Release has been called
}
