package poolalloc

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocator(t *testing.T) {
	tests := []struct {
		name     string
		poolSize int
		expected int
	}{
		{"default pool size", 0, DefaultPoolSize},
		{"negative pool size", -1, DefaultPoolSize},
		{"custom pool size", 8192, 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(tt.poolSize)
			assert.Equal(t, tt.expected, a.PoolSize())
			assert.Zero(t, a.NumPools(), "pools are created lazily")
		})
	}
}

func TestAllocateSinglePoolInOrder(t *testing.T) {
	a := NewAllocator(DefaultPoolSize)
	defer a.Release()

	sizes := []int{3, 10, 1, 100, 7}
	var prevEnd int
	for _, n := range sizes {
		h, err := Allocate[uint32](a, n)
		require.NoError(t, err)
		assert.Equal(t, 0, h.Pool())
		assert.Equal(t, prevEnd, h.Offset(), "ranges appear in request order")
		prevEnd = h.Offset() + n*4
	}
	assert.Equal(t, 1, a.NumPools())
	assert.Equal(t, DefaultPoolSize-prevEnd, a.Pools()[0].Available)
}

func TestAllocateFloatBoundary(t *testing.T) {
	a := NewAllocator(4096)
	defer a.Release()

	for i := range 1024 {
		h, err := Allocate[float32](a, 1)
		require.NoError(t, err, "allocation %d", i)
		require.Equal(t, 0, h.Pool(), "allocation %d", i)
	}
	require.Equal(t, 1, a.NumPools())
	assert.Equal(t, 0, a.Pools()[0].Available)

	h, err := Allocate[float32](a, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Pool())
	assert.Equal(t, 0, h.Offset())
	assert.Equal(t, 2, a.NumPools())
}

func TestAllocateLargerThanPool(t *testing.T) {
	a := NewAllocator(1024)
	defer a.Release()

	_, err := Allocate[byte](a, 100)
	require.NoError(t, err)

	h, err := Allocate[byte](a, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Pool())

	pools := a.Pools()
	require.Len(t, pools, 2)
	assert.Equal(t, 5000, pools[1].Capacity)
	assert.Equal(t, 0, pools[1].Available)
	assert.Equal(t, 924, pools[0].Available, "other pools are unaffected")
}

func TestAllocateAvailableSpaceDelta(t *testing.T) {
	a := NewAllocator(256)
	defer a.Release()

	requests := []int{40, 200, 16, 100, 8, 250, 4}
	for _, n := range requests {
		before := a.Pools()
		h, err := Allocate[byte](a, n)
		require.NoError(t, err)
		after := a.Pools()

		for i := range before {
			want := before[i].Available
			if i == h.Pool() {
				want -= n
			}
			assert.Equal(t, want, after[i].Available, "pool %d after request of %d", i, n)
		}
		if h.Pool() == len(before) {
			assert.Equal(t, after[h.Pool()].Capacity-n, after[h.Pool()].Available)
		}
	}
}

func TestAllocateBestFit(t *testing.T) {
	a := NewAllocator(64)
	defer a.Release()

	// Two pools with 16 bytes left each.
	h0, err := Allocate[[48]byte](a, 1)
	require.NoError(t, err)
	h1, err := Allocate[[48]byte](a, 1)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, []int{h0.Pool(), h1.Pool()})

	tests := []struct {
		size int
		pool int
	}{
		{8, 0},  // tie at 16: lowest id
		{16, 1}, // only pool 1 still has 16
		{8, 0},  // pool 0 has exactly 8
		{1, 2},  // both full: grow
	}
	for _, tt := range tests {
		h, err := Allocate[byte](a, tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.pool, h.Pool(), "request of %d", tt.size)
	}
}

func TestAllocateAlignmentSkipsCandidate(t *testing.T) {
	a := NewAllocator(12)
	defer a.Release()

	_, err := Allocate[byte](a, 1)
	require.NoError(t, err)

	// Pool 0 has 11 bytes, but an 8-byte aligned uint64 would end at 16.
	h, err := Allocate[uint64](a, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Pool())
	assert.Equal(t, 11, a.Pools()[0].Available)
}

func TestAllocateZeroCount(t *testing.T) {
	a := NewAllocator(64)
	defer a.Release()

	h, err := Allocate[uint32](a, 0)
	require.NoError(t, err)
	assert.Zero(t, h.Len())
	assert.Nil(t, h.Slice())
	assert.Nil(t, h.Ptr())
	assert.Equal(t, 1, a.NumPools(), "first request creates a pool")
	assert.Equal(t, 64, a.Pools()[0].Available)
}

func TestAllocateInvalidRequest(t *testing.T) {
	a := NewAllocator(64)
	defer a.Release()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"negative count", func() error {
			_, err := Allocate[uint32](a, -1)
			return err
		}},
		{"overflow high word", func() error {
			_, err := Allocate[uint64](a, math.MaxInt)
			return err
		}},
		{"overflow past MaxInt", func() error {
			_, err := Allocate[[2]byte](a, math.MaxInt)
			return err
		}},
		{"pointer type", func() error {
			_, err := Allocate[*int](a, 1)
			return err
		}},
		{"string field", func() error {
			_, err := Allocate[struct{ name string }](a, 1)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
			assert.False(t, errors.Is(err, ErrOutOfMemory))
		})
	}
	assert.Zero(t, a.NumPools(), "invalid requests never touch a pool")
}

type failingBacking struct {
	HeapBacking
	allow int
	calls int
}

func (f *failingBacking) Acquire(size int) ([]byte, error) {
	f.calls++
	if f.calls > f.allow {
		return nil, errors.New("no memory")
	}
	return f.HeapBacking.Acquire(size)
}

func TestAllocateOutOfMemory(t *testing.T) {
	var logs bytes.Buffer
	backing := &failingBacking{allow: 1}
	a := NewAllocator(16,
		WithBacking(backing),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	defer a.Release()

	_, err := Allocate[byte](a, 16)
	require.NoError(t, err)

	_, err = Allocate[byte](a, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory), "got %v", err)
	assert.Contains(t, err.Error(), "no memory")
	assert.Contains(t, logs.String(), "backing storage unavailable")

	// terminal: no more attempts at the backing
	_, err = Allocate[byte](a, 0)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.True(t, errors.Is(a.EnsureCapacity(1), ErrOutOfMemory))
	assert.Equal(t, 2, backing.calls)
}

type shortBacking struct{ HeapBacking }

func (shortBacking) Acquire(size int) ([]byte, error) {
	return HeapBacking{}.Acquire(size - 1)
}

func TestAllocateShortBacking(t *testing.T) {
	a := NewAllocator(16, WithBacking(shortBacking{}))
	_, err := Allocate[byte](a, 1)
	assert.True(t, errors.Is(err, ErrOutOfMemory), "got %v", err)
}

func TestEnsureCapacity(t *testing.T) {
	a := NewAllocator(1024)
	defer a.Release()

	require.NoError(t, a.EnsureCapacity(100))
	assert.Equal(t, 1, a.NumPools())

	require.NoError(t, a.EnsureCapacity(100))
	assert.Equal(t, 1, a.NumPools(), "existing pool has room")

	require.NoError(t, a.EnsureCapacity(2000))
	assert.Equal(t, 2, a.NumPools())
	assert.Equal(t, 2000, a.Pools()[1].Capacity)

	assert.True(t, errors.Is(a.EnsureCapacity(-1), ErrInvalidRequest))
}

func TestOrderingStrategiesAgree(t *testing.T) {
	inc := NewAllocator(100, WithOrdering(OrderIncremental))
	res := NewAllocator(100, WithOrdering(OrderResort))
	defer inc.Release()
	defer res.Release()

	sizes := []int{30, 70, 10, 90, 5, 5, 60, 40, 100, 1, 33, 66, 2, 150, 20}
	for _, n := range sizes {
		hi, err := Allocate[byte](inc, n)
		require.NoError(t, err)
		hr, err := Allocate[byte](res, n)
		require.NoError(t, err)
		assert.Equal(t, hi.Pool(), hr.Pool(), "request of %d", n)
		assert.Equal(t, hi.Offset(), hr.Offset(), "request of %d", n)
		assertOrdered(t, inc)
		assertOrdered(t, res)
	}
	assert.Equal(t, inc.Pools(), res.Pools())
}

func assertOrdered(t *testing.T, a *Allocator) {
	t.Helper()
	for i := 1; i < len(a.order); i++ {
		if comparePools(a.order[i-1], a.order[i]) >= 0 {
			t.Fatalf("order broken at %d: pool %d (%d free) before pool %d (%d free)",
				i, a.order[i-1].id, a.order[i-1].AvailableSpace(), a.order[i].id, a.order[i].AvailableSpace())
		}
	}
}

func TestRelease(t *testing.T) {
	var logs bytes.Buffer
	a := NewAllocator(64, WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	for range 5 {
		_, err := Allocate[[40]byte](a, 1)
		require.NoError(t, err)
	}
	require.Equal(t, 5, a.NumPools())

	require.NoError(t, a.Release())
	assert.Zero(t, a.NumPools())
	assert.Zero(t, a.Capacity())
	assert.True(t, a.Metrics().Released)
	assert.True(t, strings.Contains(logs.String(), "pools=5"), logs.String())

	_, err := Allocate[byte](a, 1)
	assert.True(t, errors.Is(err, ErrReleased))
	assert.True(t, errors.Is(a.EnsureCapacity(1), ErrReleased))

	// Multiple releases should be safe
	assert.NoError(t, a.Release())
}

type countingBacking struct {
	HeapBacking
	freed int
	fail  bool
}

func (c *countingBacking) Free(buf []byte) error {
	c.freed++
	if c.fail {
		return errors.New("unmap failed")
	}
	return nil
}

func TestReleaseFreesEveryPool(t *testing.T) {
	backing := &countingBacking{fail: true}
	a := NewAllocator(8, WithBacking(backing))
	for range 3 {
		_, err := Allocate[uint64](a, 1)
		require.NoError(t, err)
	}

	err := a.Release()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 of the pools")
	assert.Contains(t, err.Error(), "unmap failed", "the first free error is the cause")
	assert.Equal(t, 3, backing.freed, "a failing free does not stop the others")
}
