// Package poolalloc implements a multi-pool arena allocator for graphics data.
//
// # Overview
//
// An Allocator owns a growing set of fixed-capacity pools. Each pool hands
// out contiguous ranges through a bump cursor and never takes them back.
// Requests go to the smallest pool that still has room (best fit); when no
// pool has room a new one is created, sized to the request if the request
// is larger than the default pool size. This suits data that lives as
// long as a scene:
//
//   - Vertex and index arrays
//   - Transform matrices
//   - Any fixed-layout records created in bulk and dropped together
//
// # Basic Usage
//
//	a := poolalloc.NewAllocator(0) // Use default pool size
//	defer a.Release()             // Frees every pool at once
//
//	// Reserve typed storage
//	verts, err := poolalloc.Allocate[float32](a, 24)
//
//	// Copy values in
//	idx, err := poolalloc.AllocateAndInsertAll[uint32](a, 0, 1, 2, 1, 2, 3)
//	m, err := poolalloc.AllocateAndInsert(a, mgl32.Ident4())
//
//	// Read and write through the handle
//	verts.Slice()[0] = 1
//	upload(idx.Bytes())
//
// # Handles
//
// Allocations are returned as Handle values holding the pool id, the byte
// offset and the element count. A handle is only valid while its allocator
// is alive; after Release every accessor panics with an error wrapping
// ErrReleased. There is no way to free a single allocation.
//
// Element types must be free of Go pointers: pool memory is not scanned by
// the garbage collector, and the mmap backing lives outside the Go heap.
// Requests for other types fail with ErrInvalidRequest.
//
// # Errors
//
// A pool that cannot hold a request is not an error; the allocator tries
// the next pool or grows. Only two conditions reach the caller:
//
//   - ErrInvalidRequest: negative count, byte-size overflow, pointer type
//   - ErrOutOfMemory: backing storage for a new pool could not be obtained;
//     the allocator refuses every later request
//
// # Thread Safety
//
// Allocator is not thread-safe. For concurrent access, use SafeAllocator,
// or give each goroutine its own Allocator:
//
//	s := poolalloc.NewSafeAllocator(0)
//	defer s.Release()
//
//	h, err := poolalloc.Allocate[uint32](s, 36)
//
// # Configuration
//
// Pool size, reordering strategy and backing can be set with options or
// loaded from a TOML file with LoadConfig:
//
//	pool_size = 65536
//	ordering  = "incremental"
//	backing   = "mmap"
package poolalloc
