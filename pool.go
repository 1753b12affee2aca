package poolalloc

import "unsafe"

// pool is a single fixed-capacity buffer handed out through a bump cursor.
// Consumed bytes are never returned.
type pool struct {
	id     int     // insertion index within the owning allocator
	buf    []byte  // backing memory, acquired once
	cursor uintptr // bytes consumed so far, padding included
}

func newPool(id int, buf []byte) *pool {
	return &pool{id: id, buf: buf}
}

// Capacity returns the size of the backing buffer in bytes.
func (p *pool) Capacity() int {
	return len(p.buf)
}

// AvailableSpace returns the bytes not yet consumed.
func (p *pool) AvailableSpace() int {
	return len(p.buf) - int(p.cursor)
}

// Reserve carves n bytes aligned to align out of the pool and returns their
// offset. It reports false, leaving the cursor untouched, when the aligned
// range does not fit. A zero-byte request always succeeds without moving
// the cursor.
func (p *pool) Reserve(n, align uintptr) (uintptr, bool) {
	if n == 0 {
		return p.cursor, true
	}
	off := p.alignedCursor(align)
	size := uintptr(len(p.buf))
	if off > size || n > size-off {
		return 0, false
	}
	p.cursor = off + n
	return off, true
}

// at returns the address of the byte at off. off must be below Capacity.
func (p *pool) at(off uintptr) unsafe.Pointer {
	return unsafe.Pointer(&p.buf[off])
}

// alignedCursor rounds the cursor up so that the absolute address of the
// next byte is a multiple of align.
func (p *pool) alignedCursor(align uintptr) uintptr {
	if align <= 1 || len(p.buf) == 0 {
		return p.cursor
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(p.buf)))
	mask := align - 1
	return ((base + p.cursor + mask) &^ mask) - base
}
