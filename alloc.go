package poolalloc

import (
	"math"
	"math/bits"
	"reflect"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// Allocate reserves contiguous storage for count values of T and returns a
// handle to it. The memory is not zeroed beyond what the backing provides.
// A zero count succeeds with an empty handle.
//
// T must be free of Go pointers (no pointers, slices, strings, maps,
// channels, funcs or interfaces, at any depth): pool memory is not scanned
// by the garbage collector. Other types fail with ErrInvalidRequest, as do
// negative counts and sizes that overflow.
func Allocate[T any](src Source, count int) (Handle[T], error) {
	size, align, err := layout[T](count)
	if err != nil {
		return Handle[T]{}, err
	}
	r, err := src.reserve(size, align)
	if err != nil {
		return Handle[T]{}, err
	}
	return Handle[T]{owner: r.owner, pool: r.pool, off: r.off, n: count, ptr: r.ptr}, nil
}

// AllocateAndInsert reserves one T and copies v into it.
func AllocateAndInsert[T any](src Source, v T) (Handle[T], error) {
	h, err := Allocate[T](src, 1)
	if err != nil {
		return Handle[T]{}, err
	}
	*(*T)(h.ptr) = v
	return h, nil
}

// AllocateAndInsertAll reserves len(vs) contiguous values and copies vs
// into them in order. The handle refers to the first slot.
func AllocateAndInsertAll[T any](src Source, vs ...T) (Handle[T], error) {
	h, err := Allocate[T](src, len(vs))
	if err != nil {
		return Handle[T]{}, err
	}
	if len(vs) > 0 {
		copy(unsafe.Slice((*T)(h.ptr), len(vs)), vs)
	}
	return h, nil
}

// layout returns the byte size and alignment of count values of T.
func layout[T any](count int) (size, align uintptr, err error) {
	var zero T
	typ := reflect.TypeFor[T]()
	if count < 0 {
		return 0, 0, errors.Wrapf(ErrInvalidRequest, "negative count %d of %v", count, typ)
	}
	if !pointerFree(typ) {
		return 0, 0, errors.Wrapf(ErrInvalidRequest, "%v holds Go pointers", typ)
	}
	hi, lo := bits.Mul64(uint64(count), uint64(unsafe.Sizeof(zero)))
	if hi != 0 || lo > math.MaxInt {
		return 0, 0, errors.Wrapf(ErrInvalidRequest, "%d values of %v overflow the byte size", count, typ)
	}
	return uintptr(lo), unsafe.Alignof(zero), nil
}

var pointerFreeCache sync.Map // reflect.Type -> bool

// pointerFree reports whether values of t can live in memory the garbage
// collector does not scan.
func pointerFree(t reflect.Type) bool {
	if v, ok := pointerFreeCache.Load(t); ok {
		return v.(bool)
	}
	ok := scanPointerFree(t)
	pointerFreeCache.Store(t, ok)
	return ok
}

func scanPointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || scanPointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !scanPointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}
