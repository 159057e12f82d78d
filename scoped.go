package mempool

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// Allocator is the allocation contract a Scoped handle acquires from and
// releases to. *BucketPool implements it.
type Allocator interface {
	Allocate(bytes int) (unsafe.Pointer, error)
	Deallocate(ptr unsafe.Pointer, bytes int)
}

var _ Allocator = (*BucketPool)(nil)

// Scoped owns storage for n values of T obtained from an Allocator, and
// releases it with the exact byte count it was acquired with.
//
// The storage is raw: no values are constructed or destroyed on the
// caller's behalf. A Scoped must not be copied; pass the pointer.
type Scoped[T any] struct {
	alloc Allocator
	ptr   unsafe.Pointer
	n     int
	bytes int
}

// ScopedAllocate acquires storage for n values of T. Callers release it
// with a deferred Release:
//
//	buf, err := mempool.ScopedAllocate[byte](pool, 100)
//	if err != nil {
//		return err
//	}
//	defer buf.Release()
//
// If the allocator returns no storage, which includes a zero-sized request,
// the error wraps ErrOutOfMemory. Element types that contain Go pointers
// are rejected with ErrPointerType.
func ScopedAllocate[T any](a Allocator, n int) (*Scoped[T], error) {
	t := reflect.TypeFor[T]()
	if hasPointers(t) {
		return nil, fmt.Errorf("%w: %v", ErrPointerType, t)
	}
	size := int(t.Size())
	if n < 0 || (size > 0 && n > math.MaxInt/size) {
		return nil, fmt.Errorf("%w: cannot allocate %d values of %v", ErrOutOfMemory, n, t)
	}
	total := size * n

	ptr, err := a.Allocate(total)
	if err != nil {
		if !errors.Is(err, ErrOutOfMemory) {
			err = fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		return nil, err
	}
	if ptr == nil {
		return nil, fmt.Errorf("%w: no storage for %d values of %v", ErrOutOfMemory, n, t)
	}
	return &Scoped[T]{alloc: a, ptr: ptr, n: n, bytes: total}, nil
}

// WithScoped acquires storage for n values of T, passes it to fn and
// releases it when fn returns or panics.
func WithScoped[T any](a Allocator, n int, fn func(s []T) error) error {
	s, err := ScopedAllocate[T](a, n)
	if err != nil {
		return err
	}
	defer s.Release()
	return fn(s.Slice())
}

// Slice returns the storage as a slice of n values. It returns nil after
// Release.
func (s *Scoped[T]) Slice() []T {
	if s.ptr == nil {
		return nil
	}
	return unsafe.Slice((*T)(s.ptr), s.n)
}

// Ptr returns the start of the storage, or nil after Release.
func (s *Scoped[T]) Ptr() unsafe.Pointer {
	return s.ptr
}

// Len returns the number of values the storage holds.
func (s *Scoped[T]) Len() int {
	return s.n
}

// Size returns the number of bytes requested from the allocator.
func (s *Scoped[T]) Size() int {
	return s.bytes
}

// Release returns the storage to the allocator. Only the first call has an
// effect.
func (s *Scoped[T]) Release() {
	if s.ptr == nil {
		return
	}
	ptr := s.ptr
	s.ptr = nil
	s.alloc.Deallocate(ptr, s.bytes)
}

// hasPointers reports whether values of t contain pointers the garbage
// collector would need to trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
