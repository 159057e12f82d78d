package testutils

import (
	"unsafe"
)

// Call records a single Deallocate call.
type Call struct {
	Ptr   unsafe.Pointer
	Bytes int
}

// RecordingAllocator wraps an allocator and records every call made to it.
type RecordingAllocator struct {
	Next interface {
		Allocate(bytes int) (unsafe.Pointer, error)
		Deallocate(p unsafe.Pointer, bytes int)
	}
	Allocs   []int
	Deallocs []Call
}

func (r *RecordingAllocator) Allocate(bytes int) (unsafe.Pointer, error) {
	r.Allocs = append(r.Allocs, bytes)
	return r.Next.Allocate(bytes)
}

func (r *RecordingAllocator) Deallocate(p unsafe.Pointer, bytes int) {
	r.Deallocs = append(r.Deallocs, Call{Ptr: p, Bytes: bytes})
	r.Next.Deallocate(p, bytes)
}
