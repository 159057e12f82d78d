package sysalloc

import "fmt"

// Heap allocates regions on the Go heap. Free is a no-op; a region is
// reclaimed by the GC once its last reference is dropped.
//
// Regions are noscan byte slices: storing Go pointers in them hides those
// pointers from the GC.
//
// Heap exhaustion in Go is a fatal runtime error, not a panic. Alloc only
// returns an error for sizes make rejects; a real out of memory condition
// terminates the process instead of surfacing as an error.
type Heap struct{}

func NewHeap() *Heap {
	return &Heap{}
}

func (Heap) Alloc(size int) (b []byte, err error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	defer func() {
		// make panics rather than returning an error for impossible sizes.
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("cannot allocate %d heap bytes: %v", size, r)
		}
	}()
	// Sizes that are not a multiple of 8 may land on the tiny allocator,
	// which only aligns to the size itself.
	return make([]byte, (size+7)&^7)[:size:size], nil
}

func (Heap) Free(b []byte) error {
	return nil
}
