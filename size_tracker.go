package mempool

import (
	"fmt"
	"unsafe"
)

// sizeTracker records the requested size of every live allocation.
type sizeTracker struct {
	live map[uintptr]int
}

func newSizeTracker() *sizeTracker {
	return &sizeTracker{live: make(map[uintptr]int)}
}

func (t *sizeTracker) record(p unsafe.Pointer, bytes int) {
	t.live[uintptr(p)] = bytes
}

// release forgets p and panics if it was not live, or if bytes maps to a
// different size class than the size p was allocated with.
func (t *sizeTracker) release(p unsafe.Pointer, bytes int) {
	addr := uintptr(p)
	allocated, ok := t.live[addr]
	if !ok {
		panic(fmt.Errorf("%w: %#x (%d bytes)", ErrUnknownPointer, addr, bytes))
	}
	if BucketIndex(allocated) != BucketIndex(bytes) || (BucketIndex(bytes) == NumBuckets && allocated != bytes) {
		panic(fmt.Errorf("%w: %#x allocated with %d bytes, released with %d",
			ErrSizeMismatch, addr, allocated, bytes))
	}
	delete(t.live, addr)
}

func (t *sizeTracker) len() int {
	return len(t.live)
}
