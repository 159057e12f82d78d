// Package sysalloc provides the system allocators that back pooled chunks
// and oversized allocations.
package sysalloc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize = errors.New("allocation size must be positive")
	ErrNotMapped   = errors.New("memory was not obtained from this allocator")
)

// Allocator hands out raw, zeroed, writable memory regions.
//
// Implementations must return memory that is at least 8-byte aligned and
// whose address does not change for the lifetime of the region.
type Allocator interface {
	Alloc(size int) ([]byte, error) // Alloc returns a region of exactly size bytes.
	Free(b []byte) error            // Free releases a region previously returned by Alloc.
}

func checkSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return nil
}
