package sysalloc

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Mmap allocates anonymous private mappings through the mmap syscall.
// The memory is not part of the Go heap, so it is never scanned by the GC.
type Mmap struct{}

func NewMmap() *Mmap {
	return &Mmap{}
}

func (Mmap) Alloc(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot allocate %d bytes via mmap: %w", size, err)
	}
	return data, nil
}

// Free unmaps b. It must be the exact slice returned by Alloc, or a slice
// with the same start address and capacity.
func (Mmap) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Munmap(b[:cap(b)]); err != nil {
		if errors.Is(err, unix.EINVAL) {
			return fmt.Errorf("%w: %v", ErrNotMapped, err)
		}
		return err
	}
	return nil
}
