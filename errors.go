package mempool

import "errors"

var (
	// ErrOutOfMemory is returned when the system allocator cannot satisfy a
	// chunk growth or oversized request.
	ErrOutOfMemory = errors.New("out of memory")

	ErrUnsupportedSystem = errors.New("unsupported system allocator")
	ErrInvalidBlockSize  = errors.New("invalid block size")
	ErrPointerType       = errors.New("element type contains Go pointers")

	// Raised as panics when size tracking is enabled.
	ErrUnknownPointer = errors.New("deallocate of a pointer that is not live")
	ErrSizeMismatch   = errors.New("deallocate size does not match allocation size")
)
