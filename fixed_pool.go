package mempool

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/holmberd/go-mempool/internal/sysalloc"
)

// freeBlock overlays the storage of an unused block. Once the block is
// handed out the caller owns all of its bytes.
//
// next is only ever stored over a word that is known to be zero: the write
// barrier reads the old value of the slot and would treat caller bytes as a
// pointer.
type freeBlock struct {
	next *freeBlock
}

// PoolStats represents fixed pool stats.
type PoolStats struct {
	BlockSize     int    // Size of every block, in bytes.
	Chunks        int    // Number of chunks currently held.
	ReservedBytes uint64 // Bytes obtained from the system allocator.
	BlocksInUse   int64  // Blocks handed out and not yet returned.
	Allocs        uint64 // Cumulative number of allocations.
	Frees         uint64 // Cumulative number of deallocations.
}

// FixedPool manages raw memory for a single size class.
//
// Memory is obtained from the system allocator in chunks of
// BlockSize()*BlocksPerChunk bytes and handed out one block at a time through
// an intrusive singly-linked free list threaded through the unused blocks.
// Chunks are never returned to the system before Close.
//
// A FixedPool is not safe for concurrent use. Calling any method from
// multiple goroutines without external locking corrupts the free list.
type FixedPool struct {
	logger    *slog.Logger
	sys       sysalloc.Allocator // Backing chunk storage.
	blockSize int                // Aligned block size in bytes.
	chunkSize int                // blockSize * BlocksPerChunk.
	free      *freeBlock         // Head of the free list, nil when exhausted.
	chunks    [][]byte           // Owned chunks, in growth order.
	allocs    uint64
	frees     uint64
}

// NewFixedPool creates an empty pool handing out blocks of blockSize bytes,
// rounded up to a multiple of Alignment. No memory is reserved until the
// first allocation.
func NewFixedPool(blockSize int, config Config) (*FixedPool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if blockSize <= 0 || blockSize > math.MaxInt/BlocksPerChunk-Alignment {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	return newFixedPool(blockSize, config.newSystem(), config.Logger), nil
}

func newFixedPool(blockSize int, sys sysalloc.Allocator, logger *slog.Logger) *FixedPool {
	blockSize = RoundUp(blockSize)
	return &FixedPool{
		logger:    logger,
		sys:       sys,
		blockSize: blockSize,
		chunkSize: blockSize * BlocksPerChunk,
	}
}

// BlockSize returns the size of the blocks handed out by the pool.
func (p *FixedPool) BlockSize() int {
	return p.blockSize
}

// Allocate returns a block of BlockSize() bytes. The block content is
// unspecified. The only error is a failure of the system allocator to
// provide a new chunk, which wraps ErrOutOfMemory.
func (p *FixedPool) Allocate() (unsafe.Pointer, error) {
	if p.free == nil {
		if err := p.grow(); err != nil {
			return nil, err
		}
	}
	b := p.free
	p.free = b.next
	p.allocs++
	return unsafe.Pointer(b), nil
}

// Deallocate returns a block to the pool; it is the next block handed out.
// A nil ptr is a no-op.
//
// ptr must have been returned by Allocate on this pool and not released
// since. This is not checked.
func (p *FixedPool) Deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	// Clear the link word with a non-pointer store first. A plain store
	// would be removed as dead by the compiler.
	atomic.StoreUintptr((*uintptr)(ptr), 0)
	b := (*freeBlock)(ptr)
	b.next = p.free
	p.free = b
	p.frees++
}

// Owns reports whether ptr lies within one of the pool's chunks.
// It scans every chunk and is meant for diagnostics only.
func (p *FixedPool) Owns(ptr unsafe.Pointer) bool {
	if ptr == nil {
		return false
	}
	addr := uintptr(ptr)
	for _, c := range p.chunks {
		start := uintptr(unsafe.Pointer(&c[0]))
		if addr >= start && addr < start+uintptr(p.chunkSize) {
			return true
		}
	}
	return false
}

func (p *FixedPool) Stats() PoolStats {
	return PoolStats{
		BlockSize:     p.blockSize,
		Chunks:        len(p.chunks),
		ReservedBytes: uint64(len(p.chunks)) * uint64(p.chunkSize),
		BlocksInUse:   int64(p.allocs) - int64(p.frees),
		Allocs:        p.allocs,
		Frees:         p.frees,
	}
}

// Close releases every chunk back to the system allocator. All blocks
// handed out by the pool become invalid. The pool is left empty and can be
// used again.
func (p *FixedPool) Close() error {
	var errs []error
	for _, c := range p.chunks {
		if err := p.sys.Free(c); err != nil {
			p.logger.Error("failed to unmap chunk", "block_size", p.blockSize, "error", err)
			errs = append(errs, err)
		}
	}
	p.chunks = nil
	p.free = nil
	p.allocs = 0
	p.frees = 0
	return errors.Join(errs...)
}

// grow allocates a new chunk and makes its blocks the free list, in address
// order. It assumes the free list is empty.
func (p *FixedPool) grow() error {
	chunk, err := p.sys.Alloc(p.chunkSize)
	if err != nil {
		return fmt.Errorf("%w: cannot grow %d-byte class by %d bytes: %w",
			ErrOutOfMemory, p.blockSize, p.chunkSize, err)
	}
	p.chunks = append(p.chunks, chunk)

	head := unsafe.Pointer(&chunk[0])
	b := head
	for range BlocksPerChunk - 1 {
		next := unsafe.Add(b, p.blockSize)
		(*freeBlock)(b).next = (*freeBlock)(next)
		b = next
	}
	(*freeBlock)(b).next = nil
	p.free = (*freeBlock)(head)

	p.logger.Debug("grew size class",
		"block_size", p.blockSize,
		"chunks", len(p.chunks),
		"chunk_bytes", p.chunkSize,
	)
	return nil
}

// numFree returns the number of blocks on the free list.
// It is primarily intended as helper method in tests.
func (p *FixedPool) numFree() int {
	n := 0
	for b := p.free; b != nil; b = b.next {
		n++
	}
	return n
}
