// Package mempool implements a size-class memory allocator for workloads
// that repeatedly allocate and free small, similarly sized objects.
//
// Requests up to MaxBucketSize bytes are served from one FixedPool per power
// of two size class, each growing in chunks of BlocksPerChunk blocks and
// reusing freed blocks in LIFO order. Larger requests fall back to a direct
// system allocation.
//
// Memory handed out is raw storage that the garbage collector does not
// scan. Do not store Go pointers in it.
//
// Nothing in this package is safe for concurrent use.
package mempool

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/holmberd/go-mempool/internal/sysalloc"
)

// Stats represents allocator stats accumulated over all size classes.
type Stats struct {
	Chunks          int    // Chunks held by all size classes.
	ReservedBytes   uint64 // Bytes reserved by all size classes.
	BlocksInUse     int64  // Pooled blocks handed out and not yet returned.
	OversizedAllocs uint64 // Cumulative number of oversized allocations.
	OversizedFrees  uint64 // Cumulative number of oversized deallocations.
}

func (s *Stats) Reset() {
	*s = Stats{}
}

// BucketPool routes allocations of arbitrary size to the FixedPool of the
// matching size class, or to the system allocator for requests larger than
// MaxBucketSize.
//
// BucketPool keeps no record of allocation sizes: Deallocate must be called
// with the same byte count that was passed to Allocate. A different count
// returns the block to the wrong size class and silently corrupts it. Enable
// Config.TrackSizes to detect this while debugging.
//
// A BucketPool is not safe for concurrent use.
type BucketPool struct {
	logger          *slog.Logger
	sys             sysalloc.Allocator
	buckets         [NumBuckets]*FixedPool
	tracker         *sizeTracker // Nil unless size tracking is enabled.
	oversizedAllocs uint64
	oversizedFrees  uint64
}

func newBucketPool(sys sysalloc.Allocator, config Config) (*BucketPool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	p := &BucketPool{
		logger: config.Logger,
		sys:    sys,
	}
	for i := range p.buckets {
		p.buckets[i] = newFixedPool(ClassSize(i), sys, config.Logger)
	}
	if config.TrackSizes {
		p.tracker = newSizeTracker()
	}
	return p, nil
}

// New creates a new allocator with the default config.
func New() (*BucketPool, error) {
	return Custom(DefaultConfig())
}

// Custom creates a new allocator with a custom config.
func Custom(config Config) (*BucketPool, error) {
	return newBucketPool(config.newSystem(), config)
}

// Allocate returns storage for at least bytes bytes. A request of zero (or
// negative) bytes returns nil and no error. Requests up to MaxBucketSize are
// aligned to their size class; larger ones are allocated directly from the
// system and are not reused.
//
// Errors wrap ErrOutOfMemory.
func (p *BucketPool) Allocate(bytes int) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, nil
	}
	var ptr unsafe.Pointer
	if i := BucketIndex(bytes); i < NumBuckets {
		var err error
		if ptr, err = p.buckets[i].Allocate(); err != nil {
			return nil, err
		}
	} else {
		b, err := p.sys.Alloc(bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot allocate %d oversized bytes: %w", ErrOutOfMemory, bytes, err)
		}
		ptr = unsafe.Pointer(&b[0])
		p.oversizedAllocs++
		p.logger.Debug("oversized allocation", "bytes", bytes)
	}
	if p.tracker != nil {
		p.tracker.record(ptr, bytes)
	}
	return ptr, nil
}

// Deallocate releases storage returned by Allocate. bytes must be the value
// passed to the Allocate call that returned ptr. A nil ptr or a zero bytes
// is a no-op.
func (p *BucketPool) Deallocate(ptr unsafe.Pointer, bytes int) {
	if ptr == nil || bytes <= 0 {
		return
	}
	if p.tracker != nil {
		p.tracker.release(ptr, bytes)
	}
	if i := BucketIndex(bytes); i < NumBuckets {
		p.buckets[i].Deallocate(ptr)
		return
	}
	p.oversizedFrees++
	if err := p.sys.Free(unsafe.Slice((*byte)(ptr), bytes)); err != nil {
		p.logger.Error("failed to release oversized block", "bytes", bytes, "error", err)
	}
}

// Class returns the pool serving requests of bytes, or nil if the request is
// empty or larger than MaxBucketSize.
func (p *BucketPool) Class(bytes int) *FixedPool {
	if bytes <= 0 {
		return nil
	}
	if i := BucketIndex(bytes); i < NumBuckets {
		return p.buckets[i]
	}
	return nil
}

// Owns reports whether ptr was handed out by one of the size class pools.
// It is never true for oversized allocations. Diagnostic only.
func (p *BucketPool) Owns(ptr unsafe.Pointer) bool {
	for _, b := range p.buckets {
		if b.Owns(ptr) {
			return true
		}
	}
	return false
}

func (p *BucketPool) UpdateStats(s *Stats) {
	for _, b := range p.buckets {
		bs := b.Stats()
		s.Chunks += bs.Chunks
		s.ReservedBytes += bs.ReservedBytes
		s.BlocksInUse += bs.BlocksInUse
	}
	s.OversizedAllocs += p.oversizedAllocs
	s.OversizedFrees += p.oversizedFrees
}

// Close releases the memory of every size class. Pooled blocks still in use
// become invalid; oversized allocations still in use are not tracked and
// remain the caller's to release.
func (p *BucketPool) Close() error {
	var errs []error
	for _, b := range p.buckets {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.tracker != nil {
		p.tracker = newSizeTracker()
	}
	return errors.Join(errs...)
}
