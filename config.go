package mempool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/holmberd/go-mempool/internal/sysalloc"
)

// SystemType selects the system allocator that backs chunks and oversized
// allocations.
type SystemType int

const (
	SystemMmap   SystemType = iota + 1 // Anonymous mmap via golang.org/x/sys/unix.
	SystemMmapGo                       // Anonymous mmap via mmap-go.
	SystemHeap                         // Go heap; memory is reclaimed by the GC.
)

// With SystemHeap, exhausting memory is a fatal runtime error and never
// surfaces as ErrOutOfMemory. Only the mmap systems report it as an error.

func (s SystemType) String() string {
	switch s {
	case SystemMmap:
		return "mmap"
	case SystemMmapGo:
		return "mmap-go"
	case SystemHeap:
		return "heap"
	default:
		return fmt.Sprintf("SystemType(%d)", int(s))
	}
}

type Config struct {
	// System is the backing allocator for chunk storage and requests larger
	// than MaxBucketSize.
	System SystemType

	// Logger receives chunk growth events at debug level and release
	// failures at error level. Defaults to slog.Default().
	Logger *slog.Logger

	// TrackSizes records the size of every live allocation and panics when
	// a block is released with a size of a different class, or released
	// twice. It costs a map operation per call and is meant for debugging.
	TrackSizes bool
}

func DefaultConfig() Config {
	return Config{
		System: SystemMmap,
		Logger: slog.Default(),
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.System {
	case SystemMmap, SystemMmapGo, SystemHeap:
	default:
		errs = append(errs, fmt.Errorf("invalid config: %w: %v", ErrUnsupportedSystem, c.System))
	}
	if c.Logger == nil {
		errs = append(errs, errors.New("invalid config: logger is required"))
	}
	return errors.Join(errs...)
}

// newSystem returns the system allocator selected by the config.
func (c Config) newSystem() sysalloc.Allocator {
	switch c.System {
	case SystemMmapGo:
		return sysalloc.NewMmapGo()
	case SystemHeap:
		return sysalloc.NewHeap()
	default:
		return sysalloc.NewMmap()
	}
}
