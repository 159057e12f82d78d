package mempool

import "math/bits"

const (
	KiB = 1024

	Alignment      = 8       // Minimum block alignment, in bytes. Must be a power of two.
	MaxBucketSize  = 4 * KiB // Largest pooled block size, in bytes.
	NumBuckets     = 10      // Number of size classes: 8, 16, 32, ... 4096.
	BlocksPerChunk = 1024    // Blocks allocated per chunk growth.
	alignShift     = 3       // log2(Alignment).
	alignMask      = Alignment - 1
)

func init() {
	// Runtime assertion.
	if Alignment<<(NumBuckets-1) != MaxBucketSize || 1<<alignShift != Alignment {
		panic("size class constants are inconsistent")
	}
}

// RoundUp rounds bytes up to the nearest multiple of Alignment.
// bytes must be non-negative.
func RoundUp(bytes int) int {
	return (bytes + alignMask) &^ alignMask
}

// BucketIndex returns the index of the size class that services a request
// of bytes, i.e. the smallest i such that Alignment<<i >= RoundUp(bytes).
// It returns NumBuckets when the request is larger than MaxBucketSize.
func BucketIndex(bytes int) int {
	aligned := RoundUp(bytes)
	if aligned > MaxBucketSize {
		return NumBuckets
	}
	if aligned <= Alignment {
		return 0
	}
	return bits.Len(uint(aligned-1) >> alignShift)
}

// ClassSize returns the block size of size class i.
func ClassSize(i int) int {
	return Alignment << i
}
