package mempool

import (
	"math/rand"
	"testing"
	"unsafe"
)

// go clean -testcache && go test -bench=. -benchmem .

const benchLive = 1 << 12

// BenchmarkBucketPoolAllocFree measures the hot path: a single size class
// allocation immediately released.
func BenchmarkBucketPoolAllocFree(b *testing.B) {
	p, err := New()
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	b.ReportAllocs()
	for b.Loop() {
		ptr, err := p.Allocate(64)
		if err != nil {
			b.Fatal(err)
		}
		p.Deallocate(ptr, 64)
	}
}

// BenchmarkBucketPoolMixedSizes keeps a working set of live allocations of
// random sizes and replaces one per iteration.
func BenchmarkBucketPoolMixedSizes(b *testing.B) {
	p, err := New()
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	rng := rand.New(rand.NewSource(1))
	sizes := make([]int, benchLive)
	live := make([]unsafe.Pointer, benchLive)
	for i := range live {
		sizes[i] = 1 + rng.Intn(MaxBucketSize)
		if live[i], err = p.Allocate(sizes[i]); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		j := i & (benchLive - 1)
		p.Deallocate(live[j], sizes[j])
		sizes[j] = 1 + rng.Intn(MaxBucketSize)
		if live[j], err = p.Allocate(sizes[j]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkStandardHeap is the same workload as BenchmarkBucketPoolAllocFree
// on the Go heap.
func BenchmarkStandardHeap(b *testing.B) {
	b.ReportAllocs()
	var sink []byte
	for b.Loop() {
		sink = make([]byte, 64)
	}
	_ = sink
}
