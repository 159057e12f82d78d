package mempool

import (
	"fmt"
	"testing"
)

func TestRoundUp(t *testing.T) {
	testCases := []struct {
		bytes, expected int
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{100, 104},
		{4095, 4096},
		{4096, 4096},
		{5000, 5000},
		{5001, 5008},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("RoundUp(%d)", tc.bytes), func(t *testing.T) {
			if got := RoundUp(tc.bytes); got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestRoundUpIdempotent(t *testing.T) {
	for x := 0; x <= 2*MaxBucketSize; x++ {
		r := RoundUp(x)
		if RoundUp(r) != r {
			t.Fatalf("RoundUp(RoundUp(%d)) = %d, want %d", x, RoundUp(r), r)
		}
		if r%Alignment != 0 || r < x || r-x >= Alignment {
			t.Fatalf("RoundUp(%d) = %d is not the next multiple of %d", x, r, Alignment)
		}
	}
}

func TestBucketIndex(t *testing.T) {
	testCases := []struct {
		bytes, expected int
	}{
		{1, 0},
		{8, 0},
		{9, 1},
		{16, 1},
		{17, 2},
		{100, 4},
		{128, 4},
		{129, 5},
		{500, 6},
		{2049, 9},
		{4096, 9},
		{4097, NumBuckets},
		{5000, NumBuckets},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("BucketIndex(%d)", tc.bytes), func(t *testing.T) {
			if got := BucketIndex(tc.bytes); got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestBucketIndexIsSmallestClass(t *testing.T) {
	for s := 1; s <= MaxBucketSize; s++ {
		i := BucketIndex(s)
		if i < 0 || i >= NumBuckets {
			t.Fatalf("BucketIndex(%d) = %d out of range", s, i)
		}
		aligned := RoundUp(s)
		if ClassSize(i) < aligned {
			t.Fatalf("class %d (%d bytes) too small for %d bytes", i, ClassSize(i), s)
		}
		if i > 0 && ClassSize(i-1) >= aligned {
			t.Fatalf("class %d is not the smallest for %d bytes", i, s)
		}
	}
	for _, s := range []int{MaxBucketSize + 1, MaxBucketSize + Alignment, 1 << 20} {
		if got := BucketIndex(s); got != NumBuckets {
			t.Errorf("expected sentinel %d for %d bytes, got %d", NumBuckets, s, got)
		}
	}
}

func TestClassSize(t *testing.T) {
	expected := [NumBuckets]int{8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096}
	for i, want := range expected {
		if got := ClassSize(i); got != want {
			t.Errorf("ClassSize(%d): expected %d, got %d", i, want, got)
		}
	}
}
