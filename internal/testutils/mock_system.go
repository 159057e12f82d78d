package testutils

import (
	"errors"
	"sync/atomic"
)

var ErrMockAllocFailed = errors.New("mock: allocation failed")

// MockSystem is a heap-backed system allocator that counts calls and can be
// told to fail after a number of successful allocations.
type MockSystem struct {
	allocCalls atomic.Int64
	freeCalls  atomic.Int64
	allocBytes atomic.Int64

	// FailAfter makes every Alloc after the first FailAfter calls fail.
	// A negative value disables failures.
	FailAfter int64
}

func NewMockSystem() *MockSystem {
	return &MockSystem{FailAfter: -1}
}

func (s *MockSystem) Alloc(size int) ([]byte, error) {
	n := s.allocCalls.Add(1)
	if s.FailAfter >= 0 && n > s.FailAfter {
		return nil, ErrMockAllocFailed
	}
	s.allocBytes.Add(int64(size))
	return make([]byte, size), nil
}

func (s *MockSystem) Free(b []byte) error {
	s.freeCalls.Add(1)
	return nil
}

func (s *MockSystem) AllocCalls() int64 {
	return s.allocCalls.Load()
}

func (s *MockSystem) FreeCalls() int64 {
	return s.freeCalls.Load()
}

func (s *MockSystem) AllocBytes() int64 {
	return s.allocBytes.Load()
}

// RegionsInUse returns the number of regions allocated but not yet freed.
func (s *MockSystem) RegionsInUse() int64 {
	return s.AllocCalls() - s.FreeCalls()
}

func (s *MockSystem) Reset() {
	s.allocCalls.Store(0)
	s.freeCalls.Store(0)
	s.allocBytes.Store(0)
}
