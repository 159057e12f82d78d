package sysalloc

import (
	"fmt"

	"github.com/edsrzf/mmap-go"
)

// MmapGo allocates anonymous mappings through mmap-go, which also works on
// platforms without a unix mmap.
type MmapGo struct{}

func NewMmapGo() *MmapGo {
	return &MmapGo{}
}

func (MmapGo) Alloc(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot map %d anonymous bytes: %w", size, err)
	}
	return m, nil
}

func (MmapGo) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	m := mmap.MMap(b[:cap(b)])
	return m.Unmap()
}
