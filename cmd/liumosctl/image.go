package main

import (
	"fmt"
	"os"
	"unsafe"

	"liumos/internal/checkpoint"
	"liumos/internal/pmemlayout"
)

// maxRecordsOnDisk mirrors pmemlayout.MaxRecords, the capacity the on-disk
// layout reserves room for.
const maxRecordsOnDisk = pmemlayout.MaxRecords

// image is a loaded PMEM file, cast directly onto its raw bytes via
// pmemlayout's region helpers — this tool works on exactly the bytes the
// kernel would have mapped from real hardware.
type image struct {
	pool []byte
}

func loadImage(path string) (*image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("liumosctl: reading image: %w", err)
	}
	minSize := pmemlayout.RecordsOffset + maxRecordsOnDisk*unsafe.Sizeof(checkpoint.PersistentProcessInfo{})
	if uintptr(len(b)) < minSize {
		return nil, fmt.Errorf("liumosctl: image too small to hold a descriptor and record table")
	}
	return &image{pool: b}, nil
}

func (im *image) descriptor() *pmemlayout.RawHeader {
	return pmemlayout.HeaderAt(im.pool)
}

func (im *image) record(i int) *checkpoint.PersistentProcessInfo {
	return pmemlayout.RecordAt(im.pool, i)
}

// arena is the allocator's backing pool: everything after the record table.
func (im *image) arena() []byte {
	return pmemlayout.Arena(im.pool)
}
