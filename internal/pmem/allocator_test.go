package pmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T, pages int) (*Allocator, *RecordingFlusher) {
	t.Helper()
	flusher := &RecordingFlusher{}
	pool := make([]byte, pages*PageSize)
	a := NewAllocator(pool, flusher)
	require.NotNil(t, a)
	return a, flusher
}

func TestAllocPagesNeverOverlap(t *testing.T) {
	a, _ := newTestAllocator(t, 32)

	seen := map[uint64]bool{}
	for i := 0; i < 10; i++ {
		addr, err := a.AllocPages(2)
		require.NoError(t, err)
		for p := uint64(0); p < 2*PageSize; p += PageSize {
			assert.False(t, seen[addr+p], "page at %x allocated twice", addr+p)
			seen[addr+p] = true
		}
	}
}

func TestAllocPagesExhausted(t *testing.T) {
	a, _ := newTestAllocator(t, 4)

	total := a.TotalPages()
	_, err := a.AllocPages(total)
	require.NoError(t, err)

	_, err = a.AllocPages(1)
	assert.Equal(t, ErrExhausted, err)
}

func TestAllocPagesBadRequest(t *testing.T) {
	a, _ := newTestAllocator(t, 4)
	_, err := a.AllocPages(0)
	assert.Equal(t, ErrBadRequest, err)
}

func TestFreePagesAllowsReuse(t *testing.T) {
	a, _ := newTestAllocator(t, 4)

	addr, err := a.AllocPages(a.TotalPages())
	require.NoError(t, err)

	require.NoError(t, a.FreePages(addr, a.TotalPages()))

	addr2, err := a.AllocPages(a.TotalPages())
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)
}

func TestAllocatorMetadataIsFlushed(t *testing.T) {
	a, flusher := newTestAllocator(t, 8)
	_, err := a.AllocPages(1)
	require.NoError(t, err)
	assert.Greater(t, flusher.Calls, 0, "allocating a page must flush the durable bitmap")
}
