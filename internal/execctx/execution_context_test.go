package execctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liumos/internal/pmem"
)

func newContextWithSegments(t *testing.T) (*ExecutionContext, *pmem.Allocator, *pmem.RecordingFlusher) {
	t.Helper()
	flusher := &pmem.RecordingFlusher{}
	pool := make([]byte, 64*pmem.PageSize)
	a := pmem.NewAllocator(pool, flusher)
	require.NotNil(t, a)

	var e ExecutionContext
	e.Mapping.Code.MapSize = pmem.PageSize
	e.Mapping.Data.MapSize = pmem.PageSize
	e.Mapping.Stack.MapSize = pmem.PageSize
	e.Mapping.Heap.MapSize = 4096

	require.NoError(t, e.Mapping.Code.AllocFromPersistentMemory(a, flusher))
	require.NoError(t, e.Mapping.Data.AllocFromPersistentMemory(a, flusher))
	require.NoError(t, e.Mapping.Stack.AllocFromPersistentMemory(a, flusher))
	require.NoError(t, e.Mapping.Heap.AllocFromPersistentMemory(a, flusher))
	e.Mapping.Stack.Vaddr = 0x7fff_0000
	e.Mapping.Heap.Vaddr = 0x0020_0000

	return &e, a, flusher
}

func TestSetRegistersForcesInterruptFlagAndResetsHeap(t *testing.T) {
	var e ExecutionContext
	e.HeapUsedSize = 123
	e.SetRegisters(0x1000, 0x8, 0x7fff_fff0, 0x10, 0x2000, 0, 0x9000)

	assert.NotZero(t, e.CPU.Int.RFlags&rflagsInterruptEnable)
	assert.Zero(t, e.HeapUsedSize)
	assert.Equal(t, uint64(0x2000), e.CPU.CR3)
	assert.Equal(t, uint64(0x9000), e.KernelRSP)
}

func TestPushToStackMovesRSPDown(t *testing.T) {
	e, _, _ := newContextWithSegments(t)
	e.CPU.Int.RSP = e.Mapping.Stack.Vaddr + e.Mapping.Stack.MapSize

	before := e.CPU.Int.RSP
	e.PushToStack([]byte{1, 2, 3, 4})
	assert.Equal(t, before-4, e.CPU.Int.RSP)
}

func TestAlignStack(t *testing.T) {
	var e ExecutionContext
	e.CPU.Int.RSP = 0x1007
	e.AlignStack(16)
	assert.Equal(t, uint64(0x1000), e.CPU.Int.RSP)
}

func TestExpandHeapBounds(t *testing.T) {
	e, _, _ := newContextWithSegments(t)

	require.NoError(t, e.ExpandHeap(4096))
	assert.Equal(t, uint64(4096), e.HeapUsedSize)
	assert.Equal(t, e.Mapping.Heap.Vaddr+4096, e.HeapEndVirtAddr())

	err := e.ExpandHeap(1)
	assert.Equal(t, ErrHeapOverflow, err)
	assert.Equal(t, uint64(4096), e.HeapUsedSize, "watermark must be unchanged after a failed expand")

	require.NoError(t, e.ExpandHeap(-4096))
	assert.Zero(t, e.HeapUsedSize)

	err = e.ExpandHeap(-1)
	assert.Equal(t, ErrHeapUnderflow, err)
	assert.Zero(t, e.HeapUsedSize)
}

func TestExpandHeapSequencePropertyMatchesSum(t *testing.T) {
	// spec §8 property 3: the final heap_used_size equals the sum of all
	// deltas iff no intermediate sum ever leaves [0, heap.map_size].
	e, _, _ := newContextWithSegments(t)
	heapSize := e.Mapping.Heap.MapSize

	deltas := []int64{1000, 2000, -500, 1500, -4000, 4096, 1}
	sum := int64(0)
	violated := false
	for _, d := range deltas {
		next := sum + d
		if next < 0 || uint64(next) > heapSize {
			violated = true
			break
		}
		sum = next
	}

	var runningFailure error
	final := int64(0)
	for _, d := range deltas {
		if err := e.ExpandHeap(d); err != nil {
			runningFailure = err
			break
		}
		final += d
	}

	if violated {
		assert.Error(t, runningFailure)
	} else {
		assert.NoError(t, runningFailure)
		assert.Equal(t, uint64(final), e.HeapUsedSize)
		assert.Equal(t, uint64(sum), e.HeapUsedSize)
	}
}

func TestCopyContextFromRoundTrip(t *testing.T) {
	a, flusher := func() (*pmem.Allocator, *pmem.RecordingFlusher) {
		flusher := &pmem.RecordingFlusher{}
		pool := make([]byte, 64*pmem.PageSize)
		return pmem.NewAllocator(pool, flusher), flusher
	}()

	build := func() *ExecutionContext {
		var e ExecutionContext
		e.Mapping.Data.MapSize = pmem.PageSize
		e.Mapping.Stack.MapSize = pmem.PageSize
		require.NoError(t, e.Mapping.Data.AllocFromPersistentMemory(a, flusher))
		require.NoError(t, e.Mapping.Stack.AllocFromPersistentMemory(a, flusher))
		return &e
	}

	src := build()
	src.CPU.GPRs.RAX = 0xdead_beef
	src.CPU.Int.RIP = 0x4000
	src.CPU.CR3 = 0xaaaa
	dataBytes := segmentBytes(&src.Mapping.Data)
	for i := range dataBytes {
		dataBytes[i] = byte(i)
	}

	dst := build()
	dst.CPU.CR3 = 0xbbbb // dst's own CR3, must survive the copy
	var copied uint64
	require.NoError(t, dst.CopyContextFrom(src, flusher, &copied))

	assert.Equal(t, src.CPU.GPRs.RAX, dst.CPU.GPRs.RAX)
	assert.Equal(t, src.CPU.Int.RIP, dst.CPU.Int.RIP)
	assert.Equal(t, uint64(0xbbbb), dst.CPU.CR3, "CR3 is per-address-space and must not be copied")
	assert.Equal(t, segmentBytes(&src.Mapping.Data), segmentBytes(&dst.Mapping.Data))

	back := build()
	back.CPU.CR3 = 0xcccc
	var copiedBack uint64
	require.NoError(t, back.CopyContextFrom(dst, flusher, &copiedBack))
	assert.Equal(t, src.CPU.GPRs.RAX, back.CPU.GPRs.RAX)
	assert.Equal(t, segmentBytes(&src.Mapping.Data), segmentBytes(&back.Mapping.Data))
	assert.Equal(t, uint64(0xcccc), back.CPU.CR3)
}
