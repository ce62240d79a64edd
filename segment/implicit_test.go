package segment_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/segalloc/segalloc/heaputils"
	"github.com/segalloc/segalloc/segment"
	"github.com/stretchr/testify/require"
)

func TestImplicitInit(t *testing.T) {
	alloc := segment.NewImplicitAllocator()

	err := alloc.Init(make([]byte, 8))
	require.ErrorIs(t, err, segment.ErrSegmentTooSmall)

	err = alloc.Init(make([]byte, 132))
	require.ErrorIs(t, err, segment.ErrSegmentUnaligned)

	err = alloc.Init(make([]byte, 128))
	require.NoError(t, err)
	require.Equal(t, 128, alloc.SegmentSize())
	require.True(t, alloc.IsEmpty())
	require.Equal(t, 1, alloc.FreeRegionsCount())
	require.NoError(t, alloc.Validate())

	var stats heaputils.DetailedStatistics
	stats.Clear()
	alloc.AddDetailedStatistics(&stats)
	require.Equal(t, heaputils.DetailedStatistics{
		Statistics: heaputils.Statistics{
			SegmentCount:    1,
			SegmentBytes:    128,
			AllocationCount: 0,
			AllocationBytes: 0,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  math.MaxInt,
		AllocationSizeMax:  0,
		UnusedRangeSizeMin: 120,
		UnusedRangeSizeMax: 120,
	}, stats)
}

func TestImplicitReinitDiscardsAllocations(t *testing.T) {
	seg := make([]byte, 128)
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(seg))

	_, err := alloc.Alloc(16)
	require.NoError(t, err)
	require.Equal(t, 1, alloc.AllocationCount())

	require.NoError(t, alloc.Init(seg))
	require.True(t, alloc.IsEmpty())
	require.Equal(t, 1, alloc.FreeRegionsCount())
	require.NoError(t, alloc.Validate())
}

func TestImplicitFreeNeverCoalesces(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	a, err := alloc.Alloc(16)
	require.NoError(t, err)
	b, err := alloc.Alloc(16)
	require.NoError(t, err)
	c, err := alloc.Alloc(16)
	require.NoError(t, err)

	require.NoError(t, alloc.Free(b))
	require.NoError(t, alloc.Free(c))
	require.NoError(t, alloc.Validate())

	// Adjacent free blocks stay separate.
	require.Equal(t, []blockInfo{
		{Offset: 0, Size: 16, Free: false},
		{Offset: 24, Size: 16, Free: true},
		{Offset: 48, Size: 16, Free: true},
		{Offset: 72, Size: 48, Free: true},
	}, collectBlocks(t, alloc))
	require.Equal(t, 3, alloc.FreeRegionsCount())
	require.Equal(t, 24, alloc.UsedBytes())

	// A request that would fit in the merged run but not in any single block
	// fails even though enough total memory is free.
	_, err = alloc.Alloc(64)
	require.ErrorIs(t, err, segment.ErrOutOfMemory)

	require.NoError(t, alloc.Free(a))
	require.True(t, alloc.IsEmpty())
}

func TestImplicitFirstFit(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	a, err := alloc.Alloc(16)
	require.NoError(t, err)
	_, err = alloc.Alloc(16)
	require.NoError(t, err)

	require.NoError(t, alloc.Free(a))

	// The walk starts at the segment base, so the earliest fitting block wins
	// over the larger one at the end.
	p, err := alloc.Alloc(8)
	require.NoError(t, err)
	require.Same(t, &a[0], &p[0])
	require.Equal(t, 8, len(p))
	require.Equal(t, 16, cap(p))
	require.NoError(t, alloc.Validate())
}

func TestImplicitAllocSplits(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	_, err := alloc.Alloc(16)
	require.NoError(t, err)
	require.Equal(t, []blockInfo{
		{Offset: 0, Size: 16, Free: false},
		{Offset: 24, Size: 96, Free: true},
	}, collectBlocks(t, alloc))

	// A remainder too small for a block of its own is handed to the caller.
	alloc.Clear()
	p, err := alloc.Alloc(112)
	require.NoError(t, err)
	require.Equal(t, 112, len(p))
	require.Equal(t, 120, cap(p))
	require.Equal(t, []blockInfo{
		{Offset: 0, Size: 120, Free: false},
	}, collectBlocks(t, alloc))
	require.NoError(t, alloc.Validate())
}

func TestImplicitDoubleFree(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	p, err := alloc.Alloc(16)
	require.NoError(t, err)
	require.NoError(t, alloc.Free(p))

	err = alloc.Free(p)
	require.Error(t, err)

	err = alloc.Free(make([]byte, 16))
	require.ErrorIs(t, err, segment.ErrForeignPayload)
	require.NoError(t, alloc.Validate())
}

func TestImplicitReallocAlwaysMoves(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	a, err := alloc.Alloc(16)
	require.NoError(t, err)
	for i := range a {
		a[i] = byte(0x10 + i)
	}

	q, err := alloc.Realloc(a, 16)
	require.NoError(t, err)
	require.NotSame(t, &a[0], &q[0])
	for i := 0; i < 16; i++ {
		require.Equal(t, byte(0x10+i), q[i])
	}
	require.Equal(t, 1, alloc.AllocationCount())
	require.NoError(t, alloc.Validate())
}

func TestImplicitReallocShrinkKeepsPrefix(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	a, err := alloc.Alloc(32)
	require.NoError(t, err)
	for i := range a {
		a[i] = byte(i)
	}

	q, err := alloc.Realloc(a, 8)
	require.NoError(t, err)
	require.Equal(t, 8, len(q))
	for i := 0; i < 8; i++ {
		require.Equal(t, byte(i), q[i])
	}
	require.NoError(t, alloc.Validate())
}

func TestImplicitReallocNilAndZero(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	p, err := alloc.Realloc(nil, 24)
	require.NoError(t, err)
	require.Equal(t, 24, len(p))

	q, err := alloc.Realloc(p, 0)
	require.NoError(t, err)
	require.Nil(t, q)
	require.True(t, alloc.IsEmpty())
	require.NoError(t, alloc.Validate())
}

func TestImplicitReallocFailureLeavesBlockLive(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	a, err := alloc.Alloc(56)
	require.NoError(t, err)
	_, err = alloc.Alloc(56)
	require.NoError(t, err)

	_, err = alloc.Realloc(a, 120)
	require.ErrorIs(t, err, segment.ErrOutOfMemory)
	require.Equal(t, 2, alloc.AllocationCount())
	require.NoError(t, alloc.Validate())
}

func TestImplicitClear(t *testing.T) {
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(make([]byte, 128)))

	_, err := alloc.Alloc(16)
	require.NoError(t, err)
	_, err = alloc.Alloc(16)
	require.NoError(t, err)

	alloc.Clear()
	require.True(t, alloc.IsEmpty())
	require.Equal(t, 0, alloc.UsedBytes())
	require.Equal(t, 1, alloc.FreeRegionsCount())
	require.NoError(t, alloc.Validate())
}

func TestImplicitValidateDetectsCorruption(t *testing.T) {
	seg := make([]byte, 128)
	alloc := segment.NewImplicitAllocator()
	require.NoError(t, alloc.Init(seg))

	_, err := alloc.Alloc(16)
	require.NoError(t, err)
	require.NoError(t, alloc.Validate())

	// A size stomp makes the block walk overshoot the segment.
	binary.LittleEndian.PutUint64(seg[24:], 1024)
	require.Error(t, alloc.Validate())
}
