package arena

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	mock_segment "github.com/segalloc/segalloc/segment/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

// mockedArena builds an Arena around a mocked engine so the registry and
// teardown logic can be exercised without real segment arithmetic.
func mockedArena(ctrl *gomock.Controller) (*Arena, *mock_segment.MockAllocator, []byte) {
	engine := mock_segment.NewMockAllocator(ctrl)
	seg := make([]byte, 128)

	return &Arena{
		logger:          slog.New(slog.NewJSONHandler(io.Discard)),
		name:            "mocked",
		algorithm:       AlgorithmExplicit,
		segment:         seg,
		allocator:       engine,
		liveAllocations: swiss.NewMap[int, AllocationInfo](42),
	}, engine, seg
}

func TestDestroyReportsEveryUnfreedBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, engine, _ := mockedArena(ctrl)

	engine.EXPECT().IsEmpty().Return(false)
	engine.EXPECT().VisitAllBlocks(gomock.Any()).DoAndReturn(
		func(handleBlock func(offset, size int, free bool) error) error {
			require.NoError(t, handleBlock(0, 16, false))
			require.NoError(t, handleBlock(24, 96, true))
			return nil
		})

	require.Error(t, a.Destroy())

	// A failed teardown leaves the arena intact.
	require.NotNil(t, a.allocator)
	require.NotNil(t, a.segment)
}

func TestFreeFailureKeepsRegistryEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, engine, seg := mockedArena(ctrl)

	payload := seg[8:24]
	engine.EXPECT().Alloc(16).Return(payload, nil)

	p, err := a.Alloc(16, "stuck")
	require.NoError(t, err)
	require.Equal(t, 1, a.AllocationCount())

	engine.EXPECT().Free(gomock.Any()).Return(errors.New("engine rejected the free"))
	require.Error(t, a.Free(p))

	// The allocation is still registered and can be freed once the engine
	// cooperates.
	require.Equal(t, 1, a.AllocationCount())
	engine.EXPECT().Free(gomock.Any()).Return(nil)
	require.NoError(t, a.Free(p))
	require.Equal(t, 0, a.AllocationCount())
}

func TestReallocMovesRegistryEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, engine, seg := mockedArena(ctrl)

	payload := seg[8:24]
	engine.EXPECT().Alloc(16).Return(payload, nil)

	p, err := a.Alloc(16, "moving")
	require.NoError(t, err)

	moved := seg[56:88]
	engine.EXPECT().Realloc(gomock.Any(), 32).Return(moved, nil)

	q, err := a.Realloc(p, 32)
	require.NoError(t, err)
	require.Same(t, &moved[0], &q[0])

	info, live := a.liveAllocations.Get(48)
	require.True(t, live)
	require.Equal(t, AllocationInfo{Size: 32, Name: "moving"}, info)

	_, live = a.liveAllocations.Get(0)
	require.False(t, live)
}

func TestValidateReportsUnregisteredBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, engine, _ := mockedArena(ctrl)

	engine.EXPECT().VisitAllBlocks(gomock.Any()).DoAndReturn(
		func(handleBlock func(offset, size int, free bool) error) error {
			return handleBlock(0, 16, false)
		})

	err := a.Validate()
	require.ErrorContains(t, err, "no registered allocation")
}
