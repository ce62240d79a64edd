package segment

import (
	"context"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// ImplicitAllocator carves blocks out of a segment using only the per-block
// header words: free blocks are rediscovered by walking the segment linearly
// from the start on every allocation. Freed blocks are never coalesced, and
// Realloc always moves the payload to a freshly allocated block.
type ImplicitAllocator struct {
	segmentBase
}

var _ Allocator = &ImplicitAllocator{}

func NewImplicitAllocator() *ImplicitAllocator {
	return &ImplicitAllocator{}
}

func (a *ImplicitAllocator) Init(segment []byte) error {
	return a.initSegment(segment, a.MinPayload())
}

func (a *ImplicitAllocator) MinPayload() int {
	return Alignment
}

func (a *ImplicitAllocator) Clear() {
	a.nused = 0
	a.usedBlocks = 0
	a.freeBlocks = 1
	a.writeHeader(0, a.length-HeaderSize, false)
}

// findFirstFree walks from the segment start and returns the offset of the
// first free block that can hold needed bytes.
func (a *ImplicitAllocator) findFirstFree(needed int) (int, bool) {
	for offset := 0; offset < a.length; offset = a.nextBlock(offset) {
		if !a.isAllocated(offset) && a.blockSize(offset) >= needed {
			return offset, true
		}
	}

	return noBlock, false
}

// splitBlock shaves the tail off the block at offset when the remainder is
// large enough to form a legal block of its own. The original block keeps its
// allocation flag.
func (a *ImplicitAllocator) splitBlock(offset, needed int) {
	oldSize := a.blockSize(offset)
	if oldSize-needed < HeaderSize+a.MinPayload() {
		return
	}

	newOffset := offset + HeaderSize + needed
	a.writeHeader(newOffset, oldSize-needed-HeaderSize, false)
	a.writeHeader(offset, needed, a.isAllocated(offset))
	a.freeBlocks++
}

func (a *ImplicitAllocator) Alloc(size int) ([]byte, error) {
	err := checkRequestSize(size)
	if err != nil {
		return nil, err
	}

	needed := sizeNeeded(size, a.MinPayload())
	if needed+a.nused > a.length {
		return nil, errors.Wrapf(ErrOutOfMemory, "requested %d bytes with only %d free", needed, a.SumFreeSize())
	}

	offset, ok := a.findFirstFree(needed)
	if !ok {
		return nil, errors.Wrapf(ErrOutOfMemory, "no free block of %d bytes", needed)
	}

	a.splitBlock(offset, needed)
	a.markAllocated(offset)
	a.nused += a.blockSize(offset) + HeaderSize
	a.usedBlocks++
	a.freeBlocks--

	return a.payload(offset, size), nil
}

func (a *ImplicitAllocator) Free(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}

	offset, err := a.blockOffset(payload)
	if err != nil {
		return err
	}
	if !a.isAllocated(offset) {
		return errors.Errorf("block at offset %d is already free", offset)
	}

	a.markFree(offset)
	a.nused -= a.blockSize(offset) + HeaderSize
	a.usedBlocks--
	a.freeBlocks++

	return nil
}

func (a *ImplicitAllocator) Realloc(payload []byte, size int) ([]byte, error) {
	if payload == nil {
		return a.Alloc(size)
	}
	if size == 0 {
		return nil, a.Free(payload)
	}

	oldOffset, err := a.blockOffset(payload)
	if err != nil {
		return nil, err
	}
	if !a.isAllocated(oldOffset) {
		return nil, errors.Errorf("block at offset %d is not allocated", oldOffset)
	}

	newPayload, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}

	copySize := a.blockSize(oldOffset)
	if size < copySize {
		copySize = size
	}
	copy(newPayload[:copySize], a.buf[oldOffset+HeaderSize:oldOffset+HeaderSize+copySize])

	err = a.Free(payload)
	if err != nil {
		return nil, err
	}

	return newPayload, nil
}

func (a *ImplicitAllocator) Validate() error {
	_, err := a.validateWalk(a.MinPayload())
	return err
}

func (a *ImplicitAllocator) BlockJsonData(json jwriter.ObjectState) {
	a.writeSegmentJson(json)

	arrayState := json.Name("Blocks").Array()
	defer arrayState.End()

	_ = a.VisitAllBlocks(func(offset, size int, free bool) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(size)
		if free {
			obj.Name("State").String("Free")
		} else {
			obj.Name("State").String("Used")
		}

		return nil
	})
}

func (a *ImplicitAllocator) DebugLogAllBlocks(logger *slog.Logger, logFunc func(log *slog.Logger, offset, size int, free bool)) {
	logger.LogAttrs(context.Background(), slog.LevelDebug, "segment",
		slog.Int("length", a.length),
		slog.Int("usedBytes", a.nused))

	for offset := 0; offset < a.length; offset = a.nextBlock(offset) {
		logFunc(logger, offset, a.blockSize(offset), !a.isAllocated(offset))
	}
}
