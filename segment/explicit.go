package segment

import (
	"context"
	"encoding/binary"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// ExplicitAllocator carves blocks out of a segment and threads every free
// block onto a doubly linked, LIFO-ordered free list. The list links live
// inside the free payloads themselves, which is what forces the larger
// minimum payload. Freeing eagerly merges the block with a free right
// neighbour, and Realloc can grow in place by absorbing free blocks to the
// right.
type ExplicitAllocator struct {
	segmentBase

	firstFree int
}

var _ Allocator = &ExplicitAllocator{}

func NewExplicitAllocator() *ExplicitAllocator {
	return &ExplicitAllocator{firstFree: noBlock}
}

func (a *ExplicitAllocator) Init(segment []byte) error {
	err := a.initSegment(segment, a.MinPayload())
	if err != nil {
		return err
	}

	a.firstFree = 0
	a.setFreePrev(0, noBlock)
	a.setFreeNext(0, noBlock)
	return nil
}

func (a *ExplicitAllocator) MinPayload() int {
	return 2 * Alignment
}

func (a *ExplicitAllocator) Clear() {
	a.nused = 0
	a.usedBlocks = 0
	a.freeBlocks = 1
	a.writeHeader(0, a.length-HeaderSize, false)
	a.firstFree = 0
	a.setFreePrev(0, noBlock)
	a.setFreeNext(0, noBlock)
}

// The list links overlay the first two words of a free block's payload.

func (a *ExplicitAllocator) freePrev(offset int) int {
	return a.readFreeLink(offset + HeaderSize)
}

func (a *ExplicitAllocator) freeNext(offset int) int {
	return a.readFreeLink(offset + HeaderSize + 8)
}

func (a *ExplicitAllocator) setFreePrev(offset, target int) {
	a.writeFreeLink(offset+HeaderSize, target)
}

func (a *ExplicitAllocator) setFreeNext(offset, target int) {
	a.writeFreeLink(offset+HeaderSize+8, target)
}

func (a *ExplicitAllocator) readFreeLink(linkOffset int) int {
	word := binary.LittleEndian.Uint64(a.buf[linkOffset:])
	if word == freeLinkNil {
		return noBlock
	}
	return int(word)
}

func (a *ExplicitAllocator) writeFreeLink(linkOffset, target int) {
	word := freeLinkNil
	if target != noBlock {
		word = uint64(target)
	}
	binary.LittleEndian.PutUint64(a.buf[linkOffset:], word)
}

// insertFreeBlock pushes the block at offset onto the head of the free list
func (a *ExplicitAllocator) insertFreeBlock(offset int) {
	if a.firstFree != noBlock {
		a.setFreePrev(a.firstFree, offset)
	}
	a.setFreePrev(offset, noBlock)
	a.setFreeNext(offset, a.firstFree)
	a.firstFree = offset
}

// removeFreeBlock splices the block at offset out of the free list
func (a *ExplicitAllocator) removeFreeBlock(offset int) {
	prev := a.freePrev(offset)
	next := a.freeNext(offset)

	if a.firstFree == offset {
		a.firstFree = next
	}
	if prev != noBlock {
		a.setFreeNext(prev, next)
	}
	if next != noBlock {
		a.setFreePrev(next, prev)
	}
}

// splitBlock shaves the tail off the block at offset when the remainder is
// large enough to form a legal block of its own. The tail becomes a new free
// block at the head of the list; the original block keeps its allocation flag.
func (a *ExplicitAllocator) splitBlock(offset, needed int) {
	oldSize := a.blockSize(offset)
	if oldSize-needed < HeaderSize+a.MinPayload() {
		return
	}

	newOffset := offset + HeaderSize + needed
	a.writeHeader(newOffset, oldSize-needed-HeaderSize, false)
	a.writeHeader(offset, needed, a.isAllocated(offset))
	a.insertFreeBlock(newOffset)
	a.freeBlocks++
}

// coalesceRight absorbs the block immediately to the right of offset when that
// block is free, keeping offset's allocation flag. It reports whether an
// absorption happened.
func (a *ExplicitAllocator) coalesceRight(offset int) bool {
	right := a.nextBlock(offset)
	if right >= a.length || a.isAllocated(right) {
		return false
	}

	a.removeFreeBlock(right)
	a.setHeaderWord(offset, a.headerWord(offset)+uint64(a.blockSize(right)+HeaderSize))
	a.freeBlocks--
	return true
}

// findFreeBlock walks the free list from its head and returns the offset of
// the first block that can hold needed bytes.
func (a *ExplicitAllocator) findFreeBlock(needed int) (int, bool) {
	for offset := a.firstFree; offset != noBlock; offset = a.freeNext(offset) {
		if a.blockSize(offset) >= needed {
			return offset, true
		}
	}

	return noBlock, false
}

func (a *ExplicitAllocator) Alloc(size int) ([]byte, error) {
	err := checkRequestSize(size)
	if err != nil {
		return nil, err
	}

	needed := sizeNeeded(size, a.MinPayload())
	if needed+a.nused > a.length {
		return nil, errors.Wrapf(ErrOutOfMemory, "requested %d bytes with only %d free", needed, a.SumFreeSize())
	}

	offset, ok := a.findFreeBlock(needed)
	if !ok {
		return nil, errors.Wrapf(ErrOutOfMemory, "no free block of %d bytes", needed)
	}

	a.splitBlock(offset, needed)
	a.removeFreeBlock(offset)
	a.markAllocated(offset)
	a.nused += a.blockSize(offset) + HeaderSize
	a.usedBlocks++
	a.freeBlocks--

	return a.payload(offset, size), nil
}

func (a *ExplicitAllocator) Free(payload []byte) error {
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
	a.insertFreeBlock(offset)
	a.coalesceRight(offset)

	return nil
}

func (a *ExplicitAllocator) Realloc(payload []byte, size int) ([]byte, error) {
	if payload == nil {
		return a.Alloc(size)
	}
	if size == 0 {
		return nil, a.Free(payload)
	}

	err := checkRequestSize(size)
	if err != nil {
		return nil, err
	}

	offset, err := a.blockOffset(payload)
	if err != nil {
		return nil, err
	}
	if !a.isAllocated(offset) {
		return nil, errors.Errorf("block at offset %d is not allocated", offset)
	}

	oldSize := a.blockSize(offset)
	needed := sizeNeeded(size, a.MinPayload())

	if oldSize > needed {
		a.splitBlock(offset, needed)
		a.nused -= oldSize - a.blockSize(offset)
		return a.payload(offset, size), nil
	}

	if oldSize == needed {
		return a.payload(offset, size), nil
	}

	// Peek at the contiguous free run to the right before touching anything,
	// so a request that still cannot fit leaves the block unmodified.
	reachable := oldSize
	for right := offset + HeaderSize + oldSize; right < a.length && !a.isAllocated(right); right = a.nextBlock(right) {
		reachable += a.blockSize(right) + HeaderSize
	}

	if reachable >= needed {
		for a.coalesceRight(offset) {
		}
		a.splitBlock(offset, needed)
		a.nused += a.blockSize(offset) - oldSize
		return a.payload(offset, size), nil
	}

	newPayload, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}

	copySize := oldSize
	if size < copySize {
		copySize = size
	}
	copy(newPayload[:copySize], a.buf[offset+HeaderSize:offset+HeaderSize+copySize])

	err = a.Free(payload)
	if err != nil {
		return nil, err
	}

	return newPayload, nil
}

func (a *ExplicitAllocator) Validate() error {
	freeOffsets, err := a.validateWalk(a.MinPayload())
	if err != nil {
		return err
	}

	// Check integrity of the free list
	var listOffsets []int
	if a.firstFree != noBlock && a.freePrev(a.firstFree) != noBlock {
		return errors.Errorf("block at offset %d is the head of the free list but has a previous block", a.firstFree)
	}

	for offset := a.firstFree; offset != noBlock; offset = a.freeNext(offset) {
		if a.isAllocated(offset) {
			return errors.Errorf("block at offset %d is in the free list but is not free", offset)
		}

		next := a.freeNext(offset)
		if next != noBlock && a.freePrev(next) != offset {
			return errors.Errorf("block at offset %d lists the block at offset %d as its next block, but the reverse reference is broken", offset, next)
		}

		listOffsets = append(listOffsets, offset)
		if len(listOffsets) > a.freeBlocks {
			return errors.Errorf("the free list holds more than the %d free blocks the counter says exist", a.freeBlocks)
		}
	}

	if len(listOffsets) != a.freeBlocks {
		return errors.Errorf("the free list holds %d blocks, but the counter says %d", len(listOffsets), a.freeBlocks)
	}

	slices.Sort(listOffsets)
	if !slices.Equal(listOffsets, freeOffsets) {
		return errors.Errorf("the free list does not hold the same blocks as the segment walk found")
	}

	return nil
}

func (a *ExplicitAllocator) BlockJsonData(json jwriter.ObjectState) {
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
			obj.Name("PrevFree").Int(a.freePrev(offset))
			obj.Name("NextFree").Int(a.freeNext(offset))
		} else {
			obj.Name("State").String("Used")
		}

		return nil
	})
}

func (a *ExplicitAllocator) DebugLogAllBlocks(logger *slog.Logger, logFunc func(log *slog.Logger, offset, size int, free bool)) {
	logger.LogAttrs(context.Background(), slog.LevelDebug, "segment",
		slog.Int("length", a.length),
		slog.Int("usedBytes", a.nused),
		slog.Int("firstFree", a.firstFree))

	for offset := 0; offset < a.length; offset = a.nextBlock(offset) {
		logFunc(logger, offset, a.blockSize(offset), !a.isAllocated(offset))
	}
}
