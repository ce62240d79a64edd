package segment

import (
	"encoding/binary"
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/segalloc/segalloc/heaputils"
	"golang.org/x/exp/slog"
)

const (
	// HeaderSize is the number of bytes of metadata that precede every block's payload
	HeaderSize = 8
	// Alignment is the payload-size granularity and the alignment of every payload's
	// starting offset within the segment. It must be a power of two that divides HeaderSize.
	Alignment = 8
	// MaxRequestSize is the largest payload size in bytes that Alloc and Realloc accept
	MaxRequestSize = 1<<32 - 1

	allocatedBit = 1
	sizeMask     = ^uint64(Alignment - 1)

	// noBlock is the in-memory nil for block offsets
	noBlock = -1

	freeLinkNil = ^uint64(0)
)

// Allocator manages a single caller-supplied segment of memory, carving
// byte ranges out of it on request. It allows allocations to be made,
// resized, and freed, as well as enumerated and queried.
type Allocator interface {
	// Init must be called before the Allocator is used. It hands the implementation
	// the segment of memory it will be managing and resets all allocator state, so
	// calling it a second time discards every live allocation. Init returns an error
	// if the segment is too small to hold a single block of the implementation's
	// minimum payload size, or if the segment length is not a multiple of Alignment.
	Init(segment []byte) error
	// SegmentSize retrieves the length in bytes of the segment the allocator was
	// initialized with
	SegmentSize() int
	// MinPayload returns the smallest legal payload size in bytes for this
	// implementation. Alloc requests below this size are rounded up to it.
	MinPayload() int

	// Validate performs internal consistency checks on the segment. These checks may
	// be expensive, depending on the implementation. When the implementation is
	// functioning correctly, it should not be possible for this method to return an
	// error, but this may assist in diagnosing issues with the implementation or with
	// callers that have written outside their payloads.
	Validate() error
	// AllocationCount returns the number of in-use blocks currently live in the
	// segment. This number should generally be the number of successful allocations
	// minus the number of successful frees.
	AllocationCount() int
	// FreeRegionsCount returns the number of free blocks in the segment. Depending on
	// the implementation, adjacent regions of free memory may or may not have been
	// merged into a single region.
	FreeRegionsCount() int
	// UsedBytes returns the number of bytes claimed by in-use blocks, including
	// their headers.
	UsedBytes() int
	// SumFreeSize returns the number of bytes not claimed by in-use blocks,
	// including the headers of free blocks.
	SumFreeSize() int

	// IsEmpty will return true if this segment has no live allocations
	IsEmpty() bool
	// Clear instantly frees all allocations, leaving the segment as a single free
	// block covering the whole region
	Clear()

	// VisitAllBlocks will call the provided callback once for each block in the
	// segment, in address order. offset is the position of the block's header within
	// the segment and size is the block's payload size in bytes.
	VisitAllBlocks(handleBlock func(offset, size int, free bool) error) error

	// AddDetailedStatistics sums this segment's allocation statistics into the
	// statistics currently present in the provided heaputils.DetailedStatistics object.
	AddDetailedStatistics(stats *heaputils.DetailedStatistics)
	// AddStatistics sums this segment's allocation statistics into the statistics
	// currently present in the provided heaputils.Statistics object.
	AddStatistics(stats *heaputils.Statistics)

	// BlockJsonData populates a json object with information about this segment,
	// including one entry per block
	BlockJsonData(json jwriter.ObjectState)
	// DebugLogAllBlocks will call the provided log callback once for each block in
	// the segment. Intended for diagnostics; it can be slow on fragmented segments.
	DebugLogAllBlocks(logger *slog.Logger, logFunc func(log *slog.Logger, offset, size int, free bool))

	// Alloc carves an in-use block with a payload of at least size bytes out of the
	// segment and returns the payload. The returned slice has len equal to the
	// requested size and cap equal to the block's full payload size. Alloc returns
	// ErrInvalidSize when size is zero, negative, or above MaxRequestSize, and
	// ErrOutOfMemory when no free block can hold the request.
	Alloc(size int) ([]byte, error)
	// Free returns the block backing the provided payload to the free set. Freeing
	// a nil or empty payload is a no-op. The payload must be a slice previously
	// returned by Alloc or Realloc on this allocator; passing any other slice has
	// undefined behavior, though the implementation returns an error for the cases
	// it can detect.
	Free(payload []byte) error
	// Realloc resizes the block backing the provided payload to at least size bytes,
	// moving it if the implementation cannot resize in place, and returns the new
	// payload. A nil payload delegates to Alloc. A size of zero frees the payload and
	// returns nil. When Realloc fails, the original block is left unmodified and
	// still live.
	Realloc(payload []byte, size int) ([]byte, error)
}

var (
	// ErrInvalidSize is returned by Alloc and Realloc when the requested size is
	// zero, negative, or above MaxRequestSize
	ErrInvalidSize = errors.New("requested size is outside the allocatable range")
	// ErrOutOfMemory is returned by Alloc and Realloc when no free block in the
	// segment can hold the request
	ErrOutOfMemory = errors.New("no free block can hold the requested size")
	// ErrSegmentTooSmall is returned by Init when the segment cannot hold a single
	// block of the minimum payload size
	ErrSegmentTooSmall = errors.New("segment is too small to hold a single block")
	// ErrSegmentUnaligned is returned by Init when the segment length is not a
	// multiple of Alignment
	ErrSegmentUnaligned = errors.New("segment length must be a multiple of the block alignment")
	// ErrForeignPayload is returned by Free and Realloc when the provided payload
	// slice can be proven not to have come from this allocator
	ErrForeignPayload = errors.New("payload does not belong to this segment")
)

// segmentBase carries the segment bytes and the bookkeeping counters shared by
// both allocator implementations, along with the header-word accessors.
type segmentBase struct {
	buf    []byte
	length int

	nused      int
	usedBlocks int
	freeBlocks int
}

func (s *segmentBase) initSegment(segment []byte, minPayload int) error {
	heaputils.DebugCheckPow2(uint(Alignment), "block alignment")

	if len(segment) < HeaderSize+minPayload {
		return errors.Wrapf(ErrSegmentTooSmall, "segment is %d bytes, need at least %d", len(segment), HeaderSize+minPayload)
	}
	if len(segment)%Alignment != 0 {
		return errors.Wrapf(ErrSegmentUnaligned, "segment is %d bytes", len(segment))
	}

	s.buf = segment
	s.length = len(segment)
	s.nused = 0
	s.usedBlocks = 0
	s.freeBlocks = 1

	s.writeHeader(0, s.length-HeaderSize, false)
	return nil
}

func (s *segmentBase) headerWord(offset int) uint64 {
	return binary.LittleEndian.Uint64(s.buf[offset:])
}

func (s *segmentBase) setHeaderWord(offset int, word uint64) {
	binary.LittleEndian.PutUint64(s.buf[offset:], word)
}

func (s *segmentBase) blockSize(offset int) int {
	return int(s.headerWord(offset) & sizeMask)
}

func (s *segmentBase) isAllocated(offset int) bool {
	return s.headerWord(offset)&allocatedBit != 0
}

func (s *segmentBase) writeHeader(offset, size int, allocated bool) {
	word := uint64(size)
	if allocated {
		word |= allocatedBit
	}
	s.setHeaderWord(offset, word)
}

// markAllocated and markFree flip the in-use flag by arithmetic on the header
// word. The size component always has the low bit clear, so this never carries.
func (s *segmentBase) markAllocated(offset int) {
	s.setHeaderWord(offset, s.headerWord(offset)+allocatedBit)
}

func (s *segmentBase) markFree(offset int) {
	s.setHeaderWord(offset, s.headerWord(offset)-allocatedBit)
}

// nextBlock steps the walker forward one block
func (s *segmentBase) nextBlock(offset int) int {
	return offset + HeaderSize + s.blockSize(offset)
}

// payload builds the caller-visible slice for the block at offset: len is the
// requested size, cap is the block's full payload.
func (s *segmentBase) payload(offset, requested int) []byte {
	start := offset + HeaderSize
	return s.buf[start : start+requested : start+s.blockSize(offset)]
}

// blockOffset recovers the header offset for a payload slice previously handed
// out by this allocator.
func (s *segmentBase) blockOffset(payload []byte) (int, error) {
	if len(s.buf) == 0 {
		return 0, errors.New("allocator has not been initialized")
	}

	base := uintptr(unsafe.Pointer(&s.buf[0]))
	p := uintptr(unsafe.Pointer(&payload[0]))
	if p < base+HeaderSize || p >= base+uintptr(s.length) {
		return 0, errors.WithStack(ErrForeignPayload)
	}

	payloadOffset := int(p - base)
	if heaputils.AlignDown(payloadOffset, Alignment) != payloadOffset {
		return 0, errors.Wrapf(ErrForeignPayload, "payload offset %d is not aligned", payloadOffset)
	}

	return payloadOffset - HeaderSize, nil
}

// sizeNeeded converts a requested payload size into a legal block size
func sizeNeeded(requested, minPayload int) int {
	if requested < minPayload {
		return minPayload
	}
	return heaputils.AlignUp(requested, Alignment)
}

func checkRequestSize(size int) error {
	if size <= 0 || size > MaxRequestSize {
		return errors.Wrapf(ErrInvalidSize, "requested %d bytes", size)
	}
	return nil
}

func (s *segmentBase) SegmentSize() int { return s.length }

func (s *segmentBase) UsedBytes() int { return s.nused }

func (s *segmentBase) SumFreeSize() int { return s.length - s.nused }

func (s *segmentBase) AllocationCount() int { return s.usedBlocks }

func (s *segmentBase) FreeRegionsCount() int { return s.freeBlocks }

func (s *segmentBase) IsEmpty() bool { return s.usedBlocks == 0 }

func (s *segmentBase) VisitAllBlocks(handleBlock func(offset, size int, free bool) error) error {
	for offset := 0; offset < s.length; offset = s.nextBlock(offset) {
		err := handleBlock(offset, s.blockSize(offset), !s.isAllocated(offset))
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *segmentBase) AddDetailedStatistics(stats *heaputils.DetailedStatistics) {
	stats.SegmentCount++
	stats.SegmentBytes += s.length

	for offset := 0; offset < s.length; offset = s.nextBlock(offset) {
		if s.isAllocated(offset) {
			stats.AddAllocation(s.blockSize(offset))
		} else {
			stats.AddUnusedRange(s.blockSize(offset))
		}
	}
}

func (s *segmentBase) AddStatistics(stats *heaputils.Statistics) {
	stats.SegmentCount++
	stats.AllocationCount += s.usedBlocks
	stats.SegmentBytes += s.length
	stats.AllocationBytes += s.nused - s.usedBlocks*HeaderSize
}

// writeSegmentJson writes the summary fields shared by both implementations
func (s *segmentBase) writeSegmentJson(json jwriter.ObjectState) {
	json.Name("TotalBytes").Int(s.length)
	json.Name("UsedBytes").Int(s.nused)
	json.Name("Allocations").Int(s.usedBlocks)
	json.Name("UnusedRanges").Int(s.freeBlocks)
}

// validateWalk checks the physical block sequence shared by both
// implementations: tiling, alignment, minimum sizes, and the counters. It
// returns the offsets of the free blocks in segment order for further checks.
func (s *segmentBase) validateWalk(minPayload int) ([]int, error) {
	if s.nused > s.length {
		return nil, errors.Errorf("used byte count %d is greater than the segment size %d", s.nused, s.length)
	}

	var freeOffsets []int
	var usedCount, usedBytes int

	offset := 0
	for offset < s.length {
		size := s.blockSize(offset)
		if size < minPayload {
			return nil, errors.Errorf("block at offset %d has size %d, below the minimum payload %d", offset, size, minPayload)
		}
		if size%Alignment != 0 {
			return nil, errors.Errorf("block at offset %d has misaligned size %d", offset, size)
		}
		if offset+HeaderSize+size > s.length {
			return nil, errors.Errorf("block at offset %d overshoots the segment end", offset)
		}

		if s.isAllocated(offset) {
			usedCount++
			usedBytes += size + HeaderSize
		} else {
			freeOffsets = append(freeOffsets, offset)
		}

		offset += HeaderSize + size
	}

	if usedCount != s.usedBlocks {
		return nil, errors.Errorf("the segment holds %d in-use blocks, but the counter says %d", usedCount, s.usedBlocks)
	}
	if len(freeOffsets) != s.freeBlocks {
		return nil, errors.Errorf("the segment holds %d free blocks, but the counter says %d", len(freeOffsets), s.freeBlocks)
	}
	if usedBytes != s.nused {
		return nil, errors.Errorf("in-use blocks claim %d bytes, but the counter says %d", usedBytes, s.nused)
	}

	return freeOffsets, nil
}
