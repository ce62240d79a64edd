package arena

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/segalloc/segalloc/heaputils"
	"github.com/segalloc/segalloc/segment"
	"golang.org/x/exp/slog"
)

// Algorithm selects which allocator engine an Arena drives
type Algorithm uint32

const (
	// AlgorithmExplicit manages free space with a doubly linked free list, eager
	// right-coalescing on free, and in-place realloc
	AlgorithmExplicit Algorithm = iota
	// AlgorithmImplicit rediscovers free space by walking the segment linearly and
	// never coalesces or resizes in place
	AlgorithmImplicit
)

var algorithmMapping = map[Algorithm]string{
	AlgorithmExplicit: "Explicit",
	AlgorithmImplicit: "Implicit",
}

func (a Algorithm) String() string {
	return algorithmMapping[a]
}

// CreateOptions contains optional settings when creating an Arena
type CreateOptions struct {
	// Name is an optional human-readable identifier used in logs and heap dumps
	Name string
	// Algorithm selects the allocator engine
	Algorithm Algorithm

	// SegmentSize is the size in bytes of the backing segment the Arena will
	// allocate for itself. It is ignored when Segment is provided.
	SegmentSize int
	// Segment optionally provides the backing segment directly. The caller is
	// responsible for its alignment; the Arena takes ownership until Destroy.
	Segment []byte
}

// New creates a new Arena around a fresh or caller-supplied segment. The logger
// may be nil, in which case slog.Default() is used.
func New(logger *slog.Logger, options CreateOptions) (*Arena, error) {
	if logger == nil {
		logger = slog.Default()
	}

	_, knownAlgorithm := algorithmMapping[options.Algorithm]
	if !knownAlgorithm {
		return nil, errors.Newf("unknown arena algorithm: %d", options.Algorithm)
	}

	seg := options.Segment
	if seg == nil {
		if options.SegmentSize < 1 {
			return nil, errors.New("one of SegmentSize and Segment must be provided")
		}
		seg = allocAlignedSegment(options.SegmentSize)
	}

	var alloc segment.Allocator
	switch options.Algorithm {
	case AlgorithmExplicit:
		alloc = segment.NewExplicitAllocator()
	case AlgorithmImplicit:
		alloc = segment.NewImplicitAllocator()
	}

	err := alloc.Init(seg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to initialize the %s engine with a %d-byte segment", options.Algorithm, len(seg))
	}

	return &Arena{
		logger:    logger,
		name:      options.Name,
		algorithm: options.Algorithm,

		segment:         seg,
		allocator:       alloc,
		liveAllocations: swiss.NewMap[int, AllocationInfo](42),
	}, nil
}

// allocAlignedSegment over-allocates and slides the slice start forward to the
// next alignment boundary, so payload offsets within the segment translate to
// aligned addresses.
func allocAlignedSegment(size int) []byte {
	size = heaputils.AlignUp(size, segment.Alignment)

	raw := make([]byte, size+segment.Alignment)
	misalignment := int(uintptr(sliceBase(raw)) & (segment.Alignment - 1))

	start := 0
	if misalignment != 0 {
		start = segment.Alignment - misalignment
	}
	return raw[start : start+size : start+size]
}
