package arena

import (
	"context"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/segalloc/segalloc/heaputils"
	"github.com/segalloc/segalloc/segment"
	"golang.org/x/exp/slog"
)

// AllocationInfo is the per-allocation metadata an Arena tracks alongside the
// raw engine state
type AllocationInfo struct {
	// Size is the payload size in bytes of the caller's most recent Alloc or
	// Realloc request for this allocation
	Size int
	// Name is the caller-provided identifier for the allocation, used in logs
	Name string
}

// Arena wraps one allocator engine and its backing segment, tracking every
// live allocation so that misuse the raw engines leave undefined (freeing an
// unknown payload) can be reported, and so unreleased allocations can be
// named when the Arena is destroyed.
//
// An Arena is not safe for concurrent use.
type Arena struct {
	logger    *slog.Logger
	name      string
	algorithm Algorithm

	segment         []byte
	allocator       segment.Allocator
	liveAllocations *swiss.Map[int, AllocationInfo]
}

func sliceBase(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(&buf[0])
}

// Name returns the identifier this Arena was created with
func (a *Arena) Name() string { return a.name }

// Algorithm returns the engine this Arena drives
func (a *Arena) Algorithm() Algorithm { return a.algorithm }

// SegmentSize returns the length in bytes of the backing segment
func (a *Arena) SegmentSize() int { return a.allocator.SegmentSize() }

// AllocationCount returns the number of live allocations
func (a *Arena) AllocationCount() int { return a.liveAllocations.Count() }

func (a *Arena) blockOffset(payload []byte) (int, error) {
	base := uintptr(sliceBase(a.segment))
	p := uintptr(unsafe.Pointer(&payload[0]))
	if p < base+segment.HeaderSize || p >= base+uintptr(len(a.segment)) {
		return 0, errors.New("payload does not point into this arena's segment")
	}

	return int(p-base) - segment.HeaderSize, nil
}

// Alloc carves a payload of at least size bytes out of the segment. The name
// identifies the allocation in logs and unreleased-memory reports and may be
// empty.
func (a *Arena) Alloc(size int, name string) ([]byte, error) {
	if a.allocator == nil {
		return nil, errors.New("arena has been destroyed")
	}

	payload, err := a.allocator.Alloc(size)
	if err != nil {
		return nil, err
	}

	offset, err := a.blockOffset(payload)
	if err != nil {
		return nil, err
	}

	a.liveAllocations.Put(offset, AllocationInfo{Size: size, Name: name})
	heaputils.DebugValidate(a)

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "allocated block",
		slog.Int("offset", offset),
		slog.Int("size", size),
		slog.String("name", name))

	return payload, nil
}

// Free returns the block backing the provided payload to the free set. Freeing
// a nil payload is a no-op; freeing a payload this Arena did not hand out
// returns an error and leaves the segment untouched.
func (a *Arena) Free(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	if a.allocator == nil {
		return errors.New("arena has been destroyed")
	}

	offset, err := a.blockOffset(payload)
	if err != nil {
		return err
	}

	info, live := a.liveAllocations.Get(offset)
	if !live {
		return errors.Newf("no live allocation at offset %d", offset)
	}

	err = a.allocator.Free(payload)
	if err != nil {
		return err
	}

	a.liveAllocations.Delete(offset)
	heaputils.DebugValidate(a)

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "freed block",
		slog.Int("offset", offset),
		slog.String("name", info.Name))

	return nil
}

// Realloc resizes the block backing the provided payload, moving it if the
// engine cannot resize in place. A nil payload behaves like Alloc with an
// empty name; a size of zero behaves like Free and returns nil.
func (a *Arena) Realloc(payload []byte, size int) ([]byte, error) {
	if payload == nil {
		return a.Alloc(size, "")
	}
	if size == 0 {
		return nil, a.Free(payload)
	}
	if a.allocator == nil {
		return nil, errors.New("arena has been destroyed")
	}

	oldOffset, err := a.blockOffset(payload)
	if err != nil {
		return nil, err
	}

	info, live := a.liveAllocations.Get(oldOffset)
	if !live {
		return nil, errors.Newf("no live allocation at offset %d", oldOffset)
	}

	newPayload, err := a.allocator.Realloc(payload, size)
	if err != nil {
		return nil, err
	}

	newOffset, err := a.blockOffset(newPayload)
	if err != nil {
		return nil, err
	}

	a.liveAllocations.Delete(oldOffset)
	a.liveAllocations.Put(newOffset, AllocationInfo{Size: size, Name: info.Name})
	heaputils.DebugValidate(a)

	return newPayload, nil
}

// Validate cross-checks the allocation registry against the segment and then
// runs the engine's own consistency checks.
func (a *Arena) Validate() error {
	if a.allocator == nil {
		return errors.New("arena has been destroyed")
	}

	registered := 0
	err := a.allocator.VisitAllBlocks(func(offset, size int, free bool) error {
		_, live := a.liveAllocations.Get(offset)
		if free && live {
			return errors.Newf("block at offset %d is free but has a registered allocation", offset)
		}
		if !free && !live {
			return errors.Newf("block at offset %d is in use but has no registered allocation", offset)
		}
		if live {
			registered++
		}

		return nil
	})
	if err != nil {
		return err
	}

	if registered != a.liveAllocations.Count() {
		return errors.Newf("the registry holds %d allocations, but only %d were found in the segment", a.liveAllocations.Count(), registered)
	}

	return a.allocator.Validate()
}

// Destroy tears the Arena down. Any allocations still live are logged at
// error level and cause Destroy to fail.
func (a *Arena) Destroy() error {
	if a.allocator == nil {
		return nil
	}

	if !a.allocator.IsEmpty() {
		// Log all remaining allocations
		_ = a.allocator.VisitAllBlocks(func(offset, size int, free bool) error {
			if free {
				return nil
			}

			name := "empty"
			info, live := a.liveAllocations.Get(offset)
			if live && info.Name != "" {
				name = info.Name
			}

			a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
				slog.Int("offset", offset),
				slog.Int("size", size),
				slog.String("name", name))
			return nil
		})

		return errors.New("some allocations were not freed before the destruction of this arena!")
	}

	a.allocator = nil
	a.segment = nil
	a.liveAllocations = nil
	return nil
}

// Stats sums the Arena's allocation statistics into the provided object
func (a *Arena) Stats(stats *heaputils.Statistics) {
	a.allocator.AddStatistics(stats)
}

// DetailedStats sums the Arena's per-block statistics into the provided object
func (a *Arena) DetailedStats(stats *heaputils.DetailedStatistics) {
	a.allocator.AddDetailedStatistics(stats)
}

// PrintDetailedMap writes a full diagnostic dump of the Arena's segment as a
// json object
func (a *Arena) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("Name").String(a.name)
	objState.Name("Algorithm").String(a.algorithm.String())
	a.allocator.BlockJsonData(objState)
}

// DebugLogAllocations logs one line per block in the segment at debug level
func (a *Arena) DebugLogAllocations() {
	a.allocator.DebugLogAllBlocks(a.logger, func(log *slog.Logger, offset, size int, free bool) {
		name := ""
		if !free {
			info, live := a.liveAllocations.Get(offset)
			if live {
				name = info.Name
			}
		}

		log.LogAttrs(context.Background(), slog.LevelDebug, "block",
			slog.Int("offset", offset),
			slog.Int("size", size),
			slog.Bool("free", free),
			slog.String("name", name))
	})
}
