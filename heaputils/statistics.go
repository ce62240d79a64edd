package heaputils

import "math"

// Statistics is the summary view of one or more segments: how many segments
// and allocations exist, and how many bytes each side claims.
type Statistics struct {
	SegmentCount    int
	AllocationCount int
	SegmentBytes    int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	*s = Statistics{}
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.SegmentCount += other.SegmentCount
	s.AllocationCount += other.AllocationCount
	s.SegmentBytes += other.SegmentBytes
	s.AllocationBytes += other.AllocationBytes
}

// DetailedStatistics extends Statistics with free-region counts and the size
// extremes of allocations and free regions. Cleared extremes are the empty
// interval (min above max), so the first observation always narrows them.
type DetailedStatistics struct {
	Statistics
	UnusedRangeCount   int
	AllocationSizeMin  int
	AllocationSizeMax  int
	UnusedRangeSizeMin int
	UnusedRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.UnusedRangeCount = 0
	s.AllocationSizeMin, s.AllocationSizeMax = math.MaxInt, 0
	s.UnusedRangeSizeMin, s.UnusedRangeSizeMax = math.MaxInt, 0
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size
	widen(&s.AllocationSizeMin, &s.AllocationSizeMax, size, size)
}

func (s *DetailedStatistics) AddUnusedRange(size int) {
	s.UnusedRangeCount++
	widen(&s.UnusedRangeSizeMin, &s.UnusedRangeSizeMax, size, size)
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.UnusedRangeCount += other.UnusedRangeCount
	widen(&s.AllocationSizeMin, &s.AllocationSizeMax, other.AllocationSizeMin, other.AllocationSizeMax)
	widen(&s.UnusedRangeSizeMin, &s.UnusedRangeSizeMax, other.UnusedRangeSizeMin, other.UnusedRangeSizeMax)
}

// widen grows the [min, max] interval to cover [lo, hi]. Empty source
// intervals leave the target unchanged.
func widen(min, max *int, lo, hi int) {
	if lo < *min {
		*min = lo
	}
	if hi > *max {
		*max = hi
	}
}
