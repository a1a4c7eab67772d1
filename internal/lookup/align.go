// Package lookup provides timestamp-join primitives over sorted series.
// All functions assume timestamps sorted ascending and use binary search,
// matching "nearest", "backward" or "forward" per call site.
package lookup

import (
	"errors"
	"sort"

	"order-book-lab/internal/domain"
)

// ErrNoPriceData is returned when a price slice is empty.
var ErrNoPriceData = errors.New("no price data available")

// IndexAtOrBefore returns the index of the last timestamp <= target,
// or -1 if every timestamp is after target.
func IndexAtOrBefore(timestamps []int64, target int64) int {
	i := sort.Search(len(timestamps), func(i int) bool {
		return timestamps[i] > target
	})
	return i - 1
}

// IndexAtOrAfter returns the index of the first timestamp >= target,
// or -1 if every timestamp is before target.
func IndexAtOrAfter(timestamps []int64, target int64) int {
	i := sort.Search(len(timestamps), func(i int) bool {
		return timestamps[i] >= target
	})
	if i == len(timestamps) {
		return -1
	}
	return i
}

// IndexNearest returns the index of the timestamp closest to target,
// or -1 for an empty slice. Ties resolve to the earlier timestamp.
func IndexNearest(timestamps []int64, target int64) int {
	if len(timestamps) == 0 {
		return -1
	}
	after := sort.Search(len(timestamps), func(i int) bool {
		return timestamps[i] >= target
	})
	if after == 0 {
		return 0
	}
	if after == len(timestamps) {
		return len(timestamps) - 1
	}
	before := after - 1
	if target-timestamps[before] <= timestamps[after]-target {
		return before
	}
	return after
}

// PriceAtOrBefore returns the last mid price observed at or before target.
// Returns ErrNoPriceData for an empty slice and (0, nil) when no
// observation exists at or before target.
func PriceAtOrBefore(target int64, prices []*domain.PricePoint) (float64, error) {
	if len(prices) == 0 {
		return 0, ErrNoPriceData
	}
	idx := IndexAtOrBefore(PriceTimestamps(prices), target)
	if idx < 0 {
		return 0, nil
	}
	return prices[idx].MidPrice, nil
}

// PriceAtOrAfter returns the first mid price observed at or after target.
// Returns ErrNoPriceData for an empty slice and (0, nil) when no
// observation exists at or after target.
func PriceAtOrAfter(target int64, prices []*domain.PricePoint) (float64, error) {
	if len(prices) == 0 {
		return 0, ErrNoPriceData
	}
	idx := IndexAtOrAfter(PriceTimestamps(prices), target)
	if idx < 0 {
		return 0, nil
	}
	return prices[idx].MidPrice, nil
}

// PriceTimestamps extracts the timestamp column from a price series.
func PriceTimestamps(prices []*domain.PricePoint) []int64 {
	ts := make([]int64, len(prices))
	for i, p := range prices {
		ts[i] = p.TimestampMs
	}
	return ts
}
