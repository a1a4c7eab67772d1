package liquidity

import "sort"

// noiseLabel marks points excluded from every cluster.
const noiseLabel = -1

// clusterPrices runs density-based clustering over 1-D price values.
// A point is dense (core) if at least minSamples points, itself included,
// lie within eps of it. Dense points transitively reachable through
// overlapping eps-neighborhoods form one cluster; remaining points within
// eps of a core point join its cluster as border points; everything else
// is noise.
//
// Because the data is 1-D, prices are sorted first and eps-neighborhoods
// are resolved with binary searches, so the scan is O(n log n) without a
// spatial index. Returns a label per input index, noiseLabel for noise.
func clusterPrices(prices []float64, eps float64, minSamples int) []int {
	n := len(prices)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noiseLabel
	}
	if n == 0 || minSamples < 1 {
		return labels
	}

	// Sort index view by price; all neighborhood math runs on the sorted
	// order and labels are written back through the index map.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if prices[order[a]] != prices[order[b]] {
			return prices[order[a]] < prices[order[b]]
		}
		return order[a] < order[b]
	})
	sorted := make([]float64, n)
	for i, idx := range order {
		sorted[i] = prices[idx]
	}

	// Neighborhood of sorted index i is the half-open range [lo, hi).
	lo := make([]int, n)
	hi := make([]int, n)
	core := make([]bool, n)
	for i := range sorted {
		lo[i] = sort.SearchFloat64s(sorted, sorted[i]-eps)
		hi[i] = sort.Search(n, func(j int) bool { return sorted[j] > sorted[i]+eps })
		core[i] = hi[i]-lo[i] >= minSamples
	}

	sortedLabels := make([]int, n)
	for i := range sortedLabels {
		sortedLabels[i] = noiseLabel
	}

	clusterID := 0
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !core[i] || sortedLabels[i] != noiseLabel {
			continue
		}

		// Grow a new cluster from this unclaimed core point.
		sortedLabels[i] = clusterID
		queue = append(queue[:0], i)
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			for j := lo[p]; j < hi[p]; j++ {
				if sortedLabels[j] != noiseLabel {
					continue
				}
				sortedLabels[j] = clusterID
				if core[j] {
					queue = append(queue, j)
				}
			}
		}
		clusterID++
	}

	for i, idx := range order {
		labels[idx] = sortedLabels[i]
	}
	return labels
}
