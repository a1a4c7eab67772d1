// Package liquidity derives resting-liquidity structure from order-book
// events: density clusters, depth profiles, holes, side imbalance and VWAP.
// All functions are pure and operate on immutable, time-ordered snapshots.
package liquidity

import (
	"math"
	"sort"

	"order-book-lab/internal/domain"
)

// maxClustersPerSide caps the returned clusters per side, strongest first.
const maxClustersPerSide = 10

// Imbalance interpretation labels.
const (
	InterpStrongBid   = "Strong bid dominance (bullish)"
	InterpModerateBid = "Moderate bid dominance (bullish)"
	InterpBalanced    = "Balanced"
	InterpModerateAsk = "Moderate ask dominance (bearish)"
	InterpStrongAsk   = "Strong ask dominance (bearish)"
)

// AnalyzeClustering clusters liquidity-adding events by price density.
// epsPct is converted to an absolute radius using the mean mid price of
// each side's events. Sides with fewer than minSamples qualifying events
// are omitted. Clusters are sorted by total usd value descending and
// capped at 10 per side.
func AnalyzeClustering(events []*domain.Event, epsPct float64, minSamples int) map[domain.Side][]*domain.Cluster {
	result := make(map[domain.Side][]*domain.Cluster)
	if len(events) == 0 {
		return result
	}

	for _, side := range []domain.Side{domain.SideBid, domain.SideAsk} {
		sideEvents := filterAdditive(events, side)
		if len(sideEvents) < minSamples {
			continue
		}

		meanMid := meanMidPrice(sideEvents)
		eps := epsPct / 100 * meanMid

		prices := make([]float64, len(sideEvents))
		for i, e := range sideEvents {
			prices[i] = e.Price
		}
		labels := clusterPrices(prices, eps, minSamples)

		clusters := buildClusters(sideEvents, labels, side)
		if len(clusters) > 0 {
			result[side] = clusters
		}
	}

	return result
}

// buildClusters aggregates labeled events into cluster records.
func buildClusters(events []*domain.Event, labels []int, side domain.Side) []*domain.Cluster {
	members := make(map[int][]*domain.Event)
	for i, label := range labels {
		if label == noiseLabel {
			continue
		}
		members[label] = append(members[label], events[i])
	}

	clusters := make([]*domain.Cluster, 0, len(members))
	for _, evs := range members {
		clusters = append(clusters, summarizeCluster(evs, side))
	}

	// Strongest liquidity first; price level breaks ties deterministically.
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].TotalUSDValue != clusters[j].TotalUSDValue {
			return clusters[i].TotalUSDValue > clusters[j].TotalUSDValue
		}
		return clusters[i].PriceLevel < clusters[j].PriceLevel
	})
	if len(clusters) > maxClustersPerSide {
		clusters = clusters[:maxClustersPerSide]
	}
	return clusters
}

// summarizeCluster computes aggregate fields for one cluster's members.
func summarizeCluster(evs []*domain.Event, side domain.Side) *domain.Cluster {
	n := len(evs)
	c := &domain.Cluster{
		Side:        side,
		EventCount:  n,
		PriceMin:    evs[0].Price,
		PriceMax:    evs[0].Price,
		FirstSeenMs: evs[0].TimestampMs,
		LastSeenMs:  evs[0].TimestampMs,
	}

	var priceSum, distSum float64
	for _, e := range evs {
		priceSum += e.Price
		distSum += e.DistanceFromMidPct
		c.TotalUSDValue += e.USDValue
		if e.Price < c.PriceMin {
			c.PriceMin = e.Price
		}
		if e.Price > c.PriceMax {
			c.PriceMax = e.Price
		}
		if e.TimestampMs < c.FirstSeenMs {
			c.FirstSeenMs = e.TimestampMs
		}
		if e.TimestampMs > c.LastSeenMs {
			c.LastSeenMs = e.TimestampMs
		}
	}
	c.PriceLevel = priceSum / float64(n)
	c.AvgUSDValue = c.TotalUSDValue / float64(n)
	c.AvgDistanceFromMidPct = distSum / float64(n)
	c.TimeSpanMs = c.LastSeenMs - c.FirstSeenMs

	// Population std: the cluster is the entire population of its members.
	var sumSq float64
	for _, e := range evs {
		d := e.Price - c.PriceLevel
		sumSq += d * d
	}
	c.PriceStd = math.Sqrt(sumSq / float64(n))

	return c
}

// DepthProfile bins liquidity-adding event prices into priceBins
// equal-width buckets per side, sorted ascending by price level.
func DepthProfile(events []*domain.Event, priceBins int) map[domain.Side][]*domain.DepthLevel {
	result := make(map[domain.Side][]*domain.DepthLevel)
	if len(events) == 0 || priceBins < 1 {
		return result
	}

	for _, side := range []domain.Side{domain.SideBid, domain.SideAsk} {
		sideEvents := filterAdditive(events, side)
		if len(sideEvents) == 0 {
			continue
		}

		minPrice, maxPrice := sideEvents[0].Price, sideEvents[0].Price
		for _, e := range sideEvents {
			if e.Price < minPrice {
				minPrice = e.Price
			}
			if e.Price > maxPrice {
				maxPrice = e.Price
			}
		}

		width := (maxPrice - minPrice) / float64(priceBins)
		type bucket struct {
			volume  float64
			usd     float64
			count   int
			distSum float64
		}
		buckets := make([]bucket, priceBins)
		for _, e := range sideEvents {
			idx := 0
			if width > 0 {
				idx = int((e.Price - minPrice) / width)
				if idx >= priceBins {
					idx = priceBins - 1
				}
			}
			buckets[idx].volume += e.Volume
			buckets[idx].usd += e.USDValue
			buckets[idx].count++
			buckets[idx].distSum += e.DistanceFromMidPct
		}

		var levels []*domain.DepthLevel
		for i, b := range buckets {
			if b.count == 0 {
				continue
			}
			levels = append(levels, &domain.DepthLevel{
				Side:                  side,
				PriceLevel:            minPrice + (float64(i)+0.5)*width,
				Volume:                b.volume,
				USDValue:              b.usd,
				OrderCount:            b.count,
				AvgDistanceFromMidPct: b.distSum / float64(b.count),
			})
		}
		sort.Slice(levels, func(i, j int) bool {
			return levels[i].PriceLevel < levels[j].PriceLevel
		})
		result[side] = levels
	}

	return result
}

// DetectHoles finds price gaps between consecutive resting orders wider
// than thresholdPct of the side's mean mid price.
func DetectHoles(events []*domain.Event, thresholdPct float64) map[domain.Side][]*domain.LiquidityHole {
	result := make(map[domain.Side][]*domain.LiquidityHole)
	if len(events) == 0 {
		return result
	}

	for _, side := range []domain.Side{domain.SideBid, domain.SideAsk} {
		sideEvents := filterAdditive(events, side)
		if len(sideEvents) < 2 {
			continue
		}

		meanMid := meanMidPrice(sideEvents)
		if meanMid <= 0 {
			continue
		}
		threshold := thresholdPct / 100 * meanMid

		prices := make([]float64, len(sideEvents))
		for i, e := range sideEvents {
			prices[i] = e.Price
		}
		sort.Float64s(prices)

		var holes []*domain.LiquidityHole
		for i := 1; i < len(prices); i++ {
			gap := prices[i] - prices[i-1]
			if gap <= threshold {
				continue
			}
			midpoint := (prices[i] + prices[i-1]) / 2
			holes = append(holes, &domain.LiquidityHole{
				Side:               side,
				PriceLow:           prices[i-1],
				PriceHigh:          prices[i],
				GapSize:            gap,
				GapPct:             gap / meanMid * 100,
				DistanceFromMidPct: (midpoint - meanMid) / meanMid * 100,
			})
		}
		if len(holes) > 0 {
			result[side] = holes
		}
	}

	return result
}

// Ratio sums liquidity-adding usd value within distanceThresholdPct of mid
// per side and derives the signed imbalance with its interpretation.
func Ratio(events []*domain.Event, distanceThresholdPct float64) *domain.LiquidityRatio {
	r := &domain.LiquidityRatio{Interpretation: InterpBalanced}

	for _, e := range events {
		if !e.IsLiquidityAdding() {
			continue
		}
		if math.Abs(e.DistanceFromMidPct) > distanceThresholdPct {
			continue
		}
		switch e.Side {
		case domain.SideBid:
			r.BidLiquidityUSD += e.USDValue
		case domain.SideAsk:
			r.AskLiquidityUSD += e.USDValue
		}
	}

	r.TotalLiquidityUSD = r.BidLiquidityUSD + r.AskLiquidityUSD
	if r.TotalLiquidityUSD > 0 {
		r.BidRatio = r.BidLiquidityUSD / r.TotalLiquidityUSD
		r.AskRatio = r.AskLiquidityUSD / r.TotalLiquidityUSD
		r.Imbalance = (r.BidLiquidityUSD - r.AskLiquidityUSD) / r.TotalLiquidityUSD
	}
	r.Interpretation = interpretImbalance(r.Imbalance)

	return r
}

// interpretImbalance maps a signed imbalance to a qualitative label.
func interpretImbalance(imbalance float64) string {
	switch {
	case imbalance > 0.3:
		return InterpStrongBid
	case imbalance > 0.1:
		return InterpModerateBid
	case imbalance > -0.1:
		return InterpBalanced
	case imbalance > -0.3:
		return InterpModerateAsk
	default:
		return InterpStrongAsk
	}
}

// VolumeWeightedPrice returns the volume-weighted mean price of
// liquidity-adding events for one side, 0 if the side carries no volume.
func VolumeWeightedPrice(events []*domain.Event, side domain.Side) float64 {
	var weighted, volume float64
	for _, e := range events {
		if !e.IsLiquidityAdding() || e.Side != side {
			continue
		}
		weighted += e.Price * e.Volume
		volume += e.Volume
	}
	if volume == 0 {
		return 0
	}
	return weighted / volume
}

// filterAdditive returns liquidity-adding events for one side,
// preserving input order.
func filterAdditive(events []*domain.Event, side domain.Side) []*domain.Event {
	var out []*domain.Event
	for _, e := range events {
		if e.IsLiquidityAdding() && e.Side == side {
			out = append(out, e)
		}
	}
	return out
}

// meanMidPrice averages the mid price across events.
func meanMidPrice(events []*domain.Event) float64 {
	if len(events) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range events {
		sum += e.MidPrice
	}
	return sum / float64(len(events))
}
