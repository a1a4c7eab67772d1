package ofi

import (
	"order-book-lab/internal/domain"
	"order-book-lab/internal/lookup"
)

// divergenceLookback is the bucket distance over which OFI and price
// changes are compared.
const divergenceLookback = 5

// DetectDivergence flags buckets where the 5-bucket OFI change and the
// 5-bucket price change disagree in sign. Each OFI bucket is paired with
// the nearest price observation by timestamp. Bullish: OFI rising while
// price falls. Bearish: OFI falling while price rises. Buckets without a
// price match on either end of the lookback are skipped.
func DetectDivergence(windows []*domain.OFIWindow, prices []*domain.PricePoint) []*domain.Divergence {
	if len(windows) <= divergenceLookback || len(prices) == 0 {
		return nil
	}
	priceTs := lookup.PriceTimestamps(prices)

	aligned := make([]float64, len(windows))
	for i, w := range windows {
		aligned[i] = prices[lookup.IndexNearest(priceTs, w.TimestampMs)].MidPrice
	}

	var out []*domain.Divergence
	for i := divergenceLookback; i < len(windows); i++ {
		ofiChange := windows[i].OFI - windows[i-divergenceLookback].OFI
		priceChange := aligned[i] - aligned[i-divergenceLookback]

		var dtype domain.DivergenceType
		switch {
		case ofiChange > 0 && priceChange < 0:
			dtype = domain.DivergenceBullish
		case ofiChange < 0 && priceChange > 0:
			dtype = domain.DivergenceBearish
		default:
			continue
		}

		out = append(out, &domain.Divergence{
			TimestampMs: windows[i].TimestampMs,
			Type:        dtype,
			OFIChange:   ofiChange,
			PriceChange: priceChange,
			OFI:         windows[i].OFI,
			MidPrice:    aligned[i],
		})
	}
	return out
}
