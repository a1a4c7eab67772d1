package reporting

import (
	"fmt"
	"strings"

	"order-book-lab/internal/domain"
)

// RenderCorrelationsCSV renders correlation results as a CSV string.
func RenderCorrelationsCSV(results []*domain.CorrelationResult) string {
	var sb strings.Builder

	sb.WriteString("predictor,horizon_sec,coefficient,r_squared,p_value,significant,sample_size\n")
	for _, c := range results {
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%.6f,%.6f,%t,%d\n",
			c.Predictor,
			c.HorizonSec,
			c.Coefficient,
			c.RSquared,
			c.PValue,
			c.Significant,
			c.SampleSize,
		))
	}

	return sb.String()
}

// RenderOFIWindowsCSV renders the OFI window series as a CSV string.
func RenderOFIWindowsCSV(windows []*domain.OFIWindow) string {
	var sb strings.Builder

	sb.WriteString("symbol,timestamp_ms,window_ms,ofi,ofi_with_trades,bid_pressure,ask_pressure,")
	sb.WriteString("market_buy_volume,market_sell_volume,depth_imbalance,mid_price,event_count,")
	sb.WriteString("ofi_ma5,ofi_ma20,ofi_std20,ofi_zscore,ofi_trend,ofi_cumulative\n")

	for _, w := range windows {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			w.Symbol,
			w.TimestampMs,
			w.WindowMs,
			w.OFI,
			w.OFIWithTrades,
			w.BidPressure,
			w.AskPressure,
			w.MarketBuyVolume,
			w.MarketSellVolume,
			w.DepthImbalance,
			w.MidPrice,
			w.EventCount,
			w.OFIMA5,
			w.OFIMA20,
			w.OFIStd20,
			w.OFIZScore,
			w.OFITrend,
			w.OFICumulative,
		))
	}

	return sb.String()
}

// RenderRegimeChangesCSV renders regime transitions as a CSV string.
func RenderRegimeChangesCSV(changes []*domain.RegimeChange) string {
	var sb strings.Builder

	sb.WriteString("timestamp_ms,from_regime,to_regime,volatility_1m,z_score\n")
	for _, c := range changes {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%.8f,%.4f\n",
			c.TimestampMs,
			c.FromRegime,
			c.ToRegime,
			c.Volatility,
			c.ZScore,
		))
	}

	return sb.String()
}
