package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Order Flow Analysis: %s\n\n", r.Symbol))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| OFI Windows | %d |\n", r.DataSummary.WindowCount))
	sb.WriteString(fmt.Sprintf("| Grid Samples | %d |\n", r.DataSummary.SampleCount))
	sb.WriteString(fmt.Sprintf("| Window Width (ms) | %d |\n", r.DataSummary.WindowMs))
	sb.WriteString(fmt.Sprintf("| Date Range Start (ms) | %d |\n", r.DataSummary.DateRangeStart))
	sb.WriteString(fmt.Sprintf("| Date Range End (ms) | %d |\n", r.DataSummary.DateRangeEnd))
	sb.WriteString("\n")

	// OFI Summary
	sb.WriteString("## Order Flow Imbalance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Mean | %.4f |\n", r.OFISummary.Mean))
	sb.WriteString(fmt.Sprintf("| Std | %.4f |\n", r.OFISummary.Std))
	sb.WriteString(fmt.Sprintf("| Min | %.4f |\n", r.OFISummary.Min))
	sb.WriteString(fmt.Sprintf("| Max | %.4f |\n", r.OFISummary.Max))
	sb.WriteString(fmt.Sprintf("| Cumulative | %.4f |\n", r.OFISummary.CumulativeLast))
	sb.WriteString(fmt.Sprintf("| Extreme Windows (\\|z\\| > 2) | %d |\n", r.OFISummary.ExtremeWindows))
	sb.WriteString("\n")

	// Regimes
	sb.WriteString("## Volatility Regimes\n\n")
	sb.WriteString(fmt.Sprintf("Low: %d | Normal: %d | High: %d\n\n",
		r.Regimes.LowVolSamples, r.Regimes.NormalSamples, r.Regimes.HighVolSamples))
	if len(r.Regimes.Transitions) > 0 {
		sb.WriteString("| Timestamp (ms) | From | To | Vol 1m | Z-Score |\n")
		sb.WriteString("|----------------|------|----|---------|--------|\n")
		for _, c := range r.Regimes.Transitions {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %.6f | %.2f |\n",
				c.TimestampMs, c.FromRegime, c.ToRegime, c.Volatility, c.ZScore))
		}
	} else {
		sb.WriteString("No regime transitions detected.\n")
	}
	sb.WriteString("\n")

	// Correlations
	sb.WriteString("## Signal Correlations\n\n")
	if len(r.Correlations) > 0 {
		sb.WriteString("| Predictor | Horizon (s) | r | R2 | p | Significant | N |\n")
		sb.WriteString("|-----------|-------------|---|----|----|-------------|---|\n")
		for _, c := range r.Correlations {
			sig := ""
			if c.Significant {
				sig = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %.4f | %s | %d |\n",
				c.Predictor, c.HorizonSec, c.Coefficient, c.RSquared, c.PValue, sig, c.SampleSize))
		}
	} else {
		sb.WriteString("Insufficient data for correlation screens.\n")
	}
	sb.WriteString("\n")

	// Regressions
	sb.WriteString("## Predictive Regressions\n\n")
	if len(r.Regressions) > 0 {
		sb.WriteString("| Predictor | Horizon (s) | Slope | R2 | p | RMSE | AIC | N |\n")
		sb.WriteString("|-----------|-------------|-------|----|----|------|-----|---|\n")
		for _, reg := range r.Regressions {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.6g | %.4f | %.4f | %.6g | %.2f | %d |\n",
				reg.Predictor, reg.HorizonSec, reg.Slope, reg.RSquared, reg.PValue,
				reg.RMSE, reg.AIC, reg.SampleSize))
		}
	} else {
		sb.WriteString("Insufficient data for regression screens.\n")
	}
	sb.WriteString("\n")

	// Distributions
	sb.WriteString("## Distributions\n\n")
	if len(r.Distributions) > 0 {
		sb.WriteString("| Series | N | Mean | Std | Skew | ExKurt | P25 | Median | P75 | Normal |\n")
		sb.WriteString("|--------|---|------|-----|------|--------|-----|--------|-----|--------|\n")
		for _, d := range r.Distributions {
			normal := "n/a"
			if d.NormalityPValue != nil {
				normal = "no"
				if d.IsNormal {
					normal = "yes"
				}
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %s |\n",
				d.Name, d.SampleSize, d.Mean, d.Std, d.Skewness, d.Kurtosis,
				d.P25, d.Median, d.P75, normal))
		}
	} else {
		sb.WriteString("Insufficient data for distribution stats.\n")
	}
	sb.WriteString("\n")

	// Signal performance
	sb.WriteString("## Signal Performance\n\n")
	if p := r.Performance; p != nil && p.SampleSize > 0 {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Signal | %s |\n", p.SignalName))
		sb.WriteString(fmt.Sprintf("| Threshold | %.2f |\n", p.Threshold))
		sb.WriteString(fmt.Sprintf("| Sharpe | %.4f |\n", p.SharpeRatio))
		sb.WriteString(fmt.Sprintf("| Annualized Sharpe | %.4f |\n", p.AnnualizedSharpe))
		sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", p.WinRate))
		sb.WriteString(fmt.Sprintf("| Max Drawdown | %.6f |\n", p.MaxDrawdown))
		sb.WriteString(fmt.Sprintf("| Total Return | %.6f |\n", p.TotalReturn))
		sb.WriteString(fmt.Sprintf("| Periods | %d |\n", p.SampleSize))
	} else {
		sb.WriteString("Insufficient data for signal performance.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
