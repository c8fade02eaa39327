package usecase

import (
	"math"

	"github.com/vitos/strategy_backtest/internal/domain"
)

// CalculateMetrics derives summary statistics from a closed-trade ledger and
// its trade-indexed equity curve. The equity slice must hold at least the
// initial capital. Degenerate inputs keep their IEEE values: an empty ledger
// gives a NaN win rate, a ledger without losers gives an infinite profit
// factor. Masking either as zero would hide an empty or lossless run.
func CalculateMetrics(trades []domain.Trade, equity []float64) domain.Metrics {
	var winSum, lossSum float64
	wins := 0
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
			winSum += t.PnL
		} else if t.PnL < 0 {
			lossSum += t.PnL
		}
	}

	return domain.Metrics{
		TotalReturn:  (equity[len(equity)-1] - equity[0]) / equity[0] * 100,
		WinRate:      float64(wins) / float64(len(trades)),
		ProfitFactor: math.Abs(winSum / lossSum),
		MaxDrawdown:  MaxDrawdown(equity),
		SharpeRatio:  SharpeRatio(equity),
	}
}

// MaxDrawdown is the largest peak-to-trough decline over the equity curve,
// as a fraction of the running peak.
func MaxDrawdown(equity []float64) float64 {
	var maxDD float64
	peak := equity[0]
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if dd := (peak - v) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// SharpeRatio is the mean of period-over-period equity returns divided by
// their population standard deviation, annualized with sqrt(252). The curve
// is trade-indexed rather than calendar-indexed, so the daily annualization
// constant is an approximation kept for compatibility with the reference
// statistics.
func SharpeRatio(equity []float64) float64 {
	returns := make([]float64, 0, len(equity))
	for i := 1; i < len(equity); i++ {
		returns = append(returns, (equity[i]-equity[i-1])/equity[i-1])
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	std := math.Sqrt(variance / float64(len(returns)))

	return mean / std * math.Sqrt(252)
}
