package usecase

import (
	"fmt"

	"github.com/vitos/strategy_backtest/internal/domain"
	"github.com/vitos/strategy_backtest/internal/indicators"
)

// MACDStrategy signals on histogram sign flips. The histogram is computed
// twice per bar, once for the full window and once excluding its last bar;
// the crossover is the comparison of those two independent computations. A
// single rolling state would accumulate floating-point drift over long runs.
type MACDStrategy struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACDStrategy builds a MACD crossover strategy. Non-positive periods take
// the conventional 12/26/9 defaults.
func NewMACDStrategy(fast, slow, signal int) *MACDStrategy {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}
	return &MACDStrategy{fastPeriod: fast, slowPeriod: slow, signalPeriod: signal}
}

func (s *MACDStrategy) Name() string { return "macd" }

func (s *MACDStrategy) Analyze(window []domain.Bar) (domain.Signal, error) {
	if len(window) == 0 {
		return domain.Signal{Action: domain.ActionHold, Confidence: 0.3}, nil
	}
	bar := window[len(window)-1]

	// The prior window needs a defined histogram too, hence the +1.
	if len(window) < s.slowPeriod+s.signalPeriod+1 {
		return domain.Signal{Action: domain.ActionHold, Confidence: 0.3, Price: bar.Price, Time: bar.Time}, nil
	}

	closes := make([]float64, len(window))
	for i, b := range window {
		closes[i] = b.Price
	}

	curr, err := lastHistogram(closes, s.fastPeriod, s.slowPeriod, s.signalPeriod)
	if err != nil {
		return domain.Signal{}, fmt.Errorf("macd: %w", err)
	}
	prev, err := lastHistogram(closes[:len(closes)-1], s.fastPeriod, s.slowPeriod, s.signalPeriod)
	if err != nil {
		return domain.Signal{}, fmt.Errorf("macd: %w", err)
	}

	switch {
	case curr > 0 && prev < 0:
		return domain.Signal{Action: domain.ActionBuy, Confidence: 0.8, Price: bar.Price, Time: bar.Time}, nil
	case curr < 0 && prev > 0:
		return domain.Signal{Action: domain.ActionSell, Confidence: 0.8, Price: bar.Price, Time: bar.Time}, nil
	}
	return domain.Signal{Action: domain.ActionHold, Confidence: 0.5, Price: bar.Price, Time: bar.Time}, nil
}

func lastHistogram(series []float64, fast, slow, signal int) (float64, error) {
	_, _, hist, err := indicators.MACD(series, fast, slow, signal)
	if err != nil {
		return 0, err
	}
	return hist[len(hist)-1], nil
}
