package usecase

import (
	"math"

	"github.com/vitos/strategy_backtest/internal/domain"
)

// GridStrategy trades around a fixed ladder of price levels: buy when price
// falls materially below the nearest level, sell when it rises materially
// above, hold in between. The ladder never changes after construction.
type GridStrategy struct {
	levels  []float64
	spacing float64 // percent between adjacent levels
}

// NewGridStrategy builds a ladder of numLevels levels spaced spacingPct
// percent apart, centered on basePrice.
func NewGridStrategy(basePrice, spacingPct float64, numLevels int) *GridStrategy {
	levels := make([]float64, 0, numLevels)
	for i := 0; i < numLevels; i++ {
		offset := float64(i - numLevels/2)
		levels = append(levels, basePrice*(1+offset*spacingPct/100))
	}
	return &GridStrategy{levels: levels, spacing: spacingPct}
}

func (s *GridStrategy) Name() string { return "grid" }

func (s *GridStrategy) Analyze(window []domain.Bar) (domain.Signal, error) {
	if len(window) == 0 {
		return domain.Signal{Action: domain.ActionHold, Confidence: 0.3}, nil
	}
	bar := window[len(window)-1]
	hold := domain.Signal{Action: domain.ActionHold, Confidence: 0.5, Price: bar.Price, Time: bar.Time}

	nearest, ok := s.nearestLevel(bar.Price)
	if !ok {
		// An empty ladder can never trigger; hold deterministically.
		return hold, nil
	}

	switch {
	case bar.Price < nearest*(1-s.spacing/100):
		return domain.Signal{Action: domain.ActionBuy, Confidence: 0.7, Price: bar.Price, Time: bar.Time}, nil
	case bar.Price > nearest*(1+s.spacing/100):
		return domain.Signal{Action: domain.ActionSell, Confidence: 0.7, Price: bar.Price, Time: bar.Time}, nil
	}
	return hold, nil
}

// nearestLevel picks the ladder level with minimum absolute distance.
func (s *GridStrategy) nearestLevel(price float64) (float64, bool) {
	if len(s.levels) == 0 {
		return 0, false
	}
	best := s.levels[0]
	for _, l := range s.levels[1:] {
		if math.Abs(l-price) < math.Abs(best-price) {
			best = l
		}
	}
	return best, true
}
