package usecase

import "math"

type SizingMethod string

const (
	SizingFixed     SizingMethod = "fixed"
	SizingRiskBased SizingMethod = "risk-based"
	SizingKelly     SizingMethod = "kelly"
)

// PositionConfig is fixed for the lifetime of a run.
type PositionConfig struct {
	MaxPositionSize     float64 // fraction of capital
	MinPositionSize     float64 // fraction of capital
	DefaultRiskPerTrade float64
	Method              SizingMethod

	// Kelly inputs. Placeholders stand in until a caller supplies estimates
	// from trade history.
	KellyWinRate      float64
	KellyWinLossRatio float64
}

func DefaultPositionConfig() PositionConfig {
	return PositionConfig{
		MaxPositionSize:     0.1,
		MinPositionSize:     0.01,
		DefaultRiskPerTrade: 0.02,
		Method:              SizingRiskBased,
		KellyWinRate:        0.5,
		KellyWinLossRatio:   1.5,
	}
}

// PositionManager turns a risk budget and price into a concrete position
// size. It holds no per-run state beyond its immutable config.
type PositionManager struct {
	config PositionConfig
}

func NewPositionManager(config PositionConfig) *PositionManager {
	if config.Method == "" {
		config.Method = SizingRiskBased
	}
	if config.KellyWinRate == 0 {
		config.KellyWinRate = 0.5
	}
	if config.KellyWinLossRatio == 0 {
		config.KellyWinLossRatio = 1.5
	}
	return &PositionManager{config: config}
}

// CalculatePositionSize sizes a trade with the configured method.
func (m *PositionManager) CalculatePositionSize(capital, risk, price float64) float64 {
	return m.CalculateWithMethod(m.config.Method, capital, risk, price)
}

// CalculateWithMethod sizes a trade with an explicit method. Unknown methods
// fall back to risk-based sizing; sizing never fails.
func (m *PositionManager) CalculateWithMethod(method SizingMethod, capital, risk, price float64) float64 {
	var size float64
	switch method {
	case SizingFixed:
		size = capital * m.config.DefaultRiskPerTrade
	case SizingKelly:
		kelly := m.config.KellyWinRate - (1-m.config.KellyWinRate)/m.config.KellyWinLossRatio
		size = capital * math.Max(0, kelly) * risk
	default:
		size = capital * risk / price
	}
	return m.normalize(size, capital)
}

// normalize clamps a size into the configured per-trade bounds.
func (m *PositionManager) normalize(size, capital float64) float64 {
	maxSize := capital * m.config.MaxPositionSize
	minSize := capital * m.config.MinPositionSize
	return math.Min(math.Max(size, minSize), maxSize)
}
