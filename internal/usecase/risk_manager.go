package usecase

import (
	"math"
	"time"

	"github.com/vitos/strategy_backtest/internal/domain"
)

const volatilityLookback = 20

// RiskParams bounds a single simulation run.
type RiskParams struct {
	MaxPositionSize float64 // fraction of capital risked per trade
	MaxDrawdown     float64 // fraction of baseline equity
	MaxDailyLoss    float64 // fraction of the day's starting equity
	MaxLeverage     float64
}

func DefaultRiskParams() RiskParams {
	return RiskParams{
		MaxPositionSize: 0.1,
		MaxDrawdown:     0.2,
		MaxDailyLoss:    0.05,
		MaxLeverage:     2,
	}
}

type dayStats struct {
	startEquity   float64
	currentEquity float64
}

// RiskManager carries the running risk state of exactly one run: the baseline
// equity captured at construction, the worst drawdown seen so far, and
// per-UTC-day equity buckets. Construct a fresh manager per run.
type RiskManager struct {
	params             RiskParams
	totalEquity        float64 // baseline, fixed at construction
	maxDrawdownReached float64
	dailyStats         map[string]*dayStats
}

func NewRiskManager(initialEquity float64, params RiskParams) *RiskManager {
	return &RiskManager{
		params:      params,
		totalEquity: initialEquity,
		dailyStats:  make(map[string]*dayStats),
	}
}

// MaxDrawdownReached reports the worst drawdown observed so far. It never
// decreases within a run.
func (m *RiskManager) MaxDrawdownReached() float64 { return m.maxDrawdownReached }

// EvaluateRisk gates one proposed trade. Each check short-circuits: daily
// loss limit, then drawdown limit, then the volatility-scaled risk budget
// against the per-trade cap. Drawdown is measured against the construction
// baseline, not a moving peak, so once the limit is breached every later bar
// of the run is denied.
func (m *RiskManager) EvaluateRisk(capital float64, signal domain.Signal, position *domain.Position, window []domain.Bar) domain.RiskEvaluation {
	m.updateEquity(capital, signal.Time)

	if !m.checkDailyLossLimit(capital, signal.Time) {
		return domain.RiskEvaluation{Reason: "daily loss limit reached"}
	}
	if m.maxDrawdownReached >= m.params.MaxDrawdown {
		return domain.RiskEvaluation{Reason: "maximum drawdown reached"}
	}

	risk := m.params.MaxPositionSize * signal.Confidence * (1 - volatility(window))
	if risk > capital*m.params.MaxPositionSize {
		return domain.RiskEvaluation{Reason: "position size exceeds limit"}
	}
	return domain.RiskEvaluation{Allow: true, RiskAmount: risk}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func (m *RiskManager) updateEquity(capital float64, at time.Time) {
	key := dayKey(at)
	if s, ok := m.dailyStats[key]; ok {
		s.currentEquity = capital
	} else {
		m.dailyStats[key] = &dayStats{startEquity: capital, currentEquity: capital}
	}

	dd := (m.totalEquity - capital) / m.totalEquity
	if dd > m.maxDrawdownReached {
		m.maxDrawdownReached = dd
	}
}

func (m *RiskManager) checkDailyLossLimit(capital float64, at time.Time) bool {
	s, ok := m.dailyStats[dayKey(at)]
	if !ok {
		return true
	}
	dailyReturn := (capital - s.startEquity) / s.startEquity
	return dailyReturn > -m.params.MaxDailyLoss
}

// volatility measures the dispersion of simple returns over the trailing
// volatilityLookback bars, about zero, clamped to [0,1]. The first bar
// contributes no return; fewer than two bars yield 0.
func volatility(window []domain.Bar) float64 {
	bars := window
	if len(bars) > volatilityLookback {
		bars = bars[len(bars)-volatilityLookback:]
	}
	if len(bars) < 2 {
		return 0
	}

	var sumSq float64
	for i := 1; i < len(bars); i++ {
		r := (bars[i].Price - bars[i-1].Price) / bars[i-1].Price
		sumSq += r * r
	}
	std := math.Sqrt(sumSq / float64(len(bars)-1))
	return math.Min(std, 1)
}
