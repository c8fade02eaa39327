package usecase

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/strategy_backtest/internal/domain"
)

// analysisWindow bounds the trailing history handed to the strategy so
// per-bar cost stays independent of total run length.
const analysisWindow = 101

var (
	ErrEmptyHistory     = errors.New("empty price history")
	ErrInvalidCapital   = errors.New("initial capital must be positive")
	ErrInvalidDateRange = errors.New("start date is after end date")
	ErrUnorderedBars    = errors.New("bars are not ordered by time")
)

// EngineConfig tunes engine behavior independent of risk and sizing policy.
type EngineConfig struct {
	// AllowShort lets a SELL signal open a short position while flat, with
	// BUY closing it. Off by default: entries are long-only otherwise.
	AllowShort bool
}

// BacktestService replays historical bars through a strategy, gating every
// proposed trade through the risk evaluator and sizing accepted ones with
// the position sizer. All collaborators are injected at construction; the
// service itself keeps no state between runs, but the injected risk
// evaluator does, so a service instance is good for one run only.
type BacktestService struct {
	strategy domain.Strategy
	risk     domain.RiskEvaluator
	sizer    domain.PositionSizer
	cfg      EngineConfig
	log      *zap.Logger
}

func NewBacktestService(strategy domain.Strategy, risk domain.RiskEvaluator, sizer domain.PositionSizer, cfg EngineConfig, log *zap.Logger) *BacktestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BacktestService{
		strategy: strategy,
		risk:     risk,
		sizer:    sizer,
		cfg:      cfg,
		log:      log,
	}
}

// RunBacktest replays the bars inside [start, end] and returns the
// closed-trade ledger, the trade-indexed equity curve and summary metrics.
// The computation is deterministic: identical inputs produce identical
// results.
//
// A position still open when the input ends stays open: it is not
// force-closed and appears in neither the ledger nor the equity curve.
func (s *BacktestService) RunBacktest(bars []domain.Bar, initialCapital float64, start, end time.Time) (*domain.BacktestResult, error) {
	if len(bars) == 0 {
		return nil, ErrEmptyHistory
	}
	if initialCapital <= 0 {
		return nil, ErrInvalidCapital
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			return nil, fmt.Errorf("%w: bar %d precedes bar %d", ErrUnorderedBars, i, i-1)
		}
	}

	filtered := filterBars(bars, start, end)

	capital := initialCapital
	equity := []float64{initialCapital}
	trades := []domain.Trade{}
	var position *domain.Position

	for i, bar := range filtered {
		lo := i - analysisWindow + 1
		if lo < 0 {
			lo = 0
		}

		signal, err := s.strategy.Analyze(filtered[lo : i+1])
		if err != nil {
			return nil, fmt.Errorf("strategy %q failed at %s: %w", s.strategy.Name(), bar.Time.Format(time.RFC3339), err)
		}

		eval := s.risk.EvaluateRisk(capital, signal, position, filtered[lo:i+1])
		if !eval.Allow {
			s.log.Debug("trade denied",
				zap.Time("bar", bar.Time),
				zap.String("reason", eval.Reason))
			continue
		}

		size := s.sizer.CalculatePositionSize(capital, eval.RiskAmount, bar.Price)

		if signal.Action == domain.ActionHold {
			continue
		}

		switch {
		case position == nil && signal.Action == domain.ActionBuy:
			position = &domain.Position{
				Side:       domain.SideLong,
				EntryPrice: bar.Price,
				EntryTime:  bar.Time,
				Size:       size,
			}
		case position == nil && signal.Action == domain.ActionSell && s.cfg.AllowShort:
			position = &domain.Position{
				Side:       domain.SideShort,
				EntryPrice: bar.Price,
				EntryTime:  bar.Time,
				Size:       size,
			}
		case position != nil && signal.Action == exitAction(position.Side):
			pnl := position.PnL(bar.Price)
			trades = append(trades, domain.Trade{
				Entry: domain.PricePoint{Price: position.EntryPrice, Time: position.EntryTime},
				Exit:  domain.PricePoint{Price: bar.Price, Time: bar.Time},
				PnL:   pnl,
				Side:  position.Side,
			})
			capital += pnl
			equity = append(equity, capital)
			position = nil

			s.log.Debug("position closed",
				zap.Time("bar", bar.Time),
				zap.Float64("pnl", pnl),
				zap.Float64("capital", capital))
		}
	}

	if position != nil {
		s.log.Debug("run ended with open position",
			zap.String("side", string(position.Side)),
			zap.Float64("entry", position.EntryPrice))
	}

	return &domain.BacktestResult{
		Trades:  trades,
		Equity:  equity,
		Metrics: CalculateMetrics(trades, equity),
	}, nil
}

// exitAction is the signal that closes a position of the given side.
func exitAction(side domain.Side) domain.Action {
	if side == domain.SideShort {
		return domain.ActionBuy
	}
	return domain.ActionSell
}

func filterBars(bars []domain.Bar, start, end time.Time) []domain.Bar {
	out := make([]domain.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}
