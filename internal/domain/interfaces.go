package domain

import "context"

// Strategy analyzes a trailing window of bars and recommends an action.
// Implementations may keep internal state across calls, but must treat the
// window as read-only and must not fail on well-formed input with
// insufficient history; they hold instead. A returned error is a strategy
// fault and aborts the run.
type Strategy interface {
	Analyze(window []Bar) (Signal, error)
	Name() string
}

// RiskEvaluation is the outcome of gating one proposed trade.
type RiskEvaluation struct {
	Allow      bool
	RiskAmount float64
	Reason     string
}

// RiskEvaluator gates proposed trades against running risk limits. An
// evaluator carries per-run state; construct a fresh one for every run.
type RiskEvaluator interface {
	EvaluateRisk(capital float64, signal Signal, position *Position, window []Bar) RiskEvaluation
}

// PositionSizer converts a risk budget and price into a concrete size.
type PositionSizer interface {
	CalculatePositionSize(capital, risk, price float64) float64
}

// ResultRepository archives finished runs and their trade ledgers.
type ResultRepository interface {
	SaveRun(ctx context.Context, run *BacktestRun, trades []Trade) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]*BacktestRun, error)
	ListTrades(ctx context.Context, runID int64) ([]Trade, error)
}
