package domain

import "time"

// Metrics summarizes a finished run. Degenerate inputs keep their IEEE
// values: WinRate is NaN for an empty ledger, ProfitFactor is +Inf when no
// trade lost money. Consumers must check before formatting or persisting.
type Metrics struct {
	TotalReturn  float64 // percent
	SharpeRatio  float64
	MaxDrawdown  float64
	WinRate      float64
	ProfitFactor float64
}

// BacktestResult is the sole artifact a run produces.
type BacktestResult struct {
	Trades  []Trade
	Equity  []float64 // initial capital plus one point per closed trade
	Metrics Metrics
}

// BacktestRun is the archived summary of one finished run.
type BacktestRun struct {
	ID             int64
	Strategy       string
	InitialCapital float64
	FinalCapital   float64
	Start          time.Time
	End            time.Time
	Metrics        Metrics
	CreatedAt      time.Time
}
