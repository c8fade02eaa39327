package usecase

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/strategy_backtest/internal/domain"
)

// SweepSpec describes one parameter set of a sweep. NewStrategy must return a
// fresh strategy instance on every call; runs share no state.
type SweepSpec struct {
	Name        string
	NewStrategy func() domain.Strategy
	Risk        RiskParams
	Sizing      PositionConfig
	Engine      EngineConfig
}

// SweepOutcome pairs a spec with its result or failure.
type SweepOutcome struct {
	Name   string
	Result *domain.BacktestResult
	Err    error
}

// SweepRunner replays the same history across many parameter sets in
// parallel. Each worker constructs its own risk manager and position manager,
// so beyond the disjoint outcome slots nothing is shared and nothing needs
// locking.
type SweepRunner struct {
	workers int
	log     *zap.Logger
}

func NewSweepRunner(workers int, log *zap.Logger) *SweepRunner {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SweepRunner{workers: workers, log: log}
}

// Run executes every spec against the same bars and returns outcomes in spec
// order. A failed run fills its outcome's Err; the sweep continues.
func (r *SweepRunner) Run(bars []domain.Bar, initialCapital float64, start, end time.Time, specs []SweepSpec) []SweepOutcome {
	outcomes := make([]SweepOutcome, len(specs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				spec := specs[i]
				svc := NewBacktestService(
					spec.NewStrategy(),
					NewRiskManager(initialCapital, spec.Risk),
					NewPositionManager(spec.Sizing),
					spec.Engine,
					r.log.Named(spec.Name),
				)
				result, err := svc.RunBacktest(bars, initialCapital, start, end)
				outcomes[i] = SweepOutcome{Name: spec.Name, Result: result, Err: err}
			}
		}()
	}

	for i := range specs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
