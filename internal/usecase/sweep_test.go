package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitos/strategy_backtest/internal/domain"
	"github.com/vitos/strategy_backtest/internal/usecase"
)

func TestSweepRunner_MatchesSerialRuns(t *testing.T) {
	bars := dailyBars(scenarioPrices)
	sizing := usecase.DefaultPositionConfig()
	sizing.MinPositionSize = 0.0001

	specs := []usecase.SweepSpec{
		{
			Name:        "round-trip",
			NewStrategy: func() domain.Strategy { return &scriptedStrategy{actions: scenarioActions} },
			Risk:        usecase.DefaultRiskParams(),
			Sizing:      sizing,
		},
		{
			Name:        "grid",
			NewStrategy: func() domain.Strategy { return usecase.NewGridStrategy(100, 2, 10) },
			Risk:        usecase.DefaultRiskParams(),
			Sizing:      sizing,
		},
		{
			Name:        "macd",
			NewStrategy: func() domain.Strategy { return usecase.NewMACDStrategy(12, 26, 9) },
			Risk:        usecase.DefaultRiskParams(),
			Sizing:      sizing,
		},
	}

	runner := usecase.NewSweepRunner(2, nil)
	outcomes := runner.Run(bars, 10000, day(0), day(6), specs)
	require.Len(t, outcomes, len(specs))

	for i, spec := range specs {
		require.Equal(t, spec.Name, outcomes[i].Name, "outcomes must keep spec order")
		require.NoError(t, outcomes[i].Err)

		// A serial run with fresh per-run state must agree exactly.
		svc := usecase.NewBacktestService(
			spec.NewStrategy(),
			usecase.NewRiskManager(10000, spec.Risk),
			usecase.NewPositionManager(spec.Sizing),
			spec.Engine,
			nil,
		)
		serial, err := svc.RunBacktest(bars, 10000, day(0), day(6))
		require.NoError(t, err)
		require.Equal(t, serial.Trades, outcomes[i].Result.Trades)
		require.Equal(t, serial.Equity, outcomes[i].Result.Equity)
	}
}

func TestSweepRunner_ReportsPerRunFailures(t *testing.T) {
	specs := []usecase.SweepSpec{
		{
			Name:        "bad",
			NewStrategy: func() domain.Strategy { return failingStrategy{} },
			Risk:        usecase.DefaultRiskParams(),
			Sizing:      usecase.DefaultPositionConfig(),
		},
		{
			Name:        "good",
			NewStrategy: func() domain.Strategy { return &scriptedStrategy{} },
			Risk:        usecase.DefaultRiskParams(),
			Sizing:      usecase.DefaultPositionConfig(),
		},
	}

	runner := usecase.NewSweepRunner(2, nil)
	outcomes := runner.Run(dailyBars(scenarioPrices), 10000, day(0), day(6), specs)

	require.Error(t, outcomes[0].Err)
	require.NoError(t, outcomes[1].Err)
	require.NotNil(t, outcomes[1].Result)
}
