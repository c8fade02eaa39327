package storage_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitos/strategy_backtest/internal/domain"
	"github.com/vitos/strategy_backtest/internal/infrastructure/storage"
)

func TestSQLiteStore_SaveAndListRuns(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	run := &domain.BacktestRun{
		Strategy:       "macd",
		InitialCapital: 10000,
		FinalCapital:   10010,
		Start:          start,
		End:            end,
		Metrics: domain.Metrics{
			TotalReturn: 0.1,
			SharpeRatio: 1.5,
			MaxDrawdown: 0.02,
			WinRate:     1,
			// No losers: infinite, must survive the round trip as undefined.
			ProfitFactor: math.Inf(1),
		},
	}
	trades := []domain.Trade{
		{
			Entry: domain.PricePoint{Price: 100, Time: start.AddDate(0, 0, 3)},
			Exit:  domain.PricePoint{Price: 105, Time: start.AddDate(0, 0, 5)},
			PnL:   10,
			Side:  domain.SideLong,
		},
	}

	runID, err := store.SaveRun(ctx, run, trades)
	require.NoError(t, err)
	require.Greater(t, runID, int64(0))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	require.Equal(t, "macd", got.Strategy)
	require.InDelta(t, 10010, got.FinalCapital, 1e-9)
	require.InDelta(t, 0.1, got.Metrics.TotalReturn, 1e-9)
	require.True(t, math.IsNaN(got.Metrics.ProfitFactor), "undefined metric must not come back as a number")

	saved, err := store.ListTrades(ctx, runID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, domain.SideLong, saved[0].Side)
	require.InDelta(t, 10, saved[0].PnL, 1e-9)
	require.True(t, saved[0].Entry.Time.Equal(trades[0].Entry.Time))
}

func TestSQLiteStore_ListTradesEmptyRun(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	run := &domain.BacktestRun{
		Strategy:       "grid",
		InitialCapital: 10000,
		FinalCapital:   10000,
		Start:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Metrics:        domain.Metrics{WinRate: math.NaN(), ProfitFactor: math.NaN()},
	}

	runID, err := store.SaveRun(ctx, run, nil)
	require.NoError(t, err)

	trades, err := store.ListTrades(ctx, runID)
	require.NoError(t, err)
	require.Empty(t, trades)
}
