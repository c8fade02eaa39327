package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/strategy_backtest/internal/domain"
)

// SQLiteStore archives finished runs and their trade ledgers. The engine
// itself never touches storage; callers persist results after a run.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			strategy TEXT NOT NULL,
			initial_capital REAL NOT NULL,
			final_capital REAL NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			total_return REAL,
			sharpe_ratio REAL,
			max_drawdown REAL,
			win_rate REAL,
			profit_factor REAL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			side TEXT NOT NULL,
			entry_price REAL NOT NULL,
			entry_time DATETIME NOT NULL,
			exit_price REAL NOT NULL,
			exit_time DATETIME NOT NULL,
			pnl REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_trades_run ON backtest_trades(run_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// SaveRun persists a run summary and its ledger, returning the run id.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.BacktestRun, trades []domain.Trade) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO backtest_runs (strategy, initial_capital, final_capital, start_date, end_date,
			total_return, sharpe_ratio, max_drawdown, win_rate, profit_factor, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Strategy, run.InitialCapital, run.FinalCapital, run.Start, run.End,
		metricValue(run.Metrics.TotalReturn), metricValue(run.Metrics.SharpeRatio),
		metricValue(run.Metrics.MaxDrawdown), metricValue(run.Metrics.WinRate),
		metricValue(run.Metrics.ProfitFactor), time.Now().UTC())
	if err != nil {
		return 0, err
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, t := range trades {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO backtest_trades (run_id, side, entry_price, entry_time, exit_price, exit_time, pnl)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, t.Side, t.Entry.Price, t.Entry.Time, t.Exit.Price, t.Exit.Time, t.PnL); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*domain.BacktestRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy, initial_capital, final_capital, start_date, end_date,
			total_return, sharpe_ratio, max_drawdown, win_rate, profit_factor, created_at
		 FROM backtest_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.BacktestRun
	for rows.Next() {
		var r domain.BacktestRun
		var totalReturn, sharpe, maxDD, winRate, profitFactor sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Strategy, &r.InitialCapital, &r.FinalCapital, &r.Start, &r.End,
			&totalReturn, &sharpe, &maxDD, &winRate, &profitFactor, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Metrics = domain.Metrics{
			TotalReturn:  restoreMetric(totalReturn),
			SharpeRatio:  restoreMetric(sharpe),
			MaxDrawdown:  restoreMetric(maxDD),
			WinRate:      restoreMetric(winRate),
			ProfitFactor: restoreMetric(profitFactor),
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) ListTrades(ctx context.Context, runID int64) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT side, entry_price, entry_time, exit_price, exit_time, pnl
		 FROM backtest_trades WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(&t.Side, &t.Entry.Price, &t.Entry.Time, &t.Exit.Price, &t.Exit.Time, &t.PnL); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// metricValue maps NaN and infinite metrics to NULL; sqlite REAL columns
// cannot hold them.
func metricValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func restoreMetric(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
