package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vitos/strategy_backtest/internal/domain"
	"github.com/vitos/strategy_backtest/internal/infrastructure/history"
	"github.com/vitos/strategy_backtest/internal/infrastructure/logger"
	"github.com/vitos/strategy_backtest/internal/infrastructure/storage"
	"github.com/vitos/strategy_backtest/internal/usecase"
)

type Config struct {
	Data struct {
		CSV       string `yaml:"csv"`
		TradesOut string `yaml:"trades_out"`
	} `yaml:"data"`
	Backtest struct {
		InitialCapital float64 `yaml:"initial_capital"`
		StartDate      string  `yaml:"start_date"`
		EndDate        string  `yaml:"end_date"`
		AllowShort     bool    `yaml:"allow_short"`
	} `yaml:"backtest"`
	Strategy struct {
		Name         string  `yaml:"name"` // "grid" or "macd"
		BasePrice    float64 `yaml:"base_price"`
		SpacingPct   float64 `yaml:"spacing_pct"`
		NumLevels    int     `yaml:"num_levels"`
		FastPeriod   int     `yaml:"fast_period"`
		SlowPeriod   int     `yaml:"slow_period"`
		SignalPeriod int     `yaml:"signal_period"`
	} `yaml:"strategy"`
	Risk struct {
		MaxPositionSize float64 `yaml:"max_position_size"`
		MaxDrawdown     float64 `yaml:"max_drawdown"`
		MaxDailyLoss    float64 `yaml:"max_daily_loss"`
		MaxLeverage     float64 `yaml:"max_leverage"`
	} `yaml:"risk"`
	Sizing struct {
		Method              string  `yaml:"method"`
		MaxPositionSize     float64 `yaml:"max_position_size"`
		MinPositionSize     float64 `yaml:"min_position_size"`
		DefaultRiskPerTrade float64 `yaml:"default_risk_per_trade"`
		KellyWinRate        float64 `yaml:"kelly_win_rate"`
		KellyWinLossRatio   float64 `yaml:"kelly_win_loss_ratio"`
	} `yaml:"sizing"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newStrategy(cfg *Config) (domain.Strategy, error) {
	switch cfg.Strategy.Name {
	case "grid":
		return usecase.NewGridStrategy(cfg.Strategy.BasePrice, cfg.Strategy.SpacingPct, cfg.Strategy.NumLevels), nil
	case "macd":
		return usecase.NewMACDStrategy(cfg.Strategy.FastPeriod, cfg.Strategy.SlowPeriod, cfg.Strategy.SignalPeriod), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", cfg.Strategy.Name)
	}
}

func main() {
	// .env can override the config location
	_ = godotenv.Load()
	configPath := os.Getenv("BACKTEST_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// 1. Load Config
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Load History
	bars, err := history.LoadBarsCSV(cfg.Data.CSV)
	if err != nil {
		log.Fatal("Failed to load bars", zap.Error(err))
	}

	start, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
	if err != nil {
		log.Fatal("Bad start_date", zap.Error(err))
	}
	end, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
	if err != nil {
		log.Fatal("Bad end_date", zap.Error(err))
	}

	// 4. Build the run: strategy, risk manager and sizer are fresh per run.
	strategy, err := newStrategy(cfg)
	if err != nil {
		log.Fatal("Failed to build strategy", zap.Error(err))
	}

	riskParams := usecase.RiskParams{
		MaxPositionSize: cfg.Risk.MaxPositionSize,
		MaxDrawdown:     cfg.Risk.MaxDrawdown,
		MaxDailyLoss:    cfg.Risk.MaxDailyLoss,
		MaxLeverage:     cfg.Risk.MaxLeverage,
	}
	sizingConfig := usecase.PositionConfig{
		Method:              usecase.SizingMethod(cfg.Sizing.Method),
		MaxPositionSize:     cfg.Sizing.MaxPositionSize,
		MinPositionSize:     cfg.Sizing.MinPositionSize,
		DefaultRiskPerTrade: cfg.Sizing.DefaultRiskPerTrade,
		KellyWinRate:        cfg.Sizing.KellyWinRate,
		KellyWinLossRatio:   cfg.Sizing.KellyWinLossRatio,
	}

	svc := usecase.NewBacktestService(
		strategy,
		usecase.NewRiskManager(cfg.Backtest.InitialCapital, riskParams),
		usecase.NewPositionManager(sizingConfig),
		usecase.EngineConfig{AllowShort: cfg.Backtest.AllowShort},
		log,
	)

	// 5. Run
	result, err := svc.RunBacktest(bars, cfg.Backtest.InitialCapital, start, end)
	if err != nil {
		log.Fatal("Backtest failed", zap.Error(err))
	}

	printReport(strategy.Name(), cfg.Backtest.InitialCapital, result)

	// 6. Archive
	if cfg.Storage.DBPath != "" {
		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			log.Fatal("Failed to init sqlite", zap.Error(err))
		}
		defer store.Close()

		run := &domain.BacktestRun{
			Strategy:       strategy.Name(),
			InitialCapital: cfg.Backtest.InitialCapital,
			FinalCapital:   result.Equity[len(result.Equity)-1],
			Start:          start,
			End:            end,
			Metrics:        result.Metrics,
		}
		runID, err := store.SaveRun(context.Background(), run, result.Trades)
		if err != nil {
			log.Error("Failed to save run", zap.Error(err))
		} else {
			log.Info("Run archived", zap.Int64("run_id", runID))
		}
	}

	if cfg.Data.TradesOut != "" {
		if err := history.WriteTradesCSV(result.Trades, cfg.Data.TradesOut); err != nil {
			log.Error("Failed to export trades", zap.Error(err))
		}
	}
}

func printReport(strategy string, initialCapital float64, result *domain.BacktestResult) {
	m := result.Metrics
	fmt.Printf("Strategy:       %s\n", strategy)
	fmt.Printf("Trades:         %d\n", len(result.Trades))
	fmt.Printf("Final capital:  %.2f (from %.2f)\n", result.Equity[len(result.Equity)-1], initialCapital)
	fmt.Printf("Total return:   %.2f%%\n", m.TotalReturn)
	fmt.Printf("Win rate:       %s\n", formatRatio(m.WinRate))
	fmt.Printf("Profit factor:  %s\n", formatRatio(m.ProfitFactor))
	fmt.Printf("Max drawdown:   %.2f%%\n", m.MaxDrawdown*100)
	fmt.Printf("Sharpe ratio:   %s\n", formatRatio(m.SharpeRatio))
}

// formatRatio spells out the degenerate cases instead of printing NaN/Inf.
func formatRatio(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a (no closed trades)"
	case math.IsInf(v, 1):
		return "inf (no losing trades)"
	default:
		return fmt.Sprintf("%.4f", v)
	}
}
