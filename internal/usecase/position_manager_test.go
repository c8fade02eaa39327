package usecase_test

import (
	"testing"

	"github.com/vitos/strategy_backtest/internal/usecase"
)

const epsilon = 0.000001

func floatEquals(a, b float64) bool {
	return (a-b) < epsilon && (b-a) < epsilon
}

func TestCalculatePositionSize_Fixed(t *testing.T) {
	m := usecase.NewPositionManager(usecase.DefaultPositionConfig())

	// 10000 * 0.02 = 200, inside [100, 1000]
	size := m.CalculateWithMethod(usecase.SizingFixed, 10000, 0.05, 100)
	if !floatEquals(size, 200) {
		t.Errorf("fixed size = %f, want 200", size)
	}
}

func TestCalculatePositionSize_RiskBased(t *testing.T) {
	cfg := usecase.DefaultPositionConfig()
	cfg.MinPositionSize = 0.0001
	m := usecase.NewPositionManager(cfg)

	// 10000 * 0.02 / 100 = 2
	size := m.CalculatePositionSize(10000, 0.02, 100)
	if !floatEquals(size, 2) {
		t.Errorf("risk-based size = %f, want 2", size)
	}
}

func TestCalculatePositionSize_ClampsToBounds(t *testing.T) {
	m := usecase.NewPositionManager(usecase.DefaultPositionConfig())

	// Raw size 2 is below the 1% floor of 100.
	size := m.CalculatePositionSize(10000, 0.02, 100)
	if !floatEquals(size, 100) {
		t.Errorf("clamped size = %f, want 100", size)
	}

	// Raw size 20000 is above the 10% cap of 1000.
	size = m.CalculatePositionSize(10000, 2, 1)
	if !floatEquals(size, 1000) {
		t.Errorf("clamped size = %f, want 1000", size)
	}
}

func TestCalculatePositionSize_Kelly(t *testing.T) {
	cfg := usecase.DefaultPositionConfig()
	cfg.MinPositionSize = 0.001
	m := usecase.NewPositionManager(cfg)

	// kelly = 0.5 - 0.5/1.5 = 1/6; size = 10000 * 1/6 * 0.02 ≈ 33.33
	size := m.CalculateWithMethod(usecase.SizingKelly, 10000, 0.02, 100)
	if size < 33.3 || size > 33.4 {
		t.Errorf("kelly size = %f, want ~33.33", size)
	}
}

func TestCalculatePositionSize_KellyFloorsAtZero(t *testing.T) {
	cfg := usecase.DefaultPositionConfig()
	cfg.KellyWinRate = 0.2
	cfg.KellyWinLossRatio = 1.0 // kelly = 0.2 - 0.8 = -0.6 -> floored to 0
	m := usecase.NewPositionManager(cfg)

	size := m.CalculateWithMethod(usecase.SizingKelly, 10000, 0.02, 100)
	if !floatEquals(size, 10000*cfg.MinPositionSize) {
		t.Errorf("negative kelly should clamp to the floor, got %f", size)
	}
}

func TestCalculatePositionSize_UnknownMethodFallsBack(t *testing.T) {
	cfg := usecase.DefaultPositionConfig()
	cfg.MinPositionSize = 0.0001
	m := usecase.NewPositionManager(cfg)

	got := m.CalculateWithMethod("bogus", 10000, 0.02, 100)
	want := m.CalculateWithMethod(usecase.SizingRiskBased, 10000, 0.02, 100)
	if !floatEquals(got, want) {
		t.Errorf("unknown method = %f, want risk-based %f", got, want)
	}
}
