package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/vitos/strategy_backtest/internal/domain"
)

// LoadBarsCSV reads bars from a two-column CSV file: RFC3339 time, price.
// A header row is skipped when its first field does not parse as a time.
func LoadBarsCSV(path string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	var bars []domain.Bar
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: bad time %q: %w", line, rec[0], err)
		}
		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad price %q: %w", line, rec[1], err)
		}
		bars = append(bars, domain.Bar{Time: ts, Price: price})
	}
	return bars, nil
}

// WriteTradesCSV exports a run's ledger for spreadsheets and reports.
func WriteTradesCSV(trades []domain.Trade, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	_ = w.Write([]string{"side", "entry_time", "entry_price", "exit_time", "exit_price", "pnl"})
	for _, t := range trades {
		_ = w.Write([]string{
			string(t.Side),
			t.Entry.Time.Format(time.RFC3339),
			formatF(t.Entry.Price),
			t.Exit.Time.Format(time.RFC3339),
			formatF(t.Exit.Price),
			formatF(t.PnL),
		})
	}
	return w.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
