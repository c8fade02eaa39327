package indicators

import (
	"errors"
	"math"
)

// EMA computes the exponential moving average of series. The first period-1
// positions carry NaN; the value at period-1 is seeded with a simple average.
func EMA(series []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(series) < period {
		return nil, errors.New("series shorter than period")
	}

	out := make([]float64, len(series))
	for i := 0; i < period-1; i++ {
		out[i] = math.NaN()
	}

	var seed float64
	for _, v := range series[:period] {
		seed += v
	}
	out[period-1] = seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(series); i++ {
		out[i] = (series[i]-out[i-1])*k + out[i-1]
	}
	return out, nil
}
