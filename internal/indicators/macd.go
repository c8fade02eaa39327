package indicators

import (
	"errors"
	"math"
)

// MACD returns the MACD line, signal line and histogram for series. All three
// slices align with series; warm-up positions are NaN. The series must cover
// at least slow+signal observations so the signal line has a defined value.
func MACD(series []float64, fast, slow, signal int) (macdLine, signalLine, hist []float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, nil, errors.New("periods must be positive")
	}
	if fast >= slow {
		return nil, nil, nil, errors.New("fast period must be smaller than slow period")
	}
	if len(series) < slow+signal {
		return nil, nil, nil, errors.New("series shorter than slow+signal periods")
	}

	fastEMA, err := EMA(series, fast)
	if err != nil {
		return nil, nil, nil, err
	}
	slowEMA, err := EMA(series, slow)
	if err != nil {
		return nil, nil, nil, err
	}

	macdLine = make([]float64, len(series))
	for i := range series {
		macdLine[i] = fastEMA[i] - slowEMA[i] // NaN until the slow warm-up ends
	}

	// The MACD line is defined from index slow-1 on; run the signal EMA over
	// that tail and stitch it back into place.
	firstValid := slow - 1
	signalTail, err := EMA(macdLine[firstValid:], signal)
	if err != nil {
		return nil, nil, nil, err
	}

	signalLine = make([]float64, len(series))
	hist = make([]float64, len(series))
	for i := 0; i < firstValid; i++ {
		signalLine[i] = math.NaN()
		hist[i] = math.NaN()
	}
	for i, v := range signalTail {
		signalLine[firstValid+i] = v
		hist[firstValid+i] = macdLine[firstValid+i] - v
	}
	return macdLine, signalLine, hist, nil
}
