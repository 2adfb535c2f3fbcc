package indicators

import "errors"

// MACD calculates the Moving Average Convergence Divergence indicator
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD instance with specified fast, slow, and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Calculate computes the latest MACD line, signal line, and histogram values.
// The signal line is the EMA of the MACD line over the signal period.
func (m *MACD) Calculate(closes []float64) (macdLine, signalLine, histogram float64, err error) {
	if len(closes) < m.GetRequiredPeriods() {
		return 0, 0, 0, errors.New("insufficient data for MACD calculation")
	}

	fast := emaSeries(closes, m.fastPeriod)
	slow := emaSeries(closes, m.slowPeriod)

	// MACD values exist once the slow EMA does
	macdValues := make([]float64, 0, len(closes)-m.slowPeriod+1)
	for i := m.slowPeriod - 1; i < len(closes); i++ {
		macdValues = append(macdValues, fast[i]-slow[i])
	}

	signalSeries := emaSeries(macdValues, m.signalPeriod)

	macdLine = macdValues[len(macdValues)-1]
	signalLine = signalSeries[len(signalSeries)-1]
	histogram = macdLine - signalLine
	return macdLine, signalLine, histogram, nil
}

// GetRequiredPeriods returns the minimum number of closes needed
func (m *MACD) GetRequiredPeriods() int {
	return m.slowPeriod + m.signalPeriod - 1
}
