package indicators

import (
	"errors"
	"math"
)

// EMA represents the Exponential Moving Average technical indicator
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with the given period
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

// Calculate computes the latest EMA value from the given values
func (e *EMA) Calculate(values []float64) (float64, error) {
	if len(values) < e.period {
		return 0, errors.New("insufficient data for EMA calculation")
	}

	series := emaSeries(values, e.period)
	return series[len(series)-1], nil
}

// GetRequiredPeriods returns the minimum number of values needed
func (e *EMA) GetRequiredPeriods() int {
	return e.period
}

// emaSeries computes the full EMA series over values. The first period-1
// entries are NaN; the EMA is seeded with the SMA of the first 'period'
// values and then updated with the standard recursive formula.
func emaSeries(values []float64, period int) []float64 {
	series := make([]float64, len(values))
	for i := range series {
		series[i] = math.NaN()
	}
	if len(values) < period || period <= 0 {
		return series
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	series[period-1] = sum / float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		series[i] = values[i]*alpha + series[i-1]*(1-alpha)
	}
	return series
}

// sma computes the simple average of the given values
func sma(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
