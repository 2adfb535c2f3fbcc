package indicators

import "errors"

// Momentum measures the N-period rate of change of price
type Momentum struct {
	period int
}

// NewMomentum creates a new Momentum instance with the given lookback
func NewMomentum(period int) *Momentum {
	return &Momentum{period: period}
}

// Calculate computes close/close[-period] - 1 for the latest bar
func (m *Momentum) Calculate(closes []float64) (float64, error) {
	if len(closes) < m.period+1 {
		return 0, errors.New("insufficient data for momentum calculation")
	}

	previous := closes[len(closes)-1-m.period]
	if previous == 0 {
		return 0, errors.New("zero reference price for momentum calculation")
	}
	return closes[len(closes)-1]/previous - 1, nil
}

// GetRequiredPeriods returns the minimum number of closes needed
func (m *Momentum) GetRequiredPeriods() int {
	return m.period + 1
}
