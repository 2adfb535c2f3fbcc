package indicators

import (
	"errors"
	"math"
)

// BollingerBands represents the Bollinger Bands indicator
type BollingerBands struct {
	period         int
	stdDevMultiple float64
}

// NewBollingerBands creates a new BollingerBands instance with the given
// period and standard deviation multiplier
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
	}
}

// Calculate computes the upper, middle, and lower bands plus the derived
// band width (relative to the middle band) and the price position within
// the bands (0 = lower band, 1 = upper band).
func (bb *BollingerBands) Calculate(closes []float64) (upper, middle, lower, width, position float64, err error) {
	if len(closes) < bb.period {
		return 0, 0, 0, 0, 0, errors.New("insufficient data for Bollinger Bands calculation")
	}

	recent := closes[len(closes)-bb.period:]
	middle = sma(recent)
	stdDev := bb.standardDeviation(recent, middle)

	upper = middle + (bb.stdDevMultiple * stdDev)
	lower = middle - (bb.stdDevMultiple * stdDev)

	if middle != 0 {
		width = (upper - lower) / middle
	}

	currentPrice := closes[len(closes)-1]
	if upper == lower {
		position = 0.5
	} else {
		position = (currentPrice - lower) / (upper - lower)
	}

	return upper, middle, lower, width, position, nil
}

// GetRequiredPeriods returns the minimum number of closes needed
func (bb *BollingerBands) GetRequiredPeriods() int {
	return bb.period
}

// standardDeviation computes the population standard deviation of values
func (bb *BollingerBands) standardDeviation(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}
