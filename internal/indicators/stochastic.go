package indicators

import (
	"errors"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// Stochastic calculates the stochastic oscillator (%K with a smoothed %D)
type Stochastic struct {
	kPeriod int
	dPeriod int
}

// NewStochastic creates a new Stochastic instance with the given %K window
// and %D smoothing period
func NewStochastic(kPeriod, dPeriod int) *Stochastic {
	return &Stochastic{
		kPeriod: kPeriod,
		dPeriod: dPeriod,
	}
}

// Calculate computes the latest %K and %D values from the given bars
func (s *Stochastic) Calculate(bars []types.OHLCV) (k, d float64, err error) {
	if len(bars) < s.GetRequiredPeriods() {
		return 0, 0, errors.New("insufficient data for stochastic calculation")
	}

	// %D is the SMA of the trailing dPeriod %K values
	kValues := make([]float64, s.dPeriod)
	for i := 0; i < s.dPeriod; i++ {
		end := len(bars) - s.dPeriod + 1 + i
		kValues[i] = s.percentK(bars[:end])
	}

	return kValues[len(kValues)-1], sma(kValues), nil
}

// percentK computes %K for the last bar of the given prefix
func (s *Stochastic) percentK(bars []types.OHLCV) float64 {
	window := bars[len(bars)-s.kPeriod:]
	low, high := windowRange(window)

	if high == low {
		return 50
	}
	close := bars[len(bars)-1].Close
	return ((close - low) / (high - low)) * 100
}

// GetRequiredPeriods returns the minimum number of bars needed
func (s *Stochastic) GetRequiredPeriods() int {
	return s.kPeriod + s.dPeriod - 1
}

// WilliamsR calculates the Williams %R oscillator (0 to -100)
type WilliamsR struct {
	period int
}

// NewWilliamsR creates a new WilliamsR instance with the given period
func NewWilliamsR(period int) *WilliamsR {
	return &WilliamsR{period: period}
}

// Calculate computes the latest Williams %R value from the given bars
func (w *WilliamsR) Calculate(bars []types.OHLCV) (float64, error) {
	if len(bars) < w.period {
		return 0, errors.New("insufficient data for Williams %R calculation")
	}

	window := bars[len(bars)-w.period:]
	low, high := windowRange(window)

	if high == low {
		return -50, nil
	}
	close := bars[len(bars)-1].Close
	return ((high - close) / (high - low)) * -100, nil
}

// GetRequiredPeriods returns the minimum number of bars needed
func (w *WilliamsR) GetRequiredPeriods() int {
	return w.period
}

// windowRange returns the lowest low and highest high of the given bars
func windowRange(bars []types.OHLCV) (low, high float64) {
	low, high = bars[0].Low, bars[0].High
	for _, bar := range bars[1:] {
		if bar.Low < low {
			low = bar.Low
		}
		if bar.High > high {
			high = bar.High
		}
	}
	return low, high
}
