// Package indicators derives the technical indicator set the signal
// generators consume from a raw bar series. All calculations are pure
// functions over a bar prefix; values that cannot be computed yet
// (insufficient lookback) are reported as NaN, never as zero.
package indicators

import "math"

// Snapshot holds the latest value of every indicator computed from a bar
// prefix. Fields that lack enough history are NaN.
type Snapshot struct {
	RSI float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	BBUpper    float64
	BBMiddle   float64
	BBLower    float64
	BBWidth    float64
	BBPosition float64

	EMAFast float64
	EMASlow float64

	VolumeRatio float64

	StochK    float64
	StochD    float64
	WilliamsR float64

	Momentum5  float64
	Momentum10 float64
}

// Defined reports whether all the given values are computable (not NaN).
func Defined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
