package indicators

import "errors"

// VolumeRatio compares current volume against its trailing moving average
type VolumeRatio struct {
	period int
}

// NewVolumeRatio creates a new VolumeRatio instance with the given period
func NewVolumeRatio(period int) *VolumeRatio {
	return &VolumeRatio{period: period}
}

// Calculate computes the latest volume / SMA(volume) ratio
func (v *VolumeRatio) Calculate(volumes []float64) (float64, error) {
	if len(volumes) < v.period {
		return 0, errors.New("insufficient data for volume ratio calculation")
	}

	avg := sma(volumes[len(volumes)-v.period:])
	if avg == 0 {
		return 0, errors.New("zero average volume")
	}
	return volumes[len(volumes)-1] / avg, nil
}

// GetRequiredPeriods returns the minimum number of volumes needed
func (v *VolumeRatio) GetRequiredPeriods() int {
	return v.period
}
