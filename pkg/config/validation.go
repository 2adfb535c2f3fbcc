package config

import "fmt"

// Validate performs basic sanity checks on the parameter set.
func (p StrategyParameters) Validate() error {
	if p.RSIPeriod < MinOscillatorPeriod {
		return fmt.Errorf("rsi period must be at least %d, got: %d", MinOscillatorPeriod, p.RSIPeriod)
	}
	if p.RSIOversold < 0 || p.RSIOverbought > 100 || p.RSIOversold >= p.RSIOverbought {
		return fmt.Errorf("rsi thresholds must satisfy 0 <= oversold < overbought <= 100, got: %.1f/%.1f",
			p.RSIOversold, p.RSIOverbought)
	}

	if p.BBPeriod < MinOscillatorPeriod {
		return fmt.Errorf("bb period must be at least %d, got: %d", MinOscillatorPeriod, p.BBPeriod)
	}
	if p.BBStdDev <= 0 {
		return fmt.Errorf("bb standard deviation must be positive, got: %.2f", p.BBStdDev)
	}

	if p.EMAFast < MinMAPeriod || p.EMASlow < MinMAPeriod {
		return fmt.Errorf("ema periods must be at least %d, got: %d/%d", MinMAPeriod, p.EMAFast, p.EMASlow)
	}
	if p.EMAFast >= p.EMASlow {
		return fmt.Errorf("ema fast period must be shorter than slow, got: %d/%d", p.EMAFast, p.EMASlow)
	}
	if p.MACDSignal < MinMAPeriod {
		return fmt.Errorf("macd signal period must be at least %d, got: %d", MinMAPeriod, p.MACDSignal)
	}

	if p.VolumeMAPeriod < MinMAPeriod {
		return fmt.Errorf("volume ma period must be at least %d, got: %d", MinMAPeriod, p.VolumeMAPeriod)
	}
	if p.VolumeThreshold <= 0 {
		return fmt.Errorf("volume threshold must be positive, got: %.2f", p.VolumeThreshold)
	}

	if p.StochOversold < 0 || p.StochOverbought > 100 || p.StochOversold >= p.StochOverbought {
		return fmt.Errorf("stochastic thresholds must satisfy 0 <= oversold < overbought <= 100, got: %.1f/%.1f",
			p.StochOversold, p.StochOverbought)
	}

	if p.MaxPositionSize <= 0 || p.MaxPositionSize > 1 {
		return fmt.Errorf("max position size must be within (0, 1], got: %.4f", p.MaxPositionSize)
	}
	if p.StopLossPct <= 0 || p.StopLossPct >= 1 {
		return fmt.Errorf("stop loss percent must be within (0, 1), got: %.4f", p.StopLossPct)
	}
	if p.TakeProfitPct <= 0 || p.TakeProfitPct >= 1 {
		return fmt.Errorf("take profit percent must be within (0, 1), got: %.4f", p.TakeProfitPct)
	}

	for name, w := range map[string]float64{
		"momentum":       p.MomentumWeight,
		"mean_reversion": p.MeanReversionWeight,
		"trend":          p.TrendWeight,
		"volume":         p.VolumeWeight,
		"stochastic":     p.StochasticWeight,
	} {
		if w < 0 {
			return fmt.Errorf("%s weight must be non-negative, got: %.2f", name, w)
		}
	}
	if p.WeightSum() <= 0 {
		return fmt.Errorf("fusion weights must not all be zero")
	}

	if p.MinSignalConfidence < 0 || p.MinSignalConfidence > 1 {
		return fmt.Errorf("min signal confidence must be within [0, 1], got: %.2f", p.MinSignalConfidence)
	}
	if p.MinIndividualConfidence < 0 || p.MinIndividualConfidence > 1 {
		return fmt.Errorf("min individual confidence must be within [0, 1], got: %.2f", p.MinIndividualConfidence)
	}

	return nil
}
