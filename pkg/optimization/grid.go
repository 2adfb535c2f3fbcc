package optimization

import (
	"fmt"
	"sort"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
)

// Candidates maps a tunable parameter name to the list of values the grid
// search should try for it. Names follow the JSON tags of
// config.StrategyParameters ("rsi_period", "take_profit_pct", ...).
type Candidates map[string][]float64

// Combinations returns the size of the full cross product. An empty map
// counts as a single combination: the base parameters unchanged.
func (c Candidates) Combinations() int {
	total := 1
	for _, values := range c {
		total *= len(values)
	}
	return total
}

// gridJob is one parameter combination queued for evaluation.
type gridJob struct {
	index     int
	overrides map[string]float64
	params    config.StrategyParameters
}

// enumerate expands the candidate grid into the full cross product of
// parameter combinations. Parameter names are walked in sorted order with the
// last name varying fastest, so the combination index is stable across runs.
func enumerate(base config.StrategyParameters, candidates Candidates) ([]gridJob, error) {
	names := make([]string, 0, len(candidates))
	for name, values := range candidates {
		if len(values) == 0 {
			return nil, fmt.Errorf("no candidate values for parameter %q", name)
		}
		scratch := base
		if !applyParameter(&scratch, name, values[0]) {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	total := 1
	for _, name := range names {
		total *= len(candidates[name])
	}

	jobs := make([]gridJob, 0, total)
	offsets := make([]int, len(names))
	for i := 0; i < total; i++ {
		params := base
		overrides := make(map[string]float64, len(names))
		for pos, name := range names {
			value := candidates[name][offsets[pos]]
			overrides[name] = value
			applyParameter(&params, name, value)
		}
		jobs = append(jobs, gridJob{index: i, overrides: overrides, params: params})

		for pos := len(offsets) - 1; pos >= 0; pos-- {
			offsets[pos]++
			if offsets[pos] < len(candidates[names[pos]]) {
				break
			}
			offsets[pos] = 0
		}
	}
	return jobs, nil
}

// applyParameter sets the named field on p. Integer parameters take the
// integer part of the candidate value. Returns false for unknown names.
func applyParameter(p *config.StrategyParameters, name string, value float64) bool {
	switch name {
	case "rsi_period":
		p.RSIPeriod = int(value)
	case "rsi_oversold":
		p.RSIOversold = value
	case "rsi_overbought":
		p.RSIOverbought = value
	case "bb_period":
		p.BBPeriod = int(value)
	case "bb_std":
		p.BBStdDev = value
	case "ema_fast":
		p.EMAFast = int(value)
	case "ema_slow":
		p.EMASlow = int(value)
	case "macd_signal":
		p.MACDSignal = int(value)
	case "volume_ma_period":
		p.VolumeMAPeriod = int(value)
	case "volume_threshold":
		p.VolumeThreshold = value
	case "stoch_oversold":
		p.StochOversold = value
	case "stoch_overbought":
		p.StochOverbought = value
	case "max_position_size":
		p.MaxPositionSize = value
	case "stop_loss_pct":
		p.StopLossPct = value
	case "take_profit_pct":
		p.TakeProfitPct = value
	case "momentum_weight":
		p.MomentumWeight = value
	case "mean_reversion_weight":
		p.MeanReversionWeight = value
	case "trend_weight":
		p.TrendWeight = value
	case "volume_weight":
		p.VolumeWeight = value
	case "stochastic_weight":
		p.StochasticWeight = value
	case "min_signal_confidence":
		p.MinSignalConfidence = value
	case "min_individual_confidence":
		p.MinIndividualConfidence = value
	default:
		return false
	}
	return true
}
