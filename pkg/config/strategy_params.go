package config

// Default parameter values for the conservative preset
const (
	DefaultRSIPeriod     = 14
	DefaultRSIOversold   = 30.0
	DefaultRSIOverbought = 70.0

	DefaultBBPeriod = 20
	DefaultBBStdDev = 2.0

	DefaultEMAFast    = 12
	DefaultEMASlow    = 26
	DefaultMACDSignal = 9

	DefaultVolumeMAPeriod  = 20
	DefaultVolumeThreshold = 1.5

	DefaultStochOversold   = 20.0
	DefaultStochOverbought = 80.0

	DefaultMaxPositionSize = 0.1
	DefaultStopLossPct     = 0.02
	DefaultTakeProfitPct   = 0.04

	DefaultMomentumWeight      = 0.3
	DefaultMeanReversionWeight = 0.3
	DefaultTrendWeight         = 0.2
	DefaultVolumeWeight        = 0.2
	DefaultStochasticWeight    = 0.0

	DefaultMinSignalConfidence     = 0.6
	DefaultMinIndividualConfidence = 0.6

	// Validation bounds
	MinOscillatorPeriod = 2
	MinMAPeriod         = 1

	// DefaultWarmupBars is the minimum bar prefix before the first
	// simulated decision. Pipelines with longer lookbacks extend it.
	DefaultWarmupBars = 50
)

// StrategyParameters is the flat, immutable-per-run configuration of the
// signal engine. Treat values as read-only once a run starts; tuning
// produces a fresh copy (value semantics) so past backtests stay
// reproducible.
type StrategyParameters struct {
	// Momentum
	RSIPeriod     int     `json:"rsi_period"`
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`

	// Volatility bands
	BBPeriod int     `json:"bb_period"`
	BBStdDev float64 `json:"bb_std"`

	// Trend
	EMAFast    int `json:"ema_fast"`
	EMASlow    int `json:"ema_slow"`
	MACDSignal int `json:"macd_signal"`

	// Volume
	VolumeMAPeriod  int     `json:"volume_ma_period"`
	VolumeThreshold float64 `json:"volume_threshold"`

	// Stochastic
	StochOversold   float64 `json:"stoch_oversold"`
	StochOverbought float64 `json:"stoch_overbought"`

	// Risk
	MaxPositionSize float64 `json:"max_position_size"`
	StopLossPct     float64 `json:"stop_loss_pct"`
	TakeProfitPct   float64 `json:"take_profit_pct"`

	// Fusion weights
	MomentumWeight      float64 `json:"momentum_weight"`
	MeanReversionWeight float64 `json:"mean_reversion_weight"`
	TrendWeight         float64 `json:"trend_weight"`
	VolumeWeight        float64 `json:"volume_weight"`
	StochasticWeight    float64 `json:"stochastic_weight"`

	// Confidence gates
	MinSignalConfidence     float64 `json:"min_signal_confidence"`
	MinIndividualConfidence float64 `json:"min_individual_confidence"`
}

// DefaultParameters returns the conservative reference preset.
func DefaultParameters() StrategyParameters {
	return StrategyParameters{
		RSIPeriod:     DefaultRSIPeriod,
		RSIOversold:   DefaultRSIOversold,
		RSIOverbought: DefaultRSIOverbought,

		BBPeriod: DefaultBBPeriod,
		BBStdDev: DefaultBBStdDev,

		EMAFast:    DefaultEMAFast,
		EMASlow:    DefaultEMASlow,
		MACDSignal: DefaultMACDSignal,

		VolumeMAPeriod:  DefaultVolumeMAPeriod,
		VolumeThreshold: DefaultVolumeThreshold,

		StochOversold:   DefaultStochOversold,
		StochOverbought: DefaultStochOverbought,

		MaxPositionSize: DefaultMaxPositionSize,
		StopLossPct:     DefaultStopLossPct,
		TakeProfitPct:   DefaultTakeProfitPct,

		MomentumWeight:      DefaultMomentumWeight,
		MeanReversionWeight: DefaultMeanReversionWeight,
		TrendWeight:         DefaultTrendWeight,
		VolumeWeight:        DefaultVolumeWeight,
		StochasticWeight:    DefaultStochasticWeight,

		MinSignalConfidence:     DefaultMinSignalConfidence,
		MinIndividualConfidence: DefaultMinIndividualConfidence,
	}
}

// AggressiveParameters returns the permissive preset: tighter bands, faster
// EMAs, lower confidence gates and a live stochastic generator. It trades
// far more often than the default preset.
func AggressiveParameters() StrategyParameters {
	p := DefaultParameters()

	p.RSIOversold = 35
	p.RSIOverbought = 65
	p.BBStdDev = 1.5
	p.EMAFast = 9
	p.EMASlow = 21

	p.StopLossPct = 0.015
	p.TakeProfitPct = 0.03

	p.MomentumWeight = 0.25
	p.MeanReversionWeight = 0.2
	p.TrendWeight = 0.25
	p.VolumeWeight = 0.15
	p.StochasticWeight = 0.15

	p.MinSignalConfidence = 0.3
	p.MinIndividualConfidence = 0.2

	return p
}

// ParametersForPreset maps a preset name to its parameter set.
// Recognized names: "default", "conservative", "aggressive".
func ParametersForPreset(name string) (StrategyParameters, bool) {
	switch name {
	case "", "default", "conservative":
		return DefaultParameters(), true
	case "aggressive":
		return AggressiveParameters(), true
	}
	return StrategyParameters{}, false
}

// WarmupBars returns the number of leading bars to skip before the first
// decision: at least DefaultWarmupBars, extended when a lookback needs more.
func (p StrategyParameters) WarmupBars() int {
	warmup := DefaultWarmupBars
	for _, lookback := range []int{
		p.RSIPeriod + 1,
		p.BBPeriod,
		p.EMASlow + p.MACDSignal,
		p.VolumeMAPeriod,
	} {
		if lookback > warmup {
			warmup = lookback
		}
	}
	return warmup
}

// WeightSum returns the sum of all fusion weights.
func (p StrategyParameters) WeightSum() float64 {
	return p.MomentumWeight + p.MeanReversionWeight + p.TrendWeight +
		p.VolumeWeight + p.StochasticWeight
}
