package indicators

import (
	"math"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// Oscillator windows shared by every parameter set
const (
	StochasticKPeriod = 14
	StochasticDPeriod = 3
	WilliamsPeriod    = 14
	MomentumShort     = 5
	MomentumLong      = 10
)

// Pipeline computes indicator snapshots for a bar series using one
// parameter set. It holds no state between calls.
type Pipeline struct {
	rsi        *RSI
	macd       *MACD
	bollinger  *BollingerBands
	emaFast    *EMA
	emaSlow    *EMA
	volume     *VolumeRatio
	stochastic *Stochastic
	williams   *WilliamsR
	momentum5  *Momentum
	momentum10 *Momentum
}

// NewPipeline creates a Pipeline configured from the given parameters
func NewPipeline(params config.StrategyParameters) *Pipeline {
	return &Pipeline{
		rsi:        NewRSI(params.RSIPeriod),
		macd:       NewMACD(params.EMAFast, params.EMASlow, params.MACDSignal),
		bollinger:  NewBollingerBands(params.BBPeriod, params.BBStdDev),
		emaFast:    NewEMA(params.EMAFast),
		emaSlow:    NewEMA(params.EMASlow),
		volume:     NewVolumeRatio(params.VolumeMAPeriod),
		stochastic: NewStochastic(StochasticKPeriod, StochasticDPeriod),
		williams:   NewWilliamsR(WilliamsPeriod),
		momentum5:  NewMomentum(MomentumShort),
		momentum10: NewMomentum(MomentumLong),
	}
}

// Snapshot computes the latest value of every indicator from the given bar
// prefix. Indicators that lack enough history come back as NaN.
func (p *Pipeline) Snapshot(bars []types.OHLCV) Snapshot {
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	snap := Snapshot{
		RSI:         math.NaN(),
		MACD:        math.NaN(),
		MACDSignal:  math.NaN(),
		MACDHist:    math.NaN(),
		BBUpper:     math.NaN(),
		BBMiddle:    math.NaN(),
		BBLower:     math.NaN(),
		BBWidth:     math.NaN(),
		BBPosition:  math.NaN(),
		EMAFast:     math.NaN(),
		EMASlow:     math.NaN(),
		VolumeRatio: math.NaN(),
		StochK:      math.NaN(),
		StochD:      math.NaN(),
		WilliamsR:   math.NaN(),
		Momentum5:   math.NaN(),
		Momentum10:  math.NaN(),
	}

	if v, err := p.rsi.Calculate(closes); err == nil {
		snap.RSI = v
	}
	if macd, signal, hist, err := p.macd.Calculate(closes); err == nil {
		snap.MACD = macd
		snap.MACDSignal = signal
		snap.MACDHist = hist
	}
	if upper, middle, lower, width, position, err := p.bollinger.Calculate(closes); err == nil {
		snap.BBUpper = upper
		snap.BBMiddle = middle
		snap.BBLower = lower
		snap.BBWidth = width
		snap.BBPosition = position
	}
	if v, err := p.emaFast.Calculate(closes); err == nil {
		snap.EMAFast = v
	}
	if v, err := p.emaSlow.Calculate(closes); err == nil {
		snap.EMASlow = v
	}
	if v, err := p.volume.Calculate(volumes); err == nil {
		snap.VolumeRatio = v
	}
	if k, d, err := p.stochastic.Calculate(bars); err == nil {
		snap.StochK = k
		snap.StochD = d
	}
	if v, err := p.williams.Calculate(bars); err == nil {
		snap.WilliamsR = v
	}
	if v, err := p.momentum5.Calculate(closes); err == nil {
		snap.Momentum5 = v
	}
	if v, err := p.momentum10.Calculate(closes); err == nil {
		snap.Momentum10 = v
	}

	return snap
}
