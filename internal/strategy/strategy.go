package strategy

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// Strategy combines the fixed generator set into a single weighted
// decision. The parameter set is copied at construction and never
// mutated afterwards, so a Strategy is safe to share across runs.
type Strategy struct {
	params      config.StrategyParameters
	pipeline    *indicators.Pipeline
	directional []generator
	volume      volumeVariant
}

// New creates a Strategy for the given parameter set
func New(params config.StrategyParameters) *Strategy {
	return &Strategy{
		params:   params,
		pipeline: indicators.NewPipeline(params),
		directional: []generator{
			momentumVariant{params: params},
			meanReversionVariant{params: params},
			trendVariant{params: params},
			stochasticVariant{params: params},
		},
		volume: volumeVariant{params: params},
	}
}

// Params returns the strategy's parameter set
func (s *Strategy) Params() config.StrategyParameters {
	return s.params
}

// Snapshot computes the indicator snapshot for the given bar prefix
func (s *Strategy) Snapshot(bars []types.OHLCV) indicators.Snapshot {
	return s.pipeline.Snapshot(bars)
}

// Evaluate fuses all generator opinions at the given price into one
// trading signal. Directional opinions accumulate confidence x weight
// into a buy and a sell score; the volume opinion then boosts whichever
// side leads (ties favor sell). The final direction needs its score to
// beat both the other side and the minimum signal confidence.
func (s *Strategy) Evaluate(symbol string, snap indicators.Snapshot, price float64, timestamp time.Time) types.TradingSignal {
	buyScore, sellScore := 0.0, 0.0
	rationales := make([]string, 0, len(s.directional)+1)

	for _, g := range s.directional {
		op := g.evaluate(snap, price)
		switch op.Direction {
		case types.SignalBuy:
			buyScore += op.Confidence * g.weight()
		case types.SignalSell:
			sellScore += op.Confidence * g.weight()
		}
		if op.Rationale != "" {
			rationales = append(rationales, g.name()+": "+op.Rationale)
		}
	}

	volumeOp := s.volume.evaluate(snap, price)
	boost := volumeOp.Confidence * s.volume.weight()
	if buyScore > sellScore {
		buyScore += boost
	} else {
		sellScore += boost
	}
	if volumeOp.Rationale != "" {
		rationales = append(rationales, s.volume.name()+": "+volumeOp.Rationale)
	}

	direction := types.SignalHold
	confidence := 0.0
	switch {
	case buyScore > sellScore && buyScore > s.params.MinSignalConfidence:
		direction = types.SignalBuy
		confidence = math.Min(buyScore, 1.0)
	case sellScore > buyScore && sellScore > s.params.MinSignalConfidence:
		direction = types.SignalSell
		confidence = math.Min(sellScore, 1.0)
	}

	signal := types.TradingSignal{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Direction:    direction,
		Confidence:   confidence,
		EntryPrice:   price,
		PositionSize: math.Min(confidence*s.params.MaxPositionSize, s.params.MaxPositionSize),
		Rationale:    joinRationales(rationales),
		Timestamp:    timestamp,
	}

	switch direction {
	case types.SignalBuy:
		signal.StopLoss = price * (1 - s.params.StopLossPct)
		signal.TakeProfit = price * (1 + s.params.TakeProfitPct)
	case types.SignalSell:
		signal.StopLoss = price * (1 + s.params.StopLossPct)
		signal.TakeProfit = price * (1 - s.params.TakeProfitPct)
	}

	return signal
}

// Analyze computes indicators over the bar prefix and evaluates the
// fused signal at the latest close
func (s *Strategy) Analyze(symbol string, bars []types.OHLCV) (types.TradingSignal, error) {
	if len(bars) < s.params.WarmupBars() {
		return types.TradingSignal{}, errors.New("insufficient data for signal analysis")
	}

	last := bars[len(bars)-1]
	snap := s.pipeline.Snapshot(bars)
	return s.Evaluate(symbol, snap, last.Close, last.Timestamp), nil
}

func joinRationales(parts []string) string {
	if len(parts) == 0 {
		return "No clear signals"
	}
	return strings.Join(parts, " | ")
}
