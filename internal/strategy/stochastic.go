package strategy

import (
	"math"
	"strings"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// stochasticVariant trades %K/%D zone extremes with Williams %R as a
// confirming oscillator. Disabled by default (zero weight); the
// aggressive preset enables it.
type stochasticVariant struct {
	params config.StrategyParameters
}

func (s stochasticVariant) name() string    { return "Stochastic" }
func (s stochasticVariant) weight() float64 { return s.params.StochasticWeight }

func (s stochasticVariant) evaluate(snap indicators.Snapshot, price float64) Opinion {
	if !indicators.Defined(snap.StochK, snap.StochD) {
		return holdOpinion()
	}

	confidence := 0.0
	var parts []string

	if snap.StochK < s.params.StochOversold && snap.StochD < s.params.StochOversold {
		confidence += 0.3
		parts = append(parts, "Stochastic oversold")
	} else if snap.StochK > s.params.StochOverbought && snap.StochD > s.params.StochOverbought {
		confidence += 0.3
		parts = append(parts, "Stochastic overbought")
	}

	if indicators.Defined(snap.WilliamsR) {
		if snap.WilliamsR < -80 {
			confidence += 0.2
			parts = append(parts, "Williams %R oversold")
		} else if snap.WilliamsR > -20 {
			confidence += 0.2
			parts = append(parts, "Williams %R overbought")
		}
	}

	direction := types.SignalHold
	if confidence > s.params.MinIndividualConfidence {
		if snap.StochK < 30 {
			direction = types.SignalBuy
		} else {
			direction = types.SignalSell
		}
	}

	return Opinion{
		Direction:  direction,
		Confidence: math.Min(confidence, 1.0),
		Rationale:  strings.Join(parts, ", "),
	}
}
