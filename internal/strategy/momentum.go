package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// momentumVariant trades RSI extremes, MACD crossovers, and short-horizon
// price momentum.
type momentumVariant struct {
	params config.StrategyParameters
}

func (m momentumVariant) name() string    { return "Momentum" }
func (m momentumVariant) weight() float64 { return m.params.MomentumWeight }

func (m momentumVariant) evaluate(snap indicators.Snapshot, price float64) Opinion {
	if !indicators.Defined(snap.RSI) {
		return holdOpinion()
	}

	confidence := 0.0
	var parts []string

	if snap.RSI < m.params.RSIOversold {
		confidence += 0.3
		parts = append(parts, fmt.Sprintf("RSI oversold (%.1f)", snap.RSI))
	} else if snap.RSI > m.params.RSIOverbought {
		confidence += 0.3
		parts = append(parts, fmt.Sprintf("RSI overbought (%.1f)", snap.RSI))
	}

	macdDefined := indicators.Defined(snap.MACD, snap.MACDSignal)
	if macdDefined {
		if snap.MACD > snap.MACDSignal && snap.MACDHist > 0 {
			confidence += 0.4
			parts = append(parts, "MACD bullish crossover")
		} else if snap.MACD < snap.MACDSignal && snap.MACDHist < 0 {
			confidence += 0.4
			parts = append(parts, "MACD bearish crossover")
		}
	}

	if indicators.Defined(snap.Momentum5) {
		if snap.Momentum5 > 0.02 {
			confidence += 0.3
			parts = append(parts, "Strong 5-period momentum")
		} else if snap.Momentum5 < -0.02 {
			confidence += 0.3
			parts = append(parts, "Strong 5-period negative momentum")
		}
	}

	direction := types.SignalHold
	if confidence > m.params.MinIndividualConfidence {
		if snap.RSI < m.params.RSIOversold || (macdDefined && snap.MACD > snap.MACDSignal) {
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
