package strategy

import (
	"math"
	"strings"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// meanReversionVariant fades moves to the Bollinger Band edges, with
// band-width expansion as a supporting condition.
type meanReversionVariant struct {
	params config.StrategyParameters
}

func (m meanReversionVariant) name() string    { return "Mean Reversion" }
func (m meanReversionVariant) weight() float64 { return m.params.MeanReversionWeight }

func (m meanReversionVariant) evaluate(snap indicators.Snapshot, price float64) Opinion {
	if !indicators.Defined(snap.BBUpper, snap.BBLower, snap.BBMiddle) {
		return holdOpinion()
	}

	// Band position from the evaluation price, not the bar close; the
	// two differ when a live ticker price is used.
	position := 0.5
	if denom := snap.BBUpper - snap.BBLower; denom != 0 {
		position = (price - snap.BBLower) / denom
	}

	confidence := 0.0
	var parts []string

	if position < 0.1 {
		confidence += 0.6
		parts = append(parts, "Price near BB lower band")
	} else if position > 0.9 {
		confidence += 0.6
		parts = append(parts, "Price near BB upper band")
	}

	if indicators.Defined(snap.BBWidth) && snap.BBWidth > 0.1 {
		confidence += 0.2
		parts = append(parts, "High volatility (mean reversion setup)")
	}

	direction := types.SignalHold
	if confidence > m.params.MinIndividualConfidence {
		if position < 0.1 {
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
