package strategy

import (
	"math"
	"strings"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// trendVariant follows the fast/slow EMA relationship and the price
// position relative to both averages.
type trendVariant struct {
	params config.StrategyParameters
}

func (t trendVariant) name() string    { return "Trend" }
func (t trendVariant) weight() float64 { return t.params.TrendWeight }

func (t trendVariant) evaluate(snap indicators.Snapshot, price float64) Opinion {
	if !indicators.Defined(snap.EMAFast, snap.EMASlow) {
		return holdOpinion()
	}

	confidence := 0.0
	var parts []string

	if snap.EMAFast > snap.EMASlow {
		confidence += 0.5
		parts = append(parts, "EMA fast > EMA slow (uptrend)")
	} else {
		confidence += 0.5
		parts = append(parts, "EMA fast < EMA slow (downtrend)")
	}

	if price > snap.EMAFast && snap.EMAFast > snap.EMASlow {
		confidence += 0.3
		parts = append(parts, "Price above both EMAs")
	} else if price < snap.EMAFast && snap.EMAFast < snap.EMASlow {
		confidence += 0.3
		parts = append(parts, "Price below both EMAs")
	}

	// Direction requires price and crossover to agree; a strong reading
	// with price between the averages stays a hold.
	direction := types.SignalHold
	if confidence > t.params.MinIndividualConfidence {
		if snap.EMAFast > snap.EMASlow && price > snap.EMAFast {
			direction = types.SignalBuy
		} else if snap.EMAFast < snap.EMASlow && price < snap.EMAFast {
			direction = types.SignalSell
		}
	}

	return Opinion{
		Direction:  direction,
		Confidence: math.Min(confidence, 1.0),
		Rationale:  strings.Join(parts, ", "),
	}
}
