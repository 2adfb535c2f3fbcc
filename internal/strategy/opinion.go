// Package strategy fuses the opinions of a fixed set of signal
// generators into trading signals. Every generator is a pure function
// of an indicator snapshot and the current price; the fusion step
// weighs their opinions and applies the configured confidence gates.
package strategy

import (
	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// Opinion is a single generator's read of the market: a direction, a
// confidence in [0,1], and a human-readable rationale.
type Opinion struct {
	Direction  types.SignalDirection
	Confidence float64
	Rationale  string
}

// generator is one member of the fixed variant set the strategy
// consults. Implementations are stateless value types; the same
// snapshot and price always produce the same opinion.
type generator interface {
	name() string
	weight() float64
	evaluate(snap indicators.Snapshot, price float64) Opinion
}

func holdOpinion() Opinion {
	return Opinion{Direction: types.SignalHold}
}
