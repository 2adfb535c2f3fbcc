package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
)

// volumeVariant measures volume relative to its trailing average. It
// never votes a direction; fusion applies its confidence as a boost to
// whichever side is leading.
type volumeVariant struct {
	params config.StrategyParameters
}

func (v volumeVariant) name() string    { return "Volume" }
func (v volumeVariant) weight() float64 { return v.params.VolumeWeight }

func (v volumeVariant) evaluate(snap indicators.Snapshot, price float64) Opinion {
	if !indicators.Defined(snap.VolumeRatio) {
		return holdOpinion()
	}

	confidence := 0.0
	var parts []string

	if snap.VolumeRatio > v.params.VolumeThreshold {
		confidence += 0.4
		parts = append(parts, fmt.Sprintf("High volume (%.1fx average)", snap.VolumeRatio))
	}
	if snap.VolumeRatio > 2.0 {
		confidence += 0.3
		parts = append(parts, "Very high volume")
	}

	op := holdOpinion()
	op.Confidence = math.Min(confidence, 1.0)
	op.Rationale = strings.Join(parts, ", ")
	return op
}
