// Package risk scores proposed trades across five dimensions (trade
// size, portfolio exposure, correlation, concentration, drawdown) and
// turns the combined score into a risk level, size adjustments, and a
// ceiling for new positions.
package risk

import (
	"math"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// Level classifies the combined risk score
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// History caps keep the rolling buffers bounded
const (
	maxPositionHistory = 100
	maxPnLHistory      = 30
)

// Assessment is the result of scoring one proposed trade
type Assessment struct {
	Level           Level    `json:"risk_level"`
	Score           float64  `json:"risk_score"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
	AdjustedSize    float64  `json:"adjusted_size"`
	MaxPositionSize float64  `json:"max_new_position_size"`
}

// Assessor holds the rolling risk state. It is owned by a single
// goroutine; callers needing a view of the state use Summary, which
// returns copies.
type Assessor struct {
	limits config.RiskLimits

	dailyPnL     []float64
	positions    []positionRecord
	correlations map[string]map[string]float64
}

type positionRecord struct {
	Symbol string
	Side   types.SignalDirection
	Size   float64
	Price  float64
}

// NewAssessor creates an Assessor enforcing the given limits
func NewAssessor(limits config.RiskLimits) *Assessor {
	return &Assessor{
		limits:       limits,
		correlations: make(map[string]map[string]float64),
	}
}

// AssessTrade scores a proposed trade against the rolling risk state.
// Degenerate inputs produce the fail-safe assessment (critical, score
// 100, zero ceiling) rather than an error or a panic.
func (a *Assessor) AssessTrade(symbol string, direction types.SignalDirection, proposedSize, price, portfolioValue float64) Assessment {
	if portfolioValue <= 0 || price <= 0 || proposedSize < 0 ||
		math.IsNaN(proposedSize) || math.IsNaN(price) || math.IsNaN(portfolioValue) {
		log := logger.For("risk")
		log.Error().
			Str("symbol", symbol).
			Float64("size", proposedSize).
			Float64("price", price).
			Float64("portfolio_value", portfolioValue).
			Msg("Invalid inputs for risk assessment")
		return a.failSafeAssessment("Error in risk assessment")
	}

	metrics := a.portfolioMetrics(portfolioValue)

	trade := a.assessTradeRisk(proposedSize, price, portfolioValue)
	portfolio := a.assessPortfolioRisk(metrics)
	correlation := a.assessCorrelationRisk(symbol)
	concentration := a.assessConcentrationRisk(symbol, proposedSize, price, portfolioValue)
	drawdown := a.assessDrawdownRisk()

	score := combinedScore(trade, portfolio, correlation, concentration, drawdown)
	level := levelForScore(score)
	warnings, recommendations := riskGuidance(level, trade, portfolio, correlation, concentration, drawdown)

	return Assessment{
		Level:           level,
		Score:           score,
		Warnings:        warnings,
		Recommendations: recommendations,
		AdjustedSize:    a.adjustedSize(level, proposedSize, metrics),
		MaxPositionSize: a.positionCeiling(level, metrics),
	}
}

type tradeRisk struct {
	positionPct  float64
	riskPerTrade float64
	within       bool
}

func (a *Assessor) assessTradeRisk(proposedSize, price, portfolioValue float64) tradeRisk {
	positionPct := (proposedSize * price) / portfolioValue
	// Assumes a 2% stop distance
	riskPerTrade := positionPct * 0.02

	return tradeRisk{
		positionPct:  positionPct,
		riskPerTrade: riskPerTrade,
		within:       positionPct <= a.limits.MaxPositionSize && riskPerTrade <= a.limits.RiskPerTrade,
	}
}

type portfolioRisk struct {
	exposure      float64
	drawdownFrac  float64
	concentration float64
	within        bool
}

func (a *Assessor) assessPortfolioRisk(metrics portfolioMetrics) portfolioRisk {
	exposure := metrics.totalExposure / metrics.portfolioValue
	drawdownFrac := metrics.maxDrawdown / metrics.portfolioValue

	return portfolioRisk{
		exposure:      exposure,
		drawdownFrac:  drawdownFrac,
		concentration: metrics.concentration,
		within: exposure <= 1.0 &&
			drawdownFrac <= a.limits.MaxDailyLoss &&
			metrics.concentration <= 0.3,
	}
}

type correlationRisk struct {
	risk   float64
	within bool
}

func (a *Assessor) assessCorrelationRisk(symbol string) correlationRisk {
	risk := 0.0
	if correlations, ok := a.correlations[symbol]; ok {
		highCount := 0
		for _, corr := range correlations {
			if math.Abs(corr) > 0.7 {
				highCount++
			}
		}
		risk = math.Min(float64(highCount)*0.1, 0.5)
	}

	return correlationRisk{risk: risk, within: risk <= 0.7}
}

type concentrationRisk struct {
	risk   float64
	within bool
}

func (a *Assessor) assessConcentrationRisk(symbol string, proposedSize, price, portfolioValue float64) concentrationRisk {
	current := 0.0
	for _, pos := range a.positions {
		if pos.Symbol == symbol {
			current += pos.Size * pos.Price / portfolioValue
		}
	}

	risk := math.Min(current+(proposedSize*price)/portfolioValue, 1.0)

	// At most 20% of the portfolio in a single asset
	return concentrationRisk{risk: risk, within: risk <= 0.2}
}

type drawdownRisk struct {
	risk              float64
	consecutiveLosses int
	within            bool
}

func (a *Assessor) assessDrawdownRisk() drawdownRisk {
	if len(a.dailyPnL) < 5 {
		return drawdownRisk{within: true}
	}

	recent := a.dailyPnL[len(a.dailyPnL)-5:]
	cumulative := cumulativeSum(recent)
	maxDD := maxOf(cumulative) - minOf(cumulative)

	consecutive := 0
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i] >= 0 {
			break
		}
		consecutive++
	}

	risk := maxDD / a.limits.InitialCapital

	return drawdownRisk{
		risk:              risk,
		consecutiveLosses: consecutive,
		within:            risk <= a.limits.MaxDailyLoss && consecutive < config.MaxConsecutiveLosses,
	}
}

func combinedScore(trade tradeRisk, portfolio portfolioRisk, correlation correlationRisk,
	concentration concentrationRisk, drawdown drawdownRisk) float64 {
	score := 0.0

	// Fixed penalty per dimension out of limits
	if !trade.within {
		score += 30
	}
	if !portfolio.within {
		score += 25
	}
	if !correlation.within {
		score += 20
	}
	if !concentration.within {
		score += 15
	}
	if !drawdown.within {
		score += 10
	}

	// Magnitude adjustments
	score += trade.riskPerTrade * 100
	score += portfolio.exposure * 50
	score += correlation.risk * 100
	score += concentration.risk * 100
	score += drawdown.risk * 100

	return math.Min(score, 100.0)
}

func levelForScore(score float64) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}

func riskGuidance(level Level, trade tradeRisk, portfolio portfolioRisk, correlation correlationRisk,
	concentration concentrationRisk, drawdown drawdownRisk) (warnings, recommendations []string) {
	if level == LevelCritical {
		warnings = append(warnings, "CRITICAL RISK: Trade should be avoided")
		recommendations = append(recommendations, "Reduce position size or avoid trade entirely")
	} else if level == LevelHigh {
		warnings = append(warnings, "HIGH RISK: Significant risk detected")
		recommendations = append(recommendations, "Consider reducing position size")
	}

	if !trade.within {
		warnings = append(warnings, "Position size exceeds individual trade limits")
		recommendations = append(recommendations, "Reduce position size to within risk limits")
	}
	if !portfolio.within {
		warnings = append(warnings, "Portfolio risk limits exceeded")
		recommendations = append(recommendations, "Reduce overall portfolio exposure")
	}
	if !correlation.within {
		warnings = append(warnings, "High correlation risk detected")
		recommendations = append(recommendations, "Diversify across uncorrelated assets")
	}
	if !concentration.within {
		warnings = append(warnings, "Concentration risk too high")
		recommendations = append(recommendations, "Reduce position size in this asset")
	}
	if !drawdown.within {
		warnings = append(warnings, "Drawdown risk detected")
		recommendations = append(recommendations, "Consider reducing risk or taking a break")
	}

	return warnings, recommendations
}

func (a *Assessor) adjustedSize(level Level, proposedSize float64, metrics portfolioMetrics) float64 {
	var adjusted float64
	switch level {
	case LevelCritical:
		return 0
	case LevelHigh:
		adjusted = proposedSize * 0.5
	case LevelMedium:
		adjusted = proposedSize * 0.75
	default:
		adjusted = proposedSize
	}

	ddFraction := metrics.maxDrawdown / metrics.portfolioValue
	if ddFraction > 0.05 {
		adjusted *= 0.5
	}
	if metrics.concentration > 0.2 {
		adjusted *= 0.7
	}

	return adjusted
}

func (a *Assessor) positionCeiling(level Level, metrics portfolioMetrics) float64 {
	ceiling := a.limits.MaxPositionSize
	switch level {
	case LevelCritical:
		return 0
	case LevelHigh:
		ceiling *= 0.3
	case LevelMedium:
		ceiling *= 0.6
	default:
		ceiling *= 0.8
	}

	ddFraction := metrics.maxDrawdown / metrics.portfolioValue
	if ddFraction > 0.03 {
		ceiling *= 0.5
	}
	if metrics.concentration > 0.15 {
		ceiling *= 0.7
	}

	return ceiling
}

// failSafeAssessment is returned whenever an assessment cannot be
// completed: maximum score, zero ceiling, trade blocked.
func (a *Assessor) failSafeAssessment(reason string) Assessment {
	return Assessment{
		Level:           LevelCritical,
		Score:           100,
		Warnings:        []string{reason},
		Recommendations: []string{"Avoid trade", "Review risk parameters"},
		AdjustedSize:    0,
		MaxPositionSize: 0,
	}
}
