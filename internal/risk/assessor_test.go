package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// TestAssessTrade_CleanState tests a small trade against an empty history
func TestAssessTrade_CleanState(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())

	// 5% of a 1000 portfolio
	assessment := a.AssessTrade("BTCUSDT", types.SignalBuy, 0.5, 100, 1000)

	assert.Equal(t, LevelLow, assessment.Level)
	assert.InDelta(t, 5.1, assessment.Score, 1e-9)
	assert.Empty(t, assessment.Warnings)
	assert.Equal(t, 0.5, assessment.AdjustedSize)
	assert.InDelta(t, 0.08, assessment.MaxPositionSize, 1e-9)
}

// TestAssessTrade_OversizedPosition tests the half-portfolio scenario
func TestAssessTrade_OversizedPosition(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())

	// 50% of the portfolio with a 10% limit
	proposed := 5.0
	assessment := a.AssessTrade("BTCUSDT", types.SignalBuy, proposed, 100, 1000)

	// trade penalty 30 + concentration penalty 15 + rpt 1 + concentration 50
	assert.InDelta(t, 96.0, assessment.Score, 1e-9)
	assert.Equal(t, LevelCritical, assessment.Level)
	assert.Less(t, assessment.MaxPositionSize, proposed)
	assert.Equal(t, 0.0, assessment.AdjustedSize)
	assert.Contains(t, assessment.Warnings, "CRITICAL RISK: Trade should be avoided")
	assert.Contains(t, assessment.Warnings, "Position size exceeds individual trade limits")
	assert.Contains(t, assessment.Warnings, "Concentration risk too high")
	assert.Contains(t, assessment.Recommendations, "Reduce position size or avoid trade entirely")
}

// TestAssessTrade_ScoreBounds tests that scores stay within [0,100]
func TestAssessTrade_ScoreBounds(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())
	for i := 0; i < 10; i++ {
		a.RecordDailyPnL(-100)
		a.RecordPosition("BTCUSDT", types.SignalBuy, 2, 100)
	}

	cases := []struct {
		size, price, portfolio float64
	}{
		{0, 100, 1000},
		{0.5, 100, 1000},
		{50, 100, 1000},
		{1000, 100, 1000},
	}
	for _, tc := range cases {
		assessment := a.AssessTrade("BTCUSDT", types.SignalBuy, tc.size, tc.price, tc.portfolio)
		assert.GreaterOrEqual(t, assessment.Score, 0.0)
		assert.LessOrEqual(t, assessment.Score, 100.0)
	}
}

// TestAssessTrade_DrawdownCutsSizes tests the drawdown multipliers
func TestAssessTrade_DrawdownCutsSizes(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())

	// 8% peak-to-trough on a 1000 portfolio
	a.RecordDailyPnL(100)
	a.RecordDailyPnL(-80)

	assessment := a.AssessTrade("BTCUSDT", types.SignalBuy, 0.5, 100, 1000)

	// Low level keeps the proposed size, then the >5% drawdown halves it
	assert.Equal(t, LevelLow, assessment.Level)
	assert.InDelta(t, 0.25, assessment.AdjustedSize, 1e-9)
	// Ceiling: 0.1 * 0.8, halved for the >3% drawdown
	assert.InDelta(t, 0.04, assessment.MaxPositionSize, 1e-9)
	assert.Contains(t, assessment.Warnings, "Portfolio risk limits exceeded")
}

// TestAssessTrade_ConsecutiveLosses tests the loss-streak penalty
func TestAssessTrade_ConsecutiveLosses(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())

	for i := 0; i < 5; i++ {
		a.RecordDailyPnL(-10)
	}

	assessment := a.AssessTrade("BTCUSDT", types.SignalBuy, 0.5, 100, 1000)

	assert.Contains(t, assessment.Warnings, "Drawdown risk detected")
	assert.Contains(t, assessment.Recommendations, "Consider reducing risk or taking a break")
}

// TestAssessTrade_ShortHistoryIsSafe tests that <5 P&L samples skip the
// drawdown dimension
func TestAssessTrade_ShortHistoryIsSafe(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())

	a.RecordDailyPnL(-10)
	a.RecordDailyPnL(-10)

	assessment := a.AssessTrade("BTCUSDT", types.SignalBuy, 0.5, 100, 1000)

	assert.NotContains(t, assessment.Warnings, "Drawdown risk detected")
}

// TestAssessTrade_CorrelationMagnitude tests correlated-asset scoring
func TestAssessTrade_CorrelationMagnitude(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())
	a.SetCorrelations("BTCUSDT", map[string]float64{
		"ETHUSDT": 0.9,
		"SOLUSDT": -0.8,
		"ADAUSDT": 0.3,
	})

	with := a.AssessTrade("BTCUSDT", types.SignalBuy, 0.5, 100, 1000)
	without := a.AssessTrade("DOTUSDT", types.SignalBuy, 0.5, 100, 1000)

	// Two neighbors above |0.7|: 0.2 extra risk, scored at x100
	assert.InDelta(t, 20.0, with.Score-without.Score, 1e-9)
}

// TestAssessTrade_FailSafe tests degenerate inputs
func TestAssessTrade_FailSafe(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())

	for _, assessment := range []Assessment{
		a.AssessTrade("BTCUSDT", types.SignalBuy, 0.5, 100, 0),
		a.AssessTrade("BTCUSDT", types.SignalBuy, 0.5, -1, 1000),
		a.AssessTrade("BTCUSDT", types.SignalBuy, -0.5, 100, 1000),
	} {
		assert.Equal(t, LevelCritical, assessment.Level)
		assert.Equal(t, 100.0, assessment.Score)
		assert.Equal(t, 0.0, assessment.MaxPositionSize)
		assert.Equal(t, 0.0, assessment.AdjustedSize)
		assert.Contains(t, assessment.Warnings, "Error in risk assessment")
	}
}

// TestLevelForScore tests the level boundaries
func TestLevelForScore(t *testing.T) {
	assert.Equal(t, LevelLow, levelForScore(0))
	assert.Equal(t, LevelLow, levelForScore(39.9))
	assert.Equal(t, LevelMedium, levelForScore(40))
	assert.Equal(t, LevelHigh, levelForScore(60))
	assert.Equal(t, LevelCritical, levelForScore(80))
	assert.Equal(t, LevelCritical, levelForScore(100))
}

// TestHistoryCaps tests the rolling buffer limits
func TestHistoryCaps(t *testing.T) {
	a := NewAssessor(config.DefaultRiskLimits())

	for i := 0; i < 150; i++ {
		a.RecordPosition("BTCUSDT", types.SignalBuy, 1, 100)
		a.RecordDailyPnL(1)
	}

	summary := a.Summary(1000)
	assert.Equal(t, maxPositionHistory, summary.PositionCount)
	assert.Equal(t, maxPnLHistory, summary.DailyPnLCount)
}

// TestSummary tests the reporting snapshot
func TestSummary(t *testing.T) {
	limits := config.DefaultRiskLimits()
	a := NewAssessor(limits)

	a.RecordPosition("BTCUSDT", types.SignalBuy, 2, 100)
	a.RecordPosition("ETHUSDT", types.SignalSell, 1, 50)
	a.RecordDailyPnL(10)
	a.RecordDailyPnL(-5)

	summary := a.Summary(1000)

	assert.Equal(t, 250.0, summary.TotalExposure)
	assert.InDelta(t, 200.0/250.0, summary.ConcentrationRisk, 1e-9)
	assert.Equal(t, 2, summary.PositionCount)
	assert.Equal(t, 2, summary.DailyPnLCount)
	assert.Equal(t, limits, summary.Limits)
	// Two positions: correlation heuristic kicks in
	assert.InDelta(t, 0.2, summary.CorrelationRisk, 1e-9)
	// 3 units of size against a 1000 portfolio
	assert.InDelta(t, 0.003, summary.LiquidityRisk, 1e-9)
}
