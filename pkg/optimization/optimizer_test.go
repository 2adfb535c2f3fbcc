package optimization

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// TestOptimizer_Optimize_RanksByScore tests that every combination in the
// grid is evaluated and the ranking is sorted by composite score with the
// best run exposed in full.
func TestOptimizer_Optimize_RanksByScore(t *testing.T) {
	bars := recoverySeries(30)
	grid := Candidates{"take_profit_pct": {0.03, 0.04, 0.06}}

	opt := NewOptimizer(config.DefaultParameters(), 1000, 4)
	opt.Progress = NewProgressTracker(grid.Combinations())

	res, err := opt.Optimize(context.Background(), "BTCUSDT", bars, grid)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.AllResults, 3)

	for i := 0; i < len(res.AllResults)-1; i++ {
		assert.GreaterOrEqual(t, res.AllResults[i].Score, res.AllResults[i+1].Score)
	}
	assert.Equal(t, res.AllResults[0].Score, res.BestScore)

	require.NotNil(t, res.Best)
	assert.Equal(t, res.AllResults[0].Parameters["take_profit_pct"], res.Best.StrategyParameters.TakeProfitPct)
	assert.Equal(t, 1, res.Best.TotalTrades)

	// Each take-profit level is hit during the recovery, so every
	// combination books exactly one winning trade from the same entry.
	seen := make(map[float64]bool)
	for _, cr := range res.AllResults {
		seen[cr.Parameters["take_profit_pct"]] = true
		assert.Equal(t, 100.0, cr.WinRate)
		assert.InDelta(t, 6.8, cr.MaxDrawdown, 1e-3)
		assert.Greater(t, cr.Score, 0.0)
		assert.Greater(t, cr.TotalReturn, 0.0)
		assert.Greater(t, cr.SharpeRatio, 0.0)
	}
	assert.Equal(t, map[float64]bool{0.03: true, 0.04: true, 0.06: true}, seen)

	done, total, percent, _ := opt.Progress.GetProgress()
	assert.Equal(t, 3, done)
	assert.Equal(t, 3, total)
	assert.InDelta(t, 100.0, percent, 1e-9)
}

// TestOptimizer_Optimize_TieBreaksByIndex tests that equal scores rank by
// combination index, keeping results deterministic across runs.
func TestOptimizer_Optimize_TieBreaksByIndex(t *testing.T) {
	// A flat market produces no trades, so every combination scores zero.
	bars := flatSeries(120)
	grid := Candidates{"rsi_period": {10, 14, 21}}

	opt := NewOptimizer(config.DefaultParameters(), 1000, 4)
	res, err := opt.Optimize(context.Background(), "BTCUSDT", bars, grid)
	require.NoError(t, err)
	require.Len(t, res.AllResults, 3)

	for i, cr := range res.AllResults {
		assert.Equal(t, i, cr.Index)
		assert.Zero(t, cr.Score)
	}
	assert.Zero(t, res.BestScore)
	require.NotNil(t, res.Best)
	assert.Equal(t, 10, res.Best.StrategyParameters.RSIPeriod)
}

// TestOptimizer_Optimize_SkipsInvalidCombination tests that a combination
// failing parameter validation is dropped while the rest of the grid runs.
func TestOptimizer_Optimize_SkipsInvalidCombination(t *testing.T) {
	bars := flatSeries(120)
	// ema_fast 26 collides with the default slow period and must be skipped.
	grid := Candidates{"ema_fast": {12, 26}}

	opt := NewOptimizer(config.DefaultParameters(), 1000, 2)
	res, err := opt.Optimize(context.Background(), "BTCUSDT", bars, grid)
	require.NoError(t, err)
	require.Len(t, res.AllResults, 1)
	assert.Equal(t, 12.0, res.AllResults[0].Parameters["ema_fast"])
	require.NotNil(t, res.Best)
	assert.Equal(t, 12, res.Best.StrategyParameters.EMAFast)
}

// TestOptimizer_Optimize_AllCombinationsFail tests that a grid with no
// surviving combination reports an error instead of an empty ranking.
func TestOptimizer_Optimize_AllCombinationsFail(t *testing.T) {
	bars := flatSeries(120)
	grid := Candidates{"ema_fast": {26}}

	opt := NewOptimizer(config.DefaultParameters(), 1000, 1)
	res, err := opt.Optimize(context.Background(), "BTCUSDT", bars, grid)
	assert.ErrorContains(t, err, "no parameter combination produced a result")
	assert.Nil(t, res)
}

// TestOptimizer_Optimize_EmptyGrid tests that an empty grid evaluates the
// base parameters exactly once.
func TestOptimizer_Optimize_EmptyGrid(t *testing.T) {
	bars := flatSeries(120)

	opt := NewOptimizer(config.DefaultParameters(), 1000, 2)
	res, err := opt.Optimize(context.Background(), "BTCUSDT", bars, nil)
	require.NoError(t, err)
	require.Len(t, res.AllResults, 1)
	assert.Empty(t, res.AllResults[0].Parameters)
	require.NotNil(t, res.Best)
	assert.Equal(t, config.DefaultParameters(), res.Best.StrategyParameters)
}

// TestOptimizer_Optimize_UnknownParameter tests that grid validation fails
// fast before any backtest runs.
func TestOptimizer_Optimize_UnknownParameter(t *testing.T) {
	opt := NewOptimizer(config.DefaultParameters(), 1000, 1)
	res, err := opt.Optimize(context.Background(), "BTCUSDT", flatSeries(120), Candidates{"bogus": {1}})
	assert.ErrorContains(t, err, "unknown parameter")
	assert.Nil(t, res)
}

// TestOptimizer_Optimize_Canceled tests that a canceled context aborts the
// search with the context error.
func TestOptimizer_Optimize_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opt := NewOptimizer(config.DefaultParameters(), 1000, 2)
	res, err := opt.Optimize(ctx, "BTCUSDT", flatSeries(120), Candidates{"rsi_period": {10, 14, 21}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

// TestProgressTracker tests the completion counter and its derived values.
func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker(4)

	done, total, percent, elapsed := pt.GetProgress()
	assert.Equal(t, 0, done)
	assert.Equal(t, 4, total)
	assert.Zero(t, percent)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	assert.Equal(t, time.Duration(0), pt.EstimateTimeRemaining())

	pt.Increment()
	pt.Increment()

	done, total, percent, _ = pt.GetProgress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 4, total)
	assert.InDelta(t, 50.0, percent, 1e-9)
	assert.GreaterOrEqual(t, pt.EstimateTimeRemaining(), time.Duration(0))
}

// recoverySeries builds an uptrend into a sharp crash followed by a steady
// recovery. The capitulation bar prints triple volume, pushing the fused
// confidence over the default entry gate, and the recovery walks the price
// through every take-profit level used in the tests.
func recoverySeries(recoveryBars int) []types.OHLCV {
	closes := make([]float64, 0, 68+recoveryBars)
	volumes := make([]float64, 0, 68+recoveryBars)

	price := 100.0
	for i := 0; i < 60; i++ {
		closes = append(closes, price)
		volumes = append(volumes, 1000)
		price *= 1.01
	}
	price = closes[len(closes)-1]
	for i := 0; i < 8; i++ {
		price *= 0.95
		closes = append(closes, price)
		volumes = append(volumes, 1000)
	}
	volumes[len(volumes)-1] = 3000
	for i := 0; i < recoveryBars; i++ {
		price *= 1.01
		closes = append(closes, price)
		volumes = append(volumes, 1000)
	}
	return seriesBars(closes, volumes)
}

func flatSeries(n int) []types.OHLCV {
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1000
	}
	return seriesBars(closes, volumes)
}

func seriesBars(closes, volumes []float64) []types.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = types.OHLCV{
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    volumes[i],
			Timestamp: start.Add(time.Duration(i) * time.Hour),
		}
	}
	return bars
}
