package risk

import (
	"math"
	"sort"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// RecordPosition appends an executed position to the rolling history
func (a *Assessor) RecordPosition(symbol string, side types.SignalDirection, size, price float64) {
	a.positions = append(a.positions, positionRecord{
		Symbol: symbol,
		Side:   side,
		Size:   size,
		Price:  price,
	})
	if len(a.positions) > maxPositionHistory {
		a.positions = a.positions[len(a.positions)-maxPositionHistory:]
	}
}

// RecordDailyPnL appends a daily P&L sample to the rolling history
func (a *Assessor) RecordDailyPnL(pnl float64) {
	a.dailyPnL = append(a.dailyPnL, pnl)
	if len(a.dailyPnL) > maxPnLHistory {
		a.dailyPnL = a.dailyPnL[len(a.dailyPnL)-maxPnLHistory:]
	}
}

// SetCorrelations replaces the correlation row for a symbol
func (a *Assessor) SetCorrelations(symbol string, correlations map[string]float64) {
	row := make(map[string]float64, len(correlations))
	for k, v := range correlations {
		row[k] = v
	}
	a.correlations[symbol] = row
}

// portfolioMetrics captures the state-derived inputs shared by the
// portfolio dimension and the size adjustments.
type portfolioMetrics struct {
	portfolioValue float64
	totalExposure  float64
	maxDrawdown    float64 // cumulative P&L peak-to-trough, in currency
	concentration  float64 // largest position / total notional
}

func (a *Assessor) portfolioMetrics(portfolioValue float64) portfolioMetrics {
	metrics := portfolioMetrics{portfolioValue: portfolioValue}

	totalNotional := 0.0
	largest := 0.0
	for _, pos := range a.positions {
		notional := pos.Size * pos.Price
		metrics.totalExposure += notional
		totalNotional += notional
		if notional > largest {
			largest = notional
		}
	}
	if totalNotional > 0 {
		metrics.concentration = largest / totalNotional
	}

	if len(a.dailyPnL) > 0 {
		cumulative := cumulativeSum(a.dailyPnL)
		runningMax := cumulative[0]
		for _, v := range cumulative {
			if v > runningMax {
				runningMax = v
			}
			if dd := runningMax - v; dd > metrics.maxDrawdown {
				metrics.maxDrawdown = dd
			}
		}
	}

	return metrics
}

// Summary is a copy of the current risk state for reporting
type Summary struct {
	TotalExposure     float64           `json:"total_exposure"`
	MaxDrawdown       float64           `json:"max_drawdown"`
	VaR95             float64           `json:"var_95"`
	SharpeRatio       float64           `json:"sharpe_ratio"`
	ConcentrationRisk float64           `json:"concentration_risk"`
	CorrelationRisk   float64           `json:"correlation_risk"`
	LiquidityRisk     float64           `json:"liquidity_risk"`
	CurrentRiskScore  float64           `json:"current_risk_score"`
	PositionCount     int               `json:"position_count"`
	DailyPnLCount     int               `json:"daily_pnl_count"`
	Limits            config.RiskLimits `json:"risk_limits"`
}

// Summary snapshots the rolling state. The caller supplies the current
// portfolio value so the exposure-relative figures are meaningful.
func (a *Assessor) Summary(portfolioValue float64) Summary {
	if portfolioValue <= 0 {
		portfolioValue = a.limits.InitialCapital
	}

	metrics := a.portfolioMetrics(portfolioValue)
	summary := Summary{
		TotalExposure:     metrics.totalExposure,
		MaxDrawdown:       metrics.maxDrawdown,
		ConcentrationRisk: metrics.concentration,
		PositionCount:     len(a.positions),
		DailyPnLCount:     len(a.dailyPnL),
		Limits:            a.limits,
	}

	if len(a.dailyPnL) > 10 {
		summary.VaR95 = percentile(a.dailyPnL, 5)
		if std := populationStd(a.dailyPnL); std > 0 {
			summary.SharpeRatio = mean(a.dailyPnL) / std
		}
	}

	if len(a.positions) > 1 {
		summary.CorrelationRisk = math.Min(float64(len(a.positions))*0.1, 0.5)
	}

	if len(a.positions) > 0 {
		totalSize := 0.0
		for _, pos := range a.positions {
			totalSize += pos.Size
		}
		summary.LiquidityRisk = math.Min(totalSize/portfolioValue, 0.3)
	}

	if len(a.dailyPnL) > 0 {
		recent := a.dailyPnL
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		if std := populationStd(recent); std > 0 {
			summary.CurrentRiskScore = math.Abs(mean(recent)) / std * 10
		}
	}

	return summary
}

func cumulativeSum(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum
	}
	return out
}

func maxOf(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func minOf(values []float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}

// percentile computes the p-th percentile with linear interpolation
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
