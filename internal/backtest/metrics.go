package backtest

import (
	"math"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// tradingDaysPerYear annualizes the Sharpe ratio.
const tradingDaysPerYear = 252

// fillMetrics derives every metric of the result from its ledger and
// equity curve in a single pass.
func fillMetrics(r *Result) {
	r.TotalReturn = (r.FinalCapital - r.InitialCapital) / r.InitialCapital * 100
	r.TotalTrades = len(r.Trades)

	if r.TotalTrades > 0 {
		winners := 0
		grossProfit, grossLoss := 0.0, 0.0
		for _, t := range r.Trades {
			switch {
			case t.PnL > 0:
				winners++
				grossProfit += t.PnL
			case t.PnL < 0:
				grossLoss -= t.PnL
			}
		}
		r.WinRate = float64(winners) / float64(r.TotalTrades) * 100
		if grossLoss > 0 {
			r.ProfitFactor = grossProfit / grossLoss
		} else {
			r.ProfitFactor = math.Inf(1)
		}
	}

	r.MaxDrawdown = maxDrawdown(r.EquityCurve)
	r.SharpeRatio = sharpeRatio(r.EquityCurve)
	if r.MaxDrawdown > 0 {
		r.CalmarRatio = (r.TotalReturn / 100) / (r.MaxDrawdown / 100)
	}

	r.PerformanceMetrics = performanceMetrics(r.Trades, r.TotalReturn, r.MaxDrawdown, r.WinRate)
}

// maxDrawdown returns the largest peak-to-trough decline of the equity
// curve as a positive percentage.
func maxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	worst := 0.0
	peak := curve[0]
	for _, eq := range curve {
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			if dd := (eq - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return math.Abs(worst) * 100
}

// sharpeRatio annualizes mean/stdev of per-bar equity returns.
// Zero variance (a flat curve) yields 0 rather than a division error.
func sharpeRatio(curve []float64) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1] != 0 {
			returns = append(returns, curve[i]/curve[i-1]-1)
		}
	}

	sd := sampleStd(returns)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(tradingDaysPerYear)
}

// monthlyReturns samples the equity curve at calendar-month boundaries
// and returns the percent change between consecutive month-end values.
// Each curve sample must line up with the bar at the same index; a
// mismatch yields an empty slice.
func monthlyReturns(curve []float64, bars []types.OHLCV) []float64 {
	returns := make([]float64, 0)
	if len(curve) == 0 || len(curve) != len(bars) {
		return returns
	}

	monthEnds := make([]float64, 0)
	current := bars[0].Timestamp.Format("2006-01")
	last := curve[0]
	for i := 1; i < len(curve); i++ {
		if month := bars[i].Timestamp.Format("2006-01"); month != current {
			monthEnds = append(monthEnds, last)
			current = month
		}
		last = curve[i]
	}
	monthEnds = append(monthEnds, last)

	for i := 1; i < len(monthEnds); i++ {
		if monthEnds[i-1] != 0 {
			returns = append(returns, (monthEnds[i]/monthEnds[i-1]-1)*100)
		}
	}
	return returns
}

// performanceMetrics computes the secondary statistics bundle from the
// trade ledger. The win rate arrives as a percentage and is converted
// to a fraction once; every ratio below uses the fraction.
func performanceMetrics(trades []types.TradeRecord, totalReturn, maxDrawdown, winRate float64) PerformanceMetrics {
	var m PerformanceMetrics
	if len(trades) == 0 {
		return m
	}

	pnls := make([]float64, len(trades))
	wins := make([]float64, 0, len(trades))
	losses := make([]float64, 0, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnL
		switch {
		case t.PnL > 0:
			wins = append(wins, t.PnL)
		case t.PnL < 0:
			losses = append(losses, t.PnL)
		}
	}

	if len(wins) > 0 {
		m.AvgWin = mean(wins)
		m.LargestWin = maxOf(wins)
		m.TotalProfit = sum(wins)
	}
	if len(losses) > 0 {
		m.AvgLoss = mean(losses)
		m.LargestLoss = minOf(losses)
		m.TotalLoss = -sum(losses)
	}

	m.ConsecutiveWins = maxStreak(pnls, true)
	m.ConsecutiveLosses = maxStreak(pnls, false)
	if maxDrawdown > 0 {
		m.RecoveryFactor = totalReturn / maxDrawdown
	}

	winFrac := winRate / 100
	m.Expectancy = winFrac*m.AvgWin + (1-winFrac)*m.AvgLoss
	return m
}

// maxStreak returns the longest run of winning (or losing) trades.
// Break-even trades end both kinds of streak.
func maxStreak(pnls []float64, wins bool) int {
	best, run := 0, 0
	for _, pnl := range pnls {
		hit := pnl > 0
		if !wins {
			hit = pnl < 0
		}
		if hit {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func maxOf(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

func minOf(values []float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v < best {
			best = v
		}
	}
	return best
}
