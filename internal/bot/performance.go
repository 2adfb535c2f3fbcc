package bot

import (
	"math"
	"sort"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/monitoring"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
)

// PerformanceSummary aggregates the closed-trade ledger.
type PerformanceSummary struct {
	TotalTrades        int                       `json:"total_trades"`
	TotalPnL           float64                   `json:"total_pnl"`
	WinRate            float64                   `json:"win_rate"`
	AvgWin             float64                   `json:"avg_win"`
	AvgLoss            float64                   `json:"avg_loss"`
	ProfitFactor       float64                   `json:"profit_factor"`
	CurrentPositions   int                       `json:"current_positions"`
	StrategyParameters config.StrategyParameters `json:"strategy_parameters"`
}

// Performance summarizes the trades closed so far. With no closed trades
// the counters are zero; profit factor is +Inf when no trade lost money.
func (e *Engine) Performance() PerformanceSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	summary := PerformanceSummary{
		CurrentPositions:   len(e.positions),
		StrategyParameters: e.strategy.Params(),
	}
	if len(e.trades) == 0 {
		return summary
	}

	var totalPnL, winSum, lossSum float64
	var wins, losses int
	for _, trade := range e.trades {
		totalPnL += trade.PnL
		switch {
		case trade.PnL > 0:
			wins++
			winSum += trade.PnL
		case trade.PnL < 0:
			losses++
			lossSum += trade.PnL
		}
	}

	summary.TotalTrades = len(e.trades)
	summary.TotalPnL = totalPnL
	summary.WinRate = float64(wins) / float64(len(e.trades)) * 100
	if wins > 0 {
		summary.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		summary.AvgLoss = lossSum / float64(losses)
	}
	if summary.AvgLoss != 0 {
		summary.ProfitFactor = math.Abs(summary.AvgWin / summary.AvgLoss)
	} else {
		summary.ProfitFactor = math.Inf(1)
	}

	return summary
}

func (e *Engine) logPerformance() {
	summary := e.Performance()

	e.log.Info().
		Int("total_trades", summary.TotalTrades).
		Float64("total_pnl", summary.TotalPnL).
		Float64("win_rate", summary.WinRate).
		Float64("avg_win", summary.AvgWin).
		Float64("avg_loss", summary.AvgLoss).
		Float64("profit_factor", summary.ProfitFactor).
		Int("current_positions", summary.CurrentPositions).
		Msg("Performance analysis")
}

// logStatus prints the periodic status block.
func (e *Engine) logStatus() {
	e.mu.Lock()

	balance := e.balance
	initial := e.initialBalance
	equity := e.equityLocked()

	totalReturn := 0.0
	if initial > 0 {
		totalReturn = (balance - initial) / initial * 100
	}

	var totalPnL float64
	wins := 0
	for _, trade := range e.trades {
		totalPnL += trade.PnL
		if trade.PnL > 0 {
			wins++
		}
	}
	winRate := 0.0
	if len(e.trades) > 0 {
		winRate = float64(wins) / float64(len(e.trades)) * 100
	}

	symbols := make([]string, 0, len(e.positions))
	for symbol := range e.positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	type positionLine struct {
		symbol   string
		side     string
		quantity float64
		entry    float64
	}
	lines := make([]positionLine, 0, len(symbols))
	for _, symbol := range symbols {
		pos := e.positions[symbol]
		lines = append(lines, positionLine{
			symbol:   symbol,
			side:     string(pos.Direction),
			quantity: pos.Quantity,
			entry:    pos.EntryPrice,
		})
	}

	openCount := len(e.positions)
	tradeCount := len(e.trades)

	e.mu.Unlock()

	e.log.Info().Msg("=== TRADING STATUS ===")
	e.log.Info().Msgf("Current Balance: %.2f USDT", balance)
	e.log.Info().Msgf("Total Return: %.2f%%", totalReturn)
	e.log.Info().Msgf("Active Positions: %d", openCount)
	e.log.Info().Msgf("Total Trades: %d", tradeCount)
	e.log.Info().Msgf("Win Rate: %.1f%%", winRate)
	e.log.Info().Msgf("Total P&L: %.2f USDT", totalPnL)
	for _, line := range lines {
		e.log.Info().Msgf("  %s: %s %.6f @ %.2f", line.symbol, line.side, line.quantity, line.entry)
	}
	e.log.Info().Msg("=====================")

	monitoring.UpdateEquity(equity)
}
