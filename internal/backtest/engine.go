// Package backtest replays a bar series through the signal engine and
// produces a deterministic, fully derived result: identical inputs
// always yield an identical Result. One Engine run owns its entire
// state, so independent runs are safe to execute concurrently.
package backtest

import (
	"errors"
	"time"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/strategy"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// ErrInsufficientData is returned when the bar series does not cover
// the warm-up window plus at least one decision bar.
var ErrInsufficientData = errors.New("insufficient data for backtest")

// Exit reasons recorded on closed trades.
const (
	ExitStopLoss   = "Stop loss hit"
	ExitTakeProfit = "Take profit hit"
	ExitEndOfData  = "End of backtest"
)

// Engine simulates trading one symbol over a historical bar series.
// The position model is deliberately simple: at most one open position,
// sized as a fraction of current balance, closed on stop-loss,
// take-profit, an opposing signal or the end of data, in that order.
type Engine struct {
	initialCapital float64
	strategy       *strategy.Strategy
}

// NewEngine creates an Engine with the given starting capital and
// strategy parameters.
func NewEngine(initialCapital float64, params config.StrategyParameters) *Engine {
	return &Engine{
		initialCapital: initialCapital,
		strategy:       strategy.New(params),
	}
}

// Run simulates the full bar series and returns the derived result.
// Simulation starts after the warm-up window; each simulated bar
// recomputes indicators on the prefix ending at that bar, so the
// decision at bar i never sees data beyond bar i.
func (e *Engine) Run(symbol string, bars []types.OHLCV) (*Result, error) {
	if e.initialCapital <= 0 {
		return nil, errors.New("initial capital must be positive")
	}

	params := e.strategy.Params()
	warmup := params.WarmupBars()
	if len(bars) <= warmup {
		return nil, ErrInsufficientData
	}

	log := logger.For("backtest")
	log.Info().
		Str("symbol", symbol).
		Int("bars", len(bars)).
		Int("warmup", warmup).
		Msg("starting backtest")

	balance := e.initialCapital
	var position *types.Position
	trades := make([]types.TradeRecord, 0)
	equity := make([]float64, 0, len(bars)-warmup+1)
	equity = append(equity, balance)

	for i := warmup; i < len(bars); i++ {
		bar := bars[i]
		price := bar.Close

		signal, err := e.strategy.Analyze(symbol, bars[:i+1])
		if err != nil {
			return nil, err
		}

		if position != nil {
			if reason := exitReason(*position, signal, price); reason != "" {
				record := closeTrade(*position, price, bar.Timestamp, reason)
				trades = append(trades, record)
				// Return the entry notional alongside the realized P&L
				// so that closed trades sum to the balance change.
				balance += position.Notional() + record.PnL
				position = nil
			}
		}

		if position == nil && signal.Direction != types.SignalHold &&
			signal.Confidence > params.MinSignalConfidence {
			notional := balance * signal.PositionSize
			position = &types.Position{
				Symbol:     symbol,
				Direction:  signal.Direction,
				EntryPrice: price,
				Quantity:   notional / price,
				StopLoss:   signal.StopLoss,
				TakeProfit: signal.TakeProfit,
				EntryTime:  bar.Timestamp,
				Rationale:  signal.Rationale,
			}
			balance -= notional
		}

		if position != nil {
			equity = append(equity, balance+position.UnrealizedPnL(price))
		} else {
			equity = append(equity, balance)
		}
	}

	if position != nil {
		last := bars[len(bars)-1]
		record := closeTrade(*position, last.Close, last.Timestamp, ExitEndOfData)
		trades = append(trades, record)
		balance += position.Notional() + record.PnL
		position = nil
	}

	result := &Result{
		Symbol:             symbol,
		StartDate:          bars[0].Timestamp,
		EndDate:            bars[len(bars)-1].Timestamp,
		InitialCapital:     e.initialCapital,
		FinalCapital:       balance,
		Trades:             trades,
		EquityCurve:        equity,
		MonthlyReturns:     monthlyReturns(equity, bars[warmup-1:]),
		StrategyParameters: params,
	}
	fillMetrics(result)

	log.Info().
		Str("symbol", symbol).
		Float64("total_return", result.TotalReturn).
		Int("total_trades", result.TotalTrades).
		Float64("win_rate", result.WinRate).
		Msg("backtest completed")

	return result, nil
}

// exitReason decides whether the open position must close on this bar.
// Stop-loss is checked first, then take-profit, then an opposing fused
// signal. An empty string means the position stays open.
func exitReason(pos types.Position, signal types.TradingSignal, price float64) string {
	if pos.Direction == types.SignalBuy {
		if pos.StopLoss > 0 && price <= pos.StopLoss {
			return ExitStopLoss
		}
		if pos.TakeProfit > 0 && price >= pos.TakeProfit {
			return ExitTakeProfit
		}
	} else {
		if pos.StopLoss > 0 && price >= pos.StopLoss {
			return ExitStopLoss
		}
		if pos.TakeProfit > 0 && price <= pos.TakeProfit {
			return ExitTakeProfit
		}
	}

	if signal.Direction == pos.Direction.Opposite() {
		return "Exit signal: " + signal.Rationale
	}
	return ""
}

// closeTrade converts an open position into a ledger record at the
// given exit price.
func closeTrade(pos types.Position, price float64, ts time.Time, reason string) types.TradeRecord {
	return types.TradeRecord{
		Symbol:     pos.Symbol,
		Direction:  pos.Direction,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		EntryTime:  pos.EntryTime,
		ExitTime:   ts,
		Quantity:   pos.Quantity,
		PnL:        pos.UnrealizedPnL(price),
		ExitReason: reason,
	}
}
