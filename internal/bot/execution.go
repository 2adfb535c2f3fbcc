package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/monitoring"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// scanSignals analyzes every configured symbol and executes the signals
// that clear the execution gate. The first analysis failure aborts the
// scan; the scheduler backs off and retries on the next due tick.
func (e *Engine) scanSignals(ctx context.Context) error {
	start := time.Now()

	for _, symbol := range e.cfg.Symbols {
		signal, err := e.evaluateSymbol(ctx, symbol)
		if err != nil {
			monitoring.RecordError("scan")
			return fmt.Errorf("analyze %s: %w", symbol, err)
		}

		monitoring.UpdateSignalConfidence(symbol, signal.Confidence)
		monitoring.UpdatePrice(symbol, signal.EntryPrice)

		e.mu.Lock()
		e.lastPrices[symbol] = signal.EntryPrice
		e.mu.Unlock()

		if signal.Direction != types.SignalHold && signal.Confidence > e.cfg.ExecuteConfidence {
			e.executeSignal(signal)
		}
	}

	monitoring.ObserveScanDuration(time.Since(start).Seconds())
	return nil
}

// evaluateSymbol fetches fresh bars and runs the fused strategy on them.
func (e *Engine) evaluateSymbol(ctx context.Context, symbol string) (types.TradingSignal, error) {
	bars, err := e.exchange.GetBars(ctx, symbol, e.cfg.Timeframe, e.cfg.BarLimit)
	if err != nil {
		return types.TradingSignal{}, fmt.Errorf("get bars: %w", err)
	}
	return e.strategy.Analyze(symbol, bars)
}

// executeSignal opens a paper position for a signal that cleared the
// execution gate. At most one position per symbol is held; the proposed
// size passes through the risk assessor before any balance moves.
func (e *Engine) executeSignal(signal types.TradingSignal) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.positions[signal.Symbol]; exists {
		e.log.Info().
			Str("symbol", signal.Symbol).
			Msg("Position already exists, skipping signal")
		return
	}
	if signal.EntryPrice <= 0 {
		return
	}

	portfolioValue := e.equityLocked()
	quantity := e.balance * signal.PositionSize / signal.EntryPrice

	assessment := e.risk.AssessTrade(signal.Symbol, signal.Direction, quantity, signal.EntryPrice, portfolioValue)
	monitoring.UpdateRiskScore(signal.Symbol, assessment.Score)

	if assessment.AdjustedSize <= 0 {
		e.log.Warn().
			Str("symbol", signal.Symbol).
			Str("risk_level", string(assessment.Level)).
			Float64("risk_score", assessment.Score).
			Strs("warnings", assessment.Warnings).
			Msg("Trade blocked by risk assessment")
		return
	}
	quantity = assessment.AdjustedSize

	notional := quantity * signal.EntryPrice
	if notional <= 0 || notional > e.balance {
		e.log.Warn().
			Str("symbol", signal.Symbol).
			Float64("notional", notional).
			Float64("balance", e.balance).
			Msg("Insufficient balance for signal, skipping")
		return
	}

	e.balance -= notional
	e.positions[signal.Symbol] = types.Position{
		Symbol:     signal.Symbol,
		Direction:  signal.Direction,
		EntryPrice: signal.EntryPrice,
		Quantity:   quantity,
		StopLoss:   signal.StopLoss,
		TakeProfit: signal.TakeProfit,
		EntryTime:  signal.Timestamp,
		Rationale:  signal.Rationale,
	}

	e.risk.RecordPosition(signal.Symbol, signal.Direction, quantity, signal.EntryPrice)
	monitoring.RecordTrade(signal.Symbol, string(signal.Direction))

	e.log.Info().
		Float64("confidence", signal.Confidence).
		Float64("stop_loss", signal.StopLoss).
		Float64("take_profit", signal.TakeProfit).
		Msgf("Executed %s order for %s: %.6f @ %.2f",
			signal.Direction, signal.Symbol, quantity, signal.EntryPrice)
}

// pendingExit pairs an open position with the exit decided for it.
type pendingExit struct {
	symbol string
	price  float64
	reason string
}

// monitorPositions checks every open position against its stop loss, take
// profit and the current fused signal, then closes the ones due for exit.
// Market data is fetched outside the lock; the engine loop is the only
// writer, so the snapshot stays valid across the gap.
func (e *Engine) monitorPositions(ctx context.Context) error {
	e.mu.Lock()
	open := make([]types.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		open = append(open, pos)
	}
	e.mu.Unlock()

	if len(open) == 0 {
		return nil
	}

	var exits []pendingExit
	prices := make(map[string]float64, len(open))

	for _, pos := range open {
		price, err := e.exchange.GetCurrentPrice(ctx, pos.Symbol)
		if err != nil {
			monitoring.RecordError("monitor")
			return fmt.Errorf("get price for %s: %w", pos.Symbol, err)
		}
		prices[pos.Symbol] = price
		monitoring.UpdatePrice(pos.Symbol, price)

		reason := exitReasonFor(pos, price)
		if reason == "" {
			signal, err := e.evaluateSymbol(ctx, pos.Symbol)
			if err != nil {
				monitoring.RecordError("monitor")
				return fmt.Errorf("analyze %s: %w", pos.Symbol, err)
			}
			if signal.Direction != types.SignalHold && signal.Direction == pos.Direction.Opposite() {
				reason = "Exit signal: " + signal.Rationale
			}
		}
		if reason != "" {
			exits = append(exits, pendingExit{symbol: pos.Symbol, price: price, reason: reason})
		}
	}

	e.mu.Lock()
	for symbol, price := range prices {
		e.lastPrices[symbol] = price
	}
	for _, exit := range exits {
		if _, exists := e.positions[exit.symbol]; !exists {
			continue
		}
		e.closePositionLocked(exit.symbol, exit.price, exit.reason, time.Now().UTC())
	}
	equity := e.equityLocked()
	e.mu.Unlock()

	monitoring.UpdateEquity(equity)
	return nil
}

// exitReasonFor reports why a position must close at the given price, or
// "" to keep holding. A zero stop loss or take profit means "not set".
func exitReasonFor(pos types.Position, price float64) string {
	switch pos.Direction {
	case types.SignalBuy:
		if pos.StopLoss > 0 && price <= pos.StopLoss {
			return "Stop loss hit"
		}
		if pos.TakeProfit > 0 && price >= pos.TakeProfit {
			return "Take profit hit"
		}
	case types.SignalSell:
		if pos.StopLoss > 0 && price >= pos.StopLoss {
			return "Stop loss hit"
		}
		if pos.TakeProfit > 0 && price <= pos.TakeProfit {
			return "Take profit hit"
		}
	}
	return ""
}

// closePositionLocked realizes a position at the exit price, restores the
// notional plus P&L to the balance and appends the ledger record. The
// caller must hold the mutex.
func (e *Engine) closePositionLocked(symbol string, exitPrice float64, reason string, now time.Time) {
	pos, exists := e.positions[symbol]
	if !exists {
		return
	}

	pnl := pos.UnrealizedPnL(exitPrice)
	e.balance += pos.Notional() + pnl

	e.trades = append(e.trades, types.TradeRecord{
		Symbol:     symbol,
		Direction:  pos.Direction,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		EntryTime:  pos.EntryTime,
		ExitTime:   now,
		Quantity:   pos.Quantity,
		PnL:        pnl,
		ExitReason: reason,
	})
	delete(e.positions, symbol)

	e.risk.RecordDailyPnL(pnl)

	e.log.Info().
		Str("side", string(pos.Direction)).
		Float64("exit_price", exitPrice).
		Msgf("Closed position for %s: P&L = %.2f USDT, Reason: %s", symbol, pnl, reason)
}
