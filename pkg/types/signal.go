package types

import "time"

// SignalDirection is the side of a trading decision.
type SignalDirection string

const (
	SignalBuy  SignalDirection = "BUY"
	SignalSell SignalDirection = "SELL"
	SignalHold SignalDirection = "HOLD"
)

// Opposite returns the closing side for an open direction.
// Hold has no opposite and is returned unchanged.
func (d SignalDirection) Opposite() SignalDirection {
	switch d {
	case SignalBuy:
		return SignalSell
	case SignalSell:
		return SignalBuy
	}
	return d
}

// TradingSignal is a fused trade decision, flat and serializable for
// logging and persistence. StopLoss/TakeProfit of 0 mean "not set".
type TradingSignal struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Direction    SignalDirection `json:"signal_type"`
	Confidence   float64         `json:"confidence"`
	EntryPrice   float64         `json:"entry_price"`
	StopLoss     float64         `json:"stop_loss,omitempty"`
	TakeProfit   float64         `json:"take_profit,omitempty"`
	PositionSize float64         `json:"position_size"`
	Rationale    string          `json:"reasoning"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Position is one open position. At most one exists per symbol at any time;
// it is created on entry and destroyed on exit.
type Position struct {
	Symbol     string          `json:"symbol"`
	Direction  SignalDirection `json:"side"`
	EntryPrice float64         `json:"entry_price"`
	Quantity   float64         `json:"quantity"`
	StopLoss   float64         `json:"stop_loss,omitempty"`
	TakeProfit float64         `json:"take_profit,omitempty"`
	EntryTime  time.Time       `json:"entry_time"`
	Rationale  string          `json:"reasoning,omitempty"`
}

// Notional returns the cash value of the position at its entry price.
func (p Position) Notional() float64 {
	return p.EntryPrice * p.Quantity
}

// UnrealizedPnL values the position against the given price.
// Short positions gain when the price falls.
func (p Position) UnrealizedPnL(price float64) float64 {
	if p.Direction == SignalSell {
		return (p.EntryPrice - price) * p.Quantity
	}
	return (price - p.EntryPrice) * p.Quantity
}

// TradeRecord is a closed-position snapshot in the append-only ledger.
type TradeRecord struct {
	Symbol     string          `json:"symbol"`
	Direction  SignalDirection `json:"side"`
	EntryPrice float64         `json:"entry_price"`
	ExitPrice  float64         `json:"exit_price"`
	EntryTime  time.Time       `json:"entry_time"`
	ExitTime   time.Time       `json:"exit_time"`
	Quantity   float64         `json:"quantity"`
	PnL        float64         `json:"pnl"`
	ExitReason string          `json:"reason"`
}
