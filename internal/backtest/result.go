package backtest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// Result is the full outcome of one simulation run: the trade ledger,
// the per-bar equity curve and every derived metric. Field names are
// stable; downstream reports and stored JSON depend on them.
//
// ProfitFactor is +Inf when the run closed trades but none lost;
// it serializes as null because JSON has no representation for it.
// A run with no trades reports a profit factor of 0.
type Result struct {
	Symbol         string    `json:"symbol"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	InitialCapital float64   `json:"initial_capital"`
	FinalCapital   float64   `json:"final_capital"`

	TotalReturn  float64 `json:"total_return"`
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`

	Trades         []types.TradeRecord `json:"trades"`
	EquityCurve    []float64           `json:"equity_curve"`
	MonthlyReturns []float64           `json:"monthly_returns"`

	StrategyParameters config.StrategyParameters `json:"strategy_parameters"`
	PerformanceMetrics PerformanceMetrics        `json:"performance_metrics"`
}

// PerformanceMetrics is the secondary statistics bundle derived from
// the trade ledger. All values are zero when the run had no trades.
type PerformanceMetrics struct {
	AvgWin            float64 `json:"avg_win"`
	AvgLoss           float64 `json:"avg_loss"`
	LargestWin        float64 `json:"largest_win"`
	LargestLoss       float64 `json:"largest_loss"`
	ConsecutiveWins   int     `json:"consecutive_wins"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	RecoveryFactor    float64 `json:"recovery_factor"`
	Expectancy        float64 `json:"expectancy"`
	TotalProfit       float64 `json:"total_profit"`
	TotalLoss         float64 `json:"total_loss"`
}

// MarshalJSON writes an unbounded profit factor as null instead of
// failing the whole encode, which is what encoding/json does with Inf.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		ProfitFactor interface{} `json:"profit_factor"`
	}{plain: plain(r), ProfitFactor: r.ProfitFactor}

	if math.IsInf(r.ProfitFactor, 1) {
		out.ProfitFactor = nil
	}
	return json.Marshal(out)
}
