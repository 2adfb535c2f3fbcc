// Package reporting renders backtest and optimization results to the
// console, JSON, CSV and Excel.
package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/backtest"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/optimization"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// rankedRowLimit caps the optimization ranking table; the full list still
// lands in the JSON output.
const rankedRowLimit = 20

// PrintBacktestResult writes the result banner and the trade ledger.
func PrintBacktestResult(w io.Writer, result *backtest.Result) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "BACKTEST RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Symbol: %s\n", result.Symbol)
	fmt.Fprintf(w, "Period: %s to %s\n",
		result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Initial Capital: $%.2f\n", result.InitialCapital)
	fmt.Fprintf(w, "Total Return: %.2f%%\n", result.TotalReturn)
	fmt.Fprintf(w, "Total Trades: %d\n", result.TotalTrades)
	fmt.Fprintf(w, "Win Rate: %.1f%%\n", result.WinRate)
	fmt.Fprintf(w, "Profit Factor: %.2f\n", result.ProfitFactor)
	fmt.Fprintf(w, "Max Drawdown: %.2f%%\n", result.MaxDrawdown)
	fmt.Fprintf(w, "Sharpe Ratio: %.2f\n", result.SharpeRatio)
	fmt.Fprintf(w, "Calmar Ratio: %.2f\n", result.CalmarRatio)

	metrics := result.PerformanceMetrics
	fmt.Fprintln(w, "\nAdditional Metrics:")
	fmt.Fprintf(w, "  avg_win: %.2f\n", metrics.AvgWin)
	fmt.Fprintf(w, "  avg_loss: %.2f\n", metrics.AvgLoss)
	fmt.Fprintf(w, "  largest_win: %.2f\n", metrics.LargestWin)
	fmt.Fprintf(w, "  largest_loss: %.2f\n", metrics.LargestLoss)
	fmt.Fprintf(w, "  consecutive_wins: %d\n", metrics.ConsecutiveWins)
	fmt.Fprintf(w, "  consecutive_losses: %d\n", metrics.ConsecutiveLosses)
	fmt.Fprintf(w, "  recovery_factor: %.2f\n", metrics.RecoveryFactor)
	fmt.Fprintf(w, "  expectancy: %.2f\n", metrics.Expectancy)
	fmt.Fprintf(w, "  total_profit: %.2f\n", metrics.TotalProfit)
	fmt.Fprintf(w, "  total_loss: %.2f\n", metrics.TotalLoss)

	fmt.Fprintln(w, strings.Repeat("=", 50))

	if len(result.Trades) > 0 {
		renderTradeLedger(w, result.Trades)
	}
}

// renderTradeLedger prints the closed trades as a table.
func renderTradeLedger(w io.Writer, trades []types.TradeRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("TRADES")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"#", "Side", "Entry Time", "Exit Time", "Entry", "Exit", "Quantity", "P&L", "Reason"})
	for i, trade := range trades {
		t.AppendRow(table.Row{
			i + 1,
			trade.Direction,
			trade.EntryTime.Format("2006-01-02 15:04"),
			trade.ExitTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", trade.EntryPrice),
			fmt.Sprintf("%.4f", trade.ExitPrice),
			fmt.Sprintf("%.6f", trade.Quantity),
			fmt.Sprintf("%.2f", trade.PnL),
			trade.ExitReason,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	t.Render()
	fmt.Fprintln(w)
}

// PrintOptimizationResult writes the sweep banner, the best parameter set
// and the ranked combination table.
func PrintOptimizationResult(w io.Writer, result *optimization.Result) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "OPTIMIZATION RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Best Score: %.4f\n", result.BestScore)

	if result.Best != nil {
		fmt.Fprintln(w, "Best Parameters:")
		printParameters(w, result.Best.StrategyParameters)

		fmt.Fprintln(w, "\nBest Performance:")
		fmt.Fprintf(w, "  Total Return: %.2f%%\n", result.Best.TotalReturn)
		fmt.Fprintf(w, "  Win Rate: %.1f%%\n", result.Best.WinRate)
		fmt.Fprintf(w, "  Max Drawdown: %.2f%%\n", result.Best.MaxDrawdown)
		fmt.Fprintf(w, "  Sharpe Ratio: %.2f\n", result.Best.SharpeRatio)
	}
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if len(result.AllResults) > 0 {
		renderRankingTable(w, result.AllResults)
	}
}

// printParameters renders a parameter set as sorted "  name: value" lines,
// using the set's JSON field names.
func printParameters(w io.Writer, params interface{}) {
	raw, err := json.Marshal(params)
	if err != nil {
		fmt.Fprintf(w, "  (unprintable: %v)\n", err)
		return
	}

	var fields map[string]float64
	if err := json.Unmarshal(raw, &fields); err != nil {
		fmt.Fprintf(w, "  (unprintable: %v)\n", err)
		return
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, strconv.FormatFloat(fields[name], 'g', -1, 64))
	}
}

// renderRankingTable prints the top-ranked combinations.
func renderRankingTable(w io.Writer, results []optimization.CombinationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("RANKED COMBINATIONS")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Rank", "Score", "Return %", "Win Rate %", "Max DD %", "Sharpe", "Parameters"})

	shown := results
	if len(shown) > rankedRowLimit {
		shown = shown[:rankedRowLimit]
	}
	for i, combo := range shown {
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.4f", combo.Score),
			fmt.Sprintf("%.2f", combo.TotalReturn),
			fmt.Sprintf("%.1f", combo.WinRate),
			fmt.Sprintf("%.2f", combo.MaxDrawdown),
			fmt.Sprintf("%.2f", combo.SharpeRatio),
			formatOverrides(combo.Parameters),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	t.Render()
	if len(results) > rankedRowLimit {
		fmt.Fprintf(w, "... and %d more combinations\n", len(results)-rankedRowLimit)
	}
	fmt.Fprintln(w)
}

// formatOverrides renders a combination's overrides as "name=value" pairs
// in sorted order; the base combination shows as "(base)".
func formatOverrides(overrides map[string]float64) string {
	if len(overrides) == 0 {
		return "(base)"
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+strconv.FormatFloat(overrides[name], 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}

// OutputBacktestResult prints a backtest result to stdout.
func OutputBacktestResult(result *backtest.Result) {
	PrintBacktestResult(os.Stdout, result)
}

// OutputOptimizationResult prints an optimization result to stdout.
func OutputOptimizationResult(result *optimization.Result) {
	PrintOptimizationResult(os.Stdout, result)
}
