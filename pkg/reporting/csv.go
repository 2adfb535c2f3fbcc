package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/backtest"
)

// WriteTradesCSV writes the closed-trade ledger of a backtest to a CSV file.
// When the path ends in .xlsx the full Excel workbook is written instead.
func WriteTradesCSV(result *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteResultXLSX(result, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Symbol",
		"Side",
		"Entry_Time",
		"Exit_Time",
		"Entry_Price",
		"Exit_Price",
		"Quantity",
		"PnL_USDT",
		"Return_%",
		"Win_Loss",
		"Exit_Reason",
	}); err != nil {
		return err
	}

	var totalPnL float64
	var wins int

	for _, t := range result.Trades {
		totalPnL += t.PnL

		winLoss := "W"
		if t.PnL < 0 {
			winLoss = "L"
		}
		if t.PnL > 0 {
			wins++
		}

		var returnPct float64
		if notional := t.EntryPrice * t.Quantity; notional > 0 {
			returnPct = t.PnL / notional * 100
		}

		row := []string{
			t.Symbol,
			string(t.Direction),
			t.EntryTime.Format("2006-01-02 15:04:05"),
			t.ExitTime.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.4f", t.EntryPrice),
			fmt.Sprintf("%.4f", t.ExitPrice),
			fmt.Sprintf("%.6f", t.Quantity),
			fmt.Sprintf("%.2f", t.PnL),
			fmt.Sprintf("%.2f%%", returnPct),
			winLoss,
			t.ExitReason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("SUMMARY: total_pnl=%.2f; total_trades=%d; wins=%d; win_rate=%.1f%%",
		totalPnL, len(result.Trades), wins, result.WinRate)

	summaryRow := make([]string, 11)
	summaryRow[10] = summary
	return w.Write(summaryRow)
}
