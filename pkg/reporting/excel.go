package reporting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/backtest"
	"github.com/xuri/excelize/v2"
)

// excelStyles bundles the style IDs shared by every sheet of the workbook.
type excelStyles struct {
	Header   int
	Currency int
	Percent  int
	Number   int
	Base     int
}

// WriteResultXLSX writes a backtest result as an Excel workbook with
// Summary, Trades and Equity sheets.
func WriteResultXLSX(result *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const tradesSheet = "Trades"
	const equitySheet = "Equity"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(tradesSheet)
	fx.NewSheet(equitySheet)

	styles, err := newExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := writeSummarySheet(fx, summarySheet, result, styles); err != nil {
		return err
	}
	if err := writeTradesSheet(fx, tradesSheet, result, styles); err != nil {
		return err
	}
	if err := writeEquitySheet(fx, equitySheet, result, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func newExcelStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	// Header style - dark slate background with white text
	styles.Header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"}, // Dark slate gray
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Currency style (right aligned, $ format)
	styles.Currency, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7, // Currency format with $ symbol
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	// Percentage style (right aligned, two decimals)
	styles.Percent, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10, // 0.00%
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	// Plain numeric style (right aligned, two decimals)
	styles.Number, err = fx.NewStyle(&excelize.Style{
		NumFmt: 2, // 0.00
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	// Base style (light borders only)
	styles.Base, err = fx.NewStyle(&excelize.Style{
		Border: lightBorders(),
	})
	return styles, err
}

func lightBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
}

func writeSummarySheet(fx *excelize.File, sheet string, result *backtest.Result, styles excelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 24)
	fx.SetColWidth(sheet, "B", "B", 18)

	for i, h := range []string{"Metric", "Value"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}

	// Percent-unit metrics are stored as fractions so the percent number
	// format renders them correctly.
	var profitFactor interface{} = result.ProfitFactor
	profitFactorStyle := styles.Number
	if math.IsInf(result.ProfitFactor, 1) {
		profitFactor = "N/A"
		profitFactorStyle = styles.Base
	}

	m := result.PerformanceMetrics
	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Symbol", result.Symbol, styles.Base},
		{"Period Start", result.StartDate.Format("2006-01-02"), styles.Base},
		{"Period End", result.EndDate.Format("2006-01-02"), styles.Base},
		{"Initial Capital", result.InitialCapital, styles.Currency},
		{"Final Capital", result.FinalCapital, styles.Currency},
		{"Total Return", result.TotalReturn / 100, styles.Percent},
		{"Total Trades", result.TotalTrades, styles.Base},
		{"Win Rate", result.WinRate / 100, styles.Percent},
		{"Profit Factor", profitFactor, profitFactorStyle},
		{"Max Drawdown", result.MaxDrawdown / 100, styles.Percent},
		{"Sharpe Ratio", result.SharpeRatio, styles.Number},
		{"Calmar Ratio", result.CalmarRatio, styles.Number},
		{"Avg Win", m.AvgWin, styles.Currency},
		{"Avg Loss", m.AvgLoss, styles.Currency},
		{"Largest Win", m.LargestWin, styles.Currency},
		{"Largest Loss", m.LargestLoss, styles.Currency},
		{"Consecutive Wins", m.ConsecutiveWins, styles.Base},
		{"Consecutive Losses", m.ConsecutiveLosses, styles.Base},
		{"Recovery Factor", m.RecoveryFactor, styles.Number},
		{"Expectancy", m.Expectancy, styles.Currency},
		{"Total Profit", m.TotalProfit, styles.Currency},
		{"Total Loss", m.TotalLoss, styles.Currency},
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+2)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+2)
		fx.SetCellValue(sheet, labelCell, row.label)
		fx.SetCellStyle(sheet, labelCell, labelCell, styles.Base)
		fx.SetCellValue(sheet, valueCell, row.value)
		fx.SetCellStyle(sheet, valueCell, valueCell, row.style)
	}
	return nil
}

func writeTradesSheet(fx *excelize.File, sheet string, result *backtest.Result, styles excelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 10) // Symbol
	fx.SetColWidth(sheet, "B", "B", 8)  // Side
	fx.SetColWidth(sheet, "C", "D", 18) // Entry/Exit Time
	fx.SetColWidth(sheet, "E", "F", 12) // Entry/Exit Price
	fx.SetColWidth(sheet, "G", "G", 14) // Quantity
	fx.SetColWidth(sheet, "H", "H", 12) // PnL
	fx.SetColWidth(sheet, "I", "I", 10) // Return %
	fx.SetColWidth(sheet, "J", "J", 28) // Exit Reason

	headers := []string{
		"Symbol", "Side", "Entry Time", "Exit Time", "Entry Price",
		"Exit Price", "Quantity", "PnL", "Return %", "Exit Reason",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}

	for i, t := range result.Trades {
		row := i + 2

		var returnFrac float64
		if notional := t.EntryPrice * t.Quantity; notional > 0 {
			returnFrac = t.PnL / notional
		}

		values := []struct {
			value interface{}
			style int
		}{
			{t.Symbol, styles.Base},
			{string(t.Direction), styles.Base},
			{t.EntryTime.Format("2006-01-02 15:04"), styles.Base},
			{t.ExitTime.Format("2006-01-02 15:04"), styles.Base},
			{t.EntryPrice, styles.Number},
			{t.ExitPrice, styles.Number},
			{t.Quantity, styles.Base},
			{t.PnL, styles.Currency},
			{returnFrac, styles.Percent},
			{t.ExitReason, styles.Base},
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			fx.SetCellValue(sheet, cell, v.value)
			fx.SetCellStyle(sheet, cell, cell, v.style)
		}
	}
	return nil
}

func writeEquitySheet(fx *excelize.File, sheet string, result *backtest.Result, styles excelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 8)
	fx.SetColWidth(sheet, "B", "B", 14)
	fx.SetColWidth(sheet, "D", "D", 8)
	fx.SetColWidth(sheet, "E", "E", 12)

	for i, h := range []string{"Bar", "Equity"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}

	for i, eq := range result.EquityCurve {
		barCell, _ := excelize.CoordinatesToCellName(1, i+2)
		eqCell, _ := excelize.CoordinatesToCellName(2, i+2)
		fx.SetCellValue(sheet, barCell, i+1)
		fx.SetCellStyle(sheet, barCell, barCell, styles.Base)
		fx.SetCellValue(sheet, eqCell, eq)
		fx.SetCellStyle(sheet, eqCell, eqCell, styles.Currency)
	}

	if len(result.MonthlyReturns) == 0 {
		return nil
	}

	for i, h := range []string{"Month", "Return"} {
		cell, _ := excelize.CoordinatesToCellName(i+4, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}
	for i, ret := range result.MonthlyReturns {
		monthCell, _ := excelize.CoordinatesToCellName(4, i+2)
		retCell, _ := excelize.CoordinatesToCellName(5, i+2)
		fx.SetCellValue(sheet, monthCell, i+1)
		fx.SetCellStyle(sheet, monthCell, monthCell, styles.Base)
		fx.SetCellValue(sheet, retCell, ret/100)
		fx.SetCellStyle(sheet, retCell, retCell, styles.Percent)
	}
	return nil
}
