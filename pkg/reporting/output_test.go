package reporting

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/optimization"
)

func TestResultFilename(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 30, 45, 0, time.UTC)
	assert.Equal(t, "backtest_results_BTCUSDT_20240301_153045.json", ResultFilename("BTCUSDT", now))
}

func TestWriteResultJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteResultJSON(sampleResult(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))

	assert.Equal(t, "BTCUSDT", parsed["symbol"])
	assert.Equal(t, float64(2), parsed["total_trades"])
	assert.Equal(t, 2.39, parsed["profit_factor"])
	assert.Len(t, parsed["trades"], 2)
}

func TestWriteResultJSON_InfiniteProfitFactor(t *testing.T) {
	result := sampleResult()
	result.ProfitFactor = math.Inf(1)

	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, WriteResultJSON(result, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"profit_factor": null`)
}

func TestWriteOptimizationJSON(t *testing.T) {
	result := &optimization.Result{
		Best:      sampleResult(),
		BestScore: 1.2345,
		AllResults: []optimization.CombinationResult{
			{Index: 0, Parameters: map[string]float64{}, Score: 1.2345},
		},
	}

	path := filepath.Join(t.TempDir(), "sweep.json")
	require.NoError(t, WriteOptimizationJSON(result, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, 1.2345, parsed["best_score"])
	assert.Len(t, parsed["all_results"], 1)
}

func TestWriteTradesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, WriteTradesCSV(sampleResult(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header, two trades, summary

	assert.Equal(t, "Symbol", records[0][0])
	assert.Equal(t, "Exit_Reason", records[0][10])

	first := records[1]
	assert.Equal(t, "BTCUSDT", first[0])
	assert.Equal(t, "BUY", first[1])
	assert.Equal(t, "42000.0000", first[4])
	assert.Equal(t, "0.002500", first[6])
	assert.Equal(t, "4.20", first[7])
	assert.Equal(t, "4.00%", first[8])
	assert.Equal(t, "W", first[9])
	assert.Equal(t, "Take profit hit", first[10])

	assert.Equal(t, "L", records[2][9])

	summary := records[3][10]
	assert.True(t, strings.HasPrefix(summary, "SUMMARY:"), "got %q", summary)
	assert.Contains(t, summary, "total_pnl=2.44")
	assert.Contains(t, summary, "total_trades=2")
	assert.Contains(t, summary, "win_rate=50.0%")
}

func TestWriteTradesCSV_DelegatesToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.XLSX")
	require.NoError(t, WriteTradesCSV(sampleResult(), path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()
	assert.ElementsMatch(t, []string{"Summary", "Trades", "Equity"}, fx.GetSheetList())
}

func TestWriteResultXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, WriteResultXLSX(sampleResult(), path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.ElementsMatch(t, []string{"Summary", "Trades", "Equity"}, fx.GetSheetList())

	summary, err := fx.GetRows("Summary", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	values := make(map[string]string)
	for _, row := range summary[1:] {
		if len(row) >= 2 {
			values[row[0]] = row[1]
		}
	}
	assert.Equal(t, "BTCUSDT", values["Symbol"])
	assert.Equal(t, "1000", values["Initial Capital"])
	assert.Equal(t, "2.39", values["Profit Factor"])
	assert.Equal(t, "2", values["Total Trades"])

	// Percent metrics are stored as fractions.
	totalReturn, err := strconv.ParseFloat(values["Total Return"], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.0024, totalReturn, 1e-12)

	trades, err := fx.GetRows("Trades", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "Symbol", trades[0][0])
	assert.Equal(t, "BTCUSDT", trades[1][0])
	assert.Equal(t, "BUY", trades[1][1])
	assert.Equal(t, "4.2", trades[1][7])
	assert.Equal(t, "Take profit hit", trades[1][9])

	equity, err := fx.GetRows("Equity", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, equity, 4) // header plus three curve samples
	assert.Equal(t, "Bar", equity[0][0])
	assert.Equal(t, "1000", equity[1][1])
	assert.Equal(t, "Month", equity[0][3])

	monthRet, err := strconv.ParseFloat(equity[1][4], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.0042, monthRet, 1e-12)
}

func TestWriteResultXLSX_InfiniteProfitFactor(t *testing.T) {
	result := sampleResult()
	result.ProfitFactor = math.Inf(1)

	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, WriteResultXLSX(result, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	summary, err := fx.GetRows("Summary", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	for _, row := range summary[1:] {
		if len(row) >= 2 && row[0] == "Profit Factor" {
			assert.Equal(t, "N/A", row[1])
			return
		}
	}
	t.Fatal("Profit Factor row not found")
}

func TestOutputDir(t *testing.T) {
	tests := []struct {
		symbol   string
		interval string
		want     string
	}{
		{"BTCUSDT", "1h", filepath.Join("results", "BTCUSDT_1h")},
		{" ethusdt ", " 4H ", filepath.Join("results", "ETHUSDT_4h")},
		{"", "", filepath.Join("results", "UNKNOWN_unknown")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputDir(tt.symbol, tt.interval))
	}
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "a", "b", "file.json")
	require.NoError(t, EnsureDir(path))

	info, err := os.Stat(filepath.Join(base, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
