package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/backtest"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/optimization"
)

// ResultFilename builds the conventional backtest result filename,
// e.g. "backtest_results_BTCUSDT_20240301_153045.json".
func ResultFilename(symbol string, now time.Time) string {
	return fmt.Sprintf("backtest_results_%s_%s.json", symbol, now.Format("20060102_150405"))
}

// WriteResultJSON writes a backtest result as indented JSON, creating the
// parent directory when needed.
func WriteResultJSON(result *backtest.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backtest result: %w", err)
	}
	return writeFile(path, data)
}

// WriteOptimizationJSON writes the full sweep (best result, best score and
// the complete ranking) as indented JSON.
func WriteOptimizationJSON(result *optimization.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal optimization result: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
