package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/backtest"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/data"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/optimization"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/reporting"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

const (
	appName    = "Strategy Backtest"
	appVersion = "1.0.0"

	defaultSymbol     = "BTCUSDT"
	defaultInterval   = "1h"
	defaultDataRoot   = "data"
	defaultExchange   = "bybit"
	defaultCapital    = 1000.0
	defaultSampleBars = 2000
)

func main() {
	var (
		symbol      = flag.String("symbol", defaultSymbol, "Trading symbol (e.g., BTCUSDT)")
		interval    = flag.String("interval", defaultInterval, "Candle interval (e.g., 5m, 1h, 4h)")
		dataFile    = flag.String("data", "", "Explicit CSV data file (overrides -data-root lookup)")
		dataRoot    = flag.String("data-root", defaultDataRoot, "Root directory of downloaded candle data")
		exchange    = flag.String("exchange", defaultExchange, "Exchange directory under the data root")
		period      = flag.String("period", "", "Trailing period filter (e.g., 90d); empty uses all data")
		capital     = flag.Float64("initial-capital", defaultCapital, "Initial capital for the simulation")
		preset      = flag.String("preset", "default", "Parameter preset (default, aggressive)")
		paramsFile  = flag.String("params", "", "JSON file with strategy parameters (overrides -preset)")
		optimize    = flag.Bool("optimize", false, "Run the parameter grid search instead of a single backtest")
		workers     = flag.Int("workers", runtime.NumCPU(), "Worker count for the grid search")
		sample      = flag.Bool("sample", false, "Use the synthetic sample series instead of CSV data")
		sampleBars  = flag.Int("sample-bars", defaultSampleBars, "Bar count for the synthetic series")
		outputDir   = flag.String("output", "", "Output directory (default results/<SYMBOL>_<interval>)")
		consoleOnly = flag.Bool("console-only", false, "Print results without writing files")
		logLevel    = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
		envFile     = flag.String("env", ".env", "Environment file path")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", appName, appVersion)
		return
	}

	loadEnvironment(*envFile)
	logger.Setup(*logLevel)
	printHeader()

	params, err := resolveParameters(*preset, *paramsFile)
	if err != nil {
		log.Fatalf("❌ Parameter error: %v", err)
	}

	bars, err := loadBars(*symbol, *interval, *dataFile, *dataRoot, *exchange, *period, *sample, *sampleBars)
	if err != nil {
		log.Fatalf("❌ Data error: %v", err)
	}

	outDir := *outputDir
	if outDir == "" {
		outDir = reporting.OutputDir(*symbol, *interval)
	}

	if *optimize {
		runOptimization(*symbol, bars, *capital, params, *workers, outDir, *consoleOnly)
		return
	}
	runBacktest(*symbol, bars, *capital, params, outDir, *consoleOnly)
}

func printHeader() {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(appName), appVersion)
	fmt.Printf("%s\n", strings.Repeat("=", 50))
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", envFile, err)
	}
}

// resolveParameters picks the preset and applies a JSON parameter file on
// top when one is given.
func resolveParameters(preset, paramsFile string) (config.StrategyParameters, error) {
	params, ok := config.ParametersForPreset(preset)
	if !ok {
		return params, fmt.Errorf("unknown preset %q (available: default, aggressive)", preset)
	}

	if paramsFile != "" {
		loaded, err := config.LoadParameters(paramsFile)
		if err != nil {
			return params, fmt.Errorf("load parameters: %w", err)
		}
		params = loaded
		fmt.Printf("📋 Parameters loaded from %s\n", paramsFile)
	}

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

// loadBars resolves the candle series: explicit file, located file, or the
// synthetic sample generator when nothing is on disk.
func loadBars(symbol, interval, dataFile, dataRoot, exchange, period string, sample bool, sampleBars int) ([]types.OHLCV, error) {
	if sample {
		fmt.Printf("📊 Using synthetic sample data (%d bars)\n", sampleBars)
		return data.GenerateSampleData(symbol, sampleBars, data.DefaultSampleSeed), nil
	}

	dm := data.NewDataManager()

	path := dataFile
	if path == "" {
		path = dm.FindDataFile(dataRoot, exchange, symbol, interval)
	}
	if path == "" {
		fmt.Printf("📊 No historical data for %s %s, using synthetic sample data (%d bars)\n",
			symbol, interval, sampleBars)
		return data.GenerateSampleData(symbol, sampleBars, data.DefaultSampleSeed), nil
	}

	bars, err := dm.LoadHistoricalData(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if period != "" {
		d, ok := data.ParseTrailingPeriod(period)
		if !ok {
			return nil, fmt.Errorf("invalid period format %q (use 7d, 30d, 90d, 365d)", period)
		}
		bars = dm.FilterDataByPeriod(bars, d)
	}

	if err := dm.ValidateData(bars); err != nil {
		return nil, err
	}

	fmt.Printf("📈 Loaded %d bars from %s", len(bars), path)
	if len(bars) > 0 {
		fmt.Printf(" (%s to %s)",
			bars[0].Timestamp.Format("2006-01-02"),
			bars[len(bars)-1].Timestamp.Format("2006-01-02"))
	}
	fmt.Println()
	return bars, nil
}

func runBacktest(symbol string, bars []types.OHLCV, capital float64, params config.StrategyParameters, outDir string, consoleOnly bool) {
	engine := backtest.NewEngine(capital, params)
	result, err := engine.Run(symbol, bars)
	if err != nil {
		log.Fatalf("❌ Backtest failed: %v", err)
	}

	reporting.OutputBacktestResult(result)

	if consoleOnly {
		return
	}

	jsonPath := filepath.Join(outDir, reporting.ResultFilename(symbol, time.Now()))
	if err := reporting.WriteResultJSON(result, jsonPath); err != nil {
		log.Fatalf("❌ Could not write JSON results: %v", err)
	}
	if err := reporting.WriteTradesCSV(result, filepath.Join(outDir, "trades.csv")); err != nil {
		log.Fatalf("❌ Could not write trades CSV: %v", err)
	}
	if err := reporting.WriteResultXLSX(result, filepath.Join(outDir, "report.xlsx")); err != nil {
		log.Fatalf("❌ Could not write Excel report: %v", err)
	}
	fmt.Printf("💾 Results saved to %s\n", outDir)
}

func runOptimization(symbol string, bars []types.OHLCV, capital float64, params config.StrategyParameters, workers int, outDir string, consoleOnly bool) {
	candidates := defaultCandidates()
	total := candidates.Combinations()
	fmt.Printf("🔍 Optimizing %d combinations across %d workers\n", total, workers)

	opt := optimization.NewOptimizer(params, capital, workers)
	opt.Progress = optimization.NewProgressTracker(total)

	done := make(chan struct{})
	go reportProgress(opt.Progress, done)

	result, err := opt.Optimize(context.Background(), symbol, bars, candidates)
	close(done)
	if err != nil {
		log.Fatalf("❌ Optimization failed: %v", err)
	}

	reporting.OutputOptimizationResult(result)

	if consoleOnly || result.Best == nil {
		return
	}

	sweepPath := filepath.Join(outDir,
		fmt.Sprintf("optimization_results_%s_%s.json", symbol, time.Now().Format("20060102_150405")))
	if err := reporting.WriteOptimizationJSON(result, sweepPath); err != nil {
		log.Fatalf("❌ Could not write optimization results: %v", err)
	}

	bestPath := filepath.Join(outDir, "best_parameters.json")
	if err := config.SaveParameters(result.Best.StrategyParameters, bestPath); err != nil {
		log.Fatalf("❌ Could not save best parameters: %v", err)
	}
	fmt.Printf("💾 Sweep saved to %s\n", sweepPath)
	fmt.Printf("✅ Best parameters saved to %s\n", bestPath)
}

// reportProgress prints grid-search progress every few seconds until done
// closes.
func reportProgress(progress *optimization.ProgressTracker, done <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			completed, total, pct, _ := progress.GetProgress()
			eta := progress.EstimateTimeRemaining().Round(time.Second)
			fmt.Printf("⏳ Progress: %d/%d (%.1f%%), ETA %s\n", completed, total, pct, eta)
		}
	}
}

// defaultCandidates is the reference tuning grid: three candidates per
// tunable, 6561 combinations.
func defaultCandidates() optimization.Candidates {
	return optimization.Candidates{
		"rsi_period":        {10, 14, 20},
		"rsi_oversold":      {25, 30, 35},
		"rsi_overbought":    {65, 70, 75},
		"bb_period":         {15, 20, 25},
		"bb_std":            {1.5, 2.0, 2.5},
		"max_position_size": {0.05, 0.1, 0.15},
		"stop_loss_pct":     {0.015, 0.02, 0.025},
		"take_profit_pct":   {0.03, 0.04, 0.05},
	}
}
