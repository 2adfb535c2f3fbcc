package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/bot"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/exchange"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/monitoring"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
)

const defaultCapital = 1000.0

func main() {
	var (
		symbolsFlag  = flag.String("symbols", "", "Comma-separated symbols (default BTCUSDT,ETHUSDT,ADAUSDT,SOLUSDT,DOTUSDT)")
		timeframe    = flag.String("timeframe", "1h", "Candle timeframe for signal scans")
		exchangeName = flag.String("exchange", "bybit", "Exchange backend (bybit, mock)")
		demo         = flag.Bool("demo", true, "Use the demo trading environment")
		testnet      = flag.Bool("testnet", false, "Use the testnet environment")
		category     = flag.String("category", "spot", "Bybit market category (spot, linear, inverse)")
		preset       = flag.String("preset", "default", "Parameter preset (default, aggressive)")
		paramsFile   = flag.String("params", "", "JSON file with strategy parameters (overrides -preset)")
		capital      = flag.Float64("initial-capital", defaultCapital, "Paper capital when no wallet balance is available")
		metricsAddr  = flag.String("metrics-addr", ":9090", "Listen address of the /metrics endpoint")
		envFile      = flag.String("env", ".env", "Environment file path")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v), checking environment variables...", *envFile, err)
	}
	logger.Setup(*logLevel)

	params, ok := config.ParametersForPreset(*preset)
	if !ok {
		log.Fatalf("❌ Unknown preset %q (available: default, aggressive)", *preset)
	}
	if *paramsFile != "" {
		loaded, err := config.LoadParameters(*paramsFile)
		if err != nil {
			log.Fatalf("❌ Could not load parameters: %v", err)
		}
		params = loaded
	}

	riskLimits := config.RiskLimitsFromEnv()
	if *capital != defaultCapital {
		riskLimits.InitialCapital = *capital
	}

	excfg := exchange.Config{
		Exchange: *exchangeName,
		Bybit: exchange.BybitConfig{
			APIKey:    os.Getenv("BYBIT_API_KEY"),
			APISecret: os.Getenv("BYBIT_API_SECRET"),
			Testnet:   *testnet,
			Demo:      *demo,
			Category:  *category,
		},
		Mock: exchange.MockConfig{InitialBalance: riskLimits.InitialCapital},
	}
	if err := ensureAPICredentials(excfg); err != nil {
		log.Fatalf("❌ %v", err)
	}

	ex, err := exchange.New(excfg)
	if err != nil {
		log.Fatalf("❌ Exchange setup failed: %v", err)
	}

	botCfg := bot.DefaultConfig()
	if *symbolsFlag != "" {
		botCfg.Symbols = splitSymbols(*symbolsFlag)
	}
	botCfg.Timeframe = *timeframe
	botCfg.InitialCapital = riskLimits.InitialCapital
	botCfg.Risk = riskLimits

	engine, err := bot.NewEngine(botCfg, ex, params)
	if err != nil {
		log.Fatalf("❌ Engine setup failed: %v", err)
	}

	printStartupInfo(botCfg, *exchangeName, *preset, *metricsAddr)

	srv := startMetricsServer(*metricsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx); err != nil {
		log.Fatalf("❌ Engine stopped with error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Metrics server shutdown: %v", err)
	}

	fmt.Println("✅ Bot stopped successfully")
}

func printStartupInfo(cfg bot.Config, exchangeName, preset, metricsAddr string) {
	fmt.Println("🤖 Strategy Bot Starting...")
	fmt.Printf("   Exchange:  %s\n", exchangeName)
	fmt.Printf("   Symbols:   %s\n", strings.Join(cfg.Symbols, ", "))
	fmt.Printf("   Timeframe: %s\n", cfg.Timeframe)
	fmt.Printf("   Preset:    %s\n", preset)
	fmt.Printf("   Metrics:   %s/metrics\n", metricsAddr)
}

// ensureAPICredentials validates that a real exchange backend has keys; the
// mock backend needs none.
func ensureAPICredentials(cfg exchange.Config) error {
	name := strings.ToLower(strings.TrimSpace(cfg.Exchange))
	if name == "mock" {
		return nil
	}

	if cfg.Bybit.APIKey == "" {
		return errors.New("BYBIT_API_KEY is required (set in environment or .env)")
	}
	if cfg.Bybit.APISecret == "" {
		return errors.New("BYBIT_API_SECRET is required (set in environment or .env)")
	}
	return nil
}

func splitSymbols(list string) []string {
	parts := strings.Split(list, ",")
	symbols := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.ToUpper(strings.TrimSpace(part)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// startMetricsServer serves prometheus metrics in the background; a dead
// metrics listener must not take the bot down.
func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg := logger.For("metrics")
			lg.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return srv
}
