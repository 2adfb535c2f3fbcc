// Package bot runs the live engine: a cooperative scheduler that scans the
// trading universe for signals, executes them as paper positions, monitors
// exits and reports performance on fixed cadences. The engine never places
// orders; the exchange boundary is read-only.
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/exchange"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/monitoring"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/risk"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/strategy"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// Config holds the trading universe and the scheduler cadences.
type Config struct {
	Symbols    []string
	Timeframe  string
	QuoteAsset string
	BarLimit   int

	ScanInterval        time.Duration
	MonitorInterval     time.Duration
	PerformanceInterval time.Duration
	StatusInterval      time.Duration
	TickInterval        time.Duration
	ErrorBackoff        time.Duration

	// ExecuteConfidence gates execution on top of the signal gate: only
	// signals above it become positions.
	ExecuteConfidence float64

	// InitialCapital seeds the paper balance when the exchange cannot
	// report one.
	InitialCapital float64

	Risk config.RiskLimits
}

// DefaultConfig returns the reference engine settings.
func DefaultConfig() Config {
	return Config{
		Symbols:             []string{"BTCUSDT", "ETHUSDT", "ADAUSDT", "SOLUSDT", "DOTUSDT"},
		Timeframe:           "1h",
		QuoteAsset:          "USDT",
		BarLimit:            200,
		ScanInterval:        5 * time.Minute,
		MonitorInterval:     time.Minute,
		PerformanceInterval: 6 * time.Hour,
		StatusInterval:      30 * time.Minute,
		TickInterval:        10 * time.Second,
		ErrorBackoff:        30 * time.Second,
		ExecuteConfidence:   0.7,
		InitialCapital:      10000,
		Risk:                config.DefaultRiskLimits(),
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	defaults := DefaultConfig()

	if len(c.Symbols) == 0 {
		c.Symbols = defaults.Symbols
	}
	if c.Timeframe == "" {
		c.Timeframe = defaults.Timeframe
	}
	if c.QuoteAsset == "" {
		c.QuoteAsset = defaults.QuoteAsset
	}
	if c.BarLimit <= 0 {
		c.BarLimit = defaults.BarLimit
	}
	if c.ScanInterval <= 0 {
		c.ScanInterval = defaults.ScanInterval
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = defaults.MonitorInterval
	}
	if c.PerformanceInterval <= 0 {
		c.PerformanceInterval = defaults.PerformanceInterval
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = defaults.StatusInterval
	}
	if c.TickInterval <= 0 {
		c.TickInterval = defaults.TickInterval
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = defaults.ErrorBackoff
	}
	if c.ExecuteConfidence <= 0 {
		c.ExecuteConfidence = defaults.ExecuteConfidence
	}
	if c.InitialCapital <= 0 {
		c.InitialCapital = defaults.InitialCapital
	}
	if c.Risk == (config.RiskLimits{}) {
		c.Risk = defaults.Risk
	}

	return c
}

// Engine is the live paper-trading engine. The scheduler goroutine is the
// only writer of the trading state; the mutex serializes it against
// snapshot readers (Positions, Trades, Performance).
type Engine struct {
	cfg      Config
	exchange exchange.Exchange
	strategy *strategy.Strategy
	risk     *risk.Assessor
	log      zerolog.Logger

	mu             sync.Mutex
	balance        float64
	initialBalance float64
	positions      map[string]types.Position
	trades         []types.TradeRecord
	lastPrices     map[string]float64

	lastScan        time.Time
	lastMonitor     time.Time
	lastPerformance time.Time
	lastStatus      time.Time
}

// NewEngine creates a live engine over the given exchange.
func NewEngine(cfg Config, ex exchange.Exchange, params config.StrategyParameters) (*Engine, error) {
	cfg = cfg.withDefaults()

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Risk.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		exchange:   ex,
		strategy:   strategy.New(params),
		risk:       risk.NewAssessor(cfg.Risk),
		log:        logger.For("bot"),
		positions:  make(map[string]types.Position),
		lastPrices: make(map[string]float64),
	}, nil
}

// Run drives the scheduler until the context is canceled. Every tick it
// checks which cadences are due; a failed cycle backs off before the loop
// resumes. Cancellation shuts down gracefully and logs a final summary.
func (e *Engine) Run(ctx context.Context) error {
	e.seedBalance(ctx)

	e.log.Info().
		Strs("symbols", e.cfg.Symbols).
		Str("timeframe", e.cfg.Timeframe).
		Str("exchange", e.exchange.GetName()).
		Float64("balance", e.Balance()).
		Msg("Starting trading engine")

	now := time.Now()
	e.lastScan = now
	e.lastMonitor = now
	e.lastPerformance = now
	e.lastStatus = now

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return nil
		case now := <-ticker.C:
			if err := e.tick(ctx, now); err != nil {
				if ctx.Err() != nil {
					e.shutdown()
					return nil
				}
				e.log.Error().Err(err).Msg("Trading loop error")
				monitoring.RecordError("loop")
				select {
				case <-time.After(e.cfg.ErrorBackoff):
				case <-ctx.Done():
					e.shutdown()
					return nil
				}
			}
		}
	}
}

// tick runs every cadence that has come due since its last run.
func (e *Engine) tick(ctx context.Context, now time.Time) error {
	if now.Sub(e.lastScan) >= e.cfg.ScanInterval {
		e.lastScan = now
		if err := e.scanSignals(ctx); err != nil {
			return err
		}
	}

	if now.Sub(e.lastMonitor) >= e.cfg.MonitorInterval {
		e.lastMonitor = now
		if err := e.monitorPositions(ctx); err != nil {
			return err
		}
	}

	if now.Sub(e.lastPerformance) >= e.cfg.PerformanceInterval {
		e.lastPerformance = now
		e.logPerformance()
	}

	if now.Sub(e.lastStatus) >= e.cfg.StatusInterval {
		e.lastStatus = now
		e.logStatus()
	}

	return nil
}

// seedBalance initializes the paper balance from the exchange wallet,
// falling back to the configured capital when the venue cannot report one.
// From here on the balance is tracked locally: entries deduct the position
// notional, exits restore it plus realized P&L.
func (e *Engine) seedBalance(ctx context.Context) {
	balance, err := e.exchange.GetBalance(ctx, e.cfg.QuoteAsset)
	if err != nil || balance <= 0 {
		if err != nil {
			e.log.Warn().Err(err).
				Str("asset", e.cfg.QuoteAsset).
				Msg("Could not fetch wallet balance, using configured capital")
		}
		balance = e.cfg.InitialCapital
	}

	e.mu.Lock()
	e.balance = balance
	e.initialBalance = balance
	e.mu.Unlock()

	monitoring.UpdateEquity(balance)
}

func (e *Engine) shutdown() {
	e.log.Info().Msg("Shutting down trading engine")
	e.logPerformance()
}

// Balance returns the current paper cash balance.
func (e *Engine) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// Positions returns a snapshot of the open positions.
func (e *Engine) Positions() []types.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		out = append(out, pos)
	}
	return out
}

// Trades returns a copy of the closed-trade ledger.
func (e *Engine) Trades() []types.TradeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.TradeRecord, len(e.trades))
	copy(out, e.trades)
	return out
}

// equityLocked values the portfolio at the freshest known prices. The
// caller must hold the mutex. Positions without a seen price are valued
// at cost.
func (e *Engine) equityLocked() float64 {
	equity := e.balance
	for symbol, pos := range e.positions {
		price, ok := e.lastPrices[symbol]
		if !ok {
			price = pos.EntryPrice
		}
		equity += pos.Notional() + pos.UnrealizedPnL(price)
	}
	return equity
}

// Equity returns the portfolio value including open positions.
func (e *Engine) Equity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.equityLocked()
}
