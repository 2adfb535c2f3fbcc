package exchange

import (
	"context"
	"sync"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/data"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// MockExchange is an in-memory Exchange for tests and offline paper trading.
// Unless overridden, bars come from the deterministic sample generator and
// the current price tracks the last generated close.
type MockExchange struct {
	mu       sync.RWMutex
	balances map[string]float64
	bars     map[string][]types.OHLCV
	prices   map[string]float64
}

// MockConfig holds the settings for the in-memory exchange.
type MockConfig struct {
	InitialBalance float64
}

// NewMockExchange creates a mock exchange seeded with a USDT balance.
func NewMockExchange(initialBalance float64) *MockExchange {
	return &MockExchange{
		balances: map[string]float64{"USDT": initialBalance},
		bars:     make(map[string][]types.OHLCV),
		prices:   make(map[string]float64),
	}
}

// GetName implements Exchange.
func (m *MockExchange) GetName() string {
	return "Mock"
}

// GetBars implements Exchange. Symbols without injected bars get a lazily
// generated deterministic series so repeated calls stay consistent.
func (m *MockExchange) GetBars(_ context.Context, symbol, _ string, limit int) ([]types.OHLCV, error) {
	if limit <= 0 {
		limit = defaultKlineLimit
	}

	m.mu.Lock()
	bars, ok := m.bars[symbol]
	if !ok {
		bars = data.GenerateSampleData(symbol, 1000, data.DefaultSampleSeed)
		m.bars[symbol] = bars
	}
	m.mu.Unlock()

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	out := make([]types.OHLCV, len(bars))
	copy(out, bars)
	return out, nil
}

// GetCurrentPrice implements Exchange. A price set via SetPrice wins;
// otherwise the last close of the symbol's bars is used.
func (m *MockExchange) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	m.mu.RLock()
	price, ok := m.prices[symbol]
	m.mu.RUnlock()
	if ok {
		return price, nil
	}

	bars, err := m.GetBars(ctx, symbol, "", 1)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, ErrNoData
	}
	return bars[len(bars)-1].Close, nil
}

// GetBalance implements Exchange. Unknown assets report zero.
func (m *MockExchange) GetBalance(_ context.Context, asset string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[asset], nil
}

// SetPrice overrides the current price for a symbol.
func (m *MockExchange) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

// SetBars injects a fixed bar series for a symbol.
func (m *MockExchange) SetBars(symbol string, bars []types.OHLCV) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.OHLCV, len(bars))
	copy(out, bars)
	m.bars[symbol] = out
}

// SetBalance overrides the balance of an asset.
func (m *MockExchange) SetBalance(asset string, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[asset] = balance
}
