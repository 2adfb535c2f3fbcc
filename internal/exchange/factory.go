package exchange

import (
	"fmt"
	"strings"
)

const defaultMockBalance = 10000

// Config selects and configures an exchange backend.
type Config struct {
	Exchange string // "bybit" or "mock"; empty defaults to bybit
	Bybit    BybitConfig
	Mock     MockConfig
}

// New builds the Exchange named by cfg.Exchange.
func New(cfg Config) (Exchange, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Exchange)) {
	case "", "bybit":
		return NewBybitExchange(cfg.Bybit), nil
	case "mock":
		balance := cfg.Mock.InitialBalance
		if balance <= 0 {
			balance = defaultMockBalance
		}
		return NewMockExchange(balance), nil
	default:
		return nil, fmt.Errorf("unsupported exchange %q (supported: bybit, mock)", cfg.Exchange)
	}
}
