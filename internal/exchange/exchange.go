// Package exchange defines the market-data boundary the engine consumes:
// bars, prices and balances. Order placement is deliberately absent; live
// decisions are executed as paper positions by the engine itself.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// ErrNoData indicates the venue answered successfully but returned no usable
// market data for the request.
var ErrNoData = errors.New("no market data returned")

// Exchange supplies the market data the strategy engine consumes.
type Exchange interface {
	GetName() string

	// GetBars returns up to limit candles for the symbol and timeframe in
	// chronological order, oldest first.
	GetBars(ctx context.Context, symbol, timeframe string, limit int) ([]types.OHLCV, error)

	// GetCurrentPrice returns the latest trade price for the symbol.
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)

	// GetBalance returns the wallet balance for an asset, e.g. "USDT".
	GetBalance(ctx context.Context, asset string) (float64, error)
}

// APIError carries a venue error code alongside its message.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bybit api error %d: %s", e.Code, e.Message)
}

// Venue error codes that matter for retry classification.
const (
	errCodeRateLimitExceeded = 10006
)

// isRetryable reports whether a failed call is worth repeating. Transport
// errors retry; API errors retry only on rate limiting and server faults.
func isRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	switch apiErr.Code {
	case errCodeRateLimitExceeded,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
