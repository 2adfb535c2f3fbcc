package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/rs/zerolog"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

const (
	demoBaseURL = "https://api-demo.bybit.com"

	defaultKlineLimit = 200
	maxKlineLimit     = 1000

	retryAttempts     = 3
	retryInitialDelay = time.Second
)

// BybitConfig holds the connection settings for the Bybit V5 API.
type BybitConfig struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool // demo trading environment
	Category  string
}

// BybitExchange serves market data from the Bybit V5 unified trading API.
type BybitExchange struct {
	client   *bybit_api.Client
	category string
	testnet  bool
	demo     bool
	log      zerolog.Logger
}

// NewBybitExchange creates a Bybit-backed data source. The demo environment
// takes precedence over testnet when both are set.
func NewBybitExchange(cfg BybitConfig) *BybitExchange {
	var baseURL string
	if cfg.Demo {
		baseURL = demoBaseURL
	} else if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	} else {
		baseURL = bybit_api.MAINNET
	}

	client := bybit_api.NewBybitHttpClient(
		cfg.APIKey,
		cfg.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	category := cfg.Category
	if category == "" {
		category = "spot"
	}

	return &BybitExchange{
		client:   client,
		category: category,
		testnet:  cfg.Testnet,
		demo:     cfg.Demo,
		log:      logger.For("exchange"),
	}
}

// GetName implements Exchange.
func (b *BybitExchange) GetName() string {
	return "Bybit"
}

// Environment describes which Bybit environment the client talks to.
func (b *BybitExchange) Environment() string {
	if b.demo {
		return "demo"
	}
	if b.testnet {
		return "testnet"
	}
	return "mainnet"
}

// bybitInterval maps a human timeframe to a Bybit kline interval code.
// Raw interval codes ("60", "D", "W", "M") pass through unchanged.
func bybitInterval(timeframe string) (string, error) {
	switch timeframe {
	case "1m":
		return "1", nil
	case "3m":
		return "3", nil
	case "5m":
		return "5", nil
	case "15m":
		return "15", nil
	case "30m":
		return "30", nil
	case "1h":
		return "60", nil
	case "2h":
		return "120", nil
	case "4h":
		return "240", nil
	case "6h":
		return "360", nil
	case "12h":
		return "720", nil
	case "1d":
		return "D", nil
	case "1w":
		return "W", nil
	case "1", "3", "5", "15", "30", "60", "120", "240", "360", "720", "D", "W", "M":
		return timeframe, nil
	}
	return "", fmt.Errorf("unsupported timeframe %q", timeframe)
}

// GetBars implements Exchange. Bybit returns klines newest first; the result
// is reversed into chronological order before it is handed to callers.
func (b *BybitExchange) GetBars(ctx context.Context, symbol, timeframe string, limit int) ([]types.OHLCV, error) {
	interval, err := bybitInterval(timeframe)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultKlineLimit
	}
	if limit > maxKlineLimit {
		limit = maxKlineLimit
	}

	params := map[string]interface{}{
		"category": b.category,
		"symbol":   symbol,
		"interval": interval,
		"limit":    limit,
	}

	var response interface{}
	err = b.withRetry(ctx, "get klines", func() error {
		var callErr error
		response, callErr = b.client.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
		if callErr != nil {
			return callErr
		}
		return checkServerResponse(response)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get klines: %w", err)
	}

	bars, err := parseKlineResponse(symbol, response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kline response: %w", err)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	b.log.Debug().
		Str("symbol", symbol).
		Str("interval", interval).
		Int("bars", len(bars)).
		Msg("Fetched klines")

	return bars, nil
}

// GetCurrentPrice implements Exchange.
func (b *BybitExchange) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": b.category,
		"symbol":   symbol,
	}

	var response interface{}
	err := b.withRetry(ctx, "get ticker", func() error {
		var callErr error
		response, callErr = b.client.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
		if callErr != nil {
			return callErr
		}
		return checkServerResponse(response)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get latest price: %w", err)
	}

	price, err := parseTickerPrice(response)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ticker response: %w", err)
	}
	return price, nil
}

// GetBalance implements Exchange. Balances come from the unified account
// wallet; an asset absent from the wallet is an error rather than zero, so
// misconfigured accounts surface early.
func (b *BybitExchange) GetBalance(ctx context.Context, asset string) (float64, error) {
	params := map[string]interface{}{
		"accountType": "UNIFIED",
		"coin":        asset,
	}

	var response interface{}
	err := b.withRetry(ctx, "get wallet balance", func() error {
		var callErr error
		response, callErr = b.client.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
		if callErr != nil {
			return callErr
		}
		return checkServerResponse(response)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get account balance: %w", err)
	}

	balance, err := parseWalletBalance(response, asset)
	if err != nil {
		return 0, fmt.Errorf("failed to parse wallet response: %w", err)
	}
	return balance, nil
}

// withRetry runs fn up to retryAttempts times with exponential backoff.
// Non-retryable API errors abort immediately; context cancellation wins
// over any pending backoff wait.
func (b *BybitExchange) withRetry(ctx context.Context, operation string, fn func() error) error {
	delay := retryInitialDelay

	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == retryAttempts {
			break
		}

		b.log.Warn().
			Err(lastErr).
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Bybit request failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, retryAttempts, lastErr)
}

// checkServerResponse converts a non-zero Bybit return code into an APIError.
func checkServerResponse(response interface{}) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return &APIError{Code: serverResp.RetCode, Message: serverResp.RetMsg}
	}
	return nil
}

// parseKlineResponse decodes the kline payload into chronological bars.
func parseKlineResponse(symbol string, response interface{}) ([]types.OHLCV, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	var bars []types.OHLCV
	for _, item := range klineResult.List {
		if len(item) < 7 {
			continue // skip incomplete data
		}

		// Bybit kline format: [startTime, open, high, low, close, volume, turnover]
		bars = append(bars, types.OHLCV{
			Timestamp: time.UnixMilli(parseInt64(item[0])).UTC(),
			Open:      parseFloat64(item[1]),
			High:      parseFloat64(item[2]),
			Low:       parseFloat64(item[3]),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}

	// Bybit lists klines newest first.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	return bars, nil
}

// parseTickerPrice extracts the last trade price from a ticker payload.
func parseTickerPrice(response interface{}) (float64, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	var tickerResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &tickerResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ticker result: %w", err)
	}
	if len(tickerResult.List) == 0 {
		return 0, ErrNoData
	}

	return parseFloat64(tickerResult.List[0].LastPrice), nil
}

// parseWalletBalance extracts one coin's wallet balance from an account
// wallet payload.
func parseWalletBalance(response interface{}, asset string) (float64, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	var walletResult struct {
		List []struct {
			AccountType string `json:"accountType"`
			Coin        []struct {
				Coin          string `json:"coin"`
				WalletBalance string `json:"walletBalance"`
			} `json:"coin"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &walletResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet result: %w", err)
	}
	if len(walletResult.List) == 0 {
		return 0, fmt.Errorf("no account data found")
	}

	for _, coin := range walletResult.List[0].Coin {
		if coin.Coin == asset {
			return parseFloat64(coin.WalletBalance), nil
		}
	}
	return 0, fmt.Errorf("coin %s not found in account", asset)
}

func parseFloat64(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return i
}
