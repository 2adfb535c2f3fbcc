package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

func TestBybitInterval(t *testing.T) {
	cases := map[string]string{
		"1m":  "1",
		"3m":  "3",
		"5m":  "5",
		"15m": "15",
		"30m": "30",
		"1h":  "60",
		"2h":  "120",
		"4h":  "240",
		"6h":  "360",
		"12h": "720",
		"1d":  "D",
		"1w":  "W",
		"60":  "60",
		"D":   "D",
		"M":   "M",
	}

	for timeframe, want := range cases {
		got, err := bybitInterval(timeframe)
		require.NoError(t, err, "timeframe %q", timeframe)
		assert.Equal(t, want, got, "timeframe %q", timeframe)
	}

	_, err := bybitInterval("7m")
	assert.ErrorContains(t, err, "unsupported timeframe")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(errors.New("connection reset")))
	assert.True(t, isRetryable(&APIError{Code: 10006, Message: "rate limit exceeded"}))
	assert.True(t, isRetryable(&APIError{Code: 500, Message: "internal error"}))
	assert.True(t, isRetryable(&APIError{Code: 503, Message: "unavailable"}))
	assert.False(t, isRetryable(&APIError{Code: 10001, Message: "params error"}))
	assert.False(t, isRetryable(&APIError{Code: 110007, Message: "insufficient balance"}))
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: 10006, Message: "rate limit exceeded"}
	assert.Equal(t, "bybit api error 10006: rate limit exceeded", err.Error())
}

func TestCheckServerResponse(t *testing.T) {
	assert.NoError(t, checkServerResponse(&bybit_api.ServerResponse{RetCode: 0}))

	err := checkServerResponse(&bybit_api.ServerResponse{RetCode: 10001, RetMsg: "params error"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 10001, apiErr.Code)
	assert.Equal(t, "params error", apiErr.Message)

	assert.Error(t, checkServerResponse("not a server response"))
}

func TestParseKlineResponse_ReversesToChronological(t *testing.T) {
	// Bybit lists klines newest first.
	response := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"symbol":   "BTCUSDT",
			"category": "spot",
			"list": [][]string{
				{"1704074400000", "101", "103", "100", "102", "1500", "151000"},
				{"1704070800000", "100", "102", "99", "101", "1200", "121000"},
				{"1704067200000", "99", "101", "98", "100", "1000", "100000"},
			},
		},
	}

	bars, err := parseKlineResponse("BTCUSDT", response)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
	assert.Equal(t, 99.0, bars[0].Open)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 1000.0, bars[0].Volume)

	assert.Equal(t, time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC), bars[2].Timestamp)
	assert.Equal(t, 102.0, bars[2].Close)

	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Timestamp.After(bars[i-1].Timestamp), "bars must be chronological")
	}
}

func TestParseKlineResponse_SkipsIncompleteRows(t *testing.T) {
	response := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"symbol": "BTCUSDT",
			"list": [][]string{
				{"1704070800000", "100", "102", "99", "101", "1200", "121000"},
				{"1704067200000", "99", "101"},
			},
		},
	}

	bars, err := parseKlineResponse("BTCUSDT", response)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 101.0, bars[0].Close)
}

func TestParseTickerPrice(t *testing.T) {
	response := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"category": "spot",
			"list": []map[string]interface{}{
				{"symbol": "BTCUSDT", "lastPrice": "45123.5"},
			},
		},
	}

	price, err := parseTickerPrice(response)
	require.NoError(t, err)
	assert.Equal(t, 45123.5, price)

	empty := &bybit_api.ServerResponse{
		RetCode: 0,
		Result:  map[string]interface{}{"category": "spot", "list": []map[string]interface{}{}},
	}
	_, err = parseTickerPrice(empty)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParseWalletBalance(t *testing.T) {
	response := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"list": []map[string]interface{}{
				{
					"accountType": "UNIFIED",
					"coin": []map[string]interface{}{
						{"coin": "BTC", "walletBalance": "0.5"},
						{"coin": "USDT", "walletBalance": "10000.25"},
					},
				},
			},
		},
	}

	balance, err := parseWalletBalance(response, "USDT")
	require.NoError(t, err)
	assert.Equal(t, 10000.25, balance)

	_, err = parseWalletBalance(response, "ETH")
	assert.ErrorContains(t, err, "coin ETH not found")

	empty := &bybit_api.ServerResponse{
		RetCode: 0,
		Result:  map[string]interface{}{"list": []map[string]interface{}{}},
	}
	_, err = parseWalletBalance(empty, "USDT")
	assert.ErrorContains(t, err, "no account data")
}

func TestMockExchange_GetBars(t *testing.T) {
	mock := NewMockExchange(10000)
	ctx := context.Background()

	bars, err := mock.GetBars(ctx, "BTCUSDT", "1h", 50)
	require.NoError(t, err)
	require.Len(t, bars, 50)

	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Timestamp.After(bars[i-1].Timestamp), "bars must be chronological")
	}

	// Same request twice is deterministic.
	again, err := mock.GetBars(ctx, "BTCUSDT", "1h", 50)
	require.NoError(t, err)
	assert.Equal(t, bars, again)

	// Mutating the returned slice must not leak into the mock.
	bars[0].Close = -1
	fresh, err := mock.GetBars(ctx, "BTCUSDT", "1h", 50)
	require.NoError(t, err)
	assert.NotEqual(t, -1.0, fresh[0].Close)

	// Zero limit falls back to the default.
	defaulted, err := mock.GetBars(ctx, "BTCUSDT", "1h", 0)
	require.NoError(t, err)
	assert.Len(t, defaulted, defaultKlineLimit)
}

func TestMockExchange_SetBars(t *testing.T) {
	mock := NewMockExchange(10000)
	ctx := context.Background()

	injected := []types.OHLCV{
		{Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		{Timestamp: time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), Open: 100.5, High: 102, Low: 100, Close: 101.5, Volume: 1100},
	}
	mock.SetBars("ETHUSDT", injected)

	bars, err := mock.GetBars(ctx, "ETHUSDT", "1h", 10)
	require.NoError(t, err)
	assert.Equal(t, injected, bars)

	price, err := mock.GetCurrentPrice(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 101.5, price)
}

func TestMockExchange_GetCurrentPrice(t *testing.T) {
	mock := NewMockExchange(10000)
	ctx := context.Background()

	bars, err := mock.GetBars(ctx, "BTCUSDT", "1h", 1000)
	require.NoError(t, err)

	price, err := mock.GetCurrentPrice(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, bars[len(bars)-1].Close, price)

	mock.SetPrice("BTCUSDT", 47000)
	price, err = mock.GetCurrentPrice(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 47000.0, price)
}

func TestMockExchange_Balances(t *testing.T) {
	mock := NewMockExchange(10000)
	ctx := context.Background()

	balance, err := mock.GetBalance(ctx, "USDT")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balance)

	balance, err = mock.GetBalance(ctx, "BTC")
	require.NoError(t, err)
	assert.Zero(t, balance)

	mock.SetBalance("USDT", 8500)
	balance, err = mock.GetBalance(ctx, "USDT")
	require.NoError(t, err)
	assert.Equal(t, 8500.0, balance)
}

func TestNew(t *testing.T) {
	ex, err := New(Config{Exchange: "bybit", Bybit: BybitConfig{Testnet: true}})
	require.NoError(t, err)
	bybit, ok := ex.(*BybitExchange)
	require.True(t, ok)
	assert.Equal(t, "Bybit", bybit.GetName())
	assert.Equal(t, "testnet", bybit.Environment())

	ex, err = New(Config{Exchange: "Mock"})
	require.NoError(t, err)
	mock, ok := ex.(*MockExchange)
	require.True(t, ok)
	balance, err := mock.GetBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, float64(defaultMockBalance), balance)

	_, err = New(Config{Exchange: "kraken"})
	assert.ErrorContains(t, err, "unsupported exchange")
}

func TestNew_EnvironmentSelection(t *testing.T) {
	demo := NewBybitExchange(BybitConfig{Demo: true, Testnet: true})
	assert.Equal(t, "demo", demo.Environment())

	mainnet := NewBybitExchange(BybitConfig{})
	assert.Equal(t, "mainnet", mainnet.Environment())
}
