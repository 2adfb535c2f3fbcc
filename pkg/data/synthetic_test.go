package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateSampleData_Deterministic tests that the same seed reproduces
// the same series and a different seed does not.
func TestGenerateSampleData_Deterministic(t *testing.T) {
	a := GenerateSampleData("BTCUSDT", 500, DefaultSampleSeed)
	b := GenerateSampleData("BTCUSDT", 500, DefaultSampleSeed)
	require.Equal(t, a, b)

	c := GenerateSampleData("BTCUSDT", 500, DefaultSampleSeed+1)
	assert.NotEqual(t, a, c)
}

// TestGenerateSampleData_PassesValidation tests that generated candles
// satisfy the provider's own validator.
func TestGenerateSampleData_PassesValidation(t *testing.T) {
	data := GenerateSampleData("ETHUSDT", 1000, DefaultSampleSeed)
	require.Len(t, data, 1000)
	assert.NoError(t, NewCSVProvider().ValidateData(data))

	for i, candle := range data {
		if i > 0 {
			assert.Equal(t, data[i-1].Close, candle.Open, "opens chain to the prior close")
			assert.Equal(t, time.Hour, candle.Timestamp.Sub(data[i-1].Timestamp))
		}
		assert.GreaterOrEqual(t, candle.Volume, 1000.0)
		assert.Less(t, candle.Volume, 10000.0)
	}
}

// TestGenerateSampleData_AnchorsPerSymbol tests symbol-specific base prices
// and the floor at half the anchor.
func TestGenerateSampleData_AnchorsPerSymbol(t *testing.T) {
	btc := GenerateSampleData("BTCUSDT", 300, DefaultSampleSeed)
	require.NotEmpty(t, btc)
	assert.Equal(t, 45000.0, btc[0].Close)
	for _, candle := range btc {
		assert.GreaterOrEqual(t, candle.Close, 22500.0)
	}

	other := GenerateSampleData("XRPUSDT", 10, DefaultSampleSeed)
	assert.Equal(t, 100.0, other[0].Close)
}

// TestGenerateSampleData_Empty tests the zero-bar edge.
func TestGenerateSampleData_Empty(t *testing.T) {
	assert.Nil(t, GenerateSampleData("BTCUSDT", 0, DefaultSampleSeed))
	assert.Nil(t, GenerateSampleData("BTCUSDT", -5, DefaultSampleSeed))
}
