package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

func hourlySeries(n int) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := make([]types.OHLCV, n)
	for i := range data {
		price := 100.0 + float64(i)
		data[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      price, High: price, Low: price, Close: price,
			Volume: 1000,
		}
	}
	return data
}

// TestFilterByPeriod tests the trailing-window filter measured from the
// newest candle.
func TestFilterByPeriod(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourlySeries(48)

	trailing := f.FilterByPeriod(data, 24*time.Hour)
	require.Len(t, trailing, 25)
	assert.Equal(t, data[23].Timestamp, trailing[0].Timestamp)
	assert.Equal(t, data[47].Timestamp, trailing[len(trailing)-1].Timestamp)

	assert.Len(t, f.FilterByPeriod(data, 0), 48)
	assert.Len(t, f.FilterByPeriod(data, 500*time.Hour), 48)
	assert.Empty(t, f.FilterByPeriod(nil, time.Hour))
}

// TestFilterByDateRange tests inclusive range bounds.
func TestFilterByDateRange(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourlySeries(48)

	start := data[10].Timestamp
	end := data[12].Timestamp
	ranged := f.FilterByDateRange(data, start, end)
	require.Len(t, ranged, 3)
	assert.Equal(t, data[10].Timestamp, ranged[0].Timestamp)
	assert.Equal(t, data[12].Timestamp, ranged[2].Timestamp)

	assert.Empty(t, f.FilterByDateRange(data, end.Add(100*time.Hour), end.Add(200*time.Hour)))
}

// TestValidateTimeSequence tests ordering and duplicate detection.
func TestValidateTimeSequence(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourlySeries(5)
	assert.NoError(t, f.ValidateTimeSequence(data))
	assert.NoError(t, f.ValidateTimeSequence(nil))

	swapped := hourlySeries(5)
	swapped[1], swapped[3] = swapped[3], swapped[1]
	assert.ErrorContains(t, f.ValidateTimeSequence(swapped), "chronological order")

	dup := hourlySeries(5)
	dup[2].Timestamp = dup[1].Timestamp
	assert.ErrorContains(t, f.ValidateTimeSequence(dup), "duplicate timestamp")
}

// TestSortByTimestamp tests ascending sort without mutating the input.
func TestSortByTimestamp(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourlySeries(5)
	shuffled := []types.OHLCV{data[3], data[0], data[4], data[2], data[1]}

	sorted := f.SortByTimestamp(shuffled)
	require.Len(t, sorted, 5)
	assert.NoError(t, f.ValidateTimeSequence(sorted))
	assert.Equal(t, data[3].Timestamp, shuffled[0].Timestamp, "input order preserved")
}

// TestRemoveDuplicates tests that repeated timestamps keep their first
// occurrence.
func TestRemoveDuplicates(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourlySeries(4)
	dup := data[1]
	dup.Close = 999
	withDup := []types.OHLCV{data[0], data[1], dup, data[2], data[3]}

	deduped := f.RemoveDuplicates(withDup)
	require.Len(t, deduped, 4)
	assert.Equal(t, data[1].Close, deduped[1].Close)
}

// TestFilterOutliers tests gap-based outlier removal.
func TestFilterOutliers(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourlySeries(5)
	data[2].Open = data[1].Close * 1.5

	filtered := f.FilterOutliers(data, 10)
	require.Len(t, filtered, 4)
	for _, candle := range filtered {
		assert.NotEqual(t, data[2].Open, candle.Open)
	}

	assert.Len(t, f.FilterOutliers(data, 0), 5)
}

// TestParseTrailingPeriod tests the day-suffix and raw-duration forms.
func TestParseTrailingPeriod(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"30days", 30 * 24 * time.Hour, true},
		{" 1D ", 24 * time.Hour, true},
		{"168h", 168 * time.Hour, true},
		{"", 0, false},
		{"d", 0, false},
		{"xd", 0, false},
		{"0d", 0, false},
		{"-3d", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseTrailingPeriod(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}
