// Package data loads, validates and filters historical candle data for the
// backtest and optimization tooling. CSV files are the primary source, with
// a deterministic synthetic generator as the fallback for dry runs.
package data

import (
	"time"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// DataProvider loads historical candles from a named source.
type DataProvider interface {
	// LoadData loads historical data from the specified source.
	LoadData(source string) ([]types.OHLCV, error)

	// ValidateData validates the integrity of the loaded data.
	ValidateData(data []types.OHLCV) error

	// GetName returns the name of the data provider.
	GetName() string
}

// DataCache caches loaded candle series by source key.
type DataCache interface {
	Get(key string) ([]types.OHLCV, bool)
	Set(key string, data []types.OHLCV)
	Clear()
	Size() int
}

// DataFilter narrows and repairs candle series.
type DataFilter interface {
	// FilterByPeriod keeps the trailing period of data.
	FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV

	// FilterByDateRange keeps candles within [start, end], inclusive.
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV

	// ValidateTimeSequence ensures data is in strict chronological order.
	ValidateTimeSequence(data []types.OHLCV) error
}

// FileLocator finds candle files in the on-disk data layout.
type FileLocator interface {
	// FindDataFile locates the candle file for an exchange, symbol and
	// interval. Returns "" when no file exists.
	FindDataFile(dataRoot, exchange, symbol, interval string) string

	// ConvertIntervalToMinutes converts interval strings like "5m", "1h",
	// "4h" to minute numbers used in the directory layout.
	ConvertIntervalToMinutes(interval string) string
}

// CSVColumnMapping defines column positions and the timestamp encoding for a
// CSV layout.
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int

	// DateFormat is the time.Parse layout for the timestamp column.
	// Ignored when EpochMillis is set.
	DateFormat string

	// EpochMillis marks the timestamp column as Unix milliseconds, the
	// encoding Bybit uses in raw kline dumps.
	EpochMillis bool
}

var (
	// DefaultCSVFormat matches the files written by the download script:
	// timestamp,open,high,low,close,volume with UTC datetimes.
	DefaultCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
		DateFormat:   "2006-01-02 15:04:05",
	}

	// BybitCSVFormat matches raw Bybit kline exports, which carry start
	// times as Unix milliseconds.
	BybitCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
		EpochMillis:  true,
	}
)
