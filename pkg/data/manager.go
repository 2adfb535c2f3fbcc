package data

import (
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// DataManager bundles a cached provider, filter and locator behind one
// interface for the command-line tools.
type DataManager struct {
	provider DataProvider
	filter   *DefaultDataFilter
	locator  FileLocator
}

// NewDataManager creates a manager with the default CSV provider wrapped in
// an in-memory cache.
func NewDataManager() *DataManager {
	return NewDataManagerWithProvider(NewCachedProvider(NewCSVProvider()))
}

// NewDataManagerWithProvider creates a manager around a custom provider.
func NewDataManagerWithProvider(provider DataProvider) *DataManager {
	return &DataManager{
		provider: provider,
		filter:   NewDefaultDataFilter(),
		locator:  NewDefaultFileLocator(),
	}
}

// LoadHistoricalData loads candles from a file through the provider.
func (dm *DataManager) LoadHistoricalData(filename string) ([]types.OHLCV, error) {
	return dm.provider.LoadData(filename)
}

// ValidateData validates loaded candles.
func (dm *DataManager) ValidateData(data []types.OHLCV) error {
	return dm.provider.ValidateData(data)
}

// FilterDataByPeriod keeps the trailing period of data.
func (dm *DataManager) FilterDataByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV {
	return dm.filter.FilterByPeriod(data, period)
}

// FilterDataByDateRange keeps candles within [start, end].
func (dm *DataManager) FilterDataByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV {
	return dm.filter.FilterByDateRange(data, start, end)
}

// FindDataFile locates a candle file in the on-disk layout.
func (dm *DataManager) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	return dm.locator.FindDataFile(dataRoot, exchange, symbol, interval)
}

// Filter exposes the underlying filter for less common operations.
func (dm *DataManager) Filter() *DefaultDataFilter {
	return dm.filter
}

// ParseTrailingPeriod parses trailing-window strings like "7d", "30d" or
// "180days" into durations. Raw time.ParseDuration values ("168h") are also
// accepted.
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		nStr := strings.TrimSuffix(s, "d")
		if nStr == "" {
			return 0, false
		}
		n, err := strconv.Atoi(nStr)
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	return 0, false
}
