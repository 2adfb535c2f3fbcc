package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// CSVProvider implements DataProvider for CSV candle files. Malformed rows
// are logged and skipped so one bad line cannot discard a whole history.
type CSVProvider struct {
	format CSVColumnMapping
	log    zerolog.Logger
}

// NewCSVProvider creates a CSV provider using DefaultCSVFormat.
func NewCSVProvider() *CSVProvider {
	return NewCSVProviderWithFormat(DefaultCSVFormat)
}

// NewCSVProviderWithFormat creates a CSV provider for a custom column layout.
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		format: format,
		log:    logger.For("data"),
	}
}

// GetName returns the name of the data provider.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical candles from a CSV file. The first row is kept
// when it parses as data, otherwise it is treated as a header.
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Row length is enforced per line below, not by the reader.
	reader.FieldsPerRecord = -1

	var data []types.OHLCV
	skipped := 0
	lineNum := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s at line %d: %w", source, lineNum+1, err)
		}
		lineNum++

		candle, err := p.parseRecord(record)
		if err != nil {
			if lineNum == 1 {
				// Header row.
				continue
			}
			skipped++
			p.log.Warn().
				Str("file", source).
				Int("line", lineNum).
				Err(err).
				Msg("skipping malformed row")
			continue
		}
		data = append(data, candle)
	}

	p.log.Info().
		Str("file", source).
		Int("records", len(data)).
		Int("skipped", skipped).
		Msg("loaded historical data")
	return data, nil
}

// parseRecord converts one CSV row into a candle, rejecting rows the
// validator would refuse.
func (p *CSVProvider) parseRecord(record []string) (types.OHLCV, error) {
	format := p.format
	if len(record) < format.MinColumns {
		return types.OHLCV{}, fmt.Errorf("expected %d columns, got %d", format.MinColumns, len(record))
	}

	timestamp, err := p.parseTimestamp(record[format.TimestampCol])
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid timestamp %q: %w", record[format.TimestampCol], err)
	}

	open, err := strconv.ParseFloat(record[format.OpenCol], 64)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid open %q: %w", record[format.OpenCol], err)
	}
	high, err := strconv.ParseFloat(record[format.HighCol], 64)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid high %q: %w", record[format.HighCol], err)
	}
	low, err := strconv.ParseFloat(record[format.LowCol], 64)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid low %q: %w", record[format.LowCol], err)
	}
	closePrice, err := strconv.ParseFloat(record[format.CloseCol], 64)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid close %q: %w", record[format.CloseCol], err)
	}
	volume, err := strconv.ParseFloat(record[format.VolumeCol], 64)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid volume %q: %w", record[format.VolumeCol], err)
	}

	if open <= 0 || high <= 0 || low <= 0 || closePrice <= 0 {
		return types.OHLCV{}, errors.New("prices must be positive")
	}
	if high < open || high < closePrice || high < low {
		return types.OHLCV{}, errors.New("high below open, close or low")
	}
	if low > open || low > closePrice {
		return types.OHLCV{}, errors.New("low above open or close")
	}

	return types.OHLCV{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

func (p *CSVProvider) parseTimestamp(s string) (time.Time, error) {
	if p.format.EpochMillis {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(p.format.DateFormat, s)
}

// ValidateData checks price sanity and chronological order across a series.
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	if len(data) == 0 {
		return errors.New("no data provided")
	}

	for i, candle := range data {
		if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: prices must be positive", i)
		}
		if candle.High < candle.Low {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, candle.High, candle.Low)
		}
		if candle.High < candle.Open || candle.High < candle.Close {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) must be >= open (%.4f) and close (%.4f)",
				i, candle.High, candle.Open, candle.Close)
		}
		if candle.Low > candle.Open || candle.Low > candle.Close {
			return fmt.Errorf("invalid price data at index %d: low (%.4f) must be <= open (%.4f) and close (%.4f)",
				i, candle.Low, candle.Open, candle.Close)
		}
		if i > 0 && candle.Timestamp.Before(data[i-1].Timestamp) {
			return fmt.Errorf("invalid timestamp sequence at index %d: timestamps must be in chronological order", i)
		}
	}
	return nil
}
