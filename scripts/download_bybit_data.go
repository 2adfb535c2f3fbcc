// Command download_bybit_data fetches historical klines from the Bybit V5
// public API and writes them as CSV files in the layout the backtest data
// loader reads: <outdir>/<category>/<SYMBOL>/<interval>/candles.csv with
// timestamp,open,high,low,close,volume rows and UTC datetimes.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	klineEndpoint  = "https://api.bybit.com/v5/market/kline"
	maxKlineLimit  = 1000
	requestSpacing = 500 * time.Millisecond
)

// klineRow is one candle as Bybit returns it: string fields, newest first.
type klineRow struct {
	StartTime int64
	Open      string
	High      string
	Low       string
	Close     string
	Volume    string
}

type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	} `json:"result"`
}

func main() {
	var (
		symbol     = flag.String("symbol", "BTCUSDT", "Trading symbol (e.g. BTCUSDT)")
		interval   = flag.String("interval", "60", "Kline interval (1, 3, 5, 15, 30, 60, 120, 240, 360, 720, D, W, M)")
		category   = flag.String("category", "spot", "Market category (spot, linear, inverse)")
		symbols    = flag.String("symbols", "", "Comma-separated symbols (overrides -symbol)")
		intervals  = flag.String("intervals", "", "Comma-separated intervals (overrides -interval)")
		categories = flag.String("categories", "", "Comma-separated categories (overrides -category)")
		outdir     = flag.String("outdir", "data/bybit", "Directory to write CSV files")
		startDate  = flag.String("start", "", "Start date (YYYY-MM-DD), default one year back")
		endDate    = flag.String("end", "", "End date (YYYY-MM-DD), default today")
		limit      = flag.Int("limit", maxKlineLimit, "Klines per request (max 1000)")
	)
	flag.Parse()

	if *limit > maxKlineLimit || *limit <= 0 {
		*limit = maxKlineLimit
	}

	symList := splitList(*symbols, *symbol, strings.ToUpper)
	intList := splitList(*intervals, *interval, nil)
	catList := splitList(*categories, *category, strings.ToLower)

	end := time.Now().UTC()
	start := end.AddDate(-1, 0, 0)
	if *startDate != "" {
		parsed, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
		start = parsed
	}
	if *endDate != "" {
		parsed, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			log.Fatalf("Invalid end date: %v", err)
		}
		end = parsed
	}

	fmt.Println("🚀 Bybit Historical Data Downloader")
	fmt.Println("====================================")
	fmt.Printf("📊 Categories: %s\n", strings.Join(catList, ", "))
	fmt.Printf("🎯 Symbols: %s\n", strings.Join(symList, ", "))
	fmt.Printf("⏱️  Intervals: %s\n", strings.Join(intList, ", "))
	fmt.Printf("📅 Date Range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))

	// Intraday interval codes are already minute counts, so they double as
	// the directory names the data locator expects.
	for _, cat := range catList {
		for _, sym := range symList {
			for _, ival := range intList {
				outPath := filepath.Join(*outdir, cat, sym, ival, "candles.csv")
				downloadOne(cat, sym, ival, start, end, *limit, outPath)
			}
		}
	}

	fmt.Println("\n🎉 All downloads completed!")
}

func splitList(list, fallback string, normalize func(string) string) []string {
	if normalize == nil {
		normalize = strings.TrimSpace
	} else {
		base := normalize
		normalize = func(s string) string { return base(strings.TrimSpace(s)) }
	}

	if strings.TrimSpace(list) == "" {
		return []string{normalize(fallback)}
	}

	out := make([]string, 0)
	for _, item := range strings.Split(list, ",") {
		if v := normalize(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func downloadOne(category, symbol, interval string, start, end time.Time, limit int, outputPath string) {
	fmt.Printf("\n📊 Downloading %s %s data for %s\n", category, interval, symbol)
	fmt.Printf("📁 Output: %s\n", outputPath)

	klines, err := fetchKlines(category, symbol, interval, start, end, limit)
	if err != nil {
		log.Printf("❌ Download failed for %s %s %s: %v", category, symbol, interval, err)
		return
	}
	fmt.Printf("✅ Downloaded %d klines\n", len(klines))

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		log.Printf("❌ Could not create %s: %v", filepath.Dir(outputPath), err)
		return
	}
	if err := writeCSV(klines, outputPath); err != nil {
		log.Printf("❌ Could not write %s: %v", outputPath, err)
		return
	}

	fmt.Printf("💾 Data saved to %s\n", outputPath)
	printSummary(klines)
}

// fetchKlines pages backwards through the kline endpoint using the end
// cursor (Bybit returns batches newest first) and returns the collected
// candles in ascending time order.
func fetchKlines(category, symbol, interval string, start, end time.Time, limit int) ([]klineRow, error) {
	var all []klineRow

	startMs := start.Unix() * 1000
	cursorMs := end.Unix() * 1000

	for cursorMs > startMs {
		url := fmt.Sprintf("%s?category=%s&symbol=%s&interval=%s&end=%d&limit=%d",
			klineEndpoint, category, symbol, interval, cursorMs, limit)

		resp, err := http.Get(url)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
		}

		var parsed klineResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decode response: %w", err)
		}
		resp.Body.Close()

		if parsed.RetCode != 0 {
			return nil, fmt.Errorf("bybit api error %d: %s", parsed.RetCode, parsed.RetMsg)
		}
		if len(parsed.Result.List) == 0 {
			break
		}

		oldest := int64(0)
		for _, raw := range parsed.Result.List {
			if len(raw) < 6 {
				continue
			}

			ts, err := strconv.ParseInt(raw[0], 10, 64)
			if err != nil {
				continue
			}

			if ts >= startMs && ts <= end.Unix()*1000 {
				all = append(all, klineRow{
					StartTime: ts,
					Open:      raw[1],
					High:      raw[2],
					Low:       raw[3],
					Close:     raw[4],
					Volume:    raw[5],
				})
			}
			if oldest == 0 || ts < oldest {
				oldest = ts
			}
		}

		if oldest <= startMs {
			break
		}
		cursorMs = oldest - 1

		fmt.Printf("\r  Progress: %d klines downloaded...", len(all))
		time.Sleep(requestSpacing)
	}
	fmt.Println()

	// Batches arrive newest first; flip into chronological order.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

func writeCSV(klines []klineRow, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	for _, k := range klines {
		record := []string{
			time.Unix(k.StartTime/1000, 0).UTC().Format("2006-01-02 15:04:05"),
			k.Open,
			k.High,
			k.Low,
			k.Close,
			k.Volume,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(klines []klineRow) {
	if len(klines) == 0 {
		return
	}

	high, low := 0.0, 1e18
	for _, k := range klines {
		if v, err := strconv.ParseFloat(k.High, 64); err == nil && v > high {
			high = v
		}
		if v, err := strconv.ParseFloat(k.Low, 64); err == nil && v < low {
			low = v
		}
	}

	fmt.Println("\n📊 DATA SUMMARY:")
	fmt.Printf("  First: %s\n", time.Unix(klines[0].StartTime/1000, 0).UTC().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Last:  %s\n", time.Unix(klines[len(klines)-1].StartTime/1000, 0).UTC().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Range: $%.2f to $%.2f\n", low, high)
}
