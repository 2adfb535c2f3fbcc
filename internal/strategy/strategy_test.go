package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/indicators"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// neutralSnapshot returns a fully defined snapshot that should trigger
// no generator conditions.
func neutralSnapshot() indicators.Snapshot {
	return indicators.Snapshot{
		RSI:         50,
		MACD:        0,
		MACDSignal:  0,
		MACDHist:    0,
		BBUpper:     105,
		BBMiddle:    100,
		BBLower:     95,
		BBWidth:     0.05,
		BBPosition:  0.5,
		EMAFast:     100,
		EMASlow:     100,
		VolumeRatio: 1.0,
		StochK:      50,
		StochD:      50,
		WilliamsR:   -50,
		Momentum5:   0,
		Momentum10:  0,
	}
}

func undefinedSnapshot() indicators.Snapshot {
	nan := math.NaN()
	return indicators.Snapshot{
		RSI: nan, MACD: nan, MACDSignal: nan, MACDHist: nan,
		BBUpper: nan, BBMiddle: nan, BBLower: nan, BBWidth: nan, BBPosition: nan,
		EMAFast: nan, EMASlow: nan, VolumeRatio: nan,
		StochK: nan, StochD: nan, WilliamsR: nan,
		Momentum5: nan, Momentum10: nan,
	}
}

func TestMomentumVariant_OversoldBuy(t *testing.T) {
	v := momentumVariant{params: config.DefaultParameters()}

	snap := neutralSnapshot()
	snap.RSI = 25
	snap.MACD = 1.0
	snap.MACDSignal = 0.5
	snap.MACDHist = 0.5
	snap.Momentum5 = 0.03

	op := v.evaluate(snap, 100)

	if op.Direction != types.SignalBuy {
		t.Errorf("Expected BUY, got %s", op.Direction)
	}
	if op.Confidence != 1.0 {
		t.Errorf("Expected capped confidence 1.0, got %f", op.Confidence)
	}
	if !strings.Contains(op.Rationale, "RSI oversold (25.0)") {
		t.Errorf("Missing RSI rationale: %q", op.Rationale)
	}
	if !strings.Contains(op.Rationale, "MACD bullish crossover") {
		t.Errorf("Missing MACD rationale: %q", op.Rationale)
	}
}

func TestMomentumVariant_UndefinedRSIHolds(t *testing.T) {
	v := momentumVariant{params: config.DefaultParameters()}

	op := v.evaluate(undefinedSnapshot(), 100)

	if op.Direction != types.SignalHold || op.Confidence != 0 {
		t.Errorf("Undefined RSI should hold with zero confidence, got %s/%f", op.Direction, op.Confidence)
	}
	if op.Rationale != "" {
		t.Errorf("Expected empty rationale, got %q", op.Rationale)
	}
}

func TestMeanReversionVariant_LowerBandBuy(t *testing.T) {
	v := meanReversionVariant{params: config.DefaultParameters()}

	snap := neutralSnapshot()
	snap.BBWidth = 0.15

	// Price below the lower band: position < 0.1
	op := v.evaluate(snap, 94)

	if op.Direction != types.SignalBuy {
		t.Errorf("Expected BUY near lower band, got %s", op.Direction)
	}
	if math.Abs(op.Confidence-0.8) > 1e-9 {
		t.Errorf("Expected confidence 0.8, got %f", op.Confidence)
	}
}

func TestTrendVariant_DisagreementHolds(t *testing.T) {
	v := trendVariant{params: config.DefaultParameters()}

	snap := neutralSnapshot()
	snap.EMAFast = 102
	snap.EMASlow = 100

	// Uptrend reading but price between the averages: no direction
	op := v.evaluate(snap, 101)

	if op.Direction != types.SignalHold {
		t.Errorf("Price between EMAs should hold, got %s", op.Direction)
	}
	if op.Confidence != 0.5 {
		t.Errorf("Expected confidence 0.5, got %f", op.Confidence)
	}
}

func TestTrendVariant_FullAgreementBuy(t *testing.T) {
	v := trendVariant{params: config.DefaultParameters()}

	snap := neutralSnapshot()
	snap.EMAFast = 102
	snap.EMASlow = 100

	op := v.evaluate(snap, 105)

	if op.Direction != types.SignalBuy {
		t.Errorf("Expected BUY with price above both EMAs, got %s", op.Direction)
	}
	if math.Abs(op.Confidence-0.8) > 1e-9 {
		t.Errorf("Expected confidence 0.8, got %f", op.Confidence)
	}
}

func TestVolumeVariant_NeverDirectional(t *testing.T) {
	v := volumeVariant{params: config.DefaultParameters()}

	snap := neutralSnapshot()
	snap.VolumeRatio = 3.0

	op := v.evaluate(snap, 100)

	if op.Direction != types.SignalHold {
		t.Errorf("Volume variant must never vote a direction, got %s", op.Direction)
	}
	if math.Abs(op.Confidence-0.7) > 1e-9 {
		t.Errorf("Expected confidence 0.7, got %f", op.Confidence)
	}
}

func TestStochasticVariant_AggressiveOversoldBuy(t *testing.T) {
	v := stochasticVariant{params: config.AggressiveParameters()}

	snap := neutralSnapshot()
	snap.StochK = 15
	snap.StochD = 18
	snap.WilliamsR = -85

	op := v.evaluate(snap, 100)

	if op.Direction != types.SignalBuy {
		t.Errorf("Expected BUY in oversold zone, got %s", op.Direction)
	}
	if math.Abs(op.Confidence-0.5) > 1e-9 {
		t.Errorf("Expected confidence 0.5, got %f", op.Confidence)
	}
}

func TestStochasticVariant_DefaultGateHolds(t *testing.T) {
	v := stochasticVariant{params: config.DefaultParameters()}

	snap := neutralSnapshot()
	snap.StochK = 15
	snap.StochD = 18
	snap.WilliamsR = -85

	// 0.5 does not clear the default 0.6 individual gate
	op := v.evaluate(snap, 100)

	if op.Direction != types.SignalHold {
		t.Errorf("Expected HOLD under the default gate, got %s", op.Direction)
	}
}

func TestOpinionConfidenceBounds(t *testing.T) {
	params := config.AggressiveParameters()
	variants := []generator{
		momentumVariant{params: params},
		meanReversionVariant{params: params},
		trendVariant{params: params},
		stochasticVariant{params: params},
		volumeVariant{params: params},
	}

	extreme := neutralSnapshot()
	extreme.RSI = 5
	extreme.MACD = 10
	extreme.MACDSignal = 1
	extreme.MACDHist = 9
	extreme.Momentum5 = 0.5
	extreme.BBWidth = 0.9
	extreme.VolumeRatio = 10
	extreme.StochK = 2
	extreme.StochD = 3
	extreme.WilliamsR = -95

	for _, snap := range []indicators.Snapshot{neutralSnapshot(), undefinedSnapshot(), extreme} {
		for _, v := range variants {
			op := v.evaluate(snap, 80)
			if op.Confidence < 0 || op.Confidence > 1 {
				t.Errorf("%s confidence out of [0,1]: %f", v.name(), op.Confidence)
			}
		}
	}
}

func TestEvaluate_FusedBuy(t *testing.T) {
	s := New(config.DefaultParameters())

	snap := neutralSnapshot()
	snap.RSI = 25
	snap.MACD = 1.0
	snap.MACDSignal = 0.5
	snap.MACDHist = 0.5
	snap.Momentum5 = 0.03
	snap.BBWidth = 0.15
	snap.EMAFast = 96
	snap.EMASlow = 95
	snap.VolumeRatio = 1.8

	price := 94.0
	sig := s.Evaluate("BTCUSDT", snap, price, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	if sig.Direction != types.SignalBuy {
		t.Fatalf("Expected BUY, got %s (%s)", sig.Direction, sig.Rationale)
	}

	// momentum 1.0*0.3 + mean reversion 0.8*0.3, volume boost 0.4*0.2
	expected := 0.3 + 0.24 + 0.08
	if math.Abs(sig.Confidence-expected) > 1e-9 {
		t.Errorf("Expected confidence %f, got %f", expected, sig.Confidence)
	}
	if math.Abs(sig.PositionSize-expected*0.1) > 1e-9 {
		t.Errorf("Expected position size %f, got %f", expected*0.1, sig.PositionSize)
	}
	if math.Abs(sig.StopLoss-price*0.98) > 1e-9 {
		t.Errorf("Expected stop loss %f, got %f", price*0.98, sig.StopLoss)
	}
	if math.Abs(sig.TakeProfit-price*1.04) > 1e-9 {
		t.Errorf("Expected take profit %f, got %f", price*1.04, sig.TakeProfit)
	}
	if sig.ID == "" {
		t.Error("Signal should carry an ID")
	}
	for _, want := range []string{"Momentum: RSI oversold (25.0)", "Mean Reversion: ", "Volume: High volume (1.8x average)"} {
		if !strings.Contains(sig.Rationale, want) {
			t.Errorf("Rationale missing %q: %q", want, sig.Rationale)
		}
	}
}

func TestEvaluate_FusedSell(t *testing.T) {
	s := New(config.DefaultParameters())

	snap := neutralSnapshot()
	snap.RSI = 75
	snap.MACD = -1.0
	snap.MACDSignal = -0.5
	snap.MACDHist = -0.5
	snap.Momentum5 = -0.03
	snap.BBWidth = 0.15
	snap.EMAFast = 104
	snap.EMASlow = 105
	snap.VolumeRatio = 1.8

	price := 106.0
	sig := s.Evaluate("BTCUSDT", snap, price, time.Now())

	if sig.Direction != types.SignalSell {
		t.Fatalf("Expected SELL, got %s (%s)", sig.Direction, sig.Rationale)
	}
	if sig.StopLoss <= price {
		t.Errorf("Sell stop loss should sit above entry: %f vs %f", sig.StopLoss, price)
	}
	if sig.TakeProfit >= price {
		t.Errorf("Sell take profit should sit below entry: %f vs %f", sig.TakeProfit, price)
	}
}

func TestEvaluate_VolumeAloneCannotTrade(t *testing.T) {
	s := New(config.DefaultParameters())

	snap := neutralSnapshot()
	snap.VolumeRatio = 2.5

	sig := s.Evaluate("BTCUSDT", snap, 100, time.Now())

	if sig.Direction != types.SignalHold {
		t.Errorf("Volume boost without a leading side must not trade, got %s", sig.Direction)
	}
	if sig.Confidence != 0 {
		t.Errorf("Hold should carry zero confidence, got %f", sig.Confidence)
	}
}

func TestEvaluate_UndefinedSnapshotHolds(t *testing.T) {
	s := New(config.DefaultParameters())

	sig := s.Evaluate("BTCUSDT", undefinedSnapshot(), 100, time.Now())

	if sig.Direction != types.SignalHold {
		t.Errorf("Expected HOLD for undefined snapshot, got %s", sig.Direction)
	}
	if sig.Rationale != "No clear signals" {
		t.Errorf("Unexpected rationale: %q", sig.Rationale)
	}
	if sig.StopLoss != 0 || sig.TakeProfit != 0 {
		t.Errorf("Hold should carry no stops: %f/%f", sig.StopLoss, sig.TakeProfit)
	}
}

func TestAnalyze_InsufficientData(t *testing.T) {
	s := New(config.DefaultParameters())

	bars := make([]types.OHLCV, 10)
	if _, err := s.Analyze("BTCUSDT", bars); err == nil {
		t.Error("Expected error for insufficient data")
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	s := New(config.DefaultParameters())

	bars := make([]types.OHLCV, 60)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := range bars {
		price *= 1.01
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      price, High: price * 1.01, Low: price * 0.99, Close: price,
			Volume: 1000,
		}
	}

	first, err := s.Analyze("BTCUSDT", bars)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := s.Analyze("BTCUSDT", bars)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if first.Direction != second.Direction || first.Confidence != second.Confidence || first.Rationale != second.Rationale {
		t.Errorf("Analyze should be deterministic: %+v vs %+v", first, second)
	}
	if first.Timestamp != bars[len(bars)-1].Timestamp {
		t.Errorf("Signal timestamp should come from the last bar")
	}
}
