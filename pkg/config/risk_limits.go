package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default account and risk limit values
const (
	DefaultInitialCapital = 1000.0
	DefaultRiskPerTrade   = 0.02
	DefaultMaxDailyLoss   = 0.05

	MaxConsecutiveLosses = 5
)

// RiskLimits holds account-level limits consumed by the risk assessor.
// All sizes are capital fractions, not percentages.
type RiskLimits struct {
	InitialCapital  float64 `json:"initial_capital"`
	MaxPositionSize float64 `json:"max_position_size"`
	RiskPerTrade    float64 `json:"risk_per_trade"`
	MaxDailyLoss    float64 `json:"max_daily_loss"`
}

// DefaultRiskLimits returns the reference limits.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		InitialCapital:  DefaultInitialCapital,
		MaxPositionSize: DefaultMaxPositionSize,
		RiskPerTrade:    DefaultRiskPerTrade,
		MaxDailyLoss:    DefaultMaxDailyLoss,
	}
}

// RiskLimitsFromEnv overlays environment variables onto the defaults.
// Call godotenv.Load first when a .env file should be honored.
func RiskLimitsFromEnv() RiskLimits {
	limits := DefaultRiskLimits()

	if v, ok := lookupFloat("INITIAL_CAPITAL"); ok {
		limits.InitialCapital = v
	}
	if v, ok := lookupFloat("MAX_POSITION_SIZE"); ok {
		limits.MaxPositionSize = v
	}
	if v, ok := lookupFloat("RISK_PER_TRADE"); ok {
		limits.RiskPerTrade = v
	}
	if v, ok := lookupFloat("MAX_DAILY_LOSS"); ok {
		limits.MaxDailyLoss = v
	}

	return limits
}

func lookupFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Validate performs basic sanity checks on the limits.
func (l RiskLimits) Validate() error {
	if l.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got: %.2f", l.InitialCapital)
	}
	if l.MaxPositionSize <= 0 || l.MaxPositionSize > 1 {
		return fmt.Errorf("max position size must be within (0, 1], got: %.4f", l.MaxPositionSize)
	}
	if l.RiskPerTrade <= 0 || l.RiskPerTrade > 1 {
		return fmt.Errorf("risk per trade must be within (0, 1], got: %.4f", l.RiskPerTrade)
	}
	if l.MaxDailyLoss <= 0 || l.MaxDailyLoss > 1 {
		return fmt.Errorf("max daily loss must be within (0, 1], got: %.4f", l.MaxDailyLoss)
	}
	return nil
}
