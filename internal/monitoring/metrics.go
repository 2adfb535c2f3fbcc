// Package monitoring exposes Prometheus metrics for the live engine.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Trading metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_bot_trades_total",
			Help: "Total number of trades executed",
		},
		[]string{"symbol", "side"},
	)

	signalConfidence = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strategy_bot_signal_confidence",
			Help: "Latest fused signal confidence per symbol",
		},
		[]string{"symbol"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strategy_bot_current_price",
			Help: "Current price of trading symbol",
		},
		[]string{"symbol"},
	)

	// Risk metrics
	riskScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strategy_bot_risk_score",
			Help: "Latest risk assessment score per symbol",
		},
		[]string{"symbol"},
	)

	portfolioEquity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strategy_bot_portfolio_equity",
			Help: "Current portfolio equity including unrealized P&L",
		},
	)

	// Engine metrics
	scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strategy_bot_scan_duration_seconds",
			Help:    "Duration of signal scan cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_bot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(signalConfidence)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(riskScore)
	prometheus.MustRegister(portfolioEquity)
	prometheus.MustRegister(scanDuration)
	prometheus.MustRegister(errorsTotal)
}

// Handler returns the Prometheus metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTrade records an executed trade
func RecordTrade(symbol, side string) {
	tradesTotal.WithLabelValues(symbol, side).Inc()
}

// UpdateSignalConfidence updates the fused confidence metric
func UpdateSignalConfidence(symbol string, confidence float64) {
	signalConfidence.WithLabelValues(symbol).Set(confidence)
}

// UpdatePrice updates the current price metric
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdateRiskScore updates the risk score metric
func UpdateRiskScore(symbol string, score float64) {
	riskScore.WithLabelValues(symbol).Set(score)
}

// UpdateEquity updates the portfolio equity metric
func UpdateEquity(equity float64) {
	portfolioEquity.Set(equity)
}

// ObserveScanDuration records the duration of one signal scan
func ObserveScanDuration(seconds float64) {
	scanDuration.Observe(seconds)
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
