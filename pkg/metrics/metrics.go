package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harness_transfers_total",
		Help: "The total number of transfers driven, by route and outcome",
	}, []string{"source_chain", "destination_chain", "outcome"})

	TimeToFulfill = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harness_time_to_fulfill_seconds",
		Help:    "Time from submission until the fulfilled status was observed",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // Start at 1s with 10 buckets doubling in size
	}, []string{"source_chain", "destination_chain"})

	TimeToSettle = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harness_time_to_settle_seconds",
		Help:    "Time from the fulfilled observation until settlement was observed",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"source_chain", "destination_chain"})

	TotalTransferTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harness_total_transfer_seconds",
		Help:    "Time from submission until settlement was observed",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"source_chain", "destination_chain"})

	PollAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harness_poll_attempts",
		Help:    "Status API queries needed per polling session",
		Buckets: prometheus.LinearBuckets(1, 5, 12),
	}, []string{"source_chain"})

	ApprovalsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harness_approvals_total",
		Help: "ERC20 approval transactions sent per chain",
	}, []string{"chain_id"})

	GasPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "harness_gas_price_gwei",
		Help: "Current gas price in gwei",
	}, []string{"chain_id"})

	TokenBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "harness_token_balance",
		Help: "Wallet token balance in whole token units",
	}, []string{"chain_id", "symbol"})

	CircuitBreakerOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "harness_circuit_breaker_open",
		Help: "1 when the chain's circuit breaker is open, 0 otherwise",
	}, []string{"chain_id"})
)
