package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Disbursement outcomes
	// ============================================
	DisbursementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_disbursements_total",
			Help: "Total number of disbursement requests by terminal status",
		},
		[]string{"status"},
	)

	DisbursementStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "giveaway_disbursement_stage_duration_seconds",
			Help:    "Time spent in each disbursement stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	InclusionConfirmedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_inclusion_confirmed_total",
			Help: "Submitted transactions by whether inclusion was observed before the deadline",
		},
		[]string{"confirmed"},
	)

	// ============================================
	// Treasury monitoring
	// ============================================
	TreasuryNativeBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "giveaway_treasury_native_balance",
			Help: "Native coin balance of the treasury address, in ether units",
		},
		[]string{"chain", "address"},
	)

	TreasuryTokenBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "giveaway_treasury_token_balance",
			Help: "Remaining supply of the disbursed token held by the treasury",
		},
		[]string{"chain", "token_id"},
	)

	TreasuryMonitorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_treasury_monitor_errors_total",
			Help: "Total number of failed treasury balance refreshes",
		},
		[]string{"kind"},
	)

	// ============================================
	// NATS
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "giveaway_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_nats_publish_failed_total",
			Help: "Total number of disbursement events that could not be published",
		},
		[]string{"status"},
	)
)
