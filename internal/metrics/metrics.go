package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchaseDuration tracks the latency of coupon purchases
	PurchaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "coupon_purchase_duration_seconds",
			Help: "Duration of coupon purchase transactions in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"status"}, // success, rejected or failed
	)

	// LoginAttempts counts logins by role and outcome
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_login_attempts_total",
			Help: "Number of login attempts",
		},
		[]string{"role", "outcome"}, // success, denied or error
	)

	// GateRejections counts requests refused by the access gate
	GateRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_gate_rejections_total",
			Help: "Number of requests rejected at the access gate",
		},
		[]string{"cause"},
	)

	// PurgedCoupons counts coupons removed by the expiry job
	PurgedCoupons = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coupon_purged_total",
			Help: "Number of expired coupons deleted",
		},
	)
)

// RecordPurchaseDuration records the duration of a purchase transaction
func RecordPurchaseDuration(status string, duration float64) {
	PurchaseDuration.WithLabelValues(status).Observe(duration)
}

// RecordLogin records a login attempt
func RecordLogin(role, outcome string) {
	LoginAttempts.WithLabelValues(role, outcome).Inc()
}

// RecordGateRejection records a request refused at the gate
func RecordGateRejection(cause string) {
	GateRejections.WithLabelValues(cause).Inc()
}

// RecordPurged records coupons removed by the expiry job
func RecordPurged(n int64) {
	if n > 0 {
		PurgedCoupons.Add(float64(n))
	}
}
