package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		verificationAttemptsTotal,
		verificationRateLimitedTotal,
		auditPublishFailuresTotal,
		verificationDuration,
	)
}

var (
	verificationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_attempts_total",
			Help: "Verification attempts by terminal outcome.",
		},
		[]string{"outcome"},
	)

	verificationRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_rate_limited_total",
			Help: "Times users hit the sliding-window attempt limit.",
		},
	)

	auditPublishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_publish_failures_total",
			Help: "Audit webhook deliveries that failed.",
		},
	)

	verificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verification_duration_seconds",
			Help:    "End-to-end duration of one verification attempt.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func IncVerification(outcome string) {
	verificationAttemptsTotal.WithLabelValues(outcome).Inc()
}

func IncRateLimited() {
	verificationRateLimitedTotal.Inc()
}

func IncAuditPublishFailure() {
	auditPublishFailuresTotal.Inc()
}

func ObserveVerificationDuration(seconds float64) {
	verificationDuration.Observe(seconds)
}
