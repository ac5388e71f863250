package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ContentWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "content_writes_total", Help: "Content document writes by kind and result."},
		[]string{"kind", "result"},
	)
	AssetUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "asset_uploads_total", Help: "Asset uploads by slot and result."},
		[]string{"slot", "result"},
	)
	// AssetCleanupFailures counts old assets that could not be deleted during a replace.
	AssetCleanupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "asset_cleanup_failures_total", Help: "Old assets left behind because the store delete failed."},
		[]string{"slot"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "login_attempts_total", Help: "Admin login attempts by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ContentWrites)
	reg.MustRegister(AssetUploads)
	reg.MustRegister(AssetCleanupFailures)
	reg.MustRegister(LoginAttempts)
}
