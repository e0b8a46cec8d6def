package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aawallet"

var (
	sessionAuthorizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_authorizations_total",
			Help:      "Session key authorizations by result.",
		},
		[]string{"result"},
	)
	recoveryTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_transitions_total",
			Help:      "Recovery requests entering a status.",
		},
		[]string{"status"},
	)
	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Relayed operations by status.",
		},
		[]string{"status"},
	)
	providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Latency of bundler and paymaster calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "method", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		sessionAuthorizations, recoveryTransitions, operations, providerLatency,
	)
}

// ObserveAuthorization counts a session key authorization. Result is either
// "allowed" or the denial reason.
func ObserveAuthorization(result string) {
	sessionAuthorizations.WithLabelValues(result).Inc()
}

// ObserveRecovery counts a recovery request entering status.
func ObserveRecovery(status string) {
	recoveryTransitions.WithLabelValues(status).Inc()
}

// ObserveOperation counts a relayed operation stored with status.
func ObserveOperation(status string) {
	operations.WithLabelValues(status).Inc()
}

// ObserveProviderCall records the duration of a provider call started at
// start.
func ObserveProviderCall(provider, method string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerLatency.WithLabelValues(provider, method, outcome).Observe(
		time.Since(start).Seconds(),
	)
}
