// Package metrics holds the process's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qw3"

var (
	Registry = prometheus.NewRegistry()

	signingAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signing_attempts_total",
		Help:      "Signing attempts by method and terminal state.",
	}, []string{"method", "state"})

	transferEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfer_events_total",
		Help:      "Transaction lifecycle events by kind.",
	}, []string{"kind"})

	refreshFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_failures_total",
		Help:      "Snapshot refreshes that fell back to a placeholder, by part.",
	}, []string{"part"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		signingAttempts,
		transferEvents,
		refreshFailures,
	)
}

func SigningAttempt(method, state string) {
	signingAttempts.WithLabelValues(method, state).Inc()
}

func TransferEvent(kind string) {
	transferEvents.WithLabelValues(kind).Inc()
}

func RefreshFailure(part string) {
	refreshFailures.WithLabelValues(part).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
