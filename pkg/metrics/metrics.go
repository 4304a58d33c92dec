// Package metrics exposes the Prometheus instrumentation for ingestion and
// provider calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReadingsIngested counts stored readings, labeled by how they arrived
	// (http or mqtt).
	ReadingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeclima_readings_ingested_total",
			Help: "Readings accepted and written to storage, by source.",
		},
		[]string{"source"},
	)

	// ReadingsRejected counts payloads dropped by the ingestion validator.
	ReadingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeclima_readings_rejected_total",
			Help: "Ingestion payloads rejected by validation, by source.",
		},
		[]string{"source"},
	)

	// ProviderFailures counts failed calls to external data providers.
	ProviderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeclima_provider_failures_total",
			Help: "Failed sun/forecast provider requests, by provider.",
		},
		[]string{"provider"},
	)
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
