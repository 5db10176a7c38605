// Package metrics holds the Prometheus collectors updated by the fetcher and
// the traverser. Collectors live on a private registry so that a run can
// export them to a node_exporter textfile without an HTTP endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome label values.
const (
	OutcomeSuccess       = "success"
	OutcomeStatusError   = "status_error"
	OutcomeTooManyHops   = "too_many_redirects"
	OutcomeTransportFail = "transport_error"
)

// Metrics groups the collectors of one CLI run.
type Metrics struct {
	registry *prometheus.Registry

	// FetchRequests counts fetch calls by outcome.
	FetchRequests *prometheus.CounterVec

	// Redirects counts followed 3xx responses.
	Redirects prometheus.Counter

	// Inflated counts bodies that were gunzipped because of a .gz path.
	Inflated prometheus.Counter

	// FetchDuration observes the wall time of each fetch call.
	FetchDuration prometheus.Histogram

	// Documents counts parsed sitemap documents by kind (listing, index).
	Documents *prometheus.CounterVec

	// Entries counts entries accepted into results.
	Entries prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemaps_fetch_requests_total",
				Help: "Total number of sitemap fetch calls by outcome.",
			},
			[]string{"outcome"},
		),
		Redirects: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitemaps_redirects_total",
			Help: "Total number of HTTP redirects followed.",
		}),
		Inflated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitemaps_inflated_total",
			Help: "Total number of .gz bodies decompressed without a Content-Encoding header.",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitemaps_fetch_duration_seconds",
			Help:    "Duration of sitemap fetch calls including redirects.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemaps_documents_total",
				Help: "Total number of sitemap documents parsed by kind.",
			},
			[]string{"kind"},
		),
		Entries: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitemaps_entries_total",
			Help: "Total number of entries accepted into traversal results.",
		}),
	}
}

// Gatherer exposes the registry for export or inspection.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
