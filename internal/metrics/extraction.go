package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vision extraction and matching Prometheus metrics.
var (
	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refscan",
			Name:      "extraction_requests_total",
			Help:      "Total number of vision extraction requests",
		},
		[]string{"provider", "model", "status"},
	)

	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "refscan",
			Name:      "extraction_request_duration_seconds",
			Help:      "Vision extraction request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "model"},
	)

	ExtractionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refscan",
			Name:      "extraction_errors_total",
			Help:      "Total vision extraction errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	MatchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refscan",
			Name:      "match_results_total",
			Help:      "Test name match outcomes by kind",
		},
		[]string{"kind"}, // exact-code / exact-alias / fuzzy / none
	)

	CatalogSnapshotEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "refscan",
			Name:      "catalog_snapshot_entries",
			Help:      "Entries in the serving catalog snapshot",
		},
		[]string{"tenant"},
	)

	CatalogRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refscan",
			Name:      "catalog_refresh_total",
			Help:      "Catalog snapshot refresh attempts",
		},
		[]string{"tenant", "status"}, // "ok" / "error"
	)
)

var extractionMetricsRegistered bool

// RegisterExtractionMetrics registers the extraction and catalog metrics.
// Must be called once from main.
func RegisterExtractionMetrics() {
	if extractionMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ExtractionRequestDuration)
	prometheus.MustRegister(ExtractionErrorsTotal)
	prometheus.MustRegister(MatchResultsTotal)
	prometheus.MustRegister(CatalogSnapshotEntries)
	prometheus.MustRegister(CatalogRefreshTotal)
	extractionMetricsRegistered = true
}
