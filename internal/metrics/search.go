package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacklens",
			Name:      "searches_total",
			Help:      "Total number of searches executed",
		},
		[]string{"kind"}, // "unfiltered" / "structured" / "text" / "combined"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stacklens",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	TextIndexBuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stacklens",
			Name:      "text_index_builds_total",
			Help:      "Total number of text index builds",
		},
	)

	TextIndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stacklens",
			Name:      "text_index_documents",
			Help:      "Documents held by the text index",
		},
	)

	LookupCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacklens",
			Name:      "lookup_cache_total",
			Help:      "Lookup menu cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ParserRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacklens",
			Name:      "parser_requests_total",
			Help:      "Total number of natural-language parser requests",
		},
		[]string{"status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(TextIndexBuildsTotal)
	prometheus.MustRegister(TextIndexDocuments)
	prometheus.MustRegister(LookupCacheTotal)
	prometheus.MustRegister(ParserRequestsTotal)
	searchMetricsRegistered = true
}
