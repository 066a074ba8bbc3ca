package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thinkstruct",
			Name:      "search_duration_seconds",
			Help:      "Search operation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	indexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "thinkstruct",
			Name:      "index_build_duration_seconds",
			Help:      "TF-IDF index build duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	corpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "thinkstruct",
			Name:      "corpus_documents",
			Help:      "Number of patent documents in the active corpus snapshot",
		},
	)

	vocabularyTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "thinkstruct",
			Name:      "vocabulary_terms",
			Help:      "Number of terms in the fitted TF-IDF vocabulary",
		},
	)
)

// RegisterSearchMetrics registers the search and index metrics.
// Called explicitly from main (no init()) so tests importing this package
// do not pollute the default registry twice.
func RegisterSearchMetrics() {
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(indexBuildDuration)
	prometheus.MustRegister(corpusDocuments)
	prometheus.MustRegister(vocabularyTerms)
}

// ObserveSearch records one search operation of the given kind
// ("text", "similar", "hybrid").
func ObserveSearch(operation string, seconds float64) {
	searchDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveIndexBuild records an index rebuild and updates the snapshot gauges.
func ObserveIndexBuild(seconds float64, documents, vocabulary int) {
	indexBuildDuration.Observe(seconds)
	corpusDocuments.Set(float64(documents))
	vocabularyTerms.Set(float64(vocabulary))
}
