package retrieval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchesTotal counts searches by mode (keyword, hybrid).
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codechat",
			Subsystem: "retrieval",
			Name:      "searches_total",
			Help:      "Total number of searches by ranking mode",
		},
		[]string{"mode"},
	)

	// searchDuration tracks how long searches take.
	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "codechat",
			Subsystem: "retrieval",
			Name:      "search_duration_seconds",
			Help:      "Duration of search operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
