package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var completionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "codechat",
		Subsystem: "llm",
		Name:      "completions_total",
		Help:      "Completion calls by outcome.",
	},
	[]string{"result"},
)

var completionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "codechat",
		Subsystem: "llm",
		Name:      "completion_duration_seconds",
		Help:      "Completion call latency.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	},
)
