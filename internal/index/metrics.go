package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var runsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "codechat",
		Subsystem: "index",
		Name:      "runs_total",
		Help:      "Indexing runs by outcome.",
	},
	[]string{"result"},
)

var chunksIndexed = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "codechat",
		Subsystem: "index",
		Name:      "chunks",
		Help:      "Chunk count of the most recent indexing run.",
	},
)
