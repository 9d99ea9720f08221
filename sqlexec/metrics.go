package sqlexec

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "sql",
		Name:      "queries_total",
		Help:      "Statements sent to the query proxy, by database and outcome.",
	}, []string{"database", "status"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "console",
		Subsystem: "sql",
		Name:      "query_duration_seconds",
		Help:      "Round-trip latency of query proxy calls.",
		Buckets: []float64{
			0.005, 0.01, 0.025, 0.05,
			0.1, 0.25, 0.5,
			1, 2.5, 5, 10,
		},
	}, []string{"database"})

	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "masterdata",
		Name:      "imports_total",
		Help:      "Master-data import calls, by outcome.",
	}, []string{"status"})
)
