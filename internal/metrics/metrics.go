// Package metrics holds the dashboard's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts series fetches by series name and result ("ok" or "error").
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prostatistics",
		Name:      "fetch_total",
		Help:      "Series fetches against the statistics API.",
	}, []string{"series", "result"})

	// FetchDuration observes the wall time of a single series fetch.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prostatistics",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of series fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"series"})

	// TableRows reports the row count of the table currently served.
	TableRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prostatistics",
		Name:      "table_rows",
		Help:      "Rows in the aligned table currently served.",
	})

	// ChartRenders counts chart renders by chart kind and output format.
	ChartRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prostatistics",
		Name:      "chart_renders_total",
		Help:      "Chart renders served.",
	}, []string{"chart", "format"})
)
