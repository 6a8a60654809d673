package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// lookup results as counted by lookupsTotal
const (
	resultSuccess = "success"
	resultInvalid = "invalid"
	resultError   = "error"
)

var (
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctiview_lookups_total",
			Help: "Threat lookups served by the API, by result",
		},
		[]string{"result"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctiview_exports_total",
			Help: "Reports exported through the API, by format",
		},
		[]string{"format"},
	)

	lookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ctiview_lookup_duration_seconds",
			Help:    "Time spent waiting on the threat backend",
			Buckets: prometheus.DefBuckets,
		},
	)
)
