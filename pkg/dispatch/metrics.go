package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for dispatched work.
var (
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_dispatch_total",
		Help: "Total units of work dispatched by task name",
	}, []string{"task"})

	dispatchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_dispatch_outcomes_total",
		Help: "Dispatch outcomes by task name and outcome (success, failure, panic, dropped)",
	}, []string{"task", "outcome"})

	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tweeter_dispatch_duration_seconds",
		Help:    "Time spent running dispatched work by task name",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15},
	}, []string{"task"})

	dispatchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tweeter_dispatch_in_flight",
		Help: "Units of work currently running",
	})
)
