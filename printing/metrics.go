package printing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floor",
		Subsystem: "printing",
		Name:      "jobs_total",
		Help:      "Print jobs by category and outcome.",
	}, []string{"category", "status"})

	jobDurationMS = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "floor",
		Subsystem: "printing",
		Name:      "job_duration_ms",
		Help:      "Print job latency in milliseconds, retries included.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"category"})

	connectAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floor",
		Subsystem: "printing",
		Name:      "connect_attempts_total",
		Help:      "Printer connection attempts by result.",
	}, []string{"result"})
)
