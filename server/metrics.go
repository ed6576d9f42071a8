package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sapio_webhook_invocations_total",
		Help: "Total number of webhook invocations by endpoint and outcome.",
	}, []string{"endpoint", "passed"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sapio_webhook_invocation_duration_seconds",
		Help:    "Webhook invocation duration by endpoint.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
	}, []string{"endpoint"})
)

func observeInvocation(endpoint string, passed bool, took time.Duration) {
	invocationsTotal.WithLabelValues(endpoint, strconv.FormatBool(passed)).Inc()
	invocationDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}
