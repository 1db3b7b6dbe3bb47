package repository

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	repoOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "repository_operations_total", Help: "Count of repository operations by outcome"},
		[]string{"entity", "operation", "result"},
	)
	repoOpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_operation_duration_seconds",
			Help:    "Latency of repository operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity", "operation"},
	)
)

func init() { prometheus.MustRegister(repoOpsTotal, repoOpLatency) }

func observe(entity, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = KindOf(err).String()
	}
	repoOpsTotal.WithLabelValues(entity, op, result).Inc()
	repoOpLatency.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
}
