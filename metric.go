package invkeeper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameSpace = "invkeeper"
)

var (
	txTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "tx_total",
			Help:      "terminal outcomes of coordinator actions",
		},
		[]string{"action", "status"},
	)
	txInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "tx_in_flight",
			Help:      "actions submitted and not yet settled",
		},
	)
	txDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricNameSpace,
			Name:      "tx_duration_seconds",
			Help:      "time from submission to terminal outcome",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"action"},
	)
	createdMissing = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "created_missing_total",
			Help:      "confirmed create transactions without a created object",
		},
	)
)

func init() {
	prometheus.MustRegister(
		txTotal,
		txInFlight,
		txDuration,
		createdMissing,
	)
}

func metricTxBegin() {
	txInFlight.Inc()
}

func metricTxEnd(action, status string, begin time.Time) {
	txInFlight.Dec()
	txTotal.WithLabelValues(action, status).Inc()
	txDuration.WithLabelValues(action).Observe(time.Since(begin).Seconds())
}

func metricCreatedMissing() {
	createdMissing.Inc()
}
