// Package metrics exposes Prometheus collectors for the detection pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics は検出処理のリクエスト数と処理時間を計測します。
type Metrics struct {
	detectRequests *prometheus.CounterVec
	detectDuration *prometheus.HistogramVec
}

// New はコレクタを既定のレジストリに登録してMetricsを返します。
func New() *Metrics {
	return &Metrics{
		detectRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "detect_requests_total",
			Help: "Total number of detection requests by media kind and status.",
		}, []string{"kind", "status"}),
		detectDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "detect_duration_seconds",
			Help:    "Detection processing time in seconds by media kind.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"kind"}),
	}
}

// ObserveDetection は1回の検出処理の結果と所要時間を記録します。
func (m *Metrics) ObserveDetection(kind, status string, seconds float64) {
	m.detectRequests.WithLabelValues(kind, status).Inc()
	if status == "ok" {
		m.detectDuration.WithLabelValues(kind).Observe(seconds)
	}
}
