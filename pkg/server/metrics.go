package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds the Prometheus metrics for the server.
//
// Metrics exported:
//   - querysync_active_sessions: Gauge of connected sessions
//   - querysync_events_total: Counter of mutation events by op
//   - querysync_patches_sent_total: Counter of address patches sent
//   - querysync_decode_failures_total: Counter of dropped values by kind
//   - querysync_websocket_errors_total: Counter of WebSocket errors by type
type serverMetrics struct {
	activeSessions prometheus.Gauge
	eventsTotal    *prometheus.CounterVec
	patchesSent    prometheus.Counter
	decodeFailures *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec
}

var (
	globalMetrics     *serverMetrics
	globalMetricsOnce sync.Once
)

// initMetricsOnce registers the metrics with the default registry. Safe
// to call from every server constructor.
func initMetricsOnce() {
	globalMetricsOnce.Do(func() {
		globalMetrics = &serverMetrics{
			activeSessions: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: "querysync",
				Name:      "active_sessions",
				Help:      "Number of connected WebSocket sessions",
			}),

			eventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "querysync",
				Name:      "events_total",
				Help:      "Total mutation events processed, by operation",
			}, []string{"op"}),

			patchesSent: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "querysync",
				Name:      "patches_sent_total",
				Help:      "Total address patches sent to clients",
			}),

			decodeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "querysync",
				Name:      "decode_failures_total",
				Help:      "Total values dropped because the text did not parse, by kind",
			}, []string{"kind"}),

			wsErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "querysync",
				Name:      "websocket_errors_total",
				Help:      "Total WebSocket errors by type",
			}, []string{"type"}),
		}
	})
}

// RecordSessionOpen records a new session.
func RecordSessionOpen() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Inc()
	}
}

// RecordSessionClose records a session teardown.
func RecordSessionClose() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Dec()
	}
}

// RecordEvent records one processed mutation event.
func RecordEvent(op string) {
	if globalMetrics != nil {
		globalMetrics.eventsTotal.WithLabelValues(op).Inc()
	}
}

// RecordPatchesSent records address patches delivered to a client.
func RecordPatchesSent(count int) {
	if globalMetrics != nil {
		globalMetrics.patchesSent.Add(float64(count))
	}
}

// RecordDecodeFailure records a value dropped during decoding.
func RecordDecodeFailure(kind string) {
	if globalMetrics != nil {
		globalMetrics.decodeFailures.WithLabelValues(kind).Inc()
	}
}

// RecordWSError records a WebSocket error.
func RecordWSError(errorType string) {
	if globalMetrics != nil {
		globalMetrics.wsErrors.WithLabelValues(errorType).Inc()
	}
}
