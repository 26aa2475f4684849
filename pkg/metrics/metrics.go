// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// mode: sync, stream
	ChatsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_chats_created_total",
			Help: "Chats persisted, by generation mode",
		},
		[]string{"mode"},
	)

	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatbot_streams_active",
			Help: "Streaming generations currently running",
		},
	)

	// outcome: completed, failed, cancelled
	StreamOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_stream_outcomes_total",
			Help: "Finished streaming generations by outcome",
		},
		[]string{"outcome"},
	)

	FeedbackCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_feedback_created_total",
			Help: "Feedback rows created by polarity",
		},
		[]string{"polarity"},
	)

	ActivityLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_activity_logged_total",
			Help: "Activity log rows written by type",
		},
		[]string{"type"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
