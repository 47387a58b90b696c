package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quartermaster_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RequestReviewsTotal counts review attempts by requested status and outcome.
	RequestReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quartermaster_request_reviews_total",
		Help: "Total number of request review attempts by status and outcome",
	}, []string{"status", "outcome"})

	// RequestsCreatedTotal counts submitted resource requests.
	RequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quartermaster_requests_created_total",
		Help: "Total number of resource requests submitted",
	})

	// StockDebitedTotal counts units removed from stock by approvals.
	StockDebitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quartermaster_stock_debited_units_total",
		Help: "Total number of resource units debited by approvals",
	})

	// ReviewLatency records how long the review transaction takes.
	ReviewLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quartermaster_review_latency_seconds",
		Help:    "Latency of the request review transaction in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	// WebSocketConnectionsTotal is the gauge of open notification sockets.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quartermaster_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quartermaster_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// RecordReview records the outcome of a review attempt.
func RecordReview(status, outcome string) {
	RequestReviewsTotal.WithLabelValues(status, outcome).Inc()
}
