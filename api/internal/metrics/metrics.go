package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Message submission metrics
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailrelay_api_messages_total",
			Help: "Total number of message submissions by outcome",
		},
		[]string{"status"},
	)

	MessageBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailrelay_api_message_bytes_total",
			Help: "Total bytes of message payloads accepted",
		},
	)

	EnqueueDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailrelay_api_enqueue_duration_seconds",
			Help:    "Duration of queue enqueue operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	EnqueueErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailrelay_api_enqueue_errors_total",
			Help: "Total number of queue enqueue failures",
		},
	)

	TokenFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailrelay_api_token_fetches_total",
			Help: "Total number of secret store fetches for the API token",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailrelay_api_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"client"},
	)
)
