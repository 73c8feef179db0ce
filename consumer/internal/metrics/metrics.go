package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailrelay_consumer_messages_received_total",
			Help: "Total number of messages received from the queue",
		},
	)

	MessagesStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailrelay_consumer_messages_stored_total",
			Help: "Total number of messages persisted to the object store",
		},
	)

	MessagesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailrelay_consumer_messages_failed_total",
			Help: "Total number of messages that failed processing",
		},
	)

	DeleteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailrelay_consumer_delete_errors_total",
			Help: "Total number of queue delete failures after persistence",
		},
	)

	StorageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailrelay_consumer_storage_duration_seconds",
			Help:    "Duration of object store writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mailrelay_consumer_cycle_duration_seconds",
			Help:    "Duration of one poll cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
