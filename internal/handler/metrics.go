package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fulfillment",
			Subsystem: "kafka_consumer",
			Name:      "tracking_events_processed_total",
			Help:      "Total number of successfully processed tracking events",
		},
	)

	eventsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fulfillment",
			Subsystem: "kafka_consumer",
			Name:      "tracking_events_failed_total",
			Help:      "Total number of failed tracking event processing attempts",
		},
	)

	eventsDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fulfillment",
			Subsystem: "kafka_consumer",
			Name:      "tracking_events_dlq_total",
			Help:      "Total number of tracking events written to DLQ",
		},
	)

	commitErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fulfillment",
			Subsystem: "kafka_consumer",
			Name:      "commit_errors_total",
			Help:      "Total number of Kafka commit errors",
		},
	)

	eventProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fulfillment",
			Subsystem: "kafka_consumer",
			Name:      "tracking_event_duration_seconds",
			Help:      "Histogram of tracking event processing durations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	eventsInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fulfillment",
			Subsystem: "kafka_consumer",
			Name:      "tracking_events_in_progress",
			Help:      "Number of tracking events currently being processed",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		eventsProcessed,
		eventsFailed,
		eventsDLQ,
		commitErrors,
		eventProcessingDuration,
		eventsInProgress,
	)
}
