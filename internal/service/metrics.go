package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Subsystem: "checkout",
		Name:      "requests_total",
		Help:      "Checkout outcomes.",
	}, []string{"result"})

	orderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Subsystem: "lifecycle",
		Name:      "transitions_total",
		Help:      "Applied order and shipment transitions by kind.",
	}, []string{"kind"})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Subsystem: "notifications",
		Name:      "sent_total",
		Help:      "Notifications dispatched by transition kind.",
	}, []string{"kind"})

	notificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Subsystem: "notifications",
		Name:      "failures_total",
		Help:      "Notification dispatch failures (non-fatal).",
	})
)
