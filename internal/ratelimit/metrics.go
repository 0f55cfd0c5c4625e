package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fulfillment",
	Subsystem: "ratelimit",
	Name:      "decisions_total",
	Help:      "Rate limiter decisions by action.",
}, []string{"action", "decision"})
