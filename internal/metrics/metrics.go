package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request latency per route and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sunbird_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// BookingTransitions counts lifecycle transitions by event and outcome.
	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sunbird_booking_transitions_total",
		Help: "Booking lifecycle transitions",
	}, []string{"event", "outcome"})

	// GatewayCalls counts payment gateway operations by op and outcome.
	GatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sunbird_gateway_calls_total",
		Help: "Payment gateway calls",
	}, []string{"op", "outcome"})

	// PaymentDeclines counts authorize declines by mapped reason.
	PaymentDeclines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sunbird_payment_declines_total",
		Help: "Payment declines by mapped reason",
	}, []string{"reason"})
)
