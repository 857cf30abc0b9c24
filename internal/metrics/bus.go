// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors of the event bus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons used as the "reason" label of ConsumerFailuresTotal.
const (
	ReasonError = "error"
	ReasonPanic = "panic"
)

// Rejection reasons used as the "reason" label of PublishRejectedTotal.
const (
	RejectUnknownPublisher = "unknown_publisher"
	RejectUnknownEventType = "unknown_event_type"
	RejectMismatch         = "publisher_mismatch"
	RejectClosed           = "closed"
	RejectInvalid          = "invalid"
)

var (
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evbus_events_published_total",
		Help: "Total number of events accepted for synchronous dispatch",
	}, []string{"publisher", "type"})

	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evbus_deliveries_total",
		Help: "Total number of consumer invocations by publisher",
	}, []string{"publisher"})

	ConsumerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evbus_consumer_failures_total",
		Help: "Total number of consumer invocations that returned an error or panicked",
	}, []string{"publisher", "reason"})

	PublishRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evbus_publish_rejected_total",
		Help: "Total number of publish calls rejected before dispatch",
	}, []string{"reason"})

	RegisteredPublishers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evbus_registered_publishers",
		Help: "Number of publishers currently registered across all buses",
	})

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evbus_active_subscriptions",
		Help: "Number of consumer subscriptions currently held across all buses",
	})
)

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// IncPublished records an event accepted for dispatch.
func IncPublished(publisher, eventType string) {
	EventsPublishedTotal.WithLabelValues(orUnknown(publisher), orUnknown(eventType)).Inc()
}

// AddDeliveries records n consumer invocations for publisher.
func AddDeliveries(publisher string, n int) {
	if n <= 0 {
		return
	}
	DeliveriesTotal.WithLabelValues(orUnknown(publisher)).Add(float64(n))
}

// IncConsumerFailure records a failed consumer invocation with a concrete reason.
func IncConsumerFailure(publisher, reason string) {
	ConsumerFailuresTotal.WithLabelValues(orUnknown(publisher), orUnknown(reason)).Inc()
}

// IncPublishRejected records a publish call refused before dispatch.
func IncPublishRejected(reason string) {
	PublishRejectedTotal.WithLabelValues(orUnknown(reason)).Inc()
}
