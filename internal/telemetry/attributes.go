// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by the bus and its host.
const (
	// Event attributes
	EventPublisherKey = "evbus.publisher"
	EventTypeKey      = "evbus.event_type"
	EventIDKey        = "evbus.event_id"

	// Delivery attributes
	DeliverySnapshotKey  = "evbus.delivery.snapshot"
	DeliveryAttemptedKey = "evbus.delivery.attempted"
	DeliveryFailedKey    = "evbus.delivery.failed"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// EventAttributes creates span attributes identifying a published event.
func EventAttributes(publisher, eventType, eventID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs,
		attribute.String(EventPublisherKey, publisher),
		attribute.String(EventTypeKey, eventType),
	)
	if eventID != "" {
		attrs = append(attrs, attribute.String(EventIDKey, eventID))
	}
	return attrs
}

// DeliveryAttributes creates span attributes summarising one dispatch.
func DeliveryAttributes(snapshot, attempted, failed int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(DeliverySnapshotKey, snapshot),
		attribute.Int(DeliveryAttemptedKey, attempted),
		attribute.Int(DeliveryFailedKey, failed),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(err error, errorType string) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
