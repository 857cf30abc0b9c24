// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService       = "service"
	FieldVersion       = "version"
	FieldComponent     = "component"
	FieldCorrelationID = "correlation_id"
	FieldRequestID     = "request_id"

	// Bus fields
	FieldEvent          = "event"
	FieldPublisher      = "publisher"
	FieldEventType      = "event_type"
	FieldEventID        = "event_id"
	FieldConsumer       = "consumer"
	FieldSubscriptionID = "subscription_id"
	FieldEventTypes     = "event_types"

	// Delivery fields
	FieldAttempted = "attempted"
	FieldFailed    = "failed"

	// Path fields
	FieldPath = "path"
)
