// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the bus. Match them with errors.Is.
var (
	// ErrDuplicatePublisher is returned when a publisher name is already registered.
	ErrDuplicatePublisher = errors.New("publisher already registered")

	// ErrInvalidArgument is returned for empty names, empty or blank event type sets,
	// nil publishers or consumers and non-comparable consumers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownPublisher is returned when publishing under a name with no registration.
	ErrUnknownPublisher = errors.New("unknown publisher")

	// ErrUnknownEventType is returned when an event type was never declared by its publisher.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrPublisherMismatch is returned when an event names a different publisher than the caller.
	ErrPublisherMismatch = errors.New("event publisher does not match caller")

	// ErrClosed is returned by registration and publish calls after Close.
	ErrClosed = errors.New("event bus is closed")

	// ErrConsumerPanic matches a *PanicError.
	ErrConsumerPanic = errors.New("consumer panicked")
)

// PanicError carries a value recovered from a consumer.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("consumer panicked: %v", e.Value)
}

// Is allows errors.Is to match PanicError with ErrConsumerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrConsumerPanic
}

// ConsumerError describes one failed consumer invocation.
type ConsumerError struct {
	Consumer  Consumer
	Publisher string
	EventType string
	EventID   string
	Err       error
}

func (e *ConsumerError) Error() string {
	return fmt.Sprintf("consumer %T failed on %s/%s: %v", e.Consumer, e.Publisher, e.EventType, e.Err)
}

func (e *ConsumerError) Unwrap() error {
	return e.Err
}

// DeliveryError is returned by PublishSyncEvent when at least one consumer
// failed. Every consumer of the dispatch snapshot was attempted.
type DeliveryError struct {
	Publisher string
	EventType string
	Attempted int
	Failures  []*ConsumerError
}

func (e *DeliveryError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d of %d consumers failed for %s/%s: %s",
		len(e.Failures), e.Attempted, e.Publisher, e.EventType, strings.Join(msgs, "; "))
}

// Unwrap exposes every ConsumerError to errors.Is and errors.As.
func (e *DeliveryError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
