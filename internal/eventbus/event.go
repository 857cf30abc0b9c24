// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Publisher is a named source of events.
type Publisher interface {
	PublisherName() string
}

// NamedPublisher is the simplest Publisher: its value is its name.
type NamedPublisher string

// PublisherName implements Publisher.
func (n NamedPublisher) PublisherName() string {
	return string(n)
}

// Consumer receives the events it subscribed to. EventReceived runs on the
// publishing goroutine; a consumer that wants asynchronous processing must
// hand the event off before returning.
//
// The bus identifies a consumer by ==. Registration rejects a consumer whose
// dynamic value cannot be compared, such as a func or slice type, or a struct
// whose interface field holds one, with ErrInvalidArgument.
type Consumer interface {
	EventReceived(ctx context.Context, ev Event) error
}

// ConsumerFunc is the signature adapted by NewConsumerFunc.
type ConsumerFunc func(ctx context.Context, ev Event) error

type funcConsumer struct {
	fn ConsumerFunc
}

func (f *funcConsumer) EventReceived(ctx context.Context, ev Event) error {
	return f.fn(ctx, ev)
}

// NewConsumerFunc wraps fn into a Consumer with a stable identity. Keep the
// returned value to unregister it later.
func NewConsumerFunc(fn ConsumerFunc) Consumer {
	return &funcConsumer{fn: fn}
}

// Event is an immutable notification emitted by a publisher.
type Event struct {
	id        string
	publisher string
	eventType string
	payload   any
	time      time.Time
}

// NewEvent creates an event of eventType on behalf of publisherName. The
// payload is opaque to the bus and may be nil.
func NewEvent(publisherName, eventType string, payload any) Event {
	return Event{
		id:        uuid.NewString(),
		publisher: publisherName,
		eventType: eventType,
		payload:   payload,
		time:      time.Now().UTC(),
	}
}

// ID is a random identifier used to correlate logs and traces.
func (e Event) ID() string { return e.id }

// PublisherName returns the name of the publisher that produced the event.
func (e Event) PublisherName() string { return e.publisher }

// Type returns the event type name.
func (e Event) Type() string { return e.eventType }

// Payload returns the opaque payload, or nil.
func (e Event) Payload() any { return e.payload }

// Time returns the creation time of the event.
func (e Event) Time() time.Time { return e.time }

// String returns "publisher/type".
func (e Event) String() string {
	return e.publisher + "/" + e.eventType
}
