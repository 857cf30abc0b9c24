// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/ManuGH/evbus/internal/metrics"
	"github.com/ManuGH/evbus/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PublishSyncEvent delivers ev to every consumer subscribed to p's name whose
// filter accepts ev's type, one after the other on the calling goroutine and
// in subscription order. It returns once all of them have been invoked.
//
// The event must name p as its publisher and carry a type p declared. The set
// of consumers is fixed when the call starts: subscriptions added or removed
// while it runs, including by the consumers themselves, take effect from the
// next call.
//
// ctx is handed to consumers unchanged; the bus never cancels a delivery.
// Consumer failures do not interrupt delivery and are returned together as a
// *DeliveryError.
func (b *Bus) PublishSyncEvent(ctx context.Context, p Publisher, ev Event) error {
	if ctx == nil {
		b.reject(metrics.RejectInvalid)
		return fmt.Errorf("publish %s: nil context: %w", ev, ErrInvalidArgument)
	}
	if p == nil {
		b.reject(metrics.RejectInvalid)
		return fmt.Errorf("publish %s: nil publisher: %w", ev, ErrInvalidArgument)
	}
	name := p.PublisherName()
	if ev.PublisherName() != name {
		b.reject(metrics.RejectMismatch)
		return fmt.Errorf("publish %s from %q: %w", ev, name, ErrPublisherMismatch)
	}

	snapshot, err := b.snapshot(name, ev.Type())
	if err != nil {
		return err
	}

	b.published.Add(1)
	if b.metrics {
		metrics.IncPublished(name, ev.Type())
	}

	ctx, span := b.tracer.Start(ctx, "eventbus.publish",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(telemetry.EventAttributes(name, ev.Type(), ev.ID())...),
	)
	defer span.End()

	var failures []*ConsumerError
	attempted := 0
	for _, sub := range snapshot {
		if !sub.accepts(ev.Type()) {
			continue
		}
		attempted++
		if err := b.deliver(ctx, sub, ev); err != nil {
			failures = append(failures, &ConsumerError{
				Consumer:  sub.consumer,
				Publisher: name,
				EventType: ev.Type(),
				EventID:   ev.ID(),
				Err:       err,
			})
		}
	}

	b.delivered.Add(uint64(attempted))
	if b.metrics {
		metrics.AddDeliveries(name, attempted)
	}
	span.SetAttributes(telemetry.DeliveryAttributes(len(snapshot), attempted, len(failures))...)

	if len(failures) == 0 {
		return nil
	}

	derr := &DeliveryError{
		Publisher: name,
		EventType: ev.Type(),
		Attempted: attempted,
		Failures:  failures,
	}
	span.SetAttributes(telemetry.ErrorAttributes(derr, "delivery")...)
	span.RecordError(derr)
	span.SetStatus(codes.Error, "consumer delivery failed")
	return derr
}

// snapshot validates the event against the registration of name and copies
// its subscriber list under the read lock.
func (b *Bus) snapshot(name, eventType string) ([]*subscription, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.reject(metrics.RejectClosed)
		return nil, fmt.Errorf("publish %s/%s: %w", name, eventType, ErrClosed)
	}
	rec, ok := b.publishers[name]
	if !ok {
		b.reject(metrics.RejectUnknownPublisher)
		return nil, fmt.Errorf("publish %s/%s: %w", name, eventType, ErrUnknownPublisher)
	}
	if _, ok := rec.types[eventType]; !ok {
		b.reject(metrics.RejectUnknownEventType)
		return nil, fmt.Errorf("publish %s/%s: %w", name, eventType, ErrUnknownEventType)
	}
	return append([]*subscription(nil), b.subs[name]...), nil
}

func (b *Bus) reject(reason string) {
	b.rejected.Add(1)
	if b.metrics {
		metrics.IncPublishRejected(reason)
	}
}

// deliver invokes one consumer, converting a panic into a *PanicError.
func (b *Bus) deliver(ctx context.Context, sub *subscription, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
		if err != nil {
			b.recordFailure(ctx, sub, ev, err)
		}
	}()
	return sub.consumer.EventReceived(ctx, ev)
}

func (b *Bus) recordFailure(ctx context.Context, sub *subscription, ev Event, err error) {
	b.failed.Add(1)
	reason := metrics.ReasonError
	logEvent := b.logger.Warn()
	var perr *PanicError
	if errors.As(err, &perr) {
		b.panicked.Add(1)
		reason = metrics.ReasonPanic
		logEvent = b.logger.Error().Str("stack", perr.Stack)
	}
	if b.metrics {
		metrics.IncConsumerFailure(sub.publisher, reason)
	}
	if cid := xglog.CorrelationIDFromContext(ctx); cid != "" {
		logEvent = logEvent.Str(xglog.FieldCorrelationID, cid)
	}
	logEvent.
		Err(err).
		Str(xglog.FieldEvent, "eventbus.consumer_failed").
		Str(xglog.FieldPublisher, sub.publisher).
		Str(xglog.FieldEventType, ev.Type()).
		Str(xglog.FieldEventID, ev.ID()).
		Str(xglog.FieldConsumer, fmt.Sprintf("%T", sub.consumer)).
		Uint64(xglog.FieldSubscriptionID, sub.id).
		Str("reason", reason).
		Msg("consumer failed to handle event")
}
