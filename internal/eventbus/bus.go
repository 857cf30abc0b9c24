// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/ManuGH/evbus/internal/metrics"
	"github.com/ManuGH/evbus/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// publisherRecord is immutable once stored.
type publisherRecord struct {
	name  string
	types map[string]struct{}
}

// subscription is immutable once stored; a filter change stores a new value
// under the same id so that in-flight snapshots keep the old one.
type subscription struct {
	id        uint64
	consumer  Consumer
	publisher string
	filter    map[string]struct{} // nil means every event type
}

func (s *subscription) accepts(eventType string) bool {
	if s.filter == nil {
		return true
	}
	_, ok := s.filter[eventType]
	return ok
}

// Bus is a synchronous publish/subscribe registry. The zero value is not
// usable; create one with New. A Bus is safe for concurrent use.
type Bus struct {
	mu         sync.RWMutex
	closed     bool
	publishers map[string]*publisherRecord
	// subs holds subscriptions per publisher name in registration order.
	subs   map[string][]*subscription
	nextID uint64

	logger  zerolog.Logger
	tracer  trace.Tracer
	metrics bool

	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	rejected  atomic.Uint64
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		publishers: make(map[string]*publisherRecord),
		subs:       make(map[string][]*subscription),
		logger:     xglog.WithComponent("eventbus"),
		tracer:     telemetry.BusTracer(),
		metrics:    true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Close drops every publisher and subscription. Registration and publish
// calls made afterwards fail with ErrClosed; unregistration is a no-op.
// A dispatch already past its snapshot completes normally.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	pubs := len(b.publishers)
	subs := b.countSubsLocked()
	b.publishers = make(map[string]*publisherRecord)
	b.subs = make(map[string][]*subscription)
	b.mu.Unlock()

	if b.metrics {
		metrics.RegisteredPublishers.Sub(float64(pubs))
		metrics.ActiveSubscriptions.Sub(float64(subs))
	}
	b.logger.Debug().
		Str(xglog.FieldEvent, "eventbus.closed").
		Int("publishers", pubs).
		Int("subscriptions", subs).
		Msg("event bus closed")
}

func (b *Bus) countSubsLocked() int {
	n := 0
	for _, s := range b.subs {
		n += len(s)
	}
	return n
}

// Stats is a point-in-time view of the bus counters.
type Stats struct {
	Publishers       int    `json:"publishers"`
	Subscriptions    int    `json:"subscriptions"`
	EventsPublished  uint64 `json:"events_published"`
	Deliveries       uint64 `json:"deliveries"`
	ConsumerFailures uint64 `json:"consumer_failures"`
	ConsumerPanics   uint64 `json:"consumer_panics"`
	PublishRejected  uint64 `json:"publish_rejected"`
	Closed           bool   `json:"closed"`
}

// Stats returns current counters. Counters are read without a common lock
// and may be slightly inconsistent with each other under load.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	pubs := len(b.publishers)
	subs := b.countSubsLocked()
	closed := b.closed
	b.mu.RUnlock()

	return Stats{
		Publishers:       pubs,
		Subscriptions:    subs,
		EventsPublished:  b.published.Load(),
		Deliveries:       b.delivered.Load(),
		ConsumerFailures: b.failed.Load(),
		ConsumerPanics:   b.panicked.Load(),
		PublishRejected:  b.rejected.Load(),
		Closed:           closed,
	}
}

// PublisherInfo describes a registered publisher.
type PublisherInfo struct {
	Name       string   `json:"name"`
	EventTypes []string `json:"event_types"`
}

// Publishers lists the registered publishers sorted by name.
func (b *Bus) Publishers() []PublisherInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]PublisherInfo, 0, len(b.publishers))
	for _, rec := range b.publishers {
		out = append(out, PublisherInfo{Name: rec.name, EventTypes: sortedKeys(rec.types)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SubscriptionInfo describes one consumer subscription.
type SubscriptionInfo struct {
	ID        uint64 `json:"id"`
	Publisher string `json:"publisher"`
	Consumer  string `json:"consumer"`
	// EventTypes is nil when the subscription accepts every event type.
	EventTypes []string `json:"event_types"`
	// PublisherRegistered reports whether the publisher name currently resolves.
	PublisherRegistered bool `json:"publisher_registered"`
}

// Subscriptions lists every subscription, grouped by publisher name and in
// delivery order within a publisher.
func (b *Bus) Subscriptions() []SubscriptionInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.subs))
	for name := range b.subs {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []SubscriptionInfo
	for _, name := range names {
		_, registered := b.publishers[name]
		for _, s := range b.subs[name] {
			info := SubscriptionInfo{
				ID:                  s.id,
				Publisher:           name,
				Consumer:            fmt.Sprintf("%T", s.consumer),
				PublisherRegistered: registered,
			}
			if s.filter != nil {
				info.EventTypes = sortedKeys(s.filter)
			}
			out = append(out, info)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
