// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/ManuGH/evbus/internal/metrics"
)

// toSet builds a set from names, rejecting blank entries. Duplicates collapse.
func toSet(names []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return nil, fmt.Errorf("blank event type: %w", ErrInvalidArgument)
		}
		set[n] = struct{}{}
	}
	return set, nil
}

// RegisterPublisher declares p and the event types it may emit. The name must
// be unique on this bus and eventTypes must be non-empty. Only the name is
// retained; later publish calls are matched by name.
func (b *Bus) RegisterPublisher(p Publisher, eventTypes []string) error {
	if p == nil {
		return fmt.Errorf("register publisher: nil publisher: %w", ErrInvalidArgument)
	}
	name := p.PublisherName()
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("register publisher: empty name: %w", ErrInvalidArgument)
	}
	if len(eventTypes) == 0 {
		return fmt.Errorf("register publisher %q: no event types: %w", name, ErrInvalidArgument)
	}
	types, err := toSet(eventTypes)
	if err != nil {
		return fmt.Errorf("register publisher %q: %w", name, err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("register publisher %q: %w", name, ErrClosed)
	}
	if _, exists := b.publishers[name]; exists {
		b.mu.Unlock()
		return fmt.Errorf("register publisher %q: %w", name, ErrDuplicatePublisher)
	}
	b.publishers[name] = &publisherRecord{name: name, types: types}
	waiting := len(b.subs[name])
	b.mu.Unlock()

	if b.metrics {
		metrics.RegisteredPublishers.Inc()
	}
	b.logger.Debug().
		Str(xglog.FieldEvent, "eventbus.publisher_registered").
		Str(xglog.FieldPublisher, name).
		Strs(xglog.FieldEventTypes, sortedKeys(types)).
		Int("waiting_subscriptions", waiting).
		Msg("publisher registered")
	return nil
}

// UnregisterPublisher removes the registration for p's name so that it can be
// registered again. Subscriptions against the name are kept and resolve again
// once a publisher re-registers under it. Returns ErrUnknownPublisher if the
// name is not registered.
func (b *Bus) UnregisterPublisher(p Publisher) error {
	if p == nil {
		return fmt.Errorf("unregister publisher: nil publisher: %w", ErrInvalidArgument)
	}
	name := p.PublisherName()

	b.mu.Lock()
	if _, exists := b.publishers[name]; !exists {
		b.mu.Unlock()
		return fmt.Errorf("unregister publisher %q: %w", name, ErrUnknownPublisher)
	}
	delete(b.publishers, name)
	b.mu.Unlock()

	if b.metrics {
		metrics.RegisteredPublishers.Dec()
	}
	b.logger.Debug().
		Str(xglog.FieldEvent, "eventbus.publisher_unregistered").
		Str(xglog.FieldPublisher, name).
		Msg("publisher unregistered")
	return nil
}

// RegisterConsumer subscribes c to the events of publisherName. With no
// eventTypes every event type is delivered; otherwise only the listed ones.
//
// The publisher does not need to be registered yet. If it is, every listed
// type must be one it declared, or the call fails with ErrUnknownEventType
// and any existing subscription is left untouched.
//
// Registering the same (c, publisherName) pair again replaces its filter; the
// subscription keeps its position in the delivery order.
func (b *Bus) RegisterConsumer(c Consumer, publisherName string, eventTypes ...string) error {
	if c == nil {
		return fmt.Errorf("register consumer: nil consumer: %w", ErrInvalidArgument)
	}
	if !identityComparable(c) {
		return fmt.Errorf("register consumer %T: consumer value is not comparable: %w", c, ErrInvalidArgument)
	}
	if strings.TrimSpace(publisherName) == "" {
		return fmt.Errorf("register consumer %T: empty publisher name: %w", c, ErrInvalidArgument)
	}

	var filter map[string]struct{}
	if len(eventTypes) > 0 {
		var err error
		if filter, err = toSet(eventTypes); err != nil {
			return fmt.Errorf("register consumer on %q: %w", publisherName, err)
		}
	}

	id, replaced, err := b.addSubscription(c, publisherName, filter)
	if err != nil {
		return err
	}

	if b.metrics && !replaced {
		metrics.ActiveSubscriptions.Inc()
	}
	ev := b.logger.Debug().
		Str(xglog.FieldEvent, "eventbus.consumer_registered").
		Str(xglog.FieldPublisher, publisherName).
		Str(xglog.FieldConsumer, fmt.Sprintf("%T", c)).
		Uint64(xglog.FieldSubscriptionID, id).
		Bool("replaced", replaced)
	if filter != nil {
		ev = ev.Strs(xglog.FieldEventTypes, sortedKeys(filter))
	}
	ev.Msg("consumer registered")
	return nil
}

// identityComparable reports whether c can be used as a subscription identity. It
// checks the dynamic value, so a struct whose interface field holds a slice
// is rejected even though its type is comparable.
func identityComparable(c Consumer) bool {
	return reflect.ValueOf(c).Comparable()
}

func (b *Bus) addSubscription(c Consumer, publisherName string, filter map[string]struct{}) (id uint64, replaced bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, false, fmt.Errorf("register consumer on %q: %w", publisherName, ErrClosed)
	}
	if rec, ok := b.publishers[publisherName]; ok && filter != nil {
		var unknown []string
		for t := range filter {
			if _, declared := rec.types[t]; !declared {
				unknown = append(unknown, t)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return 0, false, fmt.Errorf("register consumer on %q: %w: %s",
				publisherName, ErrUnknownEventType, strings.Join(unknown, ", "))
		}
	}

	list := b.subs[publisherName]
	for i, s := range list {
		if s.consumer == c {
			list[i] = &subscription{id: s.id, consumer: c, publisher: publisherName, filter: filter}
			return s.id, true, nil
		}
	}
	b.nextID++
	b.subs[publisherName] = append(list, &subscription{id: b.nextID, consumer: c, publisher: publisherName, filter: filter})
	return b.nextID, false, nil
}

// UnregisterConsumer removes the subscription of c to publisherName. It is a
// no-op if there is none.
func (b *Bus) UnregisterConsumer(c Consumer, publisherName string) {
	if c == nil || !identityComparable(c) {
		return
	}
	removed := func() int {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.removeLocked(c, publisherName)
	}()

	b.afterRemove(c, removed)
}

// UnregisterConsumerAll removes every subscription held by c.
func (b *Bus) UnregisterConsumerAll(c Consumer) {
	if c == nil || !identityComparable(c) {
		return
	}
	removed := func() int {
		b.mu.Lock()
		defer b.mu.Unlock()
		n := 0
		for name := range b.subs {
			n += b.removeLocked(c, name)
		}
		return n
	}()

	b.afterRemove(c, removed)
}

// removeLocked deletes c's subscription to name and reports how many were
// removed. Snapshots taken by running dispatches own their backing array, so
// editing the live slice in place is safe.
func (b *Bus) removeLocked(c Consumer, name string) int {
	list := b.subs[name]
	for i, s := range list {
		if s.consumer != c {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if len(list) == 0 {
			delete(b.subs, name)
		} else {
			b.subs[name] = list
		}
		return 1
	}
	return 0
}

func (b *Bus) afterRemove(c Consumer, removed int) {
	if removed == 0 {
		return
	}
	if b.metrics {
		metrics.ActiveSubscriptions.Sub(float64(removed))
	}
	b.logger.Debug().
		Str(xglog.FieldEvent, "eventbus.consumer_unregistered").
		Str(xglog.FieldConsumer, fmt.Sprintf("%T", c)).
		Int("removed", removed).
		Msg("consumer unregistered")
}
