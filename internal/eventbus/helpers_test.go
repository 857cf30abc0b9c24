// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/ManuGH/evbus/internal/eventbus"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
)

type recordingConsumer struct {
	mu      sync.Mutex
	events  []eventbus.Event
	onEvent func(ev eventbus.Event) error
}

func (c *recordingConsumer) EventReceived(_ context.Context, ev eventbus.Event) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	if c.onEvent != nil {
		return c.onEvent(ev)
	}
	return nil
}

func (c *recordingConsumer) Events() []eventbus.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]eventbus.Event(nil), c.events...)
}

func newTestBus(t *testing.T, opts ...eventbus.Option) *eventbus.Bus {
	t.Helper()
	opts = append([]eventbus.Option{eventbus.WithLogger(zerolog.New(io.Discard))}, opts...)
	b := eventbus.New(opts...)
	t.Cleanup(b.Close)
	return b
}

func assertEvents(t *testing.T, want, got []eventbus.Event) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(eventbus.Event{}), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("received events mismatch (-want +got):\n%s", diff)
	}
}

var threeTypes = []string{"Event1", "Event2", "Event3"}
