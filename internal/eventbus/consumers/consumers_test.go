// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package consumers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ManuGH/evbus/internal/eventbus"
	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsMostRecentEvents(t *testing.T) {
	r := NewRecorder(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, r.EventReceived(context.Background(), eventbus.NewEvent("p", fmt.Sprintf("t%d", i), i)))
	}

	got := r.Recent()
	require.Len(t, got, 3)
	assert.Equal(t, "t2", got[0].Type)
	assert.Equal(t, "t3", got[1].Type)
	assert.Equal(t, "t4", got[2].Type)
	assert.Equal(t, 4, got[2].Payload)
	assert.Equal(t, uint64(5), r.Total())
}

func TestRecorderPartiallyFilled(t *testing.T) {
	r := NewRecorder(0)
	assert.Empty(t, r.Recent())

	require.NoError(t, r.EventReceived(context.Background(), eventbus.NewEvent("p", "only", nil)))
	got := r.Recent()
	require.Len(t, got, 1)
	assert.Equal(t, "p", got[0].Publisher)
	assert.Len(t, r.ring, DefaultRecorderSize)
}

func TestRecorderAsBusConsumer(t *testing.T) {
	bus := eventbus.New(eventbus.WithLogger(zerolog.Nop()), eventbus.WithMetrics(false))
	t.Cleanup(bus.Close)

	pub := eventbus.NamedPublisher("Pub1")
	r := NewRecorder(8)
	require.NoError(t, bus.RegisterPublisher(pub, []string{"Event1", "Event2"}))
	require.NoError(t, bus.RegisterConsumer(r, "Pub1", "Event2"))

	require.NoError(t, bus.PublishSyncEvent(context.Background(), pub, eventbus.NewEvent("Pub1", "Event1", nil)))
	require.NoError(t, bus.PublishSyncEvent(context.Background(), pub, eventbus.NewEvent("Pub1", "Event2", nil)))

	got := r.Recent()
	require.Len(t, got, 1)
	assert.Equal(t, "Event2", got[0].Type)
}

func TestLogConsumerWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewLogConsumer(zerolog.New(&buf), zerolog.InfoLevel)

	ev := eventbus.NewEvent("fswatch", "create", map[string]string{"path": "/tmp/x"})
	ctx := xglog.ContextWithCorrelationID(context.Background(), "corr-7")
	require.NoError(t, c.EventReceived(ctx, ev))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fswatch", entry[xglog.FieldPublisher])
	assert.Equal(t, "create", entry[xglog.FieldEventType])
	assert.Equal(t, ev.ID(), entry[xglog.FieldEventID])
	assert.Equal(t, "corr-7", entry[xglog.FieldCorrelationID])
	assert.Equal(t, map[string]any{"path": "/tmp/x"}, entry["payload"])
}

func TestLogConsumerRateLimit(t *testing.T) {
	var buf bytes.Buffer
	c := NewLogConsumer(zerolog.New(&buf), zerolog.InfoLevel).WithRateLimit(0.001, 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.EventReceived(context.Background(), eventbus.NewEvent("heartbeat", "tick", i)))
	}

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 2, lines)
	assert.Equal(t, uint64(3), c.Suppressed())
}

func TestRecorderLastFrom(t *testing.T) {
	r := NewRecorder(3)
	assert.True(t, r.LastFrom("a").IsZero())

	evs := []eventbus.Event{
		eventbus.NewEvent("a", "x", nil),
		eventbus.NewEvent("b", "x", nil),
		eventbus.NewEvent("a", "y", nil),
		eventbus.NewEvent("b", "y", nil),
	}
	for _, ev := range evs {
		require.NoError(t, r.EventReceived(context.Background(), ev))
	}

	assert.Equal(t, evs[2].Time(), r.LastFrom("a"))
	assert.Equal(t, evs[3].Time(), r.LastFrom("b"))
	assert.True(t, r.LastFrom("c").IsZero())
}

func TestRecorderLastFromSurvivesRingOverflow(t *testing.T) {
	r := NewRecorder(4)
	tick := eventbus.NewEvent("heartbeat", "tick", nil)
	require.NoError(t, r.EventReceived(context.Background(), tick))

	for i := 0; i < 10; i++ {
		require.NoError(t, r.EventReceived(context.Background(), eventbus.NewEvent("fswatch", "write", i)))
	}

	for _, ev := range r.Recent() {
		require.Equal(t, "fswatch", ev.Publisher)
	}
	assert.Equal(t, tick.Time(), r.LastFrom("heartbeat"))
}
