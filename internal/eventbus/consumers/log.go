// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package consumers provides ready-made eventbus consumers.
package consumers

import (
	"context"
	"sync/atomic"

	"github.com/ManuGH/evbus/internal/eventbus"
	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// LogConsumer writes one structured log line per received event.
type LogConsumer struct {
	logger     zerolog.Logger
	level      zerolog.Level
	limiter    *rate.Limiter
	suppressed atomic.Uint64
}

// NewLogConsumer returns a consumer logging at level through logger.
func NewLogConsumer(logger zerolog.Logger, level zerolog.Level) *LogConsumer {
	return &LogConsumer{logger: logger, level: level}
}

// WithRateLimit caps the consumer at perSecond lines with the given burst.
// Events over the limit are counted but not logged. Call before registering.
func (c *LogConsumer) WithRateLimit(perSecond float64, burst int) *LogConsumer {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// Suppressed returns how many events were dropped by the rate limit.
func (c *LogConsumer) Suppressed() uint64 {
	return c.suppressed.Load()
}

// EventReceived implements eventbus.Consumer.
func (c *LogConsumer) EventReceived(ctx context.Context, ev eventbus.Event) error {
	if c.limiter != nil && !c.limiter.Allow() {
		c.suppressed.Add(1)
		return nil
	}
	l := xglog.WithContext(ctx, c.logger)
	entry := l.WithLevel(c.level).
		Str(xglog.FieldEvent, "eventbus.event_received").
		Str(xglog.FieldPublisher, ev.PublisherName()).
		Str(xglog.FieldEventType, ev.Type()).
		Str(xglog.FieldEventID, ev.ID()).
		Time("event_time", ev.Time())
	if p := ev.Payload(); p != nil {
		entry = entry.Interface("payload", p)
	}
	entry.Msg("event received")
	return nil
}
