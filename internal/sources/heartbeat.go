// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/evbus/internal/eventbus"
	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/rs/zerolog"
)

// EventTick is the only event type emitted by Heartbeat.
const EventTick = "tick"

// TickPayload is the payload of a tick event.
type TickPayload struct {
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`
}

// Heartbeat publishes a tick event at a fixed interval.
type Heartbeat struct {
	name     string
	interval time.Duration
	bus      Bus
	logger   zerolog.Logger
	seq      uint64
}

// NewHeartbeat creates a heartbeat publisher. Call Register before Run.
func NewHeartbeat(bus Bus, name string, interval time.Duration) *Heartbeat {
	return &Heartbeat{
		name:     name,
		interval: interval,
		bus:      bus,
		logger:   xglog.WithComponent("heartbeat"),
	}
}

// PublisherName implements eventbus.Publisher.
func (h *Heartbeat) PublisherName() string { return h.name }

// Register declares the heartbeat on the bus.
func (h *Heartbeat) Register() error {
	if h.interval <= 0 {
		return fmt.Errorf("heartbeat %q: interval must be positive", h.name)
	}
	return h.bus.RegisterPublisher(h, []string{EventTick})
}

// Run publishes ticks until ctx is done or the bus is closed.
func (h *Heartbeat) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			h.seq++
			ev := eventbus.NewEvent(h.name, EventTick, TickPayload{Seq: h.seq, At: now.UTC()})
			if err := publish(ctx, h.bus, h, ev, h.logger); err != nil {
				if errors.Is(err, eventbus.ErrClosed) {
					return nil
				}
				return fmt.Errorf("heartbeat %q: %w", h.name, err)
			}
		}
	}
}
