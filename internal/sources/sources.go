// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sources contains publishers that turn external signals into bus events.
package sources

import (
	"context"
	"errors"

	"github.com/ManuGH/evbus/internal/eventbus"
	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/rs/zerolog"
)

// Bus is the part of *eventbus.Bus a source needs.
type Bus interface {
	RegisterPublisher(p eventbus.Publisher, eventTypes []string) error
	PublishSyncEvent(ctx context.Context, p eventbus.Publisher, ev eventbus.Event) error
}

// publish sends ev and decides whether the source should keep running.
// Consumer failures are logged and ignored; a closed bus stops the source.
func publish(ctx context.Context, bus Bus, p eventbus.Publisher, ev eventbus.Event, logger zerolog.Logger) error {
	err := bus.PublishSyncEvent(ctx, p, ev)
	if err == nil {
		return nil
	}
	var derr *eventbus.DeliveryError
	if errors.As(err, &derr) {
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "source.delivery_failed").
			Str(xglog.FieldPublisher, ev.PublisherName()).
			Str(xglog.FieldEventType, ev.Type()).
			Int(xglog.FieldFailed, len(derr.Failures)).
			Msg("some consumers failed")
		return nil
	}
	return err
}
