// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Bus.
type Option func(*Bus)

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// WithTracer sets the tracer used for publish spans. The default is the
// global provider's "eventbus" tracer.
func WithTracer(t trace.Tracer) Option {
	return func(b *Bus) {
		if t != nil {
			b.tracer = t
		}
	}
}

// WithMetrics toggles the Prometheus collectors. Enabled by default.
func WithMetrics(enabled bool) Option {
	return func(b *Bus) {
		b.metrics = enabled
	}
}
