// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"
	"time"

	"github.com/ManuGH/evbus/internal/validate"
	"github.com/rs/zerolog"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil || cfg.LogLevel == "" {
		v.AddError("LogLevel", "unknown log level", cfg.LogLevel)
	}

	if cfg.Listen != "" {
		v.ListenAddr("Listen", cfg.Listen)
		v.Range("RateLimit.Requests", cfg.RateLimit.Requests, 1, 100000)
		v.MinDuration("RateLimit.Window", cfg.RateLimit.Window, time.Second)
	}

	if strings.TrimSpace(cfg.Watch.Dir) != "" {
		v.ExistingDirectory("Watch.Dir", cfg.Watch.Dir)
		v.NotEmpty("Watch.Publisher", cfg.Watch.Publisher)
	}

	if cfg.Heartbeat.Interval != 0 {
		v.MinDuration("Heartbeat.Interval", cfg.Heartbeat.Interval, 10*time.Millisecond)
		v.NotEmpty("Heartbeat.Publisher", cfg.Heartbeat.Publisher)
	}

	if cfg.Watch.Dir != "" && cfg.Heartbeat.Interval != 0 && cfg.Watch.Publisher == cfg.Heartbeat.Publisher {
		v.AddError("Heartbeat.Publisher", "must differ from Watch.Publisher", cfg.Heartbeat.Publisher)
	}

	v.Range("Recorder.Size", cfg.Recorder.Size, 1, 1<<20)

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Tracing.Endpoint", cfg.Tracing.Endpoint)
		v.FloatRange("Tracing.SamplingRate", cfg.Tracing.SamplingRate, 0, 1)
	}

	return v.Err()
}
