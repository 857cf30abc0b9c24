// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for evbusd.
package config

import "time"

// AppConfig is the fully resolved daemon configuration.
type AppConfig struct {
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	// Listen is the address of the debug HTTP surface; empty disables it.
	Listen    string          `yaml:"listen"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`

	Watch     WatchConfig     `yaml:"watch"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Recorder  RecorderConfig  `yaml:"recorder"`
	Tracing   TracingConfig   `yaml:"tracing"`

	Version string `yaml:"-"`
}

// RateLimitConfig bounds requests to the debug HTTP surface per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// WatchConfig configures the filesystem publisher. An empty Dir disables it.
type WatchConfig struct {
	Dir       string `yaml:"dir"`
	Publisher string `yaml:"publisher"`
}

// HeartbeatConfig configures the heartbeat publisher. A zero Interval disables it.
type HeartbeatConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Publisher string        `yaml:"publisher"`
}

// RecorderConfig sizes the recent-event ring.
type RecorderConfig struct {
	Size int `yaml:"size"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "evbusd",
		Listen:     ":8089",
		RateLimit: RateLimitConfig{
			Requests: 60,
			Window:   time.Minute,
		},
		Watch: WatchConfig{
			Publisher: "fswatch",
		},
		Heartbeat: HeartbeatConfig{
			Interval:  30 * time.Second,
			Publisher: "heartbeat",
		},
		Recorder: RecorderConfig{
			Size: 256,
		},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "development",
		},
	}
}
