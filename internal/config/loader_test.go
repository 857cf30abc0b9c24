// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/evbus/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := Defaults()
	want.Version = "v1.2.3"
	assert.Equal(t, want, cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	watchDir := t.TempDir()
	path := writeConfig(t, "config.yaml", `
logLevel: debug
listen: "127.0.0.1:9090"
watch:
  dir: `+watchDir+`
heartbeat:
  interval: 5s
recorder:
  size: 16
`)

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9090", cfg.Listen)
	assert.Equal(t, watchDir, cfg.Watch.Dir)
	assert.Equal(t, "fswatch", cfg.Watch.Publisher, "unset nested fields keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Heartbeat.Interval)
	assert.Equal(t, 16, cfg.Recorder.Size)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.yml", "logLevel: debug\nheartbeat:\n  interval: 5s\n")
	t.Setenv("EVBUS_LOG_LEVEL", "warn")
	t.Setenv("EVBUS_HEARTBEAT", "250ms")
	t.Setenv("EVBUS_TRACING_SAMPLING_RATE", "0.5")

	l := NewLoader(path, "")
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.Heartbeat.Interval)
	assert.Equal(t, 0.5, cfg.Tracing.SamplingRate)
	assert.Contains(t, l.ConsumedEnvKeys, "EVBUS_HEARTBEAT")
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "config.yaml", "logLevel: info\nlegacyBus: true\n")
	_, err := NewLoader(path, "").Load()
	require.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "config.yaml", "logLevel: info\n---\nlogLevel: debug\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadRejectsNonYAML(t *testing.T) {
	path := writeConfig(t, "config.json", "{}")
	_, err := NewLoader(path, "").Load()
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "")
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Listen, cfg.Listen)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Listen = "nope"
	cfg.Watch.Dir = filepath.Join(t.TempDir(), "missing")
	cfg.Heartbeat.Interval = time.Millisecond
	cfg.Recorder.Size = 0
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "zipkin"

	err := Validate(cfg)
	require.Error(t, err)

	var verr validate.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]bool{}
	for _, e := range verr.Errors() {
		fields[e.Field] = true
	}
	for _, f := range []string{"LogLevel", "Listen", "Watch.Dir", "Heartbeat.Interval", "Recorder.Size", "Tracing.Exporter"} {
		assert.True(t, fields[f], "expected error for %s", f)
	}
}

func TestValidateRejectsSharedPublisherName(t *testing.T) {
	cfg := Defaults()
	cfg.Watch.Dir = t.TempDir()
	cfg.Watch.Publisher = "same"
	cfg.Heartbeat.Publisher = "same"
	require.Error(t, Validate(cfg))
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Defaults()
	cfg.Heartbeat.Interval = 2 * time.Second
	cfg.Version = "ignored"

	require.NoError(t, WriteFile(path, cfg))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	cfg.Version = ""
	assert.Equal(t, cfg, loaded)
}
