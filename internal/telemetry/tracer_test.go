// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Enabled:      false,
		ServiceName:  "test-service",
		ExporterType: "grpc",
	})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)
	assert.NoError(t, provider.Shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording(), "noop tracer span should not record")
	span.End()
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "test-service",
		ExporterType: "invalid",
	})
	require.Error(t, err)
	assert.Equal(t, "unsupported exporter type: invalid (supported: grpc, http)", err.Error())
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1.5).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
	assert.Contains(t, samplerFor(0.25).Description(), "ParentBased")
}

func TestNewProvider_ExportsBusSpansWithResource(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	exp := tracetest.NewInMemoryExporter()
	provider, err := NewProvider(context.Background(), Config{
		Enabled:        true,
		ServiceVersion: "v0.1.0",
		SamplingRate:   1,
		Publishers:     []string{"heartbeat", "fswatch"},
		Exporter:       exp,
	})
	require.NoError(t, err)

	_, span := BusTracer().Start(context.Background(), "eventbus.publish")
	span.End()
	require.NoError(t, provider.ForceFlush(context.Background()))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, BusTracerName, spans[0].InstrumentationScope.Name)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Resource.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "evbusd", attrs["service.name"].AsString())
	assert.Equal(t, []string{"heartbeat", "fswatch"}, attrs[ResourcePublishersKey].AsStringSlice())
	_, hasEnv := attrs["deployment.environment"]
	assert.False(t, hasEnv)
}

func TestEventAttributesOmitsEmptyID(t *testing.T) {
	assert.Len(t, EventAttributes("Pub1", "Event1", ""), 2)
	assert.Len(t, EventAttributes("Pub1", "Event1", "abc"), 3)
}

func TestErrorAttributes(t *testing.T) {
	assert.Nil(t, ErrorAttributes(nil, "x"))
	attrs := ErrorAttributes(errors.New("boom"), "delivery")
	require.Len(t, attrs, 2)
	assert.Equal(t, "delivery", attrs[1].Value.AsString())
}
