// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestIncConsumerFailureFallsBackToUnknownLabels(t *testing.T) {
	before := counterValue(t, ConsumerFailuresTotal.WithLabelValues("unknown", "unknown"))
	IncConsumerFailure("", "")
	after := counterValue(t, ConsumerFailuresTotal.WithLabelValues("unknown", "unknown"))
	require.Equal(t, before+1, after)
}

func TestAddDeliveriesIgnoresNonPositive(t *testing.T) {
	c := DeliveriesTotal.WithLabelValues("metrics-test")
	before := counterValue(t, c)
	AddDeliveries("metrics-test", 0)
	AddDeliveries("metrics-test", -3)
	require.Equal(t, before, counterValue(t, c))

	AddDeliveries("metrics-test", 3)
	require.Equal(t, before+3, counterValue(t, c))
}
