// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package debugapi serves a read-only HTTP view of an event bus.
package debugapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/evbus/internal/eventbus"
	"github.com/ManuGH/evbus/internal/eventbus/consumers"
	"github.com/ManuGH/evbus/internal/health"
	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// Introspector is the read side of *eventbus.Bus.
type Introspector interface {
	Publishers() []eventbus.PublisherInfo
	Subscriptions() []eventbus.SubscriptionInfo
	Stats() eventbus.Stats
}

// Config configures the router.
type Config struct {
	ServiceName string
	// RequestLimit and Window bound requests per client IP; a zero limit disables rate limiting.
	RequestLimit int
	Window       time.Duration
	// Health serves /healthz and /readyz; nil means a manager without checks.
	Health *health.Manager
}

// Snapshot is the body of GET /debug/eventbus.
type Snapshot struct {
	Stats         eventbus.Stats              `json:"stats"`
	Publishers    []eventbus.PublisherInfo    `json:"publishers"`
	Subscriptions []eventbus.SubscriptionInfo `json:"subscriptions"`
}

// NewRouter builds the debug HTTP handler. rec may be nil.
func NewRouter(bus Introspector, rec *consumers.Recorder, cfg Config) http.Handler {
	r := chi.NewRouter()

	if cfg.RequestLimit > 0 {
		r.Use(rateLimit(cfg.RequestLimit, cfg.Window))
	}

	hm := cfg.Health
	if hm == nil {
		hm = health.NewManager("")
	}
	r.Get("/healthz", hm.ServeHealth)
	r.Get("/readyz", hm.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/debug/eventbus", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, Snapshot{
				Stats:         bus.Stats(),
				Publishers:    nonNil(bus.Publishers()),
				Subscriptions: nonNil(bus.Subscriptions()),
			})
		})
		r.Get("/recent", func(w http.ResponseWriter, req *http.Request) {
			if rec == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "recorder_disabled"})
				return
			}
			events := rec.Recent()
			if p := strings.TrimSpace(req.URL.Query().Get("publisher")); p != "" {
				filtered := events[:0]
				for _, ev := range events {
					if ev.Publisher == p {
						filtered = append(filtered, ev)
					}
				}
				events = filtered
			}
			writeJSON(w, http.StatusOK, nonNil(events))
		})
	})

	name := cfg.ServiceName
	if name == "" {
		name = "evbusd"
	}
	return otelhttp.NewHandler(r, name,
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
		otelhttp.WithFilter(shouldTrace),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
}

// shouldTrace skips probes and metrics scrapes.
func shouldTrace(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return false
	}
	return true
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limit_exceeded"})
		}),
	)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		l := xglog.WithComponent("debugapi")
		l.Debug().Err(err).Msg("write response")
	}
}
