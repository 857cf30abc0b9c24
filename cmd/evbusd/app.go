// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/evbus/internal/config"
	"github.com/ManuGH/evbus/internal/debugapi"
	"github.com/ManuGH/evbus/internal/eventbus"
	"github.com/ManuGH/evbus/internal/eventbus/consumers"
	"github.com/ManuGH/evbus/internal/health"
	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/ManuGH/evbus/internal/sources"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second

	// event log lines per second, with burst
	eventLogRate  = 50
	eventLogBurst = 100
)

type source interface {
	eventbus.Publisher
	Register() error
	Run(ctx context.Context) error
}

// app is the wired daemon: one bus, its publishers and built-in consumers.
type app struct {
	cfg      config.AppConfig
	bus      *eventbus.Bus
	recorder *consumers.Recorder
	sources  []source
	health   *health.Manager
	handler  http.Handler
	logger   zerolog.Logger
}

// publisherNames lists the publishers cfg enables.
func publisherNames(cfg config.AppConfig) []string {
	var names []string
	if cfg.Heartbeat.Interval > 0 {
		names = append(names, cfg.Heartbeat.Publisher)
	}
	if cfg.Watch.Dir != "" {
		names = append(names, cfg.Watch.Publisher)
	}
	return names
}

func buildApp(cfg config.AppConfig) (*app, error) {
	a := &app{
		cfg:      cfg,
		bus:      eventbus.New(),
		recorder: consumers.NewRecorder(cfg.Recorder.Size),
		health:   health.NewManager(cfg.Version),
		logger:   xglog.WithComponent("daemon"),
	}

	if cfg.Heartbeat.Interval > 0 {
		a.sources = append(a.sources, sources.NewHeartbeat(a.bus, cfg.Heartbeat.Publisher, cfg.Heartbeat.Interval))
	}
	if cfg.Watch.Dir != "" {
		a.sources = append(a.sources, sources.NewFSWatch(a.bus, cfg.Watch.Publisher, cfg.Watch.Dir))
	}

	logConsumer := consumers.NewLogConsumer(xglog.WithComponent("events"), zerolog.DebugLevel).
		WithRateLimit(eventLogRate, eventLogBurst)
	for _, src := range a.sources {
		if err := src.Register(); err != nil {
			a.bus.Close()
			return nil, fmt.Errorf("register %q: %w", src.PublisherName(), err)
		}
		for _, c := range []eventbus.Consumer{logConsumer, a.recorder} {
			if err := a.bus.RegisterConsumer(c, src.PublisherName()); err != nil {
				a.bus.Close()
				return nil, fmt.Errorf("subscribe to %q: %w", src.PublisherName(), err)
			}
		}
	}

	a.health.RegisterChecker(health.NewBusChecker(a.bus))
	if cfg.Watch.Dir != "" {
		a.health.RegisterChecker(health.NewDirChecker("watch_dir", cfg.Watch.Dir))
	}
	if cfg.Heartbeat.Interval > 0 {
		name := cfg.Heartbeat.Publisher
		a.health.RegisterChecker(health.NewActivityChecker(name,
			func() time.Time { return a.recorder.LastFrom(name) },
			3*cfg.Heartbeat.Interval))
	}

	a.handler = debugapi.NewRouter(a.bus, a.recorder, debugapi.Config{
		ServiceName:  cfg.LogService,
		RequestLimit: cfg.RateLimit.Requests,
		Window:       cfg.RateLimit.Window,
		Health:       a.health,
	})
	return a, nil
}

// run blocks until ctx is done or a component fails, then closes the bus.
func (a *app) run(ctx context.Context) error {
	defer a.bus.Close()

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range a.sources {
		g.Go(func() error { return src.Run(gctx) })
	}

	if a.cfg.Listen != "" {
		srv := &http.Server{
			Addr:              a.cfg.Listen,
			Handler:           a.handler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info().
				Str(xglog.FieldEvent, "http.listen").
				Str("addr", srv.Addr).
				Msg("serving debug endpoints")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("debug http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
