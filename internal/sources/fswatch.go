// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuGH/evbus/internal/eventbus"
	xglog "github.com/ManuGH/evbus/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Event types emitted by FSWatch.
const (
	EventCreate = "create"
	EventWrite  = "write"
	EventRemove = "remove"
	EventRename = "rename"
	EventChmod  = "chmod"
)

// FSEventTypes lists every type FSWatch declares.
var FSEventTypes = []string{EventCreate, EventWrite, EventRemove, EventRename, EventChmod}

// FilePayload is the payload of filesystem events.
type FilePayload struct {
	Path string `json:"path"`
}

// FSWatch publishes filesystem notifications for one directory.
type FSWatch struct {
	name   string
	dir    string
	bus    Bus
	logger zerolog.Logger
}

// NewFSWatch creates a watcher publisher for dir. Call Register before Run.
func NewFSWatch(bus Bus, name, dir string) *FSWatch {
	return &FSWatch{
		name:   name,
		dir:    dir,
		bus:    bus,
		logger: xglog.WithComponent("fswatch"),
	}
}

// PublisherName implements eventbus.Publisher.
func (w *FSWatch) PublisherName() string { return w.name }

// Register declares the watcher on the bus.
func (w *FSWatch) Register() error {
	return w.bus.RegisterPublisher(w, FSEventTypes)
}

// opTypes maps an fsnotify operation to event types, one per set bit.
func opTypes(op fsnotify.Op) []string {
	var types []string
	if op.Has(fsnotify.Create) {
		types = append(types, EventCreate)
	}
	if op.Has(fsnotify.Write) {
		types = append(types, EventWrite)
	}
	if op.Has(fsnotify.Remove) {
		types = append(types, EventRemove)
	}
	if op.Has(fsnotify.Rename) {
		types = append(types, EventRename)
	}
	if op.Has(fsnotify.Chmod) {
		types = append(types, EventChmod)
	}
	return types
}

// Run watches the directory until ctx is done or the bus is closed.
func (w *FSWatch) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logger.Info().
		Str(xglog.FieldEvent, "fswatch.started").
		Str(xglog.FieldPath, w.dir).
		Msg("watching directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case fe, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			for _, typ := range opTypes(fe.Op) {
				ev := eventbus.NewEvent(w.name, typ, FilePayload{Path: fe.Name})
				if err := publish(ctx, w.bus, w, ev, w.logger); err != nil {
					if errors.Is(err, eventbus.ErrClosed) {
						return nil
					}
					return fmt.Errorf("fswatch %q: %w", w.name, err)
				}
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().
				Err(werr).
				Str(xglog.FieldEvent, "fswatch.error").
				Str(xglog.FieldPath, w.dir).
				Msg("watcher reported an error")
		}
	}
}
