// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package consumers

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/evbus/internal/eventbus"
)

// DefaultRecorderSize is used when NewRecorder gets a non-positive size.
const DefaultRecorderSize = 256

// RecordedEvent is the JSON view of an event kept by a Recorder.
type RecordedEvent struct {
	ID        string    `json:"id"`
	Publisher string    `json:"publisher"`
	Type      string    `json:"type"`
	Time      time.Time `json:"time"`
	Payload   any       `json:"payload,omitempty"`
}

// Recorder keeps the most recent events it received in a fixed-size ring.
type Recorder struct {
	mu    sync.Mutex
	ring  []RecordedEvent
	next  int
	full  bool
	total uint64
	last  map[string]time.Time
}

// NewRecorder creates a recorder that retains up to size events.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{
		ring: make([]RecordedEvent, size),
		last: make(map[string]time.Time),
	}
}

// EventReceived implements eventbus.Consumer.
func (r *Recorder) EventReceived(_ context.Context, ev eventbus.Event) error {
	rec := RecordedEvent{
		ID:        ev.ID(),
		Publisher: ev.PublisherName(),
		Type:      ev.Type(),
		Time:      ev.Time(),
		Payload:   ev.Payload(),
	}

	r.mu.Lock()
	r.ring[r.next] = rec
	r.next = (r.next + 1) % len(r.ring)
	if r.next == 0 {
		r.full = true
	}
	r.total++
	if !rec.Time.Before(r.last[rec.Publisher]) {
		r.last[rec.Publisher] = rec.Time
	}
	r.mu.Unlock()
	return nil
}

// Recent returns the retained events, oldest first.
func (r *Recorder) Recent() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		return append([]RecordedEvent(nil), r.ring[:r.next]...)
	}
	out := make([]RecordedEvent, 0, len(r.ring))
	out = append(out, r.ring[r.next:]...)
	return append(out, r.ring[:r.next]...)
}

// Total returns how many events were received since creation.
func (r *Recorder) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// LastFrom returns the time of the newest event received from publisher, or
// the zero time if none was received. It is tracked apart from the ring, so a
// burst from other publishers does not hide it.
func (r *Recorder) LastFrom(publisher string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last[publisher]
}
