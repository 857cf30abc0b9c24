// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ManuGH/evbus/internal/eventbus"
)

// BusStats is satisfied by *eventbus.Bus.
type BusStats interface {
	Stats() eventbus.Stats
}

// BusChecker reports the event bus state.
type BusChecker struct {
	bus BusStats
}

// NewBusChecker creates a checker for bus.
func NewBusChecker(bus BusStats) *BusChecker {
	return &BusChecker{bus: bus}
}

func (c *BusChecker) Name() string { return "eventbus" }

func (c *BusChecker) Check(_ context.Context) CheckResult {
	s := c.bus.Stats()
	switch {
	case s.Closed:
		return CheckResult{Status: StatusUnhealthy, Error: "event bus closed"}
	case s.Publishers == 0:
		return CheckResult{Status: StatusDegraded, Message: "no publishers registered"}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("%d publishers, %d subscriptions", s.Publishers, s.Subscriptions),
	}
}

// DirChecker checks that a watched directory still exists.
type DirChecker struct {
	name string
	path string
}

// NewDirChecker creates a checker for directory existence
func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{name: name, path: path}
}

func (c *DirChecker) Name() string {
	return c.name
}

func (c *DirChecker) Check(_ context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "not configured (optional)",
		}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusUnhealthy,
				Error:   "directory not found",
				Message: c.path,
			}
		}
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  err.Error(),
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   "expected directory, got file",
			Message: c.path,
		}
	}
	return CheckResult{Status: StatusHealthy, Message: c.path}
}

// ActivityChecker degrades when no event has been seen within maxAge.
type ActivityChecker struct {
	name      string
	lastEvent func() time.Time
	maxAge    time.Duration
	now       func() time.Time
}

// NewActivityChecker creates a checker over lastEvent, which returns the zero
// time when nothing has been received yet.
func NewActivityChecker(name string, lastEvent func() time.Time, maxAge time.Duration) *ActivityChecker {
	return &ActivityChecker{name: name, lastEvent: lastEvent, maxAge: maxAge, now: time.Now}
}

func (c *ActivityChecker) Name() string {
	return c.name
}

func (c *ActivityChecker) Check(_ context.Context) CheckResult {
	last := c.lastEvent()
	if last.IsZero() {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "no events received yet",
		}
	}
	if age := c.now().Sub(last); age > c.maxAge {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("last event %s ago", age.Round(time.Second)),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "events flowing"}
}
