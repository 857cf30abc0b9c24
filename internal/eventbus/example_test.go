// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package eventbus_test

import (
	"context"
	"fmt"
	"io"

	"github.com/ManuGH/evbus/internal/eventbus"
	"github.com/rs/zerolog"
)

func Example() {
	bus := eventbus.New(eventbus.WithLogger(zerolog.New(io.Discard)), eventbus.WithMetrics(false))
	defer bus.Close()

	scanner := eventbus.NamedPublisher("scanner")
	_ = bus.RegisterPublisher(scanner, []string{"started", "finished"})

	printer := eventbus.NewConsumerFunc(func(_ context.Context, ev eventbus.Event) error {
		fmt.Println("received", ev, ev.Payload())
		return nil
	})
	_ = bus.RegisterConsumer(printer, "scanner", "finished")

	ctx := context.Background()
	_ = bus.PublishSyncEvent(ctx, scanner, eventbus.NewEvent("scanner", "started", nil))
	_ = bus.PublishSyncEvent(ctx, scanner, eventbus.NewEvent("scanner", "finished", 42))

	// Output:
	// received scanner/finished 42
}
