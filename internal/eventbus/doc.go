// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package eventbus implements an in-process, synchronous event bus.
//
// Publishers register under a unique name together with the finite set of
// event types they may emit. Consumers subscribe to a publisher name, either
// for every event type or for a subset of them. Subscriptions are matched by
// name, so a consumer may subscribe before the publisher exists.
//
// PublishSyncEvent validates the event against the publisher's registration,
// copies the subscriber list for that name while holding the registry lock and
// then invokes every interested consumer in registration order on the calling
// goroutine, without holding the lock. A consumer may therefore call back into
// the bus, including to unregister itself; such changes apply from the next
// publish on. A consumer that fails or panics does not stop delivery to the
// others: all failures are reported together as a *DeliveryError once every
// consumer of the snapshot has been attempted.
//
// Basic usage:
//
//	bus := eventbus.New()
//	pub := eventbus.NamedPublisher("scanner")
//	_ = bus.RegisterPublisher(pub, []string{"started", "finished"})
//	_ = bus.RegisterConsumer(myConsumer, "scanner", "finished")
//	err := bus.PublishSyncEvent(ctx, pub, eventbus.NewEvent("scanner", "finished", result))
package eventbus
