// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package eventbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/models"
)

// Broadcaster receives forwarded completions. Satisfied by *websocket.Hub.
type Broadcaster interface {
	BroadcastSyncCompleted(event *models.SyncCompleted)
}

// Forwarder relays TopicSyncCompleted messages to a Broadcaster. It is run
// as a suture service.
type Forwarder struct {
	bus         *Bus
	broadcaster Broadcaster
	name        string
}

// NewForwarder creates a forwarder from bus to broadcaster.
func NewForwarder(bus *Bus, broadcaster Broadcaster) *Forwarder {
	return &Forwarder{bus: bus, broadcaster: broadcaster, name: "eventbus-forwarder"}
}

// Serve implements suture.Service. Undecodable messages are acked and
// dropped; redelivery cannot fix them.
func (f *Forwarder) Serve(ctx context.Context) error {
	messages, err := f.bus.Subscribe(ctx, TopicSyncCompleted)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return suture.ErrDoNotRestart
		}
		return fmt.Errorf("subscribe %s: %w", TopicSyncCompleted, err)
	}

	logger := logging.WithComponent(f.name)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// The bus was closed underneath us
				return suture.ErrDoNotRestart
			}

			event, err := DecodeSyncCompleted(msg)
			if err != nil {
				logger.Warn().Err(err).Msg("Dropping malformed sync completion")
				msg.Ack()
				continue
			}
			f.broadcaster.BroadcastSyncCompleted(event)
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (f *Forwarder) String() string {
	return f.name
}
