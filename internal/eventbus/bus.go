// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/models"
)

// TopicSyncCompleted carries models.SyncCompleted payloads.
const TopicSyncCompleted = "sync.completed"

// Metadata keys set on every published message
const (
	MetadataMode          = "mode"
	MetadataCorrelationID = "correlation_id"
)

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("event bus is closed")

// Config holds event bus settings.
type Config struct {
	// OutputChannelBuffer is the per-subscriber buffer. Default: 64
	OutputChannelBuffer int64
}

// Bus is the in-process publish/subscribe bus between the sync manager and
// its consumers. It implements sync.EventPublisher.
type Bus struct {
	pubsub *gochannel.GoChannel
	closed atomic.Bool
}

// New creates a bus backed by a watermill Go channel pub/sub.
func New(cfg Config) *Bus {
	if cfg.OutputChannelBuffer <= 0 {
		cfg.OutputChannelBuffer = 64
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputChannelBuffer,
	}, logging.NewWatermillAdapter())
	return &Bus{pubsub: pubsub}
}

// PublishSyncCompleted publishes a completed pass on TopicSyncCompleted.
func (b *Bus) PublishSyncCompleted(ctx context.Context, event *models.SyncCompleted) error {
	if event == nil {
		return nil
	}
	if b.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sync completed: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataMode, event.Mode)
	if event.CorrelationID != "" {
		msg.Metadata.Set(MetadataCorrelationID, event.CorrelationID)
	}
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(TopicSyncCompleted, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicSyncCompleted, err)
	}
	metrics.RecordEventBusPublish(TopicSyncCompleted)

	logging.Ctx(ctx).Debug().
		Str("topic", TopicSyncCompleted).
		Str("message_id", msg.UUID).
		Str("mode", event.Mode).
		Msg("Published sync completion")
	return nil
}

// Subscribe returns the message stream of topic. The channel is closed when
// ctx is canceled or the bus is closed. Every message must be acked or nacked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	return b.pubsub.Subscribe(ctx, topic)
}

// Close closes the bus and every subscription. It is idempotent.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.pubsub.Close()
}

// DecodeSyncCompleted decodes a TopicSyncCompleted payload.
func DecodeSyncCompleted(msg *message.Message) (*models.SyncCompleted, error) {
	var event models.SyncCompleted
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}
	return &event, nil
}
