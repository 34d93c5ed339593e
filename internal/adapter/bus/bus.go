// Package bus provides the in-process event bus carrying the fire-and-forget
// side effects of the realtime core: push-fallback requests and platform
// announcements. It uses watermill's gochannel Pub/Sub so the handler chain
// (retry, recovery, poison) matches a broker-backed deployment.
package bus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

const (
	// TopicPushRequested carries one payload per persisted message whose
	// receiver may need an out-of-band notification.
	TopicPushRequested = "messaging.push.requested.v1"

	// TopicAnnouncement carries platform-wide broadcast events
	// (e.g. a project was deleted) fanned out to every connection.
	TopicAnnouncement = "platform.announcement.v1"
)

// Dispatcher is the high-level contract for outgoing bus events, keeping
// publishers agnostic of the transport implementation.
type Dispatcher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Publisher() message.Publisher
}

type dispatcher struct {
	pubsub *gochannel.GoChannel
}

// NewPubSub builds the gochannel transport shared by publisher and consumers.
func NewPubSub(wmLogger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, wmLogger)
}

// NewWatermillLogger bridges watermill logging onto the service logger.
func NewWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger)
}

func NewDispatcher(pubsub *gochannel.GoChannel) Dispatcher {
	return &dispatcher{pubsub: pubsub}
}

func (d *dispatcher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bus: marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if err := d.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("bus: publish to %s: %w", topic, err)
	}
	return nil
}

func (d *dispatcher) Publisher() message.Publisher {
	return d.pubsub
}
