package bus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	adapterbus "github.com/Jeremy-Pacheco/AWTC-sub000/internal/adapter/bus"
)

const poisonTopic = "messaging.poison.v1"

func NewRouter(wmLogger watermill.LoggerAdapter, logger *slog.Logger) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("bus router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
		LoggingMiddleware(logger),
		NewRetryMiddleware(wmLogger).Middleware,
	)
	return router, nil
}

// RegisterHandlers wires the consumers, table-driven so new domain listeners
// slot in without touching router setup.
func RegisterHandlers(
	router *message.Router,
	pubsub *gochannel.GoChannel,
	dispatcher adapterbus.Dispatcher,
	h *EventHandler,
) error {
	poison, err := middleware.PoisonQueue(dispatcher.Publisher(), poisonTopic)
	if err != nil {
		return fmt.Errorf("bus poison queue: %w", err)
	}
	router.AddMiddleware(poison)

	configs := []struct {
		name    string
		topic   string
		handler message.NoPublishHandlerFunc
	}{
		{"on_push_requested", adapterbus.TopicPushRequested, Bind(h.logger, h.OnPushRequestedV1)},
		{"on_announcement", adapterbus.TopicAnnouncement, Bind(h.logger, h.OnAnnouncementV1)},
	}

	for _, c := range configs {
		router.AddNoPublisherHandler(c.name, c.topic, pubsub, c.handler)
	}
	return nil
}
