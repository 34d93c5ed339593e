package bus

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/registry"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service/dto"
)

// handlerTimeout bounds store and push-service calls made off the realtime
// path; without it a hung push endpoint would pin router goroutines.
const handlerTimeout = 30 * time.Second

type EventHandler struct {
	hub      registry.Hubber
	notifier service.Notifier
	logger   *slog.Logger
}

func NewEventHandler(hub registry.Hubber, notifier service.Notifier, logger *slog.Logger) *EventHandler {
	return &EventHandler{hub: hub, notifier: notifier, logger: logger}
}

// OnPushRequestedV1 runs the push-fallback decision for one persisted
// message. The result is informational here; failures propagate for retry.
func (h *EventHandler) OnPushRequestedV1(ctx context.Context, raw *dto.PushRequestV1) error {
	if raw.Message == nil {
		h.logger.Warn("push request without message payload")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	_, err := h.notifier.MaybeNotify(ctx, raw.Message, raw.Delivered)
	return err
}

// OnAnnouncementV1 fans a platform-wide broadcast out to every connection,
// public ones included.
func (h *EventHandler) OnAnnouncementV1(_ context.Context, raw *dto.AnnouncementV1) error {
	if raw.Event == "" {
		return nil
	}
	h.hub.BroadcastAll(event.NewAnnouncement(raw.Event, raw.Payload))
	return nil
}
