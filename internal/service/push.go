package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/adapter/push"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/config"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/registry"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

const bodyLimit = 100

// PushResult summarizes one dispatch. Informational on the bus path,
// returned synchronously from the test-notification endpoint.
type PushResult struct {
	Suppressed bool     `json:"suppressed"`
	Sent       int      `json:"sent"`
	Failed     int      `json:"failed"`
	Cleaned    int      `json:"cleaned"`
	Errors     []string `json:"errors,omitempty"`
}

// Notifier decides whether a persisted message needs an out-of-band
// notification and drives the external push service.
type Notifier interface {
	// MaybeNotify runs the push-fallback decision. delivered reports whether
	// the realtime fan-out reached the receiver's session; only delivered
	// messages are candidates for suppression.
	MaybeNotify(ctx context.Context, msg *model.Message, delivered bool) (PushResult, error)
	// NotifyDirect skips the suppression check; used by the manual
	// test-notification request.
	NotifyDirect(ctx context.Context, userID int64, title, body string) (PushResult, error)
}

type PushDispatcher struct {
	hub    registry.Hubber
	subs   store.Subscriptions
	pusher push.Pusher
	cfg    *config.Config
	logger *slog.Logger
}

func NewPushDispatcher(
	hub registry.Hubber,
	st store.Store,
	pusher push.Pusher,
	cfg *config.Config,
	logger *slog.Logger,
) *PushDispatcher {
	return &PushDispatcher{
		hub:    hub,
		subs:   st,
		pusher: pusher,
		cfg:    cfg,
		logger: logger,
	}
}

// notificationPayload is the JSON the service worker receives.
type notificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Tag   string `json:"tag"`
	Data  struct {
		URL       string `json:"url"`
		MessageID int64  `json:"messageId"`
		SenderID  int64  `json:"senderId"`
	} `json:"data"`
}

func (d *PushDispatcher) MaybeNotify(ctx context.Context, msg *model.Message, delivered bool) (PushResult, error) {
	// Suppress only when the realtime fan-out reached the session and the
	// receiver is still viewing the messaging view; an undelivered message is
	// not on their screen no matter what page they report now.
	if delivered {
		if page, online := d.hub.OnlinePage(msg.ReceiverID); online && strings.HasPrefix(page, d.cfg.MessagingPage()) {
			return PushResult{Suppressed: true}, nil
		}
	}

	senderName := "a coordinator"
	if msg.Sender != nil && msg.Sender.Name != "" {
		senderName = msg.Sender.Name
	}

	p := notificationPayload{
		Title: fmt.Sprintf("New message from %s", senderName),
		Body:  truncate(msg.Content, bodyLimit),
		Icon:  "/icons/icon-192.png",
		Tag:   fmt.Sprintf("message-%d", msg.ID),
	}
	p.Data.URL = d.cfg.MessagingPage()
	p.Data.MessageID = msg.ID
	p.Data.SenderID = msg.SenderID

	payload, err := json.Marshal(p)
	if err != nil {
		return PushResult{}, fmt.Errorf("push dispatch: marshal payload: %w", err)
	}

	return d.fanOut(ctx, msg.ReceiverID, payload)
}

func (d *PushDispatcher) NotifyDirect(ctx context.Context, userID int64, title, body string) (PushResult, error) {
	p := notificationPayload{
		Title: title,
		Body:  truncate(body, bodyLimit),
		Tag:   "test",
	}
	p.Data.URL = d.cfg.MessagingPage()

	payload, err := json.Marshal(p)
	if err != nil {
		return PushResult{}, fmt.Errorf("push dispatch: marshal payload: %w", err)
	}
	return d.fanOut(ctx, userID, payload)
}

// fanOut submits the payload to every subscription of the user. Gone
// endpoints are cleaned up; other failures never abort the remainder.
func (d *PushDispatcher) fanOut(ctx context.Context, userID int64, payload []byte) (PushResult, error) {
	subs, err := d.subs.SubscriptionsForUser(ctx, userID)
	if err != nil {
		return PushResult{}, fmt.Errorf("push dispatch: list subscriptions for %d: %w", userID, err)
	}

	var res PushResult
	for _, sub := range subs {
		err := d.pusher.Send(ctx, sub, payload)
		switch {
		case err == nil:
			res.Sent++
		case errors.Is(err, push.ErrSubscriptionGone):
			res.Cleaned++
			if derr := d.subs.DeleteSubscription(ctx, sub.ID); derr != nil {
				d.logger.Error("gone subscription cleanup failed",
					"subscription_id", sub.ID, "err", derr)
			}
		default:
			res.Failed++
			res.Errors = append(res.Errors, err.Error())
		}
	}
	return res, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
