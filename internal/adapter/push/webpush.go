// Package push adapts the external Web Push delivery service.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sony/gobreaker"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/config"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// ErrSubscriptionGone marks an endpoint the push service reports as
// permanently invalid. Callers must delete the subscription row.
var ErrSubscriptionGone = errors.New("push: subscription gone")

// Pusher submits one payload to one subscription endpoint.
type Pusher interface {
	Send(ctx context.Context, sub model.PushSubscription, payload []byte) error
}

// WebPusher is the production Pusher: VAPID Web Push behind a circuit
// breaker so a misbehaving push service cannot pile up blocked sends.
type WebPusher struct {
	options webpush.Options
	breaker *gobreaker.CircuitBreaker
}

func NewWebPusher(cfg config.PushConfig) *WebPusher {
	return &WebPusher{
		options: webpush.Options{
			Subscriber:      cfg.Subscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             cfg.TTLSeconds,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "webpush",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// A gone endpoint is a per-subscription condition, not a
			// push-service outage; it must not trip the breaker.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrSubscriptionGone)
			},
		}),
	}
}

func (p *WebPusher) Send(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}

	_, err := p.breaker.Execute(func() (any, error) {
		resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &p.options)
		if err != nil {
			return nil, fmt.Errorf("push: send: %w", err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusGone, http.StatusNotFound:
			return nil, ErrSubscriptionGone
		case http.StatusCreated, http.StatusOK, http.StatusAccepted:
			return nil, nil
		default:
			return nil, fmt.Errorf("push: endpoint returned status %d", resp.StatusCode)
		}
	})
	return err
}
