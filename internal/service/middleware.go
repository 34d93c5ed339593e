package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// notifierMiddleware decorates a Notifier with outcome and latency logging
// so the fire-and-forget path stays observable without touching the
// dispatch logic.
type notifierMiddleware struct {
	next   Notifier
	logger *slog.Logger
}

func (m *notifierMiddleware) MaybeNotify(ctx context.Context, msg *model.Message, delivered bool) (PushResult, error) {
	start := time.Now()
	res, err := m.next.MaybeNotify(ctx, msg, delivered)
	if err != nil {
		m.logger.Error("push dispatch failed",
			"message_id", msg.ID,
			"receiver_id", msg.ReceiverID,
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
		return res, err
	}

	m.logger.Debug("push dispatch completed",
		"message_id", msg.ID,
		"receiver_id", msg.ReceiverID,
		"delivered", delivered,
		"suppressed", res.Suppressed,
		"sent", res.Sent,
		"failed", res.Failed,
		"cleaned", res.Cleaned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (m *notifierMiddleware) NotifyDirect(ctx context.Context, userID int64, title, body string) (PushResult, error) {
	start := time.Now()
	res, err := m.next.NotifyDirect(ctx, userID, title, body)
	if err != nil {
		m.logger.Warn("direct notification failed",
			"user_id", userID,
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
	}
	return res, err
}
