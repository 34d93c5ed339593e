package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/adapter/bus"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/registry"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service/dto"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

// Messenger is the message delivery protocol: send, acknowledge, deliver,
// mark-read and read-receipt echo, plus the ephemeral typing relay.
// Callers guarantee the acting identity is messaging-eligible; the transport
// layer only wires these handlers for eligible connections.
type Messenger interface {
	// Send persists and fans out one direct message, returning the
	// enriched form that was acknowledged to the sender.
	Send(ctx context.Context, senderID, receiverID int64, content string) (*model.Message, error)
	// MarkAsRead flips the read flag as the acting identity. Ownership is
	// enforced: only the receiver may mark.
	MarkAsRead(ctx context.Context, actorID, messageID int64) error
	// Typing and StopTyping forward the indicator; silently dropped when
	// the receiver is offline.
	Typing(actorID int64, actorName string, receiverID int64)
	StopTyping(actorID, receiverID int64)
	// UpdatePage records the actor's client-reported page.
	UpdatePage(actorID int64, page string)
}

type MessageService struct {
	hub        registry.Hubber
	messages   store.Messages
	users      store.Users
	enricher   Enricher
	dispatcher bus.Dispatcher
	logger     *slog.Logger
}

func NewMessageService(
	hub registry.Hubber,
	st store.Store,
	enricher Enricher,
	dispatcher bus.Dispatcher,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		hub:        hub,
		messages:   st,
		users:      st,
		enricher:   enricher,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *MessageService) Send(ctx context.Context, senderID, receiverID int64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if receiverID == 0 || content == "" {
		return nil, ErrMissingFields
	}

	// The receiver must resolve to a messaging-eligible identity before
	// anything is persisted; volunteers cannot be messaged.
	receiver, err := s.users.UserByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReceiverNotEligible
		}
		return nil, fmt.Errorf("send: resolve receiver %d: %w", receiverID, err)
	}
	if !receiver.Role.MessagingEligible() {
		return nil, ErrReceiverNotEligible
	}

	msg, err := s.messages.CreateMessage(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, fmt.Errorf("send: persist message: %w", err)
	}

	enriched, err := s.enricher.Enrich(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	// Acknowledge to the sender regardless of the receiver's connectivity.
	s.hub.Deliver(event.NewMessageSent(enriched))

	delivered := s.hub.Deliver(event.NewMessageReceived(enriched))

	// Push fallback is fire and forget: its failure never fails the send.
	if err := s.dispatcher.Publish(ctx, bus.TopicPushRequested, dto.PushRequestV1{
		Message:   enriched,
		Delivered: delivered,
	}); err != nil {
		s.logger.Error("push request publish failed",
			"message_id", enriched.ID, "err", err)
	}

	return enriched, nil
}

func (s *MessageService) MarkAsRead(ctx context.Context, actorID, messageID int64) error {
	msg, err := s.messages.MessageByID(ctx, messageID, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("mark as read: fetch message %d: %w", messageID, err)
	}

	if msg.ReceiverID != actorID {
		return ErrNotMessageReceiver
	}

	// Idempotent: a second call confirms again without re-persisting.
	if !msg.IsRead {
		if err := s.messages.MarkMessageRead(ctx, messageID); err != nil {
			return fmt.Errorf("mark as read: persist flag for %d: %w", messageID, err)
		}
	}

	s.hub.Deliver(event.NewMessageRead(actorID, messageID))
	// Read-receipt echo to the sender, best-effort.
	s.hub.Deliver(event.NewMessageReadByReceiver(msg.SenderID, messageID))
	return nil
}

func (s *MessageService) Typing(actorID int64, actorName string, receiverID int64) {
	s.hub.Deliver(event.NewUserTyping(receiverID, actorID, actorName))
}

func (s *MessageService) StopTyping(actorID, receiverID int64) {
	s.hub.Deliver(event.NewUserStopTyping(receiverID, actorID))
}

func (s *MessageService) UpdatePage(actorID int64, page string) {
	s.hub.UpdatePage(actorID, page)
}
