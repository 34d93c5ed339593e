package ws

import (
	"github.com/goccy/go-json"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
)

// Inbound wire events.
const (
	frameUpdatePage  = "update_page"
	frameSendMessage = "send_message"
	frameMarkAsRead  = "mark_as_read"
	frameTyping      = "typing"
	frameStopTyping  = "stop_typing"
)

// inboundFrame is the envelope every client event arrives in.
type inboundFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type updatePagePayload struct {
	Page string `json:"page"`
}

type sendMessagePayload struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

type markAsReadPayload struct {
	MessageID int64 `json:"messageId"`
}

type typingPayload struct {
	ReceiverID int64 `json:"receiverId"`
}

// outboundFrame is the envelope for every server-to-client event.
type outboundFrame struct {
	Event   string `json:"event"`
	ID      string `json:"id"`
	SentAt  int64  `json:"sent_at"`
	Payload any    `json:"payload,omitempty"`
}

func marshalEvent(ev event.Eventer) ([]byte, error) {
	return json.Marshal(outboundFrame{
		Event:   ev.GetName(),
		ID:      ev.GetID(),
		SentAt:  ev.GetOccurredAt(),
		Payload: ev.GetPayload(),
	})
}
