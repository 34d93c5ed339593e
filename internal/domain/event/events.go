package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// Interface guard
var _ Eventer = (*Event)(nil)

// Event is the single concrete Eventer. Events are value-constructed through
// the New* helpers below so kind, wire name and priority always agree.
type Event struct {
	id         string
	name       string
	kind       Kind
	userID     int64
	priority   Priority
	occurredAt int64
	payload    any
}

func newEvent(name string, kind Kind, userID int64, priority Priority, payload any) *Event {
	return &Event{
		id:         uuid.NewString(),
		name:       name,
		kind:       kind,
		userID:     userID,
		priority:   priority,
		occurredAt: time.Now().UnixMilli(),
		payload:    payload,
	}
}

func (e *Event) GetID() string         { return e.id }
func (e *Event) GetName() string       { return e.name }
func (e *Event) GetKind() Kind         { return e.kind }
func (e *Event) GetUserID() int64      { return e.userID }
func (e *Event) GetPriority() Priority { return e.priority }
func (e *Event) GetOccurredAt() int64  { return e.occurredAt }
func (e *Event) GetPayload() any       { return e.payload }

// ConnectedPayload greets a freshly authenticated (or public) connection.
type ConnectedPayload struct {
	Message  string `json:"message"`
	UserID   int64  `json:"userId,omitempty"`
	UserName string `json:"userName,omitempty"`
}

// DisconnectedPayload is the last frame written before the server closes a
// session, e.g. when a newer connection takes over the user's slot.
type DisconnectedPayload struct {
	Reason string `json:"reason"`
}

// OnlineUsersPayload is the full presence snapshot, not a delta.
type OnlineUsersPayload struct {
	UserIDs []int64 `json:"userIds"`
}

// ReadPayload carries read confirmations and read-receipt echoes.
type ReadPayload struct {
	MessageID int64 `json:"messageId"`
}

// TypingPayload identifies who is typing to the receiving client.
type TypingPayload struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

// ErrorPayload is the client-visible validation/persistence failure shape.
type ErrorPayload struct {
	Message string `json:"message"`
}

func NewConnected(userID int64, userName string) *Event {
	msg := "connected"
	if userID != 0 {
		msg = "authenticated"
	}
	return newEvent(NameConnected, Connected, userID, PriorityHigh, ConnectedPayload{
		Message:  msg,
		UserID:   userID,
		UserName: userName,
	})
}

func NewDisconnected(userID int64, reason string) *Event {
	return newEvent(NameDisconnected, Disconnected, userID, PriorityHigh, DisconnectedPayload{Reason: reason})
}

func NewOnlineUsers(userIDs []int64) *Event {
	return newEvent(NameOnlineUsers, OnlineUsers, 0, PriorityLow, OnlineUsersPayload{UserIDs: userIDs})
}

// NewMessageSent acknowledges persistence back to the sender.
// The payload is the enriched message.
func NewMessageSent(msg *model.Message) *Event {
	return newEvent(NameMessageSent, MessageSent, msg.SenderID, PriorityHigh, msg)
}

// NewMessageReceived delivers the enriched message to the receiver.
func NewMessageReceived(msg *model.Message) *Event {
	return newEvent(NameReceiveMessage, MessageReceived, msg.ReceiverID, PriorityHigh, msg)
}

func NewMessageRead(readerID, messageID int64) *Event {
	return newEvent(NameMessageRead, MessageRead, readerID, PriorityNormal, ReadPayload{MessageID: messageID})
}

func NewMessageReadByReceiver(senderID, messageID int64) *Event {
	return newEvent(NameMessageReadByReceiver, MessageReadByReceiver, senderID, PriorityNormal, ReadPayload{MessageID: messageID})
}

func NewUserTyping(receiverID, typistID int64, typistName string) *Event {
	return newEvent(NameUserTyping, UserTyping, receiverID, PriorityLow, TypingPayload{UserID: typistID, UserName: typistName})
}

func NewUserStopTyping(receiverID, typistID int64) *Event {
	return newEvent(NameUserStopTyping, UserStopTyping, receiverID, PriorityLow, TypingPayload{UserID: typistID})
}

func NewError(userID int64, message string) *Event {
	return newEvent(NameError, Error, userID, PriorityHigh, ErrorPayload{Message: message})
}

// NewAnnouncement builds a broadcast event with a caller-chosen wire name,
// e.g. "project_deleted". Public connections receive these too.
func NewAnnouncement(name string, payload any) *Event {
	return newEvent(name, Announcement, 0, PriorityNormal, payload)
}
