package model

import "time"

// Message is the durable direct-message entity owned by the store.
// IsRead is monotonic: once true it never reverts.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`

	// Sender and Receiver carry the joined public profiles when the
	// message was fetched in enriched form; nil otherwise.
	Sender   *User `json:"sender,omitempty"`
	Receiver *User `json:"receiver,omitempty"`
}

// Conversation is one row of the counterpart-grouped conversation list.
type Conversation struct {
	User        User      `json:"user"`
	LastMessage string    `json:"lastMessage"`
	LastAt      time.Time `json:"lastAt"`
	UnreadCount int       `json:"unreadCount"`
}
