// Package store defines the persistence ports the realtime core consumes.
// The backing engine is a collaborator, not part of this subsystem: adapters
// live in the postgres and memory subpackages.
package store

import (
	"context"
	"errors"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("store: not found")

// Users resolves identities.
type Users interface {
	UserByID(ctx context.Context, id int64) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	// MessagingUsers lists every admin/coordinator identity except excludeID.
	MessagingUsers(ctx context.Context, excludeID int64) ([]model.User, error)
}

// Messages owns the durable direct-message rows.
type Messages interface {
	// CreateMessage persists the row, assigning id and createdAt.
	CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (*model.Message, error)
	// MessageByID fetches one message, optionally joined with the sender
	// and receiver public profiles.
	MessageByID(ctx context.Context, id int64, withProfiles bool) (*model.Message, error)
	// MarkMessageRead flips isRead to true. The flag is monotonic.
	MarkMessageRead(ctx context.Context, id int64) error
	// History returns the messages between the two users ordered by
	// createdAt ascending.
	History(ctx context.Context, userID, counterpartID int64, limit int) ([]model.Message, error)
	// Conversations groups userID's messages by counterpart with unread
	// counts and last-message previews, most recent first.
	Conversations(ctx context.Context, userID int64) ([]model.Conversation, error)
	// UnreadCount is the number of unread messages addressed to userID.
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// Subscriptions owns Web Push subscription rows.
type Subscriptions interface {
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	// SaveSubscription inserts or refreshes by endpoint (the endpoint is
	// unique across users).
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, id int64) error
	DeleteSubscriptionByEndpoint(ctx context.Context, userID int64, endpoint string) error
}

// Store aggregates the three ports; both adapters satisfy it.
type Store interface {
	Users
	Messages
	Subscriptions
}
