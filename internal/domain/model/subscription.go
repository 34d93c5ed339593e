package model

import "time"

// SubscriptionKeys holds the client key material of a Web Push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is a browser push endpoint registered by a user.
// The endpoint is unique across all users; a subscription is removed when
// the push service reports the endpoint permanently gone.
type PushSubscription struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"userId"`
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expirationTime,omitempty"`
	Keys           SubscriptionKeys `json:"keys"`
	CreatedAt      time.Time        `json:"createdAt"`
}
