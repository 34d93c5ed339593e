// Package dto holds the payload shapes crossing the in-process bus.
package dto

import "github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"

// PushRequestV1 asks the push-fallback consumer to consider notifying the
// receiver of one persisted message.
type PushRequestV1 struct {
	Message *model.Message `json:"message"`
	// Delivered records whether the realtime fan-out reached the receiver's
	// session. Only delivered messages are candidates for push suppression;
	// the dispatcher re-checks presence and reported page at consume time.
	Delivered bool `json:"delivered"`
}

// AnnouncementV1 is a platform-wide broadcast, e.g. a deleted project.
// Event is the wire name emitted to every connection, public ones included.
type AnnouncementV1 struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}
