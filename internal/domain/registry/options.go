package registry

import "time"

// Option is a functional configuration type for the Hub.
type Option func(*Hub)

// WithSendTimeout bounds how long a targeted delivery may wait on a
// saturated session mailbox before the event is shed.
func WithSendTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.config.sendTimeout = d
	}
}

// WithBroadcastTimeout bounds per-session waits during audience-wide
// broadcasts; presence snapshots must never stall on one slow client.
func WithBroadcastTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.config.broadcastTimeout = d
	}
}
