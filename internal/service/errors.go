package service

import "errors"

// ClientError carries a message safe to surface to the originating
// connection as an `error` event. Anything else is reported generically.
type ClientError struct {
	msg string
}

func (e *ClientError) Error() string { return e.msg }

func clientErr(msg string) *ClientError { return &ClientError{msg: msg} }

var (
	// Handshake
	ErrUnknownIdentity = clientErr("authentication failed: unknown user")

	// Send
	ErrMissingFields       = clientErr("receiverId and content are required")
	ErrReceiverNotEligible = clientErr("receiver is not available for messaging")

	// MarkAsRead
	ErrMessageNotFound    = clientErr("message not found")
	ErrNotMessageReceiver = clientErr("unauthorized: only the receiver can mark a message as read")
)

// ClientMessage extracts the client-visible text of err, falling back to a
// generic line so store internals never leak over the wire.
func ClientMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return "internal error"
}
