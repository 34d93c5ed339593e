package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestClientMessage(t *testing.T) {
	if got := ClientMessage(ErrMissingFields); got != "receiverId and content are required" {
		t.Errorf("ClientMessage = %q", got)
	}

	// Wrapped client errors still surface their text.
	wrapped := fmt.Errorf("send: %w", ErrReceiverNotEligible)
	if got := ClientMessage(wrapped); got != ErrReceiverNotEligible.Error() {
		t.Errorf("ClientMessage(wrapped) = %q", got)
	}

	// Everything else is reported generically.
	if got := ClientMessage(errors.New("pq: connection refused")); got != "internal error" {
		t.Errorf("ClientMessage(internal) = %q, store details leaked", got)
	}
}
