// Package bus hosts the consumers of the in-process event bus: the
// push-fallback dispatcher and the platform announcement fan-out.
package bus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// DomainHandler is the functional signature for bus-driven business logic.
type DomainHandler[T any] func(ctx context.Context, payload *T) error

// Bind connects watermill to domain logic: payload decoding with poison-pill
// protection, then execution. A decode failure is terminal (ACK), a business
// failure propagates so the retry middleware can take over.
func Bind[T any](logger *slog.Logger, fn DomainHandler[T]) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.Error("bus payload decode failed", "msg_id", msg.UUID, "err", err)
			return nil
		}
		return fn(msg.Context(), payload)
	}
}
