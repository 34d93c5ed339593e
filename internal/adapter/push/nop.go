package push

import (
	"context"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// NopPusher drops every payload. Used when push delivery is disabled so the
// dispatcher keeps a uniform code path.
type NopPusher struct{}

func NewNopPusher() *NopPusher { return &NopPusher{} }

func (*NopPusher) Send(context.Context, model.PushSubscription, []byte) error {
	return nil
}
