package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/fx"
)

var Module = fx.Module("bus",
	fx.Provide(
		NewWatermillLogger,
		NewPubSub,
		NewDispatcher,
	),
	fx.Invoke(func(lc fx.Lifecycle, pubsub *gochannel.GoChannel) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return pubsub.Close()
			},
		})
	}),
)
