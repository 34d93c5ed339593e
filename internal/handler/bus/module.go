package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/fx"
)

var Module = fx.Module("bus-handler",
	fx.Provide(
		NewEventHandler,
		NewRouter,
	),
	fx.Invoke(RegisterHandlers),
	fx.Invoke(func(lc fx.Lifecycle, router *message.Router) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					// Run blocks until Close; its context governs the
					// consumer lifetime, not startup.
					_ = router.Run(context.Background())
				}()
				return nil
			},
			OnStop: func(context.Context) error {
				return router.Close()
			},
		})
	}),
)
