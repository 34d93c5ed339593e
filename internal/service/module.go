package service

import (
	"log/slog"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"service",

	fx.Provide(
		fx.Annotate(
			NewAuthService,
			fx.As(new(Auther)),
		),
		fx.Annotate(
			NewProfileEnricher,
			fx.As(new(Enricher)),
		),
		fx.Annotate(
			NewMessageService,
			fx.As(new(Messenger)),
		),
		fx.Annotate(
			NewPushDispatcher,
			fx.As(new(Notifier)),
		),
	),

	// Cross-cutting logging over the push path.
	fx.Decorate(func(orig Notifier, logger *slog.Logger) Notifier {
		return &notifierMiddleware{
			next:   orig,
			logger: logger,
		}
	}),
)
