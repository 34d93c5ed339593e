package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	adapterbus "github.com/Jeremy-Pacheco/AWTC-sub000/internal/adapter/bus"
	adapterpush "github.com/Jeremy-Pacheco/AWTC-sub000/internal/adapter/push"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/config"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/registry"
	bushandler "github.com/Jeremy-Pacheco/AWTC-sub000/internal/handler/bus"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/server"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store/memory"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store/postgres"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideStore,
			func(st store.Store) store.Users { return st },
			ProvidePusher,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		adapterbus.Module,
		registry.Module,
		service.Module,
		bushandler.Module,
		server.Module,
	)
}

func ProvideLogger(cfg *config.Config) *slog.Logger {
	// LogLevel is a LevelVar so config reloads retune the running logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	})).With("service", ServiceName)
	slog.SetDefault(logger)
	return logger
}

func ProvideStore(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		st, err := postgres.Connect(ctx, cfg.Store.DSN, cfg.Store.MaxConns)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				st.Close()
				return nil
			},
		})
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func ProvidePusher(cfg *config.Config, logger *slog.Logger) adapterpush.Pusher {
	if !cfg.Push.Enabled {
		logger.Warn("push delivery disabled; notifications will be dropped")
		return adapterpush.NewNopPusher()
	}
	return adapterpush.NewWebPusher(cfg.Push)
}
