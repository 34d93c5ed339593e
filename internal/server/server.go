// Package server assembles the HTTP surface: the websocket endpoint and the
// REST API share one listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/config"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/handler/rest"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/handler/ws"
)

func New(cfg *config.Config, wsHandler *ws.WSHandler, restHandler *rest.Handler) *http.Server {
	r := chi.NewRouter()
	r.Get("/ws", wsHandler.ServeHTTP)
	r.Mount("/api/v1", restHandler.Routes())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

var Module = fx.Module("server",
	fx.Provide(
		ws.NewWSHandler,
		rest.NewHandler,
		New,
	),
	fx.Invoke(func(lc fx.Lifecycle, srv *http.Server, cfg *config.Config, logger *slog.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					logger.Info("http server listening", "addr", srv.Addr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("http server failed", "err", err)
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			},
		})
	}),
)
