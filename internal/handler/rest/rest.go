// Package rest serves the REST-facing siblings of the realtime core:
// conversation and history queries, unread counts, the messaging-user
// directory, push-subscription management and platform announcements.
package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	adapterbus "github.com/Jeremy-Pacheco/AWTC-sub000/internal/adapter/bus"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/config"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/registry"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service/dto"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

type Handler struct {
	logger     *slog.Logger
	store      store.Store
	hub        registry.Hubber
	notifier   service.Notifier
	dispatcher adapterbus.Dispatcher
	cfg        *config.Config
}

func NewHandler(
	logger *slog.Logger,
	st store.Store,
	hub registry.Hubber,
	notifier service.Notifier,
	dispatcher adapterbus.Dispatcher,
	cfg *config.Config,
) *Handler {
	return &Handler{
		logger:     logger,
		store:      st,
		hub:        hub,
		notifier:   notifier,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// Routes mounts the REST API. The websocket endpoint is mounted separately
// by the server assembly.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.logRequests)

	r.Get("/stats", h.stats)

	r.Group(func(r chi.Router) {
		r.Use(h.identify)

		r.Route("/messages", func(r chi.Router) {
			r.Use(h.requireEligible)
			r.Get("/conversations", h.conversations)
			r.Get("/history/{userID}", h.history)
			r.Get("/unread-count", h.unreadCount)
			r.Get("/users", h.messagingUsers)
		})

		r.Route("/push", func(r chi.Router) {
			r.Get("/vapid-key", h.vapidKey)
			r.Post("/subscriptions", h.subscribe)
			r.Delete("/subscriptions", h.unsubscribe)
			r.Post("/test", h.testNotification)
		})

		r.With(h.requireEligible).Post("/announcements", h.announce)
	})

	return r
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.hub.Stats())
}

func (h *Handler) conversations(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	convs, err := h.store.Conversations(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("conversations query failed", "user_id", user.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	respondJSON(w, http.StatusOK, convs)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	counterpartID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || counterpartID == 0 {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	msgs, err := h.store.History(r.Context(), user.ID, counterpartID, h.cfg.HistoryLimit())
	if err != nil {
		h.logger.Error("history query failed", "user_id", user.ID, "counterpart_id", counterpartID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	n, err := h.store.UnreadCount(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("unread count query failed", "user_id", user.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"unreadCount": n})
}

func (h *Handler) messagingUsers(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	users, err := h.store.MessagingUsers(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("messaging users query failed", "user_id", user.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) vapidKey(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"publicKey": h.cfg.Push.VAPIDPublicKey})
}

type subscribeRequest struct {
	Endpoint       string                 `json:"endpoint"`
	ExpirationTime *int64                 `json:"expirationTime"`
	Keys           model.SubscriptionKeys `json:"keys"`
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req subscribeRequest
	if err := decodeBody(r, &req); err != nil || req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		respondError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub := &model.PushSubscription{
		UserID:         user.ID,
		Endpoint:       req.Endpoint,
		ExpirationTime: req.ExpirationTime,
		Keys:           req.Keys,
	}
	if err := h.store.SaveSubscription(r.Context(), sub); err != nil {
		h.logger.Error("subscription save failed", "user_id", user.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req unsubscribeRequest
	if err := decodeBody(r, &req); err != nil || req.Endpoint == "" {
		respondError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.store.DeleteSubscriptionByEndpoint(r.Context(), user.ID, req.Endpoint); err != nil {
		respondError(w, http.StatusNotFound, "subscription not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// testNotification drives the same dispatcher as the realtime path, but
// surfaces the result synchronously to the caller.
func (h *Handler) testNotification(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	res, err := h.notifier.NotifyDirect(r.Context(), user.ID,
		"Test notification", "Push notifications are working.")
	if err != nil {
		h.logger.Error("test notification failed", "user_id", user.ID, "err", err)
		respondError(w, http.StatusBadGateway, "push delivery failed")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) announce(w http.ResponseWriter, r *http.Request) {
	var req dto.AnnouncementV1
	if err := decodeBody(r, &req); err != nil || req.Event == "" {
		respondError(w, http.StatusBadRequest, "event name is required")
		return
	}

	if err := h.dispatcher.Publish(r.Context(), adapterbus.TopicAnnouncement, req); err != nil {
		h.logger.Error("announcement publish failed", "event", req.Event, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
