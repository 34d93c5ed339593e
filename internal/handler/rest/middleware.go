package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

type contextKey string

const userContextKey contextKey = "rest_user"

// identify resolves the upstream-authenticated user id header against the
// store. Token issuance and session cookies live outside this service; the
// fronting gateway owns them.
func (h *Handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || id == 0 {
			respondError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		user, err := h.store.UserByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			h.logger.Error("identity lookup failed", "user_id", id, "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireEligible gates the messaging endpoints to admins/coordinators.
func (h *Handler) requireEligible(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := userFrom(r); user == nil || !user.Role.MessagingEligible() {
			respondError(w, http.StatusForbidden, "messaging requires an admin or coordinator account")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFrom(r *http.Request) *model.User {
	user, _ := r.Context().Value(userContextKey).(*model.User)
	return user
}

// logRequests is a minimal structured access log.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
