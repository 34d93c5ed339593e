package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

// Classification partitions freshly accepted connections.
type Classification int

const (
	// Public connections claimed no identity; they receive broadcast
	// events only and never occupy a registry slot.
	Public Classification = iota + 1
	// Regular connections are authenticated volunteers; messaging event
	// handlers reject their actions.
	Regular
	// Eligible connections belong to admins/coordinators and proceed to
	// registry registration.
	Eligible
)

func (c Classification) String() string {
	switch c {
	case Public:
		return "public"
	case Regular:
		return "regular"
	case Eligible:
		return "eligible"
	default:
		return "unknown"
	}
}

// Principal is the outcome of a successful handshake.
type Principal struct {
	Class Classification
	User  *model.User // nil for Public
}

// Auther gates every incoming connection exactly once, before any domain
// event is accepted.
type Auther interface {
	// Authenticate resolves the claimed identity. claimedUserID zero means
	// no claim (public). claimedRole is advisory input only; the effective
	// role is always the one recorded in the store.
	Authenticate(ctx context.Context, claimedUserID int64, claimedRole string) (*Principal, error)
}

type AuthService struct {
	users  store.Users
	logger *slog.Logger
}

func NewAuthService(users store.Users, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

func (s *AuthService) Authenticate(ctx context.Context, claimedUserID int64, claimedRole string) (*Principal, error) {
	if claimedUserID == 0 {
		return &Principal{Class: Public}, nil
	}

	user, err := s.users.UserByID(ctx, claimedUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("auth: resolve user %d: %w", claimedUserID, err)
	}

	// The claimed role never feeds authorization; divergence is only worth
	// a warning since it usually means a stale client.
	if claimedRole != "" && claimedRole != string(user.Role) {
		s.logger.Warn("claimed role diverges from stored role",
			"user_id", user.ID,
			"claimed", claimedRole,
			"stored", user.Role,
		)
	}

	class := Regular
	if user.Role.MessagingEligible() {
		class = Eligible
	}
	return &Principal{Class: class, User: user}, nil
}
