package service

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

// Enricher joins a persisted message with the public profiles of its
// participants; the enriched form is the unit of realtime payload.
type Enricher interface {
	Enrich(ctx context.Context, msg *model.Message) (*model.Message, error)
}

// ProfileEnricher resolves profiles through an LRU cache; both lookups run
// concurrently on a miss.
type ProfileEnricher struct {
	users store.Users
	cache *lru.Cache[int64, model.User]
}

func NewProfileEnricher(users store.Users) *ProfileEnricher {
	// Profiles are small and churn rarely; 1024 hot identities is plenty
	// for tens of concurrent coordinators.
	cache, _ := lru.New[int64, model.User](1024)
	return &ProfileEnricher{users: users, cache: cache}
}

func (e *ProfileEnricher) Enrich(ctx context.Context, msg *model.Message) (*model.Message, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var sender, receiver model.User
	g.Go(func() error {
		var err error
		sender, err = e.resolve(gCtx, msg.SenderID)
		return err
	})
	g.Go(func() error {
		var err error
		receiver, err = e.resolve(gCtx, msg.ReceiverID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enrich message %d: %w", msg.ID, err)
	}

	msg.Sender = &sender
	msg.Receiver = &receiver
	return msg, nil
}

func (e *ProfileEnricher) resolve(ctx context.Context, userID int64) (model.User, error) {
	if cached, ok := e.cache.Get(userID); ok {
		return cached, nil
	}

	user, err := e.users.UserByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	e.cache.Add(userID, *user)
	return *user, nil
}
