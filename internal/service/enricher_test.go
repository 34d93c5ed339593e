package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store/memory"
)

// countingUsers counts profile lookups that reach the store.
type countingUsers struct {
	store.Users
	lookups atomic.Int64
}

func (c *countingUsers) UserByID(ctx context.Context, id int64) (*model.User, error) {
	c.lookups.Add(1)
	return c.Users.UserByID(ctx, id)
}

func TestEnrichAttachesProfiles(t *testing.T) {
	st := memory.New()
	admin, coordinator, _ := seedUsers(st)
	e := NewProfileEnricher(st)

	msg := &model.Message{ID: 1, SenderID: admin.ID, ReceiverID: coordinator.ID, Content: "hi"}
	enriched, err := e.Enrich(context.Background(), msg)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if enriched.Sender == nil || enriched.Sender.ID != admin.ID {
		t.Errorf("sender = %+v", enriched.Sender)
	}
	if enriched.Receiver == nil || enriched.Receiver.ID != coordinator.ID {
		t.Errorf("receiver = %+v", enriched.Receiver)
	}
}

func TestEnrichCachesProfiles(t *testing.T) {
	st := memory.New()
	admin, coordinator, _ := seedUsers(st)
	counting := &countingUsers{Users: st}
	e := NewProfileEnricher(counting)

	msg := &model.Message{ID: 1, SenderID: admin.ID, ReceiverID: coordinator.ID}
	if _, err := e.Enrich(context.Background(), msg); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if n := counting.lookups.Load(); n != 2 {
		t.Fatalf("cold enrich did %d lookups, want 2", n)
	}

	msg2 := &model.Message{ID: 2, SenderID: coordinator.ID, ReceiverID: admin.ID}
	if _, err := e.Enrich(context.Background(), msg2); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if n := counting.lookups.Load(); n != 2 {
		t.Fatalf("warm enrich hit the store (%d lookups total)", n)
	}
}

func TestEnrichUnknownParticipant(t *testing.T) {
	st := memory.New()
	admin, _, _ := seedUsers(st)
	e := NewProfileEnricher(st)

	msg := &model.Message{ID: 1, SenderID: admin.ID, ReceiverID: 9999}
	if _, err := e.Enrich(context.Background(), msg); err == nil {
		t.Fatal("Enrich succeeded with an unknown receiver")
	}
}
