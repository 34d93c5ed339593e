package bus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/registry"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/service/dto"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingHub struct {
	broadcast []event.Eventer
}

var _ registry.Hubber = (*recordingHub)(nil)

func (h *recordingHub) Attach(registry.Connector)       {}
func (h *recordingHub) Detach(uuid.UUID)                {}
func (h *recordingHub) Register(registry.Connector)     {}
func (h *recordingHub) Unregister(int64, uuid.UUID)     {}
func (h *recordingHub) UpdatePage(int64, string)        {}
func (h *recordingHub) IsOnline(int64) bool             { return false }
func (h *recordingHub) OnlinePage(int64) (string, bool) { return "", false }
func (h *recordingHub) ListOnline() []int64             { return nil }
func (h *recordingHub) Deliver(event.Eventer) bool      { return false }
func (h *recordingHub) Stats() model.HubStats           { return model.HubStats{} }
func (h *recordingHub) Shutdown()                       {}

func (h *recordingHub) BroadcastAll(ev event.Eventer) {
	h.broadcast = append(h.broadcast, ev)
}

type recordingNotifier struct {
	mu        sync.Mutex
	notified  []*model.Message
	delivered []bool
	err       error
}

func (n *recordingNotifier) MaybeNotify(_ context.Context, msg *model.Message, delivered bool) (service.PushResult, error) {
	n.mu.Lock()
	n.notified = append(n.notified, msg)
	n.delivered = append(n.delivered, delivered)
	n.mu.Unlock()
	return service.PushResult{}, n.err
}

func (n *recordingNotifier) snapshot() []*model.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*model.Message, len(n.notified))
	copy(out, n.notified)
	return out
}

func (n *recordingNotifier) NotifyDirect(context.Context, int64, string, string) (service.PushResult, error) {
	return service.PushResult{}, nil
}

func TestOnPushRequestedV1(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewEventHandler(&recordingHub{}, notifier, testLogger())

	msg := &model.Message{ID: 1, SenderID: 1, ReceiverID: 2, Content: "hi"}
	if err := h.OnPushRequestedV1(context.Background(), &dto.PushRequestV1{Message: msg, Delivered: true}); err != nil {
		t.Fatalf("OnPushRequestedV1: %v", err)
	}
	if len(notifier.notified) != 1 || notifier.notified[0].ID != 1 {
		t.Fatalf("notified = %+v", notifier.notified)
	}
	if len(notifier.delivered) != 1 || !notifier.delivered[0] {
		t.Fatal("delivery flag not forwarded to the notifier")
	}

	// Empty payload is dropped, not retried.
	if err := h.OnPushRequestedV1(context.Background(), &dto.PushRequestV1{}); err != nil {
		t.Fatalf("empty payload: %v", err)
	}
	if len(notifier.notified) != 1 {
		t.Fatal("empty payload reached the notifier")
	}
}

func TestOnPushRequestedV1PropagatesFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("push service down")}
	h := NewEventHandler(&recordingHub{}, notifier, testLogger())

	msg := &model.Message{ID: 1, SenderID: 1, ReceiverID: 2}
	if err := h.OnPushRequestedV1(context.Background(), &dto.PushRequestV1{Message: msg}); err == nil {
		t.Fatal("notifier failure swallowed; retry middleware never sees it")
	}
}

func TestOnAnnouncementV1(t *testing.T) {
	hub := &recordingHub{}
	h := NewEventHandler(hub, &recordingNotifier{}, testLogger())

	payload := map[string]any{"projectId": float64(7)}
	if err := h.OnAnnouncementV1(context.Background(), &dto.AnnouncementV1{Event: "project_deleted", Payload: payload}); err != nil {
		t.Fatalf("OnAnnouncementV1: %v", err)
	}
	if len(hub.broadcast) != 1 {
		t.Fatalf("broadcasts = %d", len(hub.broadcast))
	}
	if got := hub.broadcast[0].GetName(); got != "project_deleted" {
		t.Errorf("event name = %q", got)
	}

	// Nameless announcements are ignored.
	if err := h.OnAnnouncementV1(context.Background(), &dto.AnnouncementV1{}); err != nil {
		t.Fatalf("nameless announcement: %v", err)
	}
	if len(hub.broadcast) != 1 {
		t.Fatal("nameless announcement was broadcast")
	}
}

func TestBindDecodesAndDispatches(t *testing.T) {
	var got *dto.AnnouncementV1
	handler := Bind(testLogger(), func(_ context.Context, payload *dto.AnnouncementV1) error {
		got = payload
		return nil
	})

	body, _ := json.Marshal(dto.AnnouncementV1{Event: "x"})
	if err := handler(message.NewMessage("1", body)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got == nil || got.Event != "x" {
		t.Fatalf("decoded payload = %+v", got)
	}
}

func TestBindAcksPoisonPayloads(t *testing.T) {
	called := false
	handler := Bind(testLogger(), func(context.Context, *dto.AnnouncementV1) error {
		called = true
		return nil
	})

	// Undecodable payload must be ACKed (nil), never retried forever.
	if err := handler(message.NewMessage("1", []byte("{not json"))); err != nil {
		t.Fatalf("poison payload returned %v, want nil", err)
	}
	if called {
		t.Fatal("business logic ran on a poison payload")
	}
}
