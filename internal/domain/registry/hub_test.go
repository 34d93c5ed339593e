package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// fakeConn records everything the hub pushes at it.
type fakeConn struct {
	id     uuid.UUID
	userID int64
	name   string
	role   model.Role

	mu     sync.Mutex
	page   string
	events []event.Eventer
	closed bool
}

func newFakeConn(userID int64, role model.Role) *fakeConn {
	return &fakeConn{id: uuid.New(), userID: userID, role: role}
}

func (c *fakeConn) GetID() uuid.UUID    { return c.id }
func (c *fakeConn) GetUserID() int64    { return c.userID }
func (c *fakeConn) GetUserName() string { return c.name }
func (c *fakeConn) GetRole() model.Role { return c.role }
func (c *fakeConn) Eligible() bool      { return c.userID != 0 && c.role.MessagingEligible() }

func (c *fakeConn) Page() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *fakeConn) SetPage(page string) {
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
}

func (c *fakeConn) Send(ev event.Eventer, _ time.Duration) bool {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return true
}

func (c *fakeConn) Recv() <-chan event.Eventer { return nil }
func (c *fakeConn) Done() <-chan struct{}      { return nil }

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) received() []event.Eventer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Eventer, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) lastOfKind(k event.Kind) event.Eventer {
	for _, ev := range c.received() {
		if ev.GetKind() == k {
			return ev
		}
	}
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func attachAndRegister(h *Hub, conn *fakeConn) {
	h.Attach(conn)
	h.Register(conn)
}

func TestRegisterReplacesPriorSession(t *testing.T) {
	h := NewHub()

	first := newFakeConn(7, model.RoleCoordinator)
	second := newFakeConn(7, model.RoleCoordinator)

	attachAndRegister(h, first)
	attachAndRegister(h, second)

	ev := first.lastOfKind(event.Disconnected)
	if ev == nil {
		t.Fatal("replaced session got no disconnected event")
	}
	payload, ok := ev.GetPayload().(event.DisconnectedPayload)
	if !ok || payload.Reason != "replaced" {
		t.Fatalf("disconnect payload = %#v, want reason %q", ev.GetPayload(), "replaced")
	}
	if !first.isClosed() {
		t.Error("replaced session was not closed")
	}
	if second.isClosed() {
		t.Error("winning session was closed")
	}

	if !h.Deliver(event.NewUserStopTyping(7, 1)) {
		t.Fatal("deliver to replacement session failed")
	}
	if got := second.lastOfKind(event.UserStopTyping); got == nil {
		t.Error("event routed to stale session instead of replacement")
	}
}

func TestUnregisterIgnoresStaleConnection(t *testing.T) {
	h := NewHub()

	first := newFakeConn(7, model.RoleCoordinator)
	second := newFakeConn(7, model.RoleCoordinator)

	attachAndRegister(h, first)
	attachAndRegister(h, second)

	// The replaced socket's teardown runs after the new one took over; it
	// must not knock the winner offline.
	h.Unregister(7, first.GetID())
	if !h.IsOnline(7) {
		t.Fatal("stale unregister evicted the live session")
	}

	h.Unregister(7, second.GetID())
	if h.IsOnline(7) {
		t.Fatal("owning unregister left the user online")
	}
}

func TestPresenceBroadcastReachesWholeAudience(t *testing.T) {
	h := NewHub()

	public := newFakeConn(0, "")
	volunteer := newFakeConn(3, model.RoleVolunteer)
	coordinator := newFakeConn(5, model.RoleCoordinator)

	h.Attach(public)
	h.Attach(volunteer)
	attachAndRegister(h, coordinator)

	for name, conn := range map[string]*fakeConn{
		"public": public, "volunteer": volunteer, "coordinator": coordinator,
	} {
		ev := conn.lastOfKind(event.OnlineUsers)
		if ev == nil {
			t.Fatalf("%s connection got no presence snapshot", name)
		}
		payload := ev.GetPayload().(event.OnlineUsersPayload)
		if len(payload.UserIDs) != 1 || payload.UserIDs[0] != 5 {
			t.Errorf("%s snapshot = %v, want [5]", name, payload.UserIDs)
		}
	}
}

func TestPresenceSnapshotIsFullNotDelta(t *testing.T) {
	h := NewHub()

	observer := newFakeConn(0, "")
	h.Attach(observer)

	a := newFakeConn(1, model.RoleAdmin)
	b := newFakeConn(2, model.RoleCoordinator)
	attachAndRegister(h, a)
	attachAndRegister(h, b)

	h.Unregister(1, a.GetID())

	events := observer.received()
	var last event.OnlineUsersPayload
	for _, ev := range events {
		if ev.GetKind() == event.OnlineUsers {
			last = ev.GetPayload().(event.OnlineUsersPayload)
		}
	}
	if len(last.UserIDs) != 1 || last.UserIDs[0] != 2 {
		t.Fatalf("final snapshot = %v, want [2]", last.UserIDs)
	}
}

func TestDeliverToOfflineUser(t *testing.T) {
	h := NewHub()
	if h.Deliver(event.NewMessageRead(42, 1)) {
		t.Fatal("deliver reported success for offline user")
	}
}

func TestUpdatePageAndOnlinePage(t *testing.T) {
	h := NewHub()
	conn := newFakeConn(9, model.RoleAdmin)
	attachAndRegister(h, conn)

	h.UpdatePage(9, "/messages/3")
	page, online := h.OnlinePage(9)
	if !online || page != "/messages/3" {
		t.Fatalf("OnlinePage = (%q, %v), want (/messages/3, true)", page, online)
	}

	// Unknown user is a no-op, not a panic.
	h.UpdatePage(404, "/elsewhere")
	if _, online := h.OnlinePage(404); online {
		t.Error("OnlinePage reported an unregistered user online")
	}
}

func TestListOnlineSorted(t *testing.T) {
	h := NewHub()
	for _, id := range []int64{30, 10, 20} {
		attachAndRegister(h, newFakeConn(id, model.RoleCoordinator))
	}

	got := h.ListOnline()
	want := []int64{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("ListOnline = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListOnline = %v, want %v", got, want)
		}
	}
}

func TestStats(t *testing.T) {
	h := NewHub()

	h.Attach(newFakeConn(0, ""))
	attachAndRegister(h, newFakeConn(1, model.RoleAdmin))

	stats := h.Stats()
	if stats.TotalConnections != 2 {
		t.Errorf("TotalConnections = %d, want 2", stats.TotalConnections)
	}
	if stats.OnlineUsers != 1 {
		t.Errorf("OnlineUsers = %d, want 1", stats.OnlineUsers)
	}
	// The count and the id list come from the same snapshot.
	if len(stats.UserIDs) != stats.OnlineUsers || stats.UserIDs[0] != 1 {
		t.Errorf("UserIDs = %v, want [1]", stats.UserIDs)
	}
}

func TestShutdownClosesEverySession(t *testing.T) {
	h := NewHub()

	public := newFakeConn(0, "")
	coordinator := newFakeConn(4, model.RoleCoordinator)
	h.Attach(public)
	attachAndRegister(h, coordinator)

	h.Shutdown()

	if !public.isClosed() || !coordinator.isClosed() {
		t.Fatal("shutdown left sessions open")
	}
	if h.IsOnline(4) {
		t.Fatal("shutdown left user registered")
	}
	if stats := h.Stats(); stats.TotalConnections != 0 {
		t.Fatalf("TotalConnections after shutdown = %d", stats.TotalConnections)
	}
}
