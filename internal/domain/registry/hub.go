// Package registry owns the in-memory connection state of the realtime
// subsystem: which sessions are open, which users hold a messaging slot,
// and the presence snapshot broadcast to every connected party.
//
// The registry is process-local by design. Nothing here is persisted;
// reconnecting clients re-establish their slot through the handshake.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// Hubber is the gateway for session management and event routing.
type Hubber interface {
	// Attach adds any open socket (public, regular or eligible) to the
	// broadcast audience. Detach removes it.
	Attach(conn Connector)
	Detach(connID uuid.UUID)

	// Register claims the user's messaging slot, last-connection-wins, and
	// rebroadcasts presence. Unregister releases the slot only when connID
	// still owns it, then rebroadcasts.
	Register(conn Connector)
	Unregister(userID int64, connID uuid.UUID)

	// UpdatePage records the client-reported page; no-op for absent users.
	UpdatePage(userID int64, page string)

	IsOnline(userID int64) bool
	// OnlinePage returns the reported page of a registered user.
	OnlinePage(userID int64) (page string, online bool)
	ListOnline() []int64

	// Deliver routes an event to the registered session of ev.GetUserID().
	// Returns false when the user holds no slot or the mailbox is saturated.
	Deliver(ev event.Eventer) bool
	// BroadcastAll fans an event out to the entire audience.
	BroadcastAll(ev event.Eventer)

	Stats() model.HubStats
	Shutdown()
}

// Hub implements Hubber with a single coarse lock. Contention is negligible
// at the expected scale (tens of coordinators, infrequent churn).
type Hub struct {
	mu        sync.RWMutex
	sessions  map[int64]Connector
	audience  map[uuid.UUID]Connector
	startedAt time.Time
	config    hubConfig
}

type hubConfig struct {
	sendTimeout      time.Duration
	broadcastTimeout time.Duration
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:  make(map[int64]Connector),
		audience:  make(map[uuid.UUID]Connector),
		startedAt: time.Now(),
		config: hubConfig{
			sendTimeout:      500 * time.Millisecond,
			broadcastTimeout: 100 * time.Millisecond,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Attach(conn Connector) {
	h.mu.Lock()
	h.audience[conn.GetID()] = conn
	h.mu.Unlock()
}

func (h *Hub) Detach(connID uuid.UUID) {
	h.mu.Lock()
	delete(h.audience, connID)
	h.mu.Unlock()
}

func (h *Hub) Register(conn Connector) {
	userID := conn.GetUserID()

	h.mu.Lock()
	prior, replaced := h.sessions[userID]
	h.sessions[userID] = conn
	h.mu.Unlock()

	if replaced && prior.GetID() != conn.GetID() {
		// Last-connection-wins: tell the stale device why it is going away
		// before its pumps are torn down.
		prior.Send(event.NewDisconnected(userID, "replaced"), h.config.sendTimeout)
		prior.Close()
	}

	h.broadcastPresence()
}

func (h *Hub) Unregister(userID int64, connID uuid.UUID) {
	h.mu.Lock()
	current, ok := h.sessions[userID]
	// A replaced session disconnecting later must not evict its successor.
	if ok && current.GetID() == connID {
		delete(h.sessions, userID)
	} else {
		ok = false
	}
	h.mu.Unlock()

	if ok {
		h.broadcastPresence()
	}
}

func (h *Hub) UpdatePage(userID int64, page string) {
	h.mu.RLock()
	conn, ok := h.sessions[userID]
	h.mu.RUnlock()
	if ok {
		conn.SetPage(page)
	}
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[userID]
	return ok
}

func (h *Hub) OnlinePage(userID int64) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.sessions[userID]
	if !ok {
		return "", false
	}
	return conn.Page(), true
}

func (h *Hub) ListOnline() []int64 {
	h.mu.RLock()
	ids := make([]int64, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (h *Hub) Deliver(ev event.Eventer) bool {
	h.mu.RLock()
	conn, ok := h.sessions[ev.GetUserID()]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return conn.Send(ev, h.config.sendTimeout)
}

func (h *Hub) BroadcastAll(ev event.Eventer) {
	h.mu.RLock()
	conns := make([]Connector, 0, len(h.audience))
	for _, conn := range h.audience {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.Send(ev, h.config.broadcastTimeout)
	}
}

// broadcastPresence pushes the full online-id snapshot to every connected
// party, public connections included.
func (h *Hub) broadcastPresence() {
	h.BroadcastAll(event.NewOnlineUsers(h.ListOnline()))
}

func (h *Hub) Stats() model.HubStats {
	ids := h.ListOnline()

	h.mu.RLock()
	total := len(h.audience)
	h.mu.RUnlock()

	return model.HubStats{
		OnlineUsers:      len(ids),
		TotalConnections: total,
		Uptime:           time.Since(h.startedAt),
		UserIDs:          ids,
	}
}

// Shutdown closes every open session. Called from the fx stop hook.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]Connector, 0, len(h.audience))
	for _, conn := range h.audience {
		conns = append(conns, conn)
	}
	h.sessions = make(map[int64]Connector)
	h.audience = make(map[uuid.UUID]Connector)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Send(event.NewDisconnected(conn.GetUserID(), "shutdown"), h.config.sendTimeout)
		conn.Close()
	}
}
