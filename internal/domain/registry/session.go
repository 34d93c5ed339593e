package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/event"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
)

// Interface guard
var _ Connector = (*session)(nil)

// Connector is the session handle the hub and the transport layers share.
// The concrete type stays unexported so callers cannot bypass the mailbox.
type Connector interface {
	GetID() uuid.UUID
	GetUserID() int64
	GetUserName() string
	GetRole() model.Role
	// Eligible reports whether the session belongs to a messaging-eligible
	// identity and therefore occupies a registry slot.
	Eligible() bool
	// Page returns the client-reported page, advisory only.
	Page() string
	SetPage(page string)
	// Send enqueues an event with a bounded wait. Under sustained
	// backpressure low-priority events are shed first.
	Send(ev event.Eventer, timeout time.Duration) bool
	Recv() <-chan event.Eventer
	// Done is closed when the session terminates; transport pumps select on
	// it alongside Recv.
	Done() <-chan struct{}
	Close()
}

type session struct {
	id       uuid.UUID
	userID   int64
	userName string
	role     model.Role

	ctx      context.Context
	cancelFn context.CancelFunc
	sendCh   chan event.Eventer

	mu   sync.RWMutex
	page string

	closeOnce    sync.Once
	droppedCount atomic.Uint64
}

// NewSession builds a session handle for one websocket. userID is zero for
// public (unauthenticated) connections.
func NewSession(ctx context.Context, user *model.User, mailboxSize int) Connector {
	childCtx, cancel := context.WithCancel(ctx)
	s := &session{
		id:       uuid.New(),
		ctx:      childCtx,
		cancelFn: cancel,
		sendCh:   make(chan event.Eventer, mailboxSize),
	}
	if user != nil {
		s.userID = user.ID
		s.userName = user.Name
		s.role = user.Role
	}
	return s
}

func (s *session) GetID() uuid.UUID       { return s.id }
func (s *session) GetUserID() int64       { return s.userID }
func (s *session) GetUserName() string    { return s.userName }
func (s *session) GetRole() model.Role    { return s.role }
func (s *session) Eligible() bool         { return s.userID != 0 && s.role.MessagingEligible() }

func (s *session) Page() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

func (s *session) SetPage(page string) {
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
}

func (s *session) Send(ev event.Eventer, timeout time.Duration) bool {
	select {
	case <-s.ctx.Done():
		return false
	case s.sendCh <- ev:
		return true
	default:
	}

	// Mailbox full. Ephemeral signals are not worth waiting for.
	if ev.GetPriority() <= event.PriorityLow {
		s.droppedCount.Add(1)
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
		return false
	case s.sendCh <- ev:
		return true
	case <-timer.C:
		s.droppedCount.Add(1)
		return false
	}
}

func (s *session) Recv() <-chan event.Eventer { return s.sendCh }

func (s *session) Done() <-chan struct{} { return s.ctx.Done() }

// Close terminates the session exactly once. The mailbox channel is left
// open so concurrent Send calls never hit a closed channel; pumps observe
// Done instead.
func (s *session) Close() {
	s.closeOnce.Do(s.cancelFn)
}
