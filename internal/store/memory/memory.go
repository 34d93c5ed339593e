// Package memory is an in-process Store adapter used in dev mode and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

// Interface guard
var _ store.Store = (*Store)(nil)

type Store struct {
	mu         sync.RWMutex
	users      map[int64]model.User
	messages   map[int64]model.Message
	subs       map[int64]model.PushSubscription
	nextMsgID  int64
	nextSubID  int64
	nextUserID int64
}

func New() *Store {
	return &Store{
		users:    make(map[int64]model.User),
		messages: make(map[int64]model.Message),
		subs:     make(map[int64]model.PushSubscription),
	}
}

// AddUser seeds an identity and returns it with an assigned id.
func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextUserID++
		u.ID = s.nextUserID
	} else if u.ID > s.nextUserID {
		s.nextUserID = u.ID
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) UserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) MessagingUsers(_ context.Context, excludeID int64) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.User
	for _, u := range s.users {
		if u.ID != excludeID && u.Role.MessagingEligible() {
			res = append(res, u)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *Store) CreateMessage(_ context.Context, senderID, receiverID int64, content string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMsgID++
	m := model.Message{
		ID:         s.nextMsgID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	s.messages[m.ID] = m
	return &m, nil
}

func (s *Store) MessageByID(_ context.Context, id int64, withProfiles bool) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if withProfiles {
		if u, ok := s.users[m.SenderID]; ok {
			u := u
			m.Sender = &u
		}
		if u, ok := s.users[m.ReceiverID]; ok {
			u := u
			m.Receiver = &u
		}
	}
	return &m, nil
}

func (s *Store) MarkMessageRead(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return store.ErrNotFound
	}
	m.IsRead = true
	s.messages[id] = m
	return nil
}

func (s *Store) History(_ context.Context, userID, counterpartID int64, limit int) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.Message
	for _, m := range s.messages {
		if (m.SenderID == userID && m.ReceiverID == counterpartID) ||
			(m.SenderID == counterpartID && m.ReceiverID == userID) {
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	if limit > 0 && len(res) > limit {
		res = res[len(res)-limit:]
	}
	return res, nil
}

func (s *Store) Conversations(_ context.Context, userID int64) ([]model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	last := make(map[int64]model.Message)
	unread := make(map[int64]int)
	for _, m := range s.messages {
		var counterpart int64
		switch {
		case m.SenderID == userID:
			counterpart = m.ReceiverID
		case m.ReceiverID == userID:
			counterpart = m.SenderID
		default:
			continue
		}
		if prev, ok := last[counterpart]; !ok || m.CreatedAt.After(prev.CreatedAt) ||
			(m.CreatedAt.Equal(prev.CreatedAt) && m.ID > prev.ID) {
			last[counterpart] = m
		}
		if m.ReceiverID == userID && !m.IsRead {
			unread[counterpart]++
		}
	}

	res := make([]model.Conversation, 0, len(last))
	for counterpart, m := range last {
		u, ok := s.users[counterpart]
		if !ok {
			continue
		}
		res = append(res, model.Conversation{
			User:        u,
			LastMessage: m.Content,
			LastAt:      m.CreatedAt,
			UnreadCount: unread[counterpart],
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].LastAt.After(res[j].LastAt) })
	return res, nil
}

func (s *Store) UnreadCount(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *Store) SubscriptionsForUser(_ context.Context, userID int64) ([]model.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.PushSubscription
	for _, sub := range s.subs {
		if sub.UserID == userID {
			res = append(res, sub)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *Store) SaveSubscription(_ context.Context, sub *model.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.subs {
		if existing.Endpoint == sub.Endpoint {
			sub.ID = id
			sub.CreatedAt = existing.CreatedAt
			s.subs[id] = *sub
			return nil
		}
	}
	s.nextSubID++
	sub.ID = s.nextSubID
	sub.CreatedAt = time.Now()
	s.subs[sub.ID] = *sub
	return nil
}

func (s *Store) DeleteSubscription(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	return nil
}

func (s *Store) DeleteSubscriptionByEndpoint(_ context.Context, userID int64, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subs {
		if sub.UserID == userID && sub.Endpoint == endpoint {
			delete(s.subs, id)
			return nil
		}
	}
	return store.ErrNotFound
}
