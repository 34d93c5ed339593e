package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

func (s *Store) CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (*model.Message, error) {
	var m model.Message
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (sender_id, receiver_id, content, is_read)
		 VALUES ($1, $2, $3, false)
		 RETURNING id, sender_id, receiver_id, content, is_read, created_at`,
		senderID, receiverID, content,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: create message: %w", err)
	}
	return &m, nil
}

func (s *Store) MessageByID(ctx context.Context, id int64, withProfiles bool) (*model.Message, error) {
	if !withProfiles {
		var m model.Message
		err := s.pool.QueryRow(ctx,
			`SELECT id, sender_id, receiver_id, content, is_read, created_at
			   FROM messages WHERE id = $1`, id,
		).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, store.ErrNotFound
			}
			return nil, fmt.Errorf("postgres: message by id: %w", err)
		}
		return &m, nil
	}

	var (
		m        model.Message
		sender   model.User
		receiver model.User
	)
	err := s.pool.QueryRow(ctx,
		`SELECT m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at,
		        s.id, s.name, s.email, s.role, coalesce(s.profile_image, ''),
		        r.id, r.name, r.email, r.role, coalesce(r.profile_image, '')
		   FROM messages m
		   JOIN users s ON s.id = m.sender_id
		   JOIN users r ON r.id = m.receiver_id
		  WHERE m.id = $1`, id,
	).Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt,
		&sender.ID, &sender.Name, &sender.Email, &sender.Role, &sender.ProfileImage,
		&receiver.ID, &receiver.Name, &receiver.Email, &receiver.Role, &receiver.ProfileImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: enriched message by id: %w", err)
	}
	m.Sender = &sender
	m.Receiver = &receiver
	return &m, nil
}

func (s *Store) MarkMessageRead(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE messages SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: mark message read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) History(ctx context.Context, userID, counterpartID int64, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, sender_id, receiver_id, content, is_read, created_at
		   FROM (SELECT *
		           FROM messages
		          WHERE (sender_id = $1 AND receiver_id = $2)
		             OR (sender_id = $2 AND receiver_id = $1)
		          ORDER BY created_at DESC, id DESC
		          LIMIT $3) recent
		  ORDER BY created_at ASC, id ASC`,
		userID, counterpartID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: history: %w", err)
	}
	defer rows.Close()

	var res []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *Store) Conversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.role, coalesce(u.profile_image, ''),
		        last.content, last.created_at,
		        coalesce(unread.cnt, 0)
		   FROM (SELECT DISTINCT ON (counterpart) counterpart, content, created_at
		           FROM (SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS counterpart,
		                        content, created_at, id
		                   FROM messages
		                  WHERE sender_id = $1 OR receiver_id = $1) pair
		          ORDER BY counterpart, created_at DESC, id DESC) last
		   JOIN users u ON u.id = last.counterpart
		   LEFT JOIN (SELECT sender_id, count(*) AS cnt
		                FROM messages
		               WHERE receiver_id = $1 AND is_read = false
		               GROUP BY sender_id) unread ON unread.sender_id = last.counterpart
		  ORDER BY last.created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: conversations: %w", err)
	}
	defer rows.Close()

	var res []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(
			&c.User.ID, &c.User.Name, &c.User.Email, &c.User.Role, &c.User.ProfileImage,
			&c.LastMessage, &c.LastAt, &c.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan conversation: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE receiver_id = $1 AND is_read = false`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: unread count: %w", err)
	}
	return n, nil
}
