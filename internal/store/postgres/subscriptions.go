package postgres

import (
	"context"
	"fmt"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

func (s *Store) SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, endpoint, expiration_time, key_p256dh, key_auth, created_at
		   FROM push_subscriptions
		  WHERE user_id = $1
		  ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: subscriptions for user: %w", err)
	}
	defer rows.Close()

	var res []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.Endpoint, &sub.ExpirationTime,
			&sub.Keys.P256dh, &sub.Keys.Auth, &sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan subscription: %w", err)
		}
		res = append(res, sub)
	}
	return res, rows.Err()
}

func (s *Store) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, expiration_time, key_p256dh, key_auth)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (endpoint) DO UPDATE
		    SET user_id = excluded.user_id,
		        expiration_time = excluded.expiration_time,
		        key_p256dh = excluded.key_p256dh,
		        key_auth = excluded.key_auth
		 RETURNING id, created_at`,
		sub.UserID, sub.Endpoint, sub.ExpirationTime, sub.Keys.P256dh, sub.Keys.Auth,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: save subscription: %w", err)
	}
	return nil
}

func (s *Store) DeleteSubscription(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: delete subscription: %w", err)
	}
	return nil
}

func (s *Store) DeleteSubscriptionByEndpoint(ctx context.Context, userID int64, endpoint string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`,
		userID, endpoint)
	if err != nil {
		return fmt.Errorf("postgres: delete subscription by endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
