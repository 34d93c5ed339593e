package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/domain/model"
	"github.com/Jeremy-Pacheco/AWTC-sub000/internal/store"
)

const userColumns = `id, name, email, role, coalesce(profile_image, '')`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ProfileImage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan user: %w", err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (s *Store) MessagingUsers(ctx context.Context, excludeID int64) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+`
		   FROM users
		  WHERE role IN ('admin', 'coordinator') AND id <> $1
		  ORDER BY name`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("postgres: messaging users: %w", err)
	}
	defer rows.Close()

	var res []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ProfileImage); err != nil {
			return nil, fmt.Errorf("postgres: scan user: %w", err)
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
