package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"leetfriends/models"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("store: email already registered")

// CreateUser registers a new account and returns it with a generated ID.
func (s *Store) CreateUser(ctx context.Context, email, name, handle string) (*models.User, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, handle) VALUES (?, ?, ?, ?)`,
		id, strings.ToLower(email), name, handle)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, handle, created_at FROM users WHERE id = ?`, id))
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, handle, created_at FROM users WHERE email = ?`,
		strings.ToLower(email)))
}

// SetUserHandle links or updates the user's own LeetCode handle.
func (s *Store) SetUserHandle(ctx context.Context, id, handle string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET handle = ? WHERE id = ?`, handle, id)
	if err != nil {
		return fmt.Errorf("set user handle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Handle, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
