package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leetfriends/models"
)

// Allowed challenge status transitions. Terminal states have no exits.
var challengeTransitions = map[string][]string{
	models.ChallengeStatusPending: {models.ChallengeStatusActive, models.ChallengeStatusDeclined},
	models.ChallengeStatusActive:  {models.ChallengeStatusCompleted},
}

// ErrBadTransition is returned for an illegal challenge status change.
var ErrBadTransition = errors.New("store: illegal challenge status transition")

// CreateChallenge records a new head-to-head challenge in pending state.
func (s *Store) CreateChallenge(ctx context.Context, creatorID, opponentHandle, title string, startsAt, endsAt time.Time) (*models.Challenge, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges (id, creator_id, opponent_handle, title, status, starts_at, ends_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, creatorID, opponentHandle, title, models.ChallengeStatusPending, startsAt.UTC(), endsAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	return s.GetChallenge(ctx, id)
}

// GetChallenge fetches one challenge by ID.
func (s *Store) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, creator_id, opponent_handle, title, status, starts_at, ends_at, created_at
		FROM challenges WHERE id = ?`, id)

	var c models.Challenge
	err := row.Scan(&c.ID, &c.CreatorID, &c.OpponentHandle, &c.Title, &c.Status, &c.StartsAt, &c.EndsAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan challenge: %w", err)
	}
	return &c, nil
}

// ListChallengesOf returns a user's challenges, newest first.
func (s *Store) ListChallengesOf(ctx context.Context, userID string) ([]*models.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, creator_id, opponent_handle, title, status, starts_at, ends_at, created_at
		FROM challenges WHERE creator_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list challenges of %q: %w", userID, err)
	}
	defer rows.Close()

	var out []*models.Challenge
	for rows.Next() {
		var c models.Challenge
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.OpponentHandle, &c.Title, &c.Status, &c.StartsAt, &c.EndsAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// UpdateChallengeStatus applies a status transition, enforcing the state
// machine.
func (s *Store) UpdateChallengeStatus(ctx context.Context, id, status string) (*models.Challenge, error) {
	current, err := s.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range challengeTransitions[current.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, current.Status, status)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE challenges SET status = ? WHERE id = ?`, status, id); err != nil {
		return nil, fmt.Errorf("update challenge status: %w", err)
	}
	return s.GetChallenge(ctx, id)
}
