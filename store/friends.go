package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leetfriends/models"
)

// UpsertProfile stores freshly scraped statistics for a handle, creating the
// friend record if needed and marking the scrape successful.
func (s *Store) UpsertProfile(ctx context.Context, handle string, stats *models.ProfileStatistics) error {
	blob, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode profile stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO friends (handle, display_name, stats, scrape_status, last_scraped_at, last_error, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, '', 1, CURRENT_TIMESTAMP)
		ON CONFLICT (handle) DO UPDATE SET
			display_name    = excluded.display_name,
			stats           = excluded.stats,
			scrape_status   = excluded.scrape_status,
			last_scraped_at = excluded.last_scraped_at,
			last_error      = '',
			is_active       = 1,
			updated_at      = CURRENT_TIMESTAMP`,
		handle, stats.DisplayName, string(blob), models.ScrapeStatusSuccess, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert profile %q: %w", handle, err)
	}
	return nil
}

// MarkScrapeFailed records a failed refresh without touching the last good
// statistics.
func (s *Store) MarkScrapeFailed(ctx context.Context, handle, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friends (handle, scrape_status, last_error, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (handle) DO UPDATE SET
			scrape_status = excluded.scrape_status,
			last_error    = excluded.last_error,
			updated_at    = CURRENT_TIMESTAMP`,
		handle, models.ScrapeStatusFailed, message)
	if err != nil {
		return fmt.Errorf("mark scrape failed %q: %w", handle, err)
	}
	return nil
}

// GetFriend fetches one friend record by handle.
func (s *Store) GetFriend(ctx context.Context, handle string) (*models.Friend, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT handle, display_name, stats, scrape_status, last_scraped_at, last_error, is_active, created_at, updated_at
		FROM friends WHERE handle = ?`, handle)
	return scanFriend(row)
}

// ListFriendsOf returns all active friends tracked by the given user.
func (s *Store) ListFriendsOf(ctx context.Context, userID string) ([]*models.Friend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.handle, f.display_name, f.stats, f.scrape_status, f.last_scraped_at, f.last_error, f.is_active, f.created_at, f.updated_at
		FROM friends f
		JOIN user_friends uf ON uf.handle = f.handle
		WHERE uf.user_id = ? AND f.is_active = 1
		ORDER BY f.handle`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends of %q: %w", userID, err)
	}
	defer rows.Close()

	var friends []*models.Friend
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// AddFriendLink records that a user tracks a handle. The friend record is
// created as pending when it does not exist yet.
func (s *Store) AddFriendLink(ctx context.Context, userID, handle string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friends (handle) VALUES (?)
		ON CONFLICT (handle) DO NOTHING`, handle)
	if err != nil {
		return fmt.Errorf("ensure friend %q: %w", handle, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_friends (user_id, handle) VALUES (?, ?)
		ON CONFLICT (user_id, handle) DO NOTHING`, userID, handle)
	if err != nil {
		return fmt.Errorf("link friend %q to %q: %w", handle, userID, err)
	}
	return nil
}

// RemoveFriendLink stops a user tracking a handle. The shared friend record
// stays for other trackers.
func (s *Store) RemoveFriendLink(ctx context.Context, userID, handle string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_friends WHERE user_id = ? AND handle = ?`, userID, handle)
	if err != nil {
		return fmt.Errorf("unlink friend %q from %q: %w", handle, userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasFriendLink reports whether a user tracks a handle.
func (s *Store) HasFriendLink(ctx context.Context, userID, handle string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM user_friends WHERE user_id = ? AND handle = ?`, userID, handle).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check friend link: %w", err)
	}
	return true, nil
}

// ListStale returns handles whose profile is older than the threshold (or
// never scraped), oldest first, capped at limit. These are the sweep's work
// items.
func (s *Store) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	rows, err := s.db.QueryContext(ctx, `
		SELECT handle FROM friends
		WHERE is_active = 1 AND (last_scraped_at IS NULL OR last_scraped_at < ?)
		ORDER BY last_scraped_at ASC
		LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale friends: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFriend(row rowScanner) (*models.Friend, error) {
	var (
		f       models.Friend
		blob    sql.NullString
		scraped sql.NullTime
		active  int
	)
	err := row.Scan(&f.Handle, &f.DisplayName, &blob, &f.ScrapeStatus, &scraped, &f.LastError, &active, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan friend: %w", err)
	}

	f.IsActive = active != 0
	if scraped.Valid {
		t := scraped.Time
		f.LastScrapedAt = &t
	}
	if blob.Valid && blob.String != "" {
		var stats models.ProfileStatistics
		if err := json.Unmarshal([]byte(blob.String), &stats); err != nil {
			return nil, fmt.Errorf("decode stats for %q: %w", f.Handle, err)
		}
		f.Stats = &stats
	}
	return &f, nil
}
