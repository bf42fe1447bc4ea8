package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"leetfriends/models"
)

// scriptedOp returns canned results in order, repeating the last one.
func scriptedOp(calls *int, results ...func() (*models.ProfileStatistics, error)) func(context.Context) (*models.ProfileStatistics, error) {
	return func(context.Context) (*models.ProfileStatistics, error) {
		i := *calls
		*calls++
		if i >= len(results) {
			i = len(results) - 1
		}
		return results[i]()
	}
}

func TestWithRetryConnectionFaultTearsDownThenSucceeds(t *testing.T) {
	session := &fakeSession{newPage: func() *fakePage { return &fakePage{} }}
	s := New(session, testScraperConfig())

	want := &models.ProfileStatistics{DisplayName: "Alice", TotalSolved: 1, EasySolved: 1}
	calls := 0
	op := scriptedOp(&calls,
		func() (*models.ProfileStatistics, error) {
			return nil, models.NewScrapeError(models.ErrCodeConnection, "target closed", nil)
		},
		func() (*models.ProfileStatistics, error) { return want, nil },
	)

	stats, err := s.withRetry(context.Background(), "alice", op)
	if err != nil {
		t.Fatalf("withRetry() error: %v", err)
	}
	if stats != want {
		t.Fatalf("withRetry() stats = %+v, want %+v", stats, want)
	}
	if calls != 2 {
		t.Fatalf("op called %d times, want 2", calls)
	}
	if got := session.teardownCount(); got != 1 {
		t.Fatalf("teardowns = %d, want 1", got)
	}
}

func TestWithRetryExhaustionPreservesClassification(t *testing.T) {
	session := &fakeSession{newPage: func() *fakePage { return &fakePage{} }}
	s := New(session, testScraperConfig())

	calls := 0
	op := scriptedOp(&calls, func() (*models.ProfileStatistics, error) {
		return nil, models.NewScrapeError(models.ErrCodeHTTP, "upstream returned HTTP 503", nil)
	})

	_, err := s.withRetry(context.Background(), "alice", op)
	if calls != 2 {
		t.Fatalf("op called %d times, want 2", calls)
	}
	if got := models.ErrCode(err); got != models.ErrCodeHTTP {
		t.Fatalf("withRetry() code = %s, want %s", got, models.ErrCodeHTTP)
	}
	if got := session.teardownCount(); got != 0 {
		t.Fatalf("teardowns = %d, want 0 for a non-connection fault", got)
	}
}

func TestWithRetryNotFoundIsTerminal(t *testing.T) {
	session := &fakeSession{newPage: func() *fakePage { return &fakePage{} }}
	s := New(session, testScraperConfig())

	calls := 0
	op := scriptedOp(&calls, func() (*models.ProfileStatistics, error) {
		return nil, models.ErrProfileNotFound
	})

	_, err := s.withRetry(context.Background(), "ghost", op)
	if !errors.Is(err, models.ErrProfileNotFound) {
		t.Fatalf("withRetry() error = %v, want ErrProfileNotFound", err)
	}
	if calls != 1 {
		t.Fatalf("op called %d times, want 1 (not-found never retries)", calls)
	}
	if got := session.teardownCount(); got != 0 {
		t.Fatalf("teardowns = %d, want 0", got)
	}
}

func TestWithRetrySessionResetSkipsTeardown(t *testing.T) {
	session := &fakeSession{newPage: func() *fakePage { return &fakePage{} }}
	s := New(session, testScraperConfig())

	want := &models.ProfileStatistics{DisplayName: "Alice"}
	calls := 0
	op := scriptedOp(&calls,
		func() (*models.ProfileStatistics, error) {
			return nil, models.NewScrapeError(models.ErrCodeSessionReset, "session was reset during scrape", nil)
		},
		func() (*models.ProfileStatistics, error) { return want, nil },
	)

	stats, err := s.withRetry(context.Background(), "alice", op)
	if err != nil {
		t.Fatalf("withRetry() error: %v", err)
	}
	if stats != want {
		t.Fatalf("withRetry() stats = %+v, want %+v", stats, want)
	}
	if got := session.teardownCount(); got != 0 {
		t.Fatalf("teardowns = %d, want 0 (concurrent caller already reset)", got)
	}
}

func TestWithRetryCancelledContextReturnsLastError(t *testing.T) {
	session := &fakeSession{newPage: func() *fakePage { return &fakePage{} }}
	cfg := testScraperConfig()
	cfg.RetryBackoff = time.Hour // force the ctx.Done branch
	s := New(session, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := scriptedOp(&calls, func() (*models.ProfileStatistics, error) {
		cancel()
		return nil, models.NewScrapeError(models.ErrCodeTimeout, "navigation deadline exceeded", nil)
	})

	_, err := s.withRetry(ctx, "alice", op)
	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
	if got := models.ErrCode(err); got != models.ErrCodeTimeout {
		t.Fatalf("withRetry() code = %s, want %s", got, models.ErrCodeTimeout)
	}
}

func TestWithRetrySingleAttemptBudget(t *testing.T) {
	session := &fakeSession{newPage: func() *fakePage { return &fakePage{} }}
	cfg := testScraperConfig()
	cfg.MaxAttempts = 1
	s := New(session, cfg)

	calls := 0
	op := scriptedOp(&calls, func() (*models.ProfileStatistics, error) {
		return nil, models.NewScrapeError(models.ErrCodeConnection, "target closed", nil)
	})

	_, err := s.withRetry(context.Background(), "alice", op)
	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
	if got := models.ErrCode(err); got != models.ErrCodeConnection {
		t.Fatalf("withRetry() code = %s, want %s", got, models.ErrCodeConnection)
	}
	if got := session.teardownCount(); got != 0 {
		t.Fatalf("teardowns = %d, want 0 when no retry follows", got)
	}
}
