package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"leetfriends/models"
)

// ScrapeWithRetry is the recommended entry point for all production call
// sites: ScrapeProfile wrapped in the bounded retry policy.
func (s *Scraper) ScrapeWithRetry(ctx context.Context, handle string) (*models.ProfileStatistics, error) {
	return s.withRetry(ctx, handle, func(ctx context.Context) (*models.ProfileStatistics, error) {
		return s.ScrapeProfile(ctx, handle)
	})
}

// withRetry re-invokes op up to the configured attempt budget.
//
// Success and "profile not found" both terminate the loop immediately; only
// classified failures trigger retry logic. A connection-class fault means
// the session is presumed corrupt: it is torn down and the next attempt
// relaunches after the longer backoff. A SESSION_RESET fault skips the
// teardown (a concurrent caller already did it) and retries after the short
// backoff, as does everything else. Once attempts are exhausted the last
// failure propagates verbatim, classification intact.
func (s *Scraper) withRetry(ctx context.Context, handle string, op func(context.Context) (*models.ProfileStatistics, error)) (*models.ProfileStatistics, error) {
	attempts := s.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		stats, err := op(ctx)
		if err == nil || errors.Is(err, models.ErrProfileNotFound) {
			return stats, err
		}
		lastErr = err

		slog.Warn("scrape attempt failed",
			"handle", handle,
			"attempt", attempt,
			"maxAttempts", attempts,
			"code", models.ErrCode(err),
			"error", err,
		)

		if attempt == attempts {
			break
		}

		backoff := s.cfg.RetryBackoff
		if models.ErrCode(err) == models.ErrCodeConnection {
			s.session.Teardown()
			backoff = s.cfg.ConnectionBackoff
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, lastErr
		}
	}

	return nil, lastErr
}
