// Package sweep refreshes stale friend profiles in the background. Each pass
// scrapes every stale handle best-effort: one failure never aborts the
// batch, concurrency is capped, and dispatches are paced so a big backlog
// does not hammer the shared browser session.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"leetfriends/config"
	"leetfriends/models"
)

// Scraper is the retry-wrapped scrape entry point.
type Scraper interface {
	ScrapeWithRetry(ctx context.Context, handle string) (*models.ProfileStatistics, error)
}

// Store is the persistence slice the sweeper needs.
type Store interface {
	ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
	UpsertProfile(ctx context.Context, handle string, stats *models.ProfileStatistics) error
	MarkScrapeFailed(ctx context.Context, handle, message string) error
}

// Tally is the per-pass outcome summary.
type Tally struct {
	Scanned   int `json:"scanned"`
	Succeeded int `json:"succeeded"`
	NotFound  int `json:"notFound"`
	Failed    int `json:"failed"`
}

// Sweeper runs the periodic refresh job.
type Sweeper struct {
	scraper Scraper
	store   Store
	cfg     config.SweepConfig
	limiter *rate.Limiter

	running atomic.Bool
}

// New creates a Sweeper.
func New(scraper Scraper, store Store, cfg config.SweepConfig) *Sweeper {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	rps := cfg.ScrapesPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Sweeper{
		scraper: scraper,
		store:   store,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Run executes passes on the configured interval until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.Info("sweep started",
		"interval", s.cfg.Interval,
		"staleness", s.cfg.Staleness,
		"concurrency", s.cfg.Concurrency,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweep stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("sweep pass failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single pass and returns its tally. Only one pass runs
// at a time; overlapping triggers are rejected.
func (s *Sweeper) RunOnce(ctx context.Context) (Tally, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Tally{}, errors.New("sweep already in progress")
	}
	defer s.running.Store(false)

	handles, err := s.store.ListStale(ctx, s.cfg.Staleness, s.cfg.BatchLimit)
	if err != nil {
		return Tally{}, err
	}
	if len(handles) == 0 {
		return Tally{}, nil
	}

	start := time.Now()
	var succeeded, notFound, failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, handle := range handles {
		handle := handle
		if err := s.limiter.Wait(gctx); err != nil {
			break // ctx canceled; collect what already dispatched
		}
		g.Go(func() error {
			s.refreshOne(gctx, handle, &succeeded, &notFound, &failed)
			return nil // best-effort: a failure never cancels siblings
		})
	}
	_ = g.Wait()

	tally := Tally{
		Scanned:   len(handles),
		Succeeded: int(succeeded.Load()),
		NotFound:  int(notFound.Load()),
		Failed:    int(failed.Load()),
	}
	slog.Info("sweep pass finished",
		"scanned", tally.Scanned,
		"succeeded", tally.Succeeded,
		"notFound", tally.NotFound,
		"failed", tally.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return tally, ctx.Err()
}

func (s *Sweeper) refreshOne(ctx context.Context, handle string, succeeded, notFound, failed *atomic.Int32) {
	stats, err := s.scraper.ScrapeWithRetry(ctx, handle)
	switch {
	case errors.Is(err, models.ErrProfileNotFound):
		notFound.Add(1)
		if serr := s.store.MarkScrapeFailed(ctx, handle, "profile not found"); serr != nil {
			slog.Error("failed to record missing profile", "handle", handle, "error", serr)
		}
	case err != nil:
		failed.Add(1)
		slog.Warn("sweep scrape failed", "handle", handle, "code", models.ErrCode(err), "error", err)
		if serr := s.store.MarkScrapeFailed(ctx, handle, err.Error()); serr != nil {
			slog.Error("failed to record scrape failure", "handle", handle, "error", serr)
		}
	default:
		succeeded.Add(1)
		if serr := s.store.UpsertProfile(ctx, handle, stats); serr != nil {
			slog.Error("failed to persist scraped profile", "handle", handle, "error", serr)
		}
	}
}
