package handler

import (
	"context"

	"leetfriends/models"
	"leetfriends/sweep"
)

// ProfileScraper is the scraping surface the handlers drive. *scraper.Scraper
// satisfies it; tests substitute fakes.
type ProfileScraper interface {
	// ScrapeProfile is a single unretried attempt.
	ScrapeProfile(ctx context.Context, handle string) (*models.ProfileStatistics, error)
	// ScrapeWithRetry is the production entry point.
	ScrapeWithRetry(ctx context.Context, handle string) (*models.ProfileStatistics, error)
}

// BulkRefresher triggers one best-effort refresh pass.
type BulkRefresher interface {
	RunOnce(ctx context.Context) (sweep.Tally, error)
}
