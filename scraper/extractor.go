package scraper

import (
	"context"
	"encoding/json"
	"errors"

	"golang.org/x/sync/errgroup"

	"leetfriends/config"
	"leetfriends/models"
)

// Session is the slice of the browser session manager the extractor needs.
// *SessionManager satisfies it; tests substitute fakes.
type Session interface {
	Ensure(ctx context.Context) error
	OpenPage(ctx context.Context) (ScrapePage, int64, error)
	Teardown()
	Generation() int64
}

// Scraper turns a handle into normalized profile statistics. It is safe for
// concurrent use; concurrent calls each open their own page against the
// shared session.
type Scraper struct {
	session Session
	cfg     config.ScraperConfig
}

// New creates a Scraper on top of a session manager.
func New(session Session, cfg config.ScraperConfig) *Scraper {
	return &Scraper{session: session, cfg: cfg}
}

// ScrapeProfile performs a single scrape attempt: ensure a session, open one
// page, and issue the three GraphQL queries concurrently against it.
//
// A "not found" on the profile query is the authoritative signal that the
// user does not exist and comes back as ErrProfileNotFound. The contest and
// calendar queries legitimately have no data for users who never entered a
// contest or have no activity, so a "not found" there degrades to zero
// values. Any other failure in any query fails the whole call.
func (s *Scraper) ScrapeProfile(ctx context.Context, handle string) (*models.ProfileStatistics, error) {
	if err := s.session.Ensure(ctx); err != nil {
		return nil, err
	}

	page, gen, err := s.session.OpenPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.Prepare(ctx, profileURL(handle)); err != nil {
		return nil, s.stampGeneration(err, gen)
	}

	var (
		profile  profilePayload
		contest  contestPayload
		calendar calendarPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := queryGraphQL(gctx, page, userProfileQuery, handle)
		if err != nil {
			return err
		}
		return decodePayload(raw, &profile)
	})
	g.Go(func() error {
		raw, err := queryGraphQL(gctx, page, userContestQuery, handle)
		if errors.Is(err, models.ErrProfileNotFound) {
			return nil // no contest history
		}
		if err != nil {
			return err
		}
		return decodePayload(raw, &contest)
	})
	g.Go(func() error {
		raw, err := queryGraphQL(gctx, page, userCalendarQuery, handle)
		if errors.Is(err, models.ErrProfileNotFound) {
			return nil // no activity calendar
		}
		if err != nil {
			return err
		}
		return decodePayload(raw, &calendar)
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			return nil, models.ErrProfileNotFound
		}
		return nil, s.stampGeneration(err, gen)
	}

	if profile.MatchedUser == nil {
		return nil, models.ErrProfileNotFound
	}

	return newProfileStatistics(handle, &profile, &contest, &calendar), nil
}

// decodePayload unmarshals a data payload, tolerating an absent one.
func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return models.NewScrapeError(models.ErrCodeParse, "unexpected upstream payload shape", err)
	}
	return nil
}

// stampGeneration reclassifies a connection-class failure as SESSION_RESET
// when the session was torn down under us by a concurrent caller, so the
// retry layer can skip the redundant teardown.
func (s *Scraper) stampGeneration(err error, gen int64) error {
	if err == nil {
		return nil
	}
	var se *models.ScrapeError
	if errors.As(err, &se) && se.Code == models.ErrCodeConnection && s.session.Generation() != gen {
		return models.NewScrapeError(models.ErrCodeSessionReset, "browser session was reset during scrape", err)
	}
	return err
}
