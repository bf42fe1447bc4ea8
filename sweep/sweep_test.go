package sweep

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"leetfriends/config"
	"leetfriends/models"
)

// fakeScraper returns canned results per handle and tracks peak concurrency.
type fakeScraper struct {
	mu      sync.Mutex
	results map[string]error // nil means success
	calls   []string

	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeScraper) ScrapeWithRetry(ctx context.Context, handle string) (*models.ProfileStatistics, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls = append(f.calls, handle)
	err := f.results[handle]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &models.ProfileStatistics{DisplayName: handle, TotalSolved: 1, EasySolved: 1}, nil
}

// fakeStore records what the sweeper persisted.
type fakeStore struct {
	mu       sync.Mutex
	stale    []string
	listErr  error
	upserts  []string
	failures map[string]string
}

func (f *fakeStore) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.stale) {
		return f.stale[:limit], nil
	}
	return f.stale, nil
}

func (f *fakeStore) UpsertProfile(ctx context.Context, handle string, stats *models.ProfileStatistics) error {
	f.mu.Lock()
	f.upserts = append(f.upserts, handle)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) MarkScrapeFailed(ctx context.Context, handle, message string) error {
	f.mu.Lock()
	if f.failures == nil {
		f.failures = make(map[string]string)
	}
	f.failures[handle] = message
	f.mu.Unlock()
	return nil
}

func testSweepConfig() config.SweepConfig {
	return config.SweepConfig{
		Interval:         time.Minute,
		Staleness:        time.Hour,
		Concurrency:      2,
		ScrapesPerSecond: 1000, // keep tests fast
		BatchLimit:       100,
	}
}

func TestRunOnceTally(t *testing.T) {
	scraper := &fakeScraper{results: map[string]error{
		"alice": nil,
		"bob":   models.ErrProfileNotFound,
		"carol": models.NewScrapeError(models.ErrCodeHTTP, "upstream returned HTTP 503", nil),
		"dave":  nil,
	}}
	store := &fakeStore{stale: []string{"alice", "bob", "carol", "dave"}}
	sw := New(scraper, store, testSweepConfig())

	tally, err := sw.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}

	want := Tally{Scanned: 4, Succeeded: 2, NotFound: 1, Failed: 1}
	if diff := cmp.Diff(want, tally); diff != "" {
		t.Fatalf("RunOnce() tally mismatch (-want +got):\n%s", diff)
	}

	if len(store.upserts) != 2 {
		t.Fatalf("persisted %d profiles, want 2", len(store.upserts))
	}
	if got := store.failures["bob"]; got != "profile not found" {
		t.Fatalf("bob failure message = %q, want %q", got, "profile not found")
	}
	if _, ok := store.failures["carol"]; !ok {
		t.Fatal("carol's scrape failure was not recorded")
	}
}

func TestRunOnceEmptyBacklog(t *testing.T) {
	scraper := &fakeScraper{}
	store := &fakeStore{}
	sw := New(scraper, store, testSweepConfig())

	tally, err := sw.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}
	if tally != (Tally{}) {
		t.Fatalf("RunOnce() tally = %+v, want zero", tally)
	}
	if len(scraper.calls) != 0 {
		t.Fatalf("scraper called %d times on empty backlog, want 0", len(scraper.calls))
	}
}

func TestRunOnceListFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("database is locked")}
	sw := New(&fakeScraper{}, store, testSweepConfig())

	if _, err := sw.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce() expected error when listing stale profiles fails")
	}
}

func TestRunOnceRespectsConcurrencyCap(t *testing.T) {
	handles := make([]string, 12)
	results := make(map[string]error, len(handles))
	for i := range handles {
		handles[i] = string(rune('a' + i))
		results[handles[i]] = nil
	}

	scraper := &fakeScraper{results: results, delay: 5 * time.Millisecond}
	store := &fakeStore{stale: handles}
	cfg := testSweepConfig()
	cfg.Concurrency = 3
	sw := New(scraper, store, cfg)

	if _, err := sw.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}
	if peak := scraper.peak.Load(); peak > 3 {
		t.Fatalf("peak concurrency = %d, want at most 3", peak)
	}
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	scraper := &fakeScraper{results: map[string]error{"alice": nil}, delay: 50 * time.Millisecond}
	store := &fakeStore{stale: []string{"alice"}}
	sw := New(scraper, store, testSweepConfig())

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, _ = sw.RunOnce(context.Background())
		close(done)
	}()
	<-started
	time.Sleep(10 * time.Millisecond) // let the first pass claim the run flag

	if _, err := sw.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce() expected overlap rejection")
	}
	<-done
}

func TestRunOnceHonorsBatchLimit(t *testing.T) {
	store := &fakeStore{stale: []string{"a", "b", "c", "d", "e"}}
	scraper := &fakeScraper{results: map[string]error{
		"a": nil, "b": nil, "c": nil, "d": nil, "e": nil,
	}}
	cfg := testSweepConfig()
	cfg.BatchLimit = 2
	sw := New(scraper, store, cfg)

	tally, err := sw.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}
	if tally.Scanned != 2 {
		t.Fatalf("Scanned = %d, want batch limit 2", tally.Scanned)
	}
}
