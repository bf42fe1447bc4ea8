package scraper

import (
	"fmt"
	"testing"
	"time"
)

func TestNewProfileStatisticsDefaults(t *testing.T) {
	profile := &profilePayload{
		MatchedUser: &matchedUser{
			Username: "bob42",
			Profile:  userProfile{RealName: "  ", Ranking: -5},
			SubmitStats: submitStats{ACSubmissionNum: []difficultyCount{
				{Difficulty: "Easy", Count: 3},
			}},
		},
	}

	stats := newProfileStatistics("bob42", profile, &contestPayload{}, &calendarPayload{})

	if stats.DisplayName != "bob42" {
		t.Fatalf("DisplayName = %q, want username fallback %q", stats.DisplayName, "bob42")
	}
	if stats.TotalSolved != 3 || stats.EasySolved != 3 || stats.MediumSolved != 0 || stats.HardSolved != 0 {
		t.Fatalf("solved counts = %d/%d/%d/%d, want 3/3/0/0",
			stats.TotalSolved, stats.EasySolved, stats.MediumSolved, stats.HardSolved)
	}
	if stats.Ranking != 0 {
		t.Fatalf("Ranking = %d, want 0 for negative upstream value", stats.Ranking)
	}
	if stats.ContestRating != 0 || stats.Streak != 0 {
		t.Fatalf("ContestRating/Streak = %d/%d, want 0/0", stats.ContestRating, stats.Streak)
	}
	if len(stats.RecentSubmissions) != 0 {
		t.Fatalf("RecentSubmissions = %d entries, want 0", len(stats.RecentSubmissions))
	}
}

func TestNewProfileStatisticsHandleFallback(t *testing.T) {
	profile := &profilePayload{MatchedUser: &matchedUser{}}
	stats := newProfileStatistics("carol", profile, &contestPayload{}, &calendarPayload{})
	if stats.DisplayName != "carol" {
		t.Fatalf("DisplayName = %q, want handle fallback %q", stats.DisplayName, "carol")
	}
}

func TestNewProfileStatisticsFloorsRating(t *testing.T) {
	profile := &profilePayload{MatchedUser: &matchedUser{Username: "alice"}}
	contest := &contestPayload{UserContestRanking: &contestRanking{Rating: 1999.99}}

	stats := newProfileStatistics("alice", profile, contest, &calendarPayload{})
	if stats.ContestRating != 1999 {
		t.Fatalf("ContestRating = %d, want 1999 (floored, never rounded up)", stats.ContestRating)
	}
}

func TestNormalizeSubmissionsFiltersAndCaps(t *testing.T) {
	var raw []rawSubmission
	for i := 0; i < 70; i++ {
		status := "Accepted"
		if i%3 == 0 {
			status = "Wrong Answer"
		}
		raw = append(raw, rawSubmission{
			Title:         fmt.Sprintf("Problem %d", i),
			TitleSlug:     fmt.Sprintf("problem-%d", i),
			Timestamp:     "1700000000",
			StatusDisplay: status,
			Lang:          "golang",
		})
	}

	out := normalizeSubmissions(raw)
	if len(out) != maxRecentSubmissions {
		t.Fatalf("normalizeSubmissions() len = %d, want cap %d", len(out), maxRecentSubmissions)
	}
	for _, sub := range out {
		if sub.Status != "Accepted" {
			t.Fatalf("submission %q has status %q, want Accepted only", sub.TitleSlug, sub.Status)
		}
	}
}

func TestNormalizeSubmissionsBadTimestampDefaultsToNow(t *testing.T) {
	before := time.Now().Add(-time.Second)
	out := normalizeSubmissions([]rawSubmission{
		{Title: "Two Sum", TitleSlug: "two-sum", Timestamp: "not-a-number", StatusDisplay: "Accepted", Lang: "golang"},
	})
	after := time.Now().Add(time.Second)

	if len(out) != 1 {
		t.Fatalf("normalizeSubmissions() len = %d, want 1", len(out))
	}
	if out[0].SubmittedAt.Before(before) || out[0].SubmittedAt.After(after) {
		t.Fatalf("SubmittedAt = %v, want roughly now", out[0].SubmittedAt)
	}
}

func TestNormalizeSubmissionsLanguageDefault(t *testing.T) {
	out := normalizeSubmissions([]rawSubmission{
		{Title: "Two Sum", TitleSlug: "two-sum", Timestamp: "1700000000", StatusDisplay: "Accepted"},
	})
	if out[0].Language != "Unknown" {
		t.Fatalf("Language = %q, want Unknown", out[0].Language)
	}
}

func TestNormalizeSubmissionsEmptyInput(t *testing.T) {
	if out := normalizeSubmissions(nil); len(out) != 0 {
		t.Fatalf("normalizeSubmissions(nil) len = %d, want 0", len(out))
	}
}
