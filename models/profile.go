package models

import "time"

// SubmissionRecord is one accepted submission from a user's recent activity.
type SubmissionRecord struct {
	Title       string    `json:"title"`
	TitleSlug   string    `json:"titleSlug"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      string    `json:"status"`
	Language    string    `json:"language"`
}

// ProfileStatistics is the normalized output of one profile scrape.
// It is produced fresh per scrape and never mutated afterwards.
//
// Invariant: TotalSolved == EasySolved + MediumSolved + HardSolved.
type ProfileStatistics struct {
	DisplayName   string `json:"displayName"`
	TotalSolved   int    `json:"totalSolved"`
	EasySolved    int    `json:"easySolved"`
	MediumSolved  int    `json:"mediumSolved"`
	HardSolved    int    `json:"hardSolved"`
	Ranking       int    `json:"ranking"`       // 0 = unranked/unknown
	ContestRating int    `json:"contestRating"` // floored from the upstream fractional rating
	Streak        int    `json:"streak"`        // consecutive-activity days

	// RecentSubmissions is most-recent-first, accepted only, at most 50.
	RecentSubmissions []SubmissionRecord `json:"recentSubmissions"`
}
