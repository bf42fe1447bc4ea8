package models

import "time"

// Scrape status values stored on a friend record.
const (
	ScrapeStatusPending = "pending"
	ScrapeStatusSuccess = "success"
	ScrapeStatusFailed  = "failed"
)

// Friend is a tracked LeetCode profile. One record exists per handle; users
// reference it through ownership edges, so a profile scraped for one user is
// reused by everyone tracking the same handle.
type Friend struct {
	Handle        string             `json:"leetcodeId"`
	DisplayName   string             `json:"name"`
	Stats         *ProfileStatistics `json:"leetcodeData,omitempty"`
	ScrapeStatus  string             `json:"scrapingStatus"`
	LastScrapedAt *time.Time         `json:"lastScrapedAt,omitempty"`
	LastError     string             `json:"-"`
	IsActive      bool               `json:"isActive"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// ProfileURL returns the public profile page for the handle.
func (f *Friend) ProfileURL() string {
	return "https://leetcode.com/u/" + f.Handle + "/"
}

// User is a registered account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Handle    string    `json:"leetcodeId,omitempty"` // the user's own linked handle
	CreatedAt time.Time `json:"createdAt"`
}

// Challenge status values.
const (
	ChallengeStatusPending   = "pending"
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
	ChallengeStatusDeclined  = "declined"
)

// Challenge is a head-to-head contest between a user and one of their
// friends. Win/loss computation happens client-side; the backend only keeps
// the bookkeeping state.
type Challenge struct {
	ID             string    `json:"id"`
	CreatorID      string    `json:"creatorId"`
	OpponentHandle string    `json:"opponentHandle"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt"`
	CreatedAt      time.Time `json:"createdAt"`
}
