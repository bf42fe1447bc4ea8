package scraper

import (
	"strconv"
	"strings"
	"time"

	"leetfriends/models"
)

const maxRecentSubmissions = 50

// newProfileStatistics merges the three query payloads into one fully-typed
// record. All defaulting policy lives here: missing difficulty buckets count
// as zero, absent contest/calendar data means rating/streak zero, submission
// timestamps default to now and languages to "Unknown".
func newProfileStatistics(handle string, profile *profilePayload, contest *contestPayload, calendar *calendarPayload) *models.ProfileStatistics {
	user := profile.MatchedUser

	var easy, medium, hard int
	for _, bucket := range user.SubmitStats.ACSubmissionNum {
		switch bucket.Difficulty {
		case "Easy":
			easy = nonNegative(bucket.Count)
		case "Medium":
			medium = nonNegative(bucket.Count)
		case "Hard":
			hard = nonNegative(bucket.Count)
		}
	}

	name := strings.TrimSpace(user.Profile.RealName)
	if name == "" {
		name = user.Username
	}
	if name == "" {
		name = handle
	}

	var rating int
	if contest.UserContestRanking != nil && contest.UserContestRanking.Rating > 0 {
		rating = int(contest.UserContestRanking.Rating) // floor
	}

	var streak int
	if calendar.MatchedUser != nil && calendar.MatchedUser.UserCalendar != nil {
		streak = nonNegative(calendar.MatchedUser.UserCalendar.Streak)
	}

	return &models.ProfileStatistics{
		DisplayName:       name,
		TotalSolved:       easy + medium + hard,
		EasySolved:        easy,
		MediumSolved:      medium,
		HardSolved:        hard,
		Ranking:           nonNegative(user.Profile.Ranking),
		ContestRating:     rating,
		Streak:            streak,
		RecentSubmissions: normalizeSubmissions(profile.RecentSubmissionList),
	}
}

// normalizeSubmissions filters to accepted submissions, caps the list, and
// fills missing timestamps and languages.
func normalizeSubmissions(raw []rawSubmission) []models.SubmissionRecord {
	out := make([]models.SubmissionRecord, 0, min(len(raw), maxRecentSubmissions))
	for _, sub := range raw {
		if sub.StatusDisplay != "Accepted" {
			continue
		}
		if len(out) >= maxRecentSubmissions {
			break
		}

		submittedAt := time.Now()
		if secs, err := strconv.ParseInt(sub.Timestamp, 10, 64); err == nil && secs > 0 {
			submittedAt = time.Unix(secs, 0)
		}

		lang := sub.Lang
		if lang == "" {
			lang = "Unknown"
		}

		out = append(out, models.SubmissionRecord{
			Title:       sub.Title,
			TitleSlug:   sub.TitleSlug,
			SubmittedAt: submittedAt,
			Status:      "Accepted",
			Language:    lang,
		})
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
