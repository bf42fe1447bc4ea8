package scraper

import "encoding/json"

// The three fixed GraphQL documents, each parameterized solely by username.

const userProfileQuery = `
  query getUserProfile($username: String!) {
    matchedUser(username: $username) {
      username
      profile {
        realName
        userAvatar
        ranking
      }
      submitStatsGlobal {
        acSubmissionNum {
          difficulty
          count
        }
      }
    }
    recentSubmissionList(username: $username) {
      title
      titleSlug
      timestamp
      statusDisplay
      lang
    }
  }
`

const userContestQuery = `
  query getUserContest($username: String!) {
    userContestRanking(username: $username) {
      rating
    }
  }
`

const userCalendarQuery = `
  query getUserCalendar($username: String!) {
    matchedUser(username: $username) {
      userCalendar {
        streak
      }
    }
  }
`

// graphqlRequest is the POST body sent to the upstream endpoint.
type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

// graphqlResponse is the upstream envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// --- typed data payloads ---

type difficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// rawSubmission mirrors recentSubmissionList entries. The timestamp arrives
// as a Unix-seconds string.
type rawSubmission struct {
	Title         string `json:"title"`
	TitleSlug     string `json:"titleSlug"`
	Timestamp     string `json:"timestamp"`
	StatusDisplay string `json:"statusDisplay"`
	Lang          string `json:"lang"`
}

// profilePayload is the data payload of the profile+submissions query.
// A nil MatchedUser means the user does not exist.
type profilePayload struct {
	MatchedUser          *matchedUser    `json:"matchedUser"`
	RecentSubmissionList []rawSubmission `json:"recentSubmissionList"`
}

type matchedUser struct {
	Username    string      `json:"username"`
	Profile     userProfile `json:"profile"`
	SubmitStats submitStats `json:"submitStatsGlobal"`
}

type userProfile struct {
	RealName string `json:"realName"`
	Ranking  int    `json:"ranking"`
}

type submitStats struct {
	ACSubmissionNum []difficultyCount `json:"acSubmissionNum"`
}

// contestPayload is the data payload of the contest query. Nil ranking means
// the user never entered a contest.
type contestPayload struct {
	UserContestRanking *contestRanking `json:"userContestRanking"`
}

type contestRanking struct {
	Rating float64 `json:"rating"`
}

// calendarPayload is the data payload of the calendar query.
type calendarPayload struct {
	MatchedUser *calendarUser `json:"matchedUser"`
}

type calendarUser struct {
	UserCalendar *userCalendar `json:"userCalendar"`
}

type userCalendar struct {
	Streak int `json:"streak"`
}
