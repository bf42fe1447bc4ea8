package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"leetfriends/api/middleware"
	"leetfriends/models"
	"leetfriends/store"
)

type activityItem struct {
	FriendHandle string                  `json:"friendHandle"`
	FriendName   string                  `json:"friendName"`
	Submission   models.SubmissionRecord `json:"submission"`
}

// DashboardStats returns a handler for GET /api/v1/dashboard/stats:
// aggregate numbers across the user's friends plus the ten most recent
// accepted submissions among them.
func DashboardStats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		friends, err := st.ListFriendsOf(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondStoreError(c, err)
			return
		}

		var totalProblems, ratingSum, rated int
		var activity []activityItem
		for _, f := range friends {
			if f.Stats == nil {
				continue
			}
			totalProblems += f.Stats.TotalSolved
			if f.Stats.ContestRating > 0 {
				ratingSum += f.Stats.ContestRating
				rated++
			}
			for _, sub := range f.Stats.RecentSubmissions {
				activity = append(activity, activityItem{
					FriendHandle: f.Handle,
					FriendName:   f.DisplayName,
					Submission:   sub,
				})
			}
		}

		sort.Slice(activity, func(i, j int) bool {
			return activity[i].Submission.SubmittedAt.After(activity[j].Submission.SubmittedAt)
		})
		if len(activity) > 10 {
			activity = activity[:10]
		}
		if activity == nil {
			activity = []activityItem{}
		}

		averageRating := 0
		if rated > 0 {
			averageRating = ratingSum / rated
		}

		c.JSON(http.StatusOK, models.OK(gin.H{
			"totalFriends":   len(friends),
			"totalProblems":  totalProblems,
			"averageRating":  averageRating,
			"recentActivity": activity,
		}, "dashboard stats retrieved"))
	}
}
